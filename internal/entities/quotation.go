package entities

import (
	"context"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const QuotationEndpoint = "/quotations"

// QuotationItem is one line of a quotation.
type QuotationItem struct {
	ItemID      string  `json:"item_id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit,omitempty"`
	Total       float64 `json:"total,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// Quotation is a priced offer to a client rendered with a layout template.
// Monetary totals are calculated server side and read back.
type Quotation struct {
	resource.Base
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	ClientID string `json:"client_id"`
	LayoutID string `json:"layout_id"`

	QuotationDate string `json:"quotation_date"`
	ValidUntil    string `json:"valid_until"`

	Items []QuotationItem `json:"items"`

	Currency           string  `json:"currency,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
	TaxPercentage      float64 `json:"tax_percentage,omitempty"`

	Notes           string `json:"notes,omitempty"`
	TermsConditions string `json:"terms_conditions,omitempty"`
	QuotationStatus string `json:"quotation_status,omitempty"`

	QuotationNumber string  `json:"quotation_number,omitempty"`
	Subtotal        float64 `json:"subtotal,omitempty"`
	DiscountAmount  float64 `json:"discount_amount,omitempty"`
	TaxAmount       float64 `json:"tax_amount,omitempty"`
	Total           float64 `json:"total,omitempty"`

	SentAt         *string `json:"sent_at,omitempty"`
	AccessToken    *string `json:"access_token,omitempty"`
	TokenExpiresAt *string `json:"token_expires_at,omitempty"`

	Client *Client `json:"client,omitempty"`
	Layout *Layout `json:"layout,omitempty"`
}

var QuotationDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "quotation_date",
	SortDir:  resource.SortDesc,
}

func QuotationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":          map[string]any{"type": "string", "minLength": 1},
			"client_id":      map[string]any{"type": "string", "minLength": 1},
			"layout_id":      map[string]any{"type": "string", "minLength": 1},
			"quotation_date": map[string]any{"type": "string"},
			"valid_until":    map[string]any{"type": "string"},
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string", "minLength": 1},
						"quantity":    map[string]any{"type": "number", "exclusiveMinimum": 0},
						"unit_price":  map[string]any{"type": "number", "minimum": 0},
					},
					"required": []any{"description", "quantity", "unit_price"},
				},
			},
		},
		"required": []any{"title", "client_id", "layout_id", "quotation_date", "valid_until", "items"},
	}
}

func NewQuotationClient(http *transport.Client) *resource.Client[Quotation] {
	return resource.NewClient[Quotation](http, QuotationEndpoint)
}

// QuotationStore extends the generic store with the approval workflow
// actions.
type QuotationStore struct {
	*store.Store[Quotation]
}

func NewQuotationStore(log *zap.Logger) *QuotationStore {
	s := store.New[Quotation]("quotation", QuotationDefaults, log)
	s.SetSchema(QuotationSchema())
	return &QuotationStore{Store: s}
}

// Send marks the quotation as sent to its client and returns the updated
// record carrying the client access token.
func (s *QuotationStore) Send(ctx context.Context, id string) (*Quotation, error) {
	var sent Quotation
	err := s.Exec(func(client *resource.Client[Quotation]) error {
		return client.PostJSON(ctx, "/"+id+"/send", nil, &sent)
	})
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// Approve accepts a sent quotation on behalf of the client.
func (s *QuotationStore) Approve(ctx context.Context, id string) (*Quotation, error) {
	var approved Quotation
	err := s.Exec(func(client *resource.Client[Quotation]) error {
		return client.PostJSON(ctx, "/"+id+"/approve", nil, &approved)
	})
	if err != nil {
		return nil, err
	}
	return &approved, nil
}
