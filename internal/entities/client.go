package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const ClientEndpoint = "/clients"

// Client is a customer company record with its contact details.
type Client struct {
	resource.Base
	CompanyName        string `json:"company_name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	TaxID              string `json:"tax_id,omitempty"`

	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`

	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`

	ContactPersonName     string `json:"contact_person_name,omitempty"`
	ContactPersonEmail    string `json:"contact_person_email,omitempty"`
	ContactPersonPhone    string `json:"contact_person_phone,omitempty"`
	ContactPersonPosition string `json:"contact_person_position,omitempty"`

	Notes string `json:"notes,omitempty"`
}

var ClientDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "company_name",
	SortDir:  resource.SortAsc,
}

func ClientSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"company_name":         map[string]any{"type": "string", "minLength": 2, "maxLength": 255},
			"registration_number":  map[string]any{"type": "string", "maxLength": 100},
			"tax_id":               map[string]any{"type": "string", "maxLength": 100},
			"email":                map[string]any{"type": "string", "format": "email"},
			"contact_person_email": map[string]any{"type": "string", "format": "email"},
		},
		"required": []any{"company_name"},
	}
}

func NewClientClient(http *transport.Client) *resource.Client[Client] {
	return resource.NewClient[Client](http, ClientEndpoint)
}

func NewClientStore(log *zap.Logger) *store.Store[Client] {
	s := store.New[Client]("client", ClientDefaults, log)
	s.SetSchema(ClientSchema())
	return s
}
