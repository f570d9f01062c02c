package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const LayoutEndpoint = "/layouts"

// Layout is a quotation template: branding, contact block and the standing
// terms rendered onto generated documents.
type Layout struct {
	resource.Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	LogoFileID string `json:"logo_file_id,omitempty"`

	CompanyName     string `json:"company_name,omitempty"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Address         string `json:"address,omitempty"`

	TermsConditions string `json:"terms_conditions,omitempty"`
	Notes           string `json:"notes,omitempty"`

	Links        map[string]string `json:"links,omitempty"`
	CustomFields map[string]any    `json:"custom_fields,omitempty"`

	IsDefault bool `json:"is_default"`
}

var LayoutDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "name",
	SortDir:  resource.SortAsc,
}

func NewLayoutClient(http *transport.Client) *resource.Client[Layout] {
	return resource.NewClient[Layout](http, LayoutEndpoint)
}

func NewLayoutStore(log *zap.Logger) *store.Store[Layout] {
	return store.New[Layout]("layout", LayoutDefaults, log)
}
