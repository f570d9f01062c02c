package resource

import "time"

// Base carries the fields shared by every persisted record. The identifier
// is empty only for entities that have not been persisted yet; once assigned
// it never changes.
type Base struct {
	ID        string     `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted,omitempty"`
	Status    string     `json:"status,omitempty"`
	Version   int        `json:"version,omitempty"`
}

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Params are the request parameters common to every list-style operation.
// Page is 1-based.
type Params struct {
	Search   string  `json:"search,omitempty"`
	Page     int     `json:"page,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
	SortBy   string  `json:"sort_by,omitempty"`
	SortDir  SortDir `json:"sort_dir,omitempty"`
}

// Merge returns a copy of p with the non-zero fields of override applied.
func (p Params) Merge(override *Params) Params {
	if override == nil {
		return p
	}
	merged := p
	if override.Search != "" {
		merged.Search = override.Search
	}
	if override.Page != 0 {
		merged.Page = override.Page
	}
	if override.PageSize != 0 {
		merged.PageSize = override.PageSize
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}
	if override.SortDir != "" {
		merged.SortDir = override.SortDir
	}
	return merged
}

// Operator enumerates the comparison operators a filter condition may carry.
type Operator string

const (
	OpEquals           Operator = "eq"
	OpNotEquals        Operator = "neq"
	OpGreaterThan      Operator = "gt"
	OpLessThan         Operator = "lt"
	OpGreaterThanEqual Operator = "gte"
	OpLessThanEqual    Operator = "lte"
	OpLike             Operator = "like"
	OpIn               Operator = "in"
	OpNotIn            Operator = "not_in"
	OpIsNull           Operator = "is_null"
	OpIsNotNull        Operator = "is_not_null"
)

// Filter is a single (field, operator, value) condition. Multiple conditions
// on one request are combined with AND semantics by the server; the client
// only assembles and serializes them.
type Filter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// Page is the response envelope for list and query operations. Total counts
// the full matching set irrespective of pagination.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// Patch carries merge-patch semantics: only the fields present are changed.
type Patch map[string]any

// UpdateItem pairs an identifier with its patch for bulk updates.
type UpdateItem struct {
	ID   string `json:"id"`
	Data Patch  `json:"data"`
}
