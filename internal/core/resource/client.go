package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kmulambia/qgen-client/internal/apierror"
	"github.com/kmulambia/qgen-client/internal/transport"
)

// Client translates the uniform CRUD/query vocabulary into HTTP calls
// against one backend collection. Concrete resources differ only in their
// endpoint path and entity shape, so both are parameters.
type Client[T any] struct {
	http     *transport.Client
	endpoint string
}

func NewClient[T any](http *transport.Client, endpoint string) *Client[T] {
	return &Client[T]{http: http, endpoint: endpoint}
}

func (c *Client[T]) Endpoint() string {
	return c.endpoint
}

// GetMany lists one page of the collection. The result total reflects the
// filter, independent of page size.
func (c *Client[T]) GetMany(ctx context.Context, params *Params, filters []Filter, includeDeleted bool) (Page[T], error) {
	var page Page[T]
	query := buildQuery(params, filters, includeDeleted)
	err := c.http.Do(ctx, http.MethodGet, c.endpoint, query, nil, &page)
	return page, err
}

// GetOne returns nil (not an error) when the backend reports not found.
func (c *Client[T]) GetOne(ctx context.Context, id string) (*T, error) {
	var entity T
	err := c.http.Do(ctx, http.MethodGet, c.endpoint+"/"+id, nil, nil, &entity)
	if err != nil {
		if apierror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// Create sends a partial entity and returns the server-assigned full one.
func (c *Client[T]) Create(ctx context.Context, data *T) (*T, error) {
	var created T
	if err := c.http.Do(ctx, http.MethodPost, c.endpoint, nil, data, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a merge patch: only the supplied fields are changed.
func (c *Client[T]) Update(ctx context.Context, id string, patch Patch) (*T, error) {
	var updated T
	if err := c.http.Do(ctx, http.MethodPatch, c.endpoint+"/"+id, nil, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete soft-deletes by default; hardDelete requests permanent removal.
func (c *Client[T]) Delete(ctx context.Context, id string, hardDelete bool) error {
	var query url.Values
	if hardDelete {
		query = url.Values{"hard_delete": []string{"true"}}
	}
	return c.http.Do(ctx, http.MethodDelete, c.endpoint+"/"+id, query, nil, nil)
}

// Recover reverses a soft delete.
func (c *Client[T]) Recover(ctx context.Context, id string) (*T, error) {
	var recovered T
	if err := c.http.Do(ctx, http.MethodPatch, c.endpoint+"/"+id+"/recover", nil, nil, &recovered); err != nil {
		return nil, err
	}
	return &recovered, nil
}

// Exists probes for the record with a HEAD request; not found yields false
// rather than an error.
func (c *Client[T]) Exists(ctx context.Context, id string) (bool, error) {
	err := c.http.Do(ctx, http.MethodHead, c.endpoint+"/"+id, nil, nil, nil)
	if err != nil {
		if apierror.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Query has the same contract as GetMany but carries the filters in the
// request body, for when filter payloads may be large.
func (c *Client[T]) Query(ctx context.Context, params *Params, filters []Filter, includeDeleted bool) (Page[T], error) {
	var page Page[T]
	query := buildQuery(params, filters, includeDeleted)
	body := filters
	if body == nil {
		body = []Filter{}
	}
	err := c.http.Do(ctx, http.MethodPost, c.endpoint+"/query", query, body, &page)
	return page, err
}

// Count returns the total matching count without fetching rows.
func (c *Client[T]) Count(ctx context.Context, params *Params, filters []Filter, includeDeleted bool) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	query := buildQuery(params, filters, includeDeleted)
	body := filters
	if body == nil {
		body = []Filter{}
	}
	if err := c.http.Do(ctx, http.MethodPost, c.endpoint+"/count", query, body, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Search injects text into the search parameter before listing.
func (c *Client[T]) Search(ctx context.Context, text string, params *Params, filters []Filter) (Page[T], error) {
	merged := Params{}
	if params != nil {
		merged = *params
	}
	merged.Search = text

	var page Page[T]
	query := buildQuery(&merged, filters, false)
	err := c.http.Do(ctx, http.MethodGet, c.endpoint+"/search", query, nil, &page)
	return page, err
}

// GetByIDs batch-fetches records by identifier.
func (c *Client[T]) GetByIDs(ctx context.Context, ids []string) ([]T, error) {
	var items []T
	body := map[string][]string{"ids": ids}
	if err := c.http.Do(ctx, http.MethodPost, c.endpoint+"/bulk", nil, body, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// BulkCreate creates many records in one request. When the backend exposes
// no bulk endpoint (404 or 405), it falls back to sequential single-item
// creates; callers never see the difference except in latency.
func (c *Client[T]) BulkCreate(ctx context.Context, items []*T) ([]T, error) {
	data := make([]*T, len(items))
	copy(data, items)

	var created []T
	body := map[string]any{"items": data}
	err := c.http.Do(ctx, http.MethodPost, c.endpoint+"/bulk-create", nil, body, &created)
	if err == nil {
		return created, nil
	}
	if !bulkUnsupported(err) {
		return nil, err
	}

	created = make([]T, 0, len(items))
	for _, item := range items {
		one, err := c.Create(ctx, item)
		if err != nil {
			return nil, err
		}
		created = append(created, *one)
	}
	return created, nil
}

// BulkUpdate patches many records in one request, with the same sequential
// fallback as BulkCreate.
func (c *Client[T]) BulkUpdate(ctx context.Context, items []UpdateItem) ([]T, error) {
	var updated []T
	body := map[string]any{"items": items}
	err := c.http.Do(ctx, http.MethodPatch, c.endpoint+"/bulk-update", nil, body, &updated)
	if err == nil {
		return updated, nil
	}
	if !bulkUnsupported(err) {
		return nil, err
	}

	updated = make([]T, 0, len(items))
	for _, item := range items {
		one, err := c.Update(ctx, item.ID, item.Data)
		if err != nil {
			return nil, err
		}
		updated = append(updated, *one)
	}
	return updated, nil
}

// BulkDelete removes many records in one request, with the same sequential
// fallback as BulkCreate.
func (c *Client[T]) BulkDelete(ctx context.Context, ids []string, hardDelete bool) error {
	body := map[string]any{"ids": ids, "hard_delete": hardDelete}
	err := c.http.Do(ctx, http.MethodDelete, c.endpoint+"/bulk-delete", nil, body, nil)
	if err == nil {
		return nil
	}
	if !bulkUnsupported(err) {
		return err
	}

	for _, id := range ids {
		if err := c.Delete(ctx, id, hardDelete); err != nil {
			return err
		}
	}
	return nil
}

// Validate is a lightweight reachability probe; it reports false rather
// than failing.
func (c *Client[T]) Validate(ctx context.Context) bool {
	return c.http.Do(ctx, http.MethodHead, c.endpoint, nil, nil, nil) == nil
}

// GetJSON issues a GET against a sub-path of this collection. Entity types
// with extra server endpoints build their extension actions on it.
func (c *Client[T]) GetJSON(ctx context.Context, subpath string, out any) error {
	return c.http.Do(ctx, http.MethodGet, c.endpoint+subpath, nil, nil, out)
}

// PostJSON issues a POST against a sub-path of this collection.
func (c *Client[T]) PostJSON(ctx context.Context, subpath string, body, out any) error {
	return c.http.Do(ctx, http.MethodPost, c.endpoint+subpath, nil, body, out)
}

// PatchJSON issues a PATCH against a sub-path of this collection.
func (c *Client[T]) PatchJSON(ctx context.Context, subpath string, body, out any) error {
	return c.http.Do(ctx, http.MethodPatch, c.endpoint+subpath, nil, body, out)
}

// bulkUnsupported reports whether err signals absence of the bulk endpoint,
// which triggers the sequential fallback instead of surfacing the error.
func bulkUnsupported(err error) bool {
	return apierror.IsNotFound(err) || apierror.IsMethodNotAllowed(err)
}

// buildQuery serializes params, filters and the include_deleted flag into
// request parameters. Filters travel as a JSON-encoded array.
func buildQuery(params *Params, filters []Filter, includeDeleted bool) url.Values {
	query := url.Values{}
	if params != nil {
		if params.Page != 0 {
			query.Set("page", strconv.Itoa(params.Page))
		}
		if params.PageSize != 0 {
			query.Set("page_size", strconv.Itoa(params.PageSize))
		}
		if params.SortBy != "" {
			query.Set("sort_by", params.SortBy)
		}
		if params.SortDir != "" {
			query.Set("sort_dir", string(params.SortDir))
		}
		if params.Search != "" {
			query.Set("search", params.Search)
		}
	}
	if len(filters) > 0 {
		encoded, err := json.Marshal(filters)
		if err == nil {
			query.Set("filters", string(encoded))
		}
	}
	if includeDeleted {
		query.Set("include_deleted", "true")
	}
	return query
}
