// Package store provides the stateful per-entity-type wrapper around one
// resource client. UI code binds to a store's params, loading flag and last
// error; every operation records failures into state and still returns them
// to the caller.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apierror"
	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/validation"
)

// Store is the generic state container produced once per entity type.
// The client dependency is assigned after construction; operations invoked
// before that fail fast with a configuration error.
type Store[T any] struct {
	name     string
	defaults resource.Params
	log      *zap.Logger

	mu        sync.Mutex
	client    *resource.Client[T]
	validator *validation.Validator
	schema    map[string]any
	params    resource.Params
	filters   []resource.Filter
	loading   bool
	lastErr   string
}

// New builds a store with its default query parameters. name is the human
// label used in configuration errors and logs.
func New[T any](name string, defaults resource.Params, log *zap.Logger) *Store[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store[T]{
		name:     name,
		defaults: defaults,
		params:   defaults,
		log:      log,
	}
}

// SetService assigns the client instance, completing the two-phase
// construct/configure lifecycle.
func (s *Store[T]) SetService(client *resource.Client[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = client
	s.lastErr = ""
}

// SetSchema enables client-side payload validation: creates are checked
// against the full schema, patches against the schema with the required
// constraint dropped.
func (s *Store[T]) SetSchema(schema map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema = schema
	s.validator = validation.NewValidator()
}

func (s *Store[T]) Configured() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

func (s *Store[T]) Name() string {
	return s.name
}

// Params returns a copy of the current query parameters.
func (s *Store[T]) Params() resource.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Filters returns a copy of the current filter set, nil when unset.
func (s *Store[T]) Filters() []resource.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filters == nil {
		return nil
	}
	out := make([]resource.Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// Loading reports whether any operation is in flight. It is a single shared
// flag per store, a UI hint only, not a correctness signal.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last recorded error message, empty when none.
func (s *Store[T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store[T]) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ""
}

// UpdateParams merges the non-zero fields of override into the stored
// parameters without triggering a fetch.
func (s *Store[T]) UpdateParams(override resource.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = s.params.Merge(&override)
	s.lastErr = ""
}

// ResetParams restores the defaults the store was created with.
func (s *Store[T]) ResetParams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = s.defaults
	s.lastErr = ""
}

func (s *Store[T]) SetFilters(filters []resource.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = make([]resource.Filter, len(filters))
	copy(s.filters, filters)
	s.lastErr = ""
}

func (s *Store[T]) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = nil
	s.lastErr = ""
}

func (s *Store[T]) SetPagination(page, pageSize int) {
	s.UpdateParams(resource.Params{Page: page, PageSize: pageSize})
}

func (s *Store[T]) SetSorting(sortBy string, dir resource.SortDir) {
	s.UpdateParams(resource.Params{SortBy: sortBy, SortDir: dir})
}

// SetSearch replaces the search string, empty included, and resets to the
// first page. Re-fetch timing stays with the caller.
func (s *Store[T]) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params.Search = query
	s.params.Page = 1
	s.lastErr = ""
}

// Exec runs op with the store's loading/error bookkeeping: the configured
// check up front, the loading flag for the duration, and on failure the
// error message captured into state before the error is returned. Extension
// actions on entity-specific stores reuse it for non-CRUD endpoints.
func (s *Store[T]) Exec(op func(client *resource.Client[T]) error) error {
	s.mu.Lock()
	if s.client == nil {
		err := apierror.Configuration(s.name + " service not initialized, call SetService first")
		s.lastErr = err.Message
		s.mu.Unlock()
		return err
	}
	client := s.client
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	err := op(client)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("store_operation_failed", zap.String("store", s.name), zap.Error(err))
	}
	return err
}

// mergedParams resolves the effective params and filters for one call.
func (s *Store[T]) merged(override *resource.Params, filters []resource.Filter) (resource.Params, []resource.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	params := s.params.Merge(override)
	if filters == nil {
		filters = s.filters
	}
	return params, filters
}

func (s *Store[T]) GetMany(ctx context.Context, override *resource.Params, filters []resource.Filter, includeDeleted bool) (resource.Page[T], error) {
	params, effective := s.merged(override, filters)
	var page resource.Page[T]
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		page, opErr = client.GetMany(ctx, &params, effective, includeDeleted)
		return opErr
	})
	return page, err
}

func (s *Store[T]) GetOne(ctx context.Context, id string) (*T, error) {
	var entity *T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		entity, opErr = client.GetOne(ctx, id)
		return opErr
	})
	return entity, err
}

// checkSchema validates data against the store's schema when one is set.
// partial drops the required constraint for merge patches.
func (s *Store[T]) checkSchema(data any, partial bool) error {
	s.mu.Lock()
	validator, schema := s.validator, s.schema
	s.mu.Unlock()
	if validator == nil {
		return nil
	}
	var err error
	if partial {
		err = validator.ValidatePartial(data, schema)
	} else {
		err = validator.Validate(data, schema)
	}
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
	}
	return err
}

func (s *Store[T]) Create(ctx context.Context, data *T) (*T, error) {
	if err := s.checkSchema(data, false); err != nil {
		return nil, err
	}
	var created *T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		created, opErr = client.Create(ctx, data)
		return opErr
	})
	return created, err
}

func (s *Store[T]) Update(ctx context.Context, id string, patch resource.Patch) (*T, error) {
	if err := s.checkSchema(patch, true); err != nil {
		return nil, err
	}
	var updated *T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		updated, opErr = client.Update(ctx, id, patch)
		return opErr
	})
	return updated, err
}

func (s *Store[T]) Delete(ctx context.Context, id string, hardDelete bool) error {
	return s.Exec(func(client *resource.Client[T]) error {
		return client.Delete(ctx, id, hardDelete)
	})
}

func (s *Store[T]) Recover(ctx context.Context, id string) (*T, error) {
	var recovered *T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		recovered, opErr = client.Recover(ctx, id)
		return opErr
	})
	return recovered, err
}

func (s *Store[T]) Exists(ctx context.Context, id string) (bool, error) {
	var found bool
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		found, opErr = client.Exists(ctx, id)
		return opErr
	})
	return found, err
}

func (s *Store[T]) Query(ctx context.Context, override *resource.Params, filters []resource.Filter, includeDeleted bool) (resource.Page[T], error) {
	params, effective := s.merged(override, filters)
	var page resource.Page[T]
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		page, opErr = client.Query(ctx, &params, effective, includeDeleted)
		return opErr
	})
	return page, err
}

func (s *Store[T]) Count(ctx context.Context, override *resource.Params, filters []resource.Filter, includeDeleted bool) (int, error) {
	params, effective := s.merged(override, filters)
	var count int
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		count, opErr = client.Count(ctx, &params, effective, includeDeleted)
		return opErr
	})
	return count, err
}

func (s *Store[T]) Search(ctx context.Context, text string, override *resource.Params, filters []resource.Filter) (resource.Page[T], error) {
	params, effective := s.merged(override, filters)
	var page resource.Page[T]
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		page, opErr = client.Search(ctx, text, &params, effective)
		return opErr
	})
	return page, err
}

func (s *Store[T]) GetByIDs(ctx context.Context, ids []string) ([]T, error) {
	var items []T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		items, opErr = client.GetByIDs(ctx, ids)
		return opErr
	})
	return items, err
}

func (s *Store[T]) BulkCreate(ctx context.Context, items []*T) ([]T, error) {
	var created []T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		created, opErr = client.BulkCreate(ctx, items)
		return opErr
	})
	return created, err
}

func (s *Store[T]) BulkUpdate(ctx context.Context, items []resource.UpdateItem) ([]T, error) {
	var updated []T
	err := s.Exec(func(client *resource.Client[T]) error {
		var opErr error
		updated, opErr = client.BulkUpdate(ctx, items)
		return opErr
	})
	return updated, err
}

func (s *Store[T]) BulkDelete(ctx context.Context, ids []string, hardDelete bool) error {
	return s.Exec(func(client *resource.Client[T]) error {
		return client.BulkDelete(ctx, ids, hardDelete)
	})
}

// Validate probes the collection endpoint; false covers both transport
// failure and an unconfigured store.
func (s *Store[T]) Validate(ctx context.Context) bool {
	ok := false
	err := s.Exec(func(client *resource.Client[T]) error {
		ok = client.Validate(ctx)
		return nil
	})
	return err == nil && ok
}
