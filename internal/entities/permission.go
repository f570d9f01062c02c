package entities

import (
	"context"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const PermissionEndpoint = "/permissions"

type Permission struct {
	resource.Base
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
	Code        string `json:"code"`
}

var PermissionDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "name",
	SortDir:  resource.SortAsc,
}

func NewPermissionClient(http *transport.Client) *resource.Client[Permission] {
	return resource.NewClient[Permission](http, PermissionEndpoint)
}

// PermissionStore extends the generic store with the group listing used to
// populate permission pickers.
type PermissionStore struct {
	*store.Store[Permission]
}

func NewPermissionStore(log *zap.Logger) *PermissionStore {
	return &PermissionStore{Store: store.New[Permission]("permission", PermissionDefaults, log)}
}

// Groups returns the distinct permission group names.
func (s *PermissionStore) Groups(ctx context.Context) ([]string, error) {
	var groups []string
	err := s.Exec(func(client *resource.Client[Permission]) error {
		return client.GetJSON(ctx, "/groups", &groups)
	})
	return groups, err
}
