package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const RoleEndpoint = "/roles"

type Role struct {
	resource.Base
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	IsSystemDefined bool   `json:"is_system_defined"`
}

var RoleDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "name",
	SortDir:  resource.SortAsc,
}

func NewRoleClient(http *transport.Client) *resource.Client[Role] {
	return resource.NewClient[Role](http, RoleEndpoint)
}

func NewRoleStore(log *zap.Logger) *store.Store[Role] {
	return store.New[Role]("role", RoleDefaults, log)
}
