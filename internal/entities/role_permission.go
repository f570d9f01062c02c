package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const RolePermissionEndpoint = "/role-permissions"

// RolePermission links one role to one permission. The backend may expand
// the permission relationship on reads.
type RolePermission struct {
	resource.Base
	RoleID       string      `json:"role_id"`
	PermissionID string      `json:"permission_id"`
	Permission   *Permission `json:"permission,omitempty"`
}

var RolePermissionDefaults = resource.Params{
	Page:     1,
	PageSize: 100,
	SortBy:   "created_at",
	SortDir:  resource.SortDesc,
}

func NewRolePermissionClient(http *transport.Client) *resource.Client[RolePermission] {
	return resource.NewClient[RolePermission](http, RolePermissionEndpoint)
}

func NewRolePermissionStore(log *zap.Logger) *store.Store[RolePermission] {
	return store.New[RolePermission]("role-permission", RolePermissionDefaults, log)
}
