package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const UserWorkspaceEndpoint = "/user-workspaces"

// UserWorkspace is a user's membership in a workspace with the role held
// there. Role and workspace may be expanded on reads.
type UserWorkspace struct {
	resource.Base
	UserID      string     `json:"user_id"`
	WorkspaceID string     `json:"workspace_id"`
	RoleID      string     `json:"role_id"`
	IsDefault   bool       `json:"is_default,omitempty"`
	Role        *Role      `json:"role,omitempty"`
	Workspace   *Workspace `json:"workspace,omitempty"`
}

var UserWorkspaceDefaults = resource.Params{
	Page:     1,
	PageSize: 50,
	SortBy:   "created_at",
	SortDir:  resource.SortDesc,
}

func NewUserWorkspaceClient(http *transport.Client) *resource.Client[UserWorkspace] {
	return resource.NewClient[UserWorkspace](http, UserWorkspaceEndpoint)
}

func NewUserWorkspaceStore(log *zap.Logger) *store.Store[UserWorkspace] {
	return store.New[UserWorkspace]("user-workspace", UserWorkspaceDefaults, log)
}
