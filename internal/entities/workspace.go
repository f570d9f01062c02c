package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const WorkspaceEndpoint = "/workspaces"

type Workspace struct {
	resource.Base
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	WorkspaceTypeID string         `json:"workspace_type_id,omitempty"`
	OwnerID         string         `json:"owner_id,omitempty"`
	ReferenceName   string         `json:"reference_name,omitempty"`
	ReferenceType   string         `json:"reference_type,omitempty"`
	ReferenceNumber string         `json:"reference_number,omitempty"`
	WorkspaceType   *WorkspaceType `json:"workspace_type,omitempty"`
}

var WorkspaceDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "name",
	SortDir:  resource.SortAsc,
}

func NewWorkspaceClient(http *transport.Client) *resource.Client[Workspace] {
	return resource.NewClient[Workspace](http, WorkspaceEndpoint)
}

func NewWorkspaceStore(log *zap.Logger) *store.Store[Workspace] {
	return store.New[Workspace]("workspace", WorkspaceDefaults, log)
}
