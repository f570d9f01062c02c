package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const WorkspaceTypeEndpoint = "/workspace-types"

type WorkspaceType struct {
	resource.Base
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	IsSystemDefined bool   `json:"is_system_defined"`
}

var WorkspaceTypeDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "name",
	SortDir:  resource.SortAsc,
}

func NewWorkspaceTypeClient(http *transport.Client) *resource.Client[WorkspaceType] {
	return resource.NewClient[WorkspaceType](http, WorkspaceTypeEndpoint)
}

func NewWorkspaceTypeStore(log *zap.Logger) *store.Store[WorkspaceType] {
	return store.New[WorkspaceType]("workspace-type", WorkspaceTypeDefaults, log)
}
