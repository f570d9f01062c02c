// Package registry assembles the client: one shared transport, the session
// store wired into it for authorization and 401 handling, and every entity
// store bound to its backend collection.
package registry

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/config"
	"github.com/kmulambia/qgen-client/internal/core/session"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/entities"
	"github.com/kmulambia/qgen-client/internal/transport"
)

// Registry holds the fully wired store set. Stores are configured at
// construction; the two-phase lifecycle only matters to code building
// stores by hand.
type Registry struct {
	HTTP    *transport.Client
	Session *session.Store

	Users           *store.Store[entities.User]
	Roles           *store.Store[entities.Role]
	Permissions     *entities.PermissionStore
	RolePermissions *store.Store[entities.RolePermission]
	Workspaces      *store.Store[entities.Workspace]
	WorkspaceTypes  *store.Store[entities.WorkspaceType]
	UserWorkspaces  *store.Store[entities.UserWorkspace]
	Clients         *store.Store[entities.Client]
	Quotations      *entities.QuotationStore
	Layouts         *store.Store[entities.Layout]
	Audits          *entities.AuditStore
	Files           *entities.FileStore
}

func New(cfg *config.Config, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	http, err := transport.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(log)
	sess.SetService(session.NewService(http))
	if cfg.Session.File != "" {
		sess.SetPersister(session.NewFilePersister(cfg.Session.File))
	}

	// Every request carries the session's token; a 401 clears the session
	// so the next guard check lands on the login route.
	http.SetTokenSource(sess)
	http.SetUnauthorizedHandler(sess.ClearSession)

	r := &Registry{
		HTTP:    http,
		Session: sess,

		Users:           entities.NewUserStore(log),
		Roles:           entities.NewRoleStore(log),
		Permissions:     entities.NewPermissionStore(log),
		RolePermissions: entities.NewRolePermissionStore(log),
		Workspaces:      entities.NewWorkspaceStore(log),
		WorkspaceTypes:  entities.NewWorkspaceTypeStore(log),
		UserWorkspaces:  entities.NewUserWorkspaceStore(log),
		Clients:         entities.NewClientStore(log),
		Quotations:      entities.NewQuotationStore(log),
		Layouts:         entities.NewLayoutStore(log),
		Audits:          entities.NewAuditStore(log),
		Files:           entities.NewFileStore(log),
	}

	r.Users.SetService(entities.NewUserClient(http))
	r.Roles.SetService(entities.NewRoleClient(http))
	r.Permissions.SetService(entities.NewPermissionClient(http))
	r.RolePermissions.SetService(entities.NewRolePermissionClient(http))
	r.Workspaces.SetService(entities.NewWorkspaceClient(http))
	r.WorkspaceTypes.SetService(entities.NewWorkspaceTypeClient(http))
	r.UserWorkspaces.SetService(entities.NewUserWorkspaceClient(http))
	r.Clients.SetService(entities.NewClientClient(http))
	r.Quotations.SetService(entities.NewQuotationClient(http))
	r.Layouts.SetService(entities.NewLayoutClient(http))
	r.Audits.SetService(entities.NewAuditClient(http))
	r.Files.SetService(entities.NewFileClient(http))

	return r, nil
}

// Restore loads any persisted session, reporting whether a live session
// came back.
func (r *Registry) Restore() bool {
	return r.Session.Restore()
}
