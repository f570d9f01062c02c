package entities

import (
	"context"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const AuditEndpoint = "/audits"

// Audit is one immutable log entry of a user action or system event.
type Audit struct {
	resource.Base
	UserID         string         `json:"user_id,omitempty"`
	Action         string         `json:"action"`
	UserMetadata   map[string]any `json:"user_metadata,omitempty"`
	EntityMetadata map[string]any `json:"entity_metadata,omitempty"`
	User           *User          `json:"user,omitempty"`
}

// SecuritySummary aggregates a user's security-relevant audit entries in a
// single response.
type SecuritySummary struct {
	LastLogin         *Audit `json:"last_login"`
	LastPasswordReset *Audit `json:"last_password_reset"`
	FailedLoginCount  int    `json:"failed_login_count"`
}

var AuditDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "created_at",
	SortDir:  resource.SortDesc,
}

func NewAuditClient(http *transport.Client) *resource.Client[Audit] {
	return resource.NewClient[Audit](http, AuditEndpoint)
}

// AuditStore extends the generic store with the per-user security summary.
type AuditStore struct {
	*store.Store[Audit]
}

func NewAuditStore(log *zap.Logger) *AuditStore {
	return &AuditStore{Store: store.New[Audit]("audit", AuditDefaults, log)}
}

func (s *AuditStore) UserSecuritySummary(ctx context.Context, userID string) (*SecuritySummary, error) {
	var summary SecuritySummary
	err := s.Exec(func(client *resource.Client[Audit]) error {
		return client.GetJSON(ctx, "/users/"+userID+"/security-summary", &summary)
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
