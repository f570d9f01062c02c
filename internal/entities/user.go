// Package entities defines the typed records for every backend collection
// together with their clients, stores and default query parameters. Each
// entity embeds resource.Base for the shared lifecycle fields.
package entities

import (
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/core/store"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const UserEndpoint = "/users"

type User struct {
	resource.Base
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Sex         string `json:"sex,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	IDType      string `json:"id_type,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	RoleID      string `json:"role_id,omitempty"`
	// Password is set on creation only; the backend never returns it.
	Password string `json:"password,omitempty"`
}

// UserDefaults lists users newest first.
var UserDefaults = resource.Params{
	Page:     1,
	PageSize: 10,
	SortBy:   "created_at",
	SortDir:  resource.SortDesc,
}

// UserSchema constrains the fields the admin forms collect.
func UserSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"email":      map[string]any{"type": "string", "format": "email"},
			"first_name": map[string]any{"type": "string", "minLength": 2, "maxLength": 50},
			"last_name":  map[string]any{"type": "string", "minLength": 2, "maxLength": 50},
			"phone":      map[string]any{"type": "string", "pattern": `^\+?[0-9\s\-()]+$`},
			"password":   map[string]any{"type": "string", "minLength": 8},
		},
		"required": []any{"email", "first_name", "last_name", "phone"},
	}
}

func NewUserClient(http *transport.Client) *resource.Client[User] {
	return resource.NewClient[User](http, UserEndpoint)
}

func NewUserStore(log *zap.Logger) *store.Store[User] {
	s := store.New[User]("user", UserDefaults, log)
	s.SetSchema(UserSchema())
	return s
}
