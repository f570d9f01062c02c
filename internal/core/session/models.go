package session

// User is the authenticated identity descriptor carried by a session.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Token is the bearer token descriptor returned by a successful login.
// ExpiresAt is an RFC 3339 timestamp.
type Token struct {
	JWT       string `json:"jwt_token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at"`
}

type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type UserWorkspace struct {
	ID        string    `json:"id"`
	Workspace Workspace `json:"workspace"`
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsSystem    bool   `json:"is_system"`
}

// Permission describes one grantable capability. Code is the dotted string
// checked by the permission model; it may be wildcard-suffixed.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
	Code        string `json:"code"`
}

// Session is the full authenticated state. It is never partially valid:
// either fully present after a login or nil after a logout.
type Session struct {
	User             *User           `json:"user,omitempty"`
	Token            *Token          `json:"token,omitempty"`
	CurrentWorkspace *UserWorkspace  `json:"current_workspace,omitempty"`
	Role             *Role           `json:"role,omitempty"`
	Permissions      []Permission    `json:"permissions,omitempty"`
	UserWorkspaces   []UserWorkspace `json:"user_workspaces,omitempty"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SelfRegister struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Sex         string `json:"sex,omitempty"`
	IDNumber    string `json:"id_number,omitempty"`
	IDType      string `json:"id_type,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Password    string `json:"password"`
	RoleID      string `json:"role_id,omitempty"`
}

const (
	OTPPasswordReset     = "password_reset"
	OTPEmailVerification = "email_verification"
)

type OTPRequest struct {
	Email   string `json:"email"`
	OTPType string `json:"otp_type"`
}

type PasswordReset struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type PasswordChange struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}
