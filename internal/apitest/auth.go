package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser describes one login the fake backend accepts.
type SeedUser struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	RoleName    string
	SystemRole  bool
	Permissions []string
}

type seededUser struct {
	id           string
	firstName    string
	lastName     string
	email        string
	passwordHash []byte
	roleID       string
	roleName     string
	systemRole   bool
	permissions  []string
	otp          string
}

// SeedUser registers a user the login endpoint will accept and returns the
// generated user id.
func (s *Server) SeedUser(u SeedUser) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	su := &seededUser{
		id:           uuid.NewString(),
		firstName:    u.FirstName,
		lastName:     u.LastName,
		email:        u.Email,
		passwordHash: hash,
		roleID:       uuid.NewString(),
		roleName:     u.RoleName,
		systemRole:   u.SystemRole,
		permissions:  u.Permissions,
	}
	s.users[u.Email] = su
	return su.id
}

// TokenFor issues a bearer token for a seeded user directly, letting tests
// authenticate without driving the login flow.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	user := s.users[email]
	ttl := s.tokenTTL
	s.mu.Unlock()
	if user == nil {
		return ""
	}
	signed, _, err := s.issueToken(user, ttl)
	if err != nil {
		panic(err)
	}
	return signed
}

type authClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(u *seededUser, ttl time.Duration) (string, time.Time, error) {
	expires := time.Now().Add(ttl)
	claims := authClaims{
		UserID: u.id,
		Email:  u.email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
			Subject:   u.id,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	return signed, expires, err
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header"})
			return
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}
		c.Set("user_id", claims.UserID)
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	user := s.users[body.Email]
	ttl := s.tokenTTL
	s.mu.Unlock()

	if user == nil || bcrypt.CompareHashAndPassword(user.passwordHash, []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid email or password"})
		return
	}

	signed, expires, err := s.issueToken(user, ttl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token signing failed"})
		return
	}

	permissions := make([]gin.H, 0, len(user.permissions))
	for _, code := range user.permissions {
		permissions = append(permissions, gin.H{
			"id":   uuid.NewString(),
			"name": code,
			"code": code,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.id,
			"first_name": user.firstName,
			"last_name":  user.lastName,
			"email":      user.email,
		},
		"token": gin.H{
			"jwt_token":  signed,
			"token_type": "Bearer",
			"expires_at": expires.UTC().Format(time.RFC3339),
		},
		"role": gin.H{
			"id":        user.roleID,
			"name":      user.roleName,
			"is_system": user.systemRole,
		},
		"permissions": permissions,
	})
}

func (s *Server) handleSelfRegister(c *gin.Context) {
	var body struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	_, exists := s.users[body.Email]
	s.mu.Unlock()
	if exists {
		c.JSON(http.StatusConflict, gin.H{"detail": "user with this email already exists"})
		return
	}

	id := s.SeedUser(SeedUser{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Password:  body.Password,
		RoleName:  "member",
	})

	c.JSON(http.StatusCreated, gin.H{
		"id":         id,
		"first_name": body.FirstName,
		"last_name":  body.LastName,
		"email":      body.Email,
	})
}

func (s *Server) handleRequestOTP(c *gin.Context) {
	var body struct {
		Email   string `json:"email"`
		OTPType string `json:"otp_type"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	user := s.users[body.Email]
	if user != nil {
		user.otp = "000000"
	}
	s.mu.Unlock()

	// Unknown emails get the same answer so the endpoint does not leak
	// which accounts exist.
	c.JSON(http.StatusOK, gin.H{"message": "otp sent"})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var body struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[body.Email]
	if user == nil || user.otp == "" || user.otp != body.Code {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid or expired code"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.MinCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "hashing failed"})
		return
	}
	user.passwordHash = hash
	user.otp = ""
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var body struct {
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.id == body.UserID {
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.MinCost)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"detail": "hashing failed"})
				return
			}
			user.passwordHash = hash
			c.JSON(http.StatusOK, gin.H{"message": "password changed"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
}
