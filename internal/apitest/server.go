// Package apitest is an in-memory rendition of the backend API, used by the
// integration tests. It serves the generic collection surface plus the auth
// endpoints against seeded data.
package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	engine *gin.Engine

	mu          sync.Mutex
	collections map[string]*collection
	users       map[string]*seededUser
	bulkOff     map[string]bool

	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		engine:      gin.New(),
		collections: make(map[string]*collection),
		users:       make(map[string]*seededUser),
		bulkOff:     make(map[string]bool),
		jwtSecret:   []byte("apitest-secret"),
		tokenTTL:    time.Hour,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetTokenTTL adjusts the lifetime of issued tokens, useful for expiry
// tests.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

// Seed inserts records into a collection, creating it on first use, and
// returns the stored copies with generated ids and timestamps.
func (s *Server) Seed(name string, records ...map[string]any) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	col := s.collection(name)
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, col.insert(rec))
	}
	return out
}

// DisableBulk makes the collection's bulk endpoints answer 404, simulating
// a backend without bulk support so the client's fallback path runs.
func (s *Server) DisableBulk(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkOff[strings.Trim(name, "/")] = true
}

func (s *Server) collection(name string) *collection {
	name = strings.Trim(name, "/")
	col, ok := s.collections[name]
	if !ok {
		col = &collection{}
		s.collections[name] = col
	}
	return col
}

// Collections served by the generic CRUD surface.
var collectionNames = []string{
	"users", "roles", "permissions", "role-permissions",
	"workspaces", "workspace-types", "user-workspaces",
	"clients", "quotations", "layouts", "audits", "files",
}

const ctxCollection = "collection_name"

func (s *Server) routes() {
	auth := s.engine.Group("/auth")
	{
		auth.POST("/login", s.handleLogin)
		auth.POST("/self-register", s.handleSelfRegister)
		auth.POST("/request-otp", s.handleRequestOTP)
		auth.POST("/reset-password", s.handleResetPassword)
		auth.POST("/change-password", s.authenticate(), s.handleChangePassword)
	}

	api := s.engine.Group("/", s.authenticate())

	api.GET("/permissions/groups", s.handlePermissionGroups)
	api.GET("/audits/users/:id/security-summary", s.handleSecuritySummary)
	api.POST("/quotations/:id/send", s.handleQuotationSend)
	api.POST("/quotations/:id/approve", s.handleQuotationApprove)
	api.PATCH("/files/:id/metadata", s.handleFileMetadata)

	for _, name := range collectionNames {
		s.mount(api, name)
	}
}

// mount registers the full collection surface under /name. Collections are
// mounted one by one rather than through a wildcard segment because the
// extension routes above share their prefixes.
func (s *Server) mount(api *gin.RouterGroup, name string) {
	grp := api.Group("/"+name, func(c *gin.Context) {
		c.Set(ctxCollection, name)
	})
	grp.GET("", s.handleList)
	grp.HEAD("", s.handleProbe)
	grp.POST("", s.handleCreate)
	grp.POST("/query", s.handleQuery)
	grp.POST("/count", s.handleCount)
	grp.GET("/search", s.handleSearch)
	grp.POST("/bulk", s.handleBulkGet)
	grp.POST("/bulk-create", s.handleBulkCreate)
	grp.PATCH("/bulk-update", s.handleBulkUpdate)
	grp.DELETE("/bulk-delete", s.handleBulkDelete)
	grp.GET("/:id", s.handleGet)
	grp.HEAD("/:id", s.handleExists)
	grp.PATCH("/:id", s.handleUpdate)
	grp.DELETE("/:id", s.handleDelete)
	grp.PATCH("/:id/recover", s.handleRecover)
}

func collectionOf(c *gin.Context) string {
	return c.GetString(ctxCollection)
}

func parseListQuery(c *gin.Context) (listQuery, error) {
	q := listQuery{
		search:  c.Query("search"),
		sortBy:  c.Query("sort_by"),
		sortDir: c.Query("sort_dir"),
	}
	q.page, _ = strconv.Atoi(c.Query("page"))
	q.pageSize, _ = strconv.Atoi(c.Query("page_size"))
	q.includeDeleted = c.Query("include_deleted") == "true"

	if raw := c.Query("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.filters); err != nil {
			return q, err
		}
	}
	return q, nil
}

func (s *Server) handleList(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid filters"})
		return
	}

	s.mu.Lock()
	items, total := s.collection(collectionOf(c)).list(q)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

// handleQuery is the POST twin of handleList for callers whose filter
// payloads outgrow the query string.
func (s *Server) handleQuery(c *gin.Context) {
	s.handleList(c)
}

func (s *Server) handleCount(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid filters"})
		return
	}
	q.page = 0
	q.pageSize = 0

	s.mu.Lock()
	_, total := s.collection(collectionOf(c)).list(q)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"count": total})
}

func (s *Server) handleSearch(c *gin.Context) {
	s.handleList(c)
}

func (s *Server) handleProbe(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) handleGet(c *gin.Context) {
	s.mu.Lock()
	rec, ok := s.collection(collectionOf(c)).find(c.Param("id"))
	if ok {
		rec = rec.clone()
	}
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleExists(c *gin.Context) {
	s.mu.Lock()
	_, ok := s.collection(collectionOf(c)).find(c.Param("id"))
	s.mu.Unlock()

	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) handleCreate(c *gin.Context) {
	var data record
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	rec := s.collection(collectionOf(c)).insert(data)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleUpdate(c *gin.Context) {
	var changes record
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	rec, ok := s.collection(collectionOf(c)).patch(c.Param("id"), changes)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleDelete(c *gin.Context) {
	hard := c.Query("hard_delete") == "true"

	s.mu.Lock()
	ok := s.collection(collectionOf(c)).remove(c.Param("id"), hard)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRecover(c *gin.Context) {
	s.mu.Lock()
	rec, ok := s.collection(collectionOf(c)).recover(c.Param("id"))
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) bulkDisabled(c *gin.Context) bool {
	s.mu.Lock()
	off := s.bulkOff[strings.Trim(collectionOf(c), "/")]
	s.mu.Unlock()
	if off {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
	}
	return off
}

func (s *Server) handleBulkGet(c *gin.Context) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	col := s.collection(collectionOf(c))
	items := make([]record, 0, len(body.IDs))
	for _, id := range body.IDs {
		if rec, ok := col.find(id); ok {
			items = append(items, rec.clone())
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, items)
}

func (s *Server) handleBulkCreate(c *gin.Context) {
	if s.bulkDisabled(c) {
		return
	}
	var body struct {
		Items []record `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	col := s.collection(collectionOf(c))
	items := make([]record, 0, len(body.Items))
	for _, data := range body.Items {
		items = append(items, col.insert(data))
	}
	s.mu.Unlock()

	c.JSON(http.StatusCreated, items)
}

func (s *Server) handleBulkUpdate(c *gin.Context) {
	if s.bulkDisabled(c) {
		return
	}
	var body struct {
		Items []struct {
			ID   string `json:"id"`
			Data record `json:"data"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	col := s.collection(collectionOf(c))
	items := make([]record, 0, len(body.Items))
	for _, item := range body.Items {
		if rec, ok := col.patch(item.ID, item.Data); ok {
			items = append(items, rec)
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, items)
}

func (s *Server) handleBulkDelete(c *gin.Context) {
	if s.bulkDisabled(c) {
		return
	}
	var body struct {
		IDs        []string `json:"ids"`
		HardDelete bool     `json:"hard_delete"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	col := s.collection(collectionOf(c))
	for _, id := range body.IDs {
		col.remove(id, body.HardDelete)
	}
	s.mu.Unlock()

	c.Status(http.StatusNoContent)
}

func (s *Server) handlePermissionGroups(c *gin.Context) {
	s.mu.Lock()
	col := s.collection("permissions")
	seen := make(map[string]bool)
	groups := make([]string, 0)
	for _, rec := range col.records {
		if g, ok := rec["group"].(string); ok && g != "" && !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, groups)
}

func (s *Server) handleSecuritySummary(c *gin.Context) {
	userID := c.Param("id")

	s.mu.Lock()
	col := s.collection("audits")
	var lastLogin, lastReset record
	failed := 0
	for _, rec := range col.records {
		if uid, _ := rec["user_id"].(string); uid != userID {
			continue
		}
		switch rec["action"] {
		case "login":
			lastLogin = rec.clone()
		case "password_reset":
			lastReset = rec.clone()
		case "login_failed":
			failed++
		}
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"last_login":          lastLogin,
		"last_password_reset": lastReset,
		"failed_login_count":  failed,
	})
}

func (s *Server) handleFileMetadata(c *gin.Context) {
	var changes record
	if err := c.ShouldBindJSON(&changes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid body"})
		return
	}

	s.mu.Lock()
	rec, ok := s.collection("files").patch(c.Param("id"), changes)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleQuotationSend(c *gin.Context) {
	s.quotationTransition(c, "sent", true)
}

func (s *Server) handleQuotationApprove(c *gin.Context) {
	s.quotationTransition(c, "approved", false)
}

func (s *Server) quotationTransition(c *gin.Context, status string, issueToken bool) {
	changes := record{"quotation_status": status}
	if issueToken {
		changes["sent_at"] = time.Now().UTC().Format(time.RFC3339)
		changes["access_token"] = uuid.NewString()
	}

	s.mu.Lock()
	rec, ok := s.collection("quotations").patch(c.Param("id"), changes)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
