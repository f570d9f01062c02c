package resource_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apitest"
	"github.com/kmulambia/qgen-client/internal/core/resource"
	"github.com/kmulambia/qgen-client/internal/transport"
)

type company struct {
	resource.Base
	CompanyName string `json:"company_name"`
	City        string `json:"city,omitempty"`
}

type bearerToken string

func (b bearerToken) AuthorizationHeader() string { return "Bearer " + string(b) }

// newBackend spins up the fake API with one authenticated user and returns
// a client bound to the clients collection.
func newBackend(t *testing.T) (*apitest.Server, *resource.Client[company]) {
	t.Helper()

	backend := apitest.NewServer()
	backend.SeedUser(apitest.SeedUser{
		FirstName: "Ada",
		LastName:  "Banda",
		Email:     "ada@example.com",
		Password:  "pa55word!",
		RoleName:  "admin",
	})

	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	tr, err := transport.New(srv.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)
	tr.SetTokenSource(bearerToken(backend.TokenFor("ada@example.com")))

	return backend, resource.NewClient[company](tr, "/clients")
}

func seedCompanies(backend *apitest.Server, names ...string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		recs := backend.Seed("clients", map[string]any{"company_name": name})
		ids = append(ids, recs[0]["id"].(string))
	}
	return ids
}

func TestGetManyPagination(t *testing.T) {
	backend, client := newBackend(t)
	seedCompanies(backend, "Acme", "Borg", "Cairn", "Dela", "Enzo")

	page, err := client.GetMany(context.Background(), &resource.Params{
		Page: 2, PageSize: 2, SortBy: "company_name", SortDir: resource.SortAsc,
	}, nil, false)
	require.NoError(t, err)

	// The total reflects the whole filtered set, not the page.
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Cairn", page.Items[0].CompanyName)
	assert.Equal(t, "Dela", page.Items[1].CompanyName)
}

func TestGetManySortDesc(t *testing.T) {
	backend, client := newBackend(t)
	seedCompanies(backend, "Acme", "Borg", "Cairn")

	page, err := client.GetMany(context.Background(), &resource.Params{
		SortBy: "company_name", SortDir: resource.SortDesc,
	}, nil, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "Cairn", page.Items[0].CompanyName)
}

func TestGetManyFilters(t *testing.T) {
	backend, client := newBackend(t)
	backend.Seed("clients",
		map[string]any{"company_name": "Acme", "city": "Lilongwe"},
		map[string]any{"company_name": "Borg", "city": "Blantyre"},
		map[string]any{"company_name": "Cairn", "city": "Lilongwe"},
	)

	page, err := client.GetMany(context.Background(), nil, []resource.Filter{
		{Field: "city", Operator: resource.OpEquals, Value: "Lilongwe"},
	}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestGetOne(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme")

	got, err := client.GetOne(context.Background(), ids[0])
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, ids[0], got.ID)
}

func TestGetOneMissingReturnsNil(t *testing.T) {
	_, client := newBackend(t)

	got, err := client.GetOne(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateAssignsIdentity(t *testing.T) {
	_, client := newBackend(t)

	created, err := client.Create(context.Background(), &company{CompanyName: "Fresh"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.CreatedAt)
	assert.False(t, created.IsDeleted)
}

func TestUpdateIsMergePatch(t *testing.T) {
	backend, client := newBackend(t)
	backend.Seed("clients", map[string]any{"company_name": "Acme", "city": "Zomba"})
	seedCompanies(backend, "Other")

	page, err := client.GetMany(context.Background(), nil, []resource.Filter{
		{Field: "company_name", Operator: resource.OpEquals, Value: "Acme"},
	}, false)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	updated, err := client.Update(context.Background(), page.Items[0].ID, resource.Patch{"city": "Mzuzu"})
	require.NoError(t, err)
	assert.Equal(t, "Mzuzu", updated.City)
	// Untouched fields survive the patch.
	assert.Equal(t, "Acme", updated.CompanyName)
}

func TestDeleteRecoverLifecycle(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme")
	ctx := context.Background()

	require.NoError(t, client.Delete(ctx, ids[0], false))

	page, err := client.GetMany(ctx, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)

	page, err = client.GetMany(ctx, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	recovered, err := client.Recover(ctx, ids[0])
	require.NoError(t, err)
	assert.False(t, recovered.IsDeleted)

	page, err = client.GetMany(ctx, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestDeleteHard(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme")
	ctx := context.Background()

	require.NoError(t, client.Delete(ctx, ids[0], true))

	page, err := client.GetMany(ctx, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestExists(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme")
	ctx := context.Background()

	found, err := client.Exists(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, found)

	found, err = client.Exists(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestQueryAndCount(t *testing.T) {
	backend, client := newBackend(t)
	backend.Seed("clients",
		map[string]any{"company_name": "Acme", "city": "Lilongwe"},
		map[string]any{"company_name": "Borg", "city": "Blantyre"},
	)
	ctx := context.Background()
	filters := []resource.Filter{{Field: "city", Operator: resource.OpEquals, Value: "Blantyre"}}

	page, err := client.Query(ctx, nil, filters, false)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Borg", page.Items[0].CompanyName)

	count, err := client.Count(ctx, nil, filters, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearch(t *testing.T) {
	backend, client := newBackend(t)
	seedCompanies(backend, "Malawi Fisheries", "Lake Logistics", "Harbor Fishing Co")

	page, err := client.Search(context.Background(), "fish", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestGetByIDs(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme", "Borg", "Cairn")

	items, err := client.GetByIDs(context.Background(), []string{ids[2], ids[0]})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestBulkCreateNative(t *testing.T) {
	_, client := newBackend(t)

	created, err := client.BulkCreate(context.Background(), []*company{
		{CompanyName: "One"}, {CompanyName: "Two"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "One", created[0].CompanyName)
	assert.NotEmpty(t, created[0].ID)
}

func TestBulkCreateFallbackPreservesOrder(t *testing.T) {
	backend, client := newBackend(t)
	backend.DisableBulk("clients")

	created, err := client.BulkCreate(context.Background(), []*company{
		{CompanyName: "First"}, {CompanyName: "Second"}, {CompanyName: "Third"},
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	assert.Equal(t, "First", created[0].CompanyName)
	assert.Equal(t, "Second", created[1].CompanyName)
	assert.Equal(t, "Third", created[2].CompanyName)
}

func TestBulkUpdateFallback(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme", "Borg")
	backend.DisableBulk("clients")

	updated, err := client.BulkUpdate(context.Background(), []resource.UpdateItem{
		{ID: ids[0], Data: resource.Patch{"city": "Zomba"}},
		{ID: ids[1], Data: resource.Patch{"city": "Mzuzu"}},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, "Zomba", updated[0].City)
	assert.Equal(t, "Mzuzu", updated[1].City)
}

func TestBulkDeleteFallback(t *testing.T) {
	backend, client := newBackend(t)
	ids := seedCompanies(backend, "Acme", "Borg", "Cairn")
	backend.DisableBulk("clients")
	ctx := context.Background()

	require.NoError(t, client.BulkDelete(ctx, ids[:2], false))

	page, err := client.GetMany(ctx, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestValidate(t *testing.T) {
	_, client := newBackend(t)
	assert.True(t, client.Validate(context.Background()))
}
