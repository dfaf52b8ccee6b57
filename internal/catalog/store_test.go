package catalog

import (
	"context"
	"net/http"
	"testing"
	"time"

	"buyit-client/internal/apitest"
	"buyit-client/internal/gateway"
	"buyit-client/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*apitest.Server, *Store) {
	srv := apitest.NewServer(t)
	gw := gateway.New(srv.URL(), 5*time.Second)
	return srv, NewStore(gw)
}

func seedCatalog(srv *apitest.Server) {
	srv.SeedProduct(apitest.Product{Name: "Keyboard", Price: 30, Stock: 5, Category: "peripherals"})
	srv.SeedProduct(apitest.Product{Name: "Mouse", Price: 10, Stock: 9, Category: "peripherals"})
	srv.SeedProduct(apitest.Product{Name: "Desk", Price: 120, Stock: 2, Category: "furniture"})
}

func TestListProducts(t *testing.T) {
	t.Run("Replaces listing state", func(t *testing.T) {
		srv, store := newFixture(t)
		seedCatalog(srv)

		require.NoError(t, store.ListProducts(context.Background(), ListParams{}))

		snap := store.Snapshot()
		assert.Len(t, snap.Items, 3)
		assert.Equal(t, 1, snap.Page)
		assert.Equal(t, 1, snap.Pages)
		assert.Equal(t, 3, snap.Total)
		assert.Equal(t, state.Succeeded, snap.Status)
	})

	t.Run("Filter by category", func(t *testing.T) {
		srv, store := newFixture(t)
		seedCatalog(srv)

		require.NoError(t, store.ListProducts(context.Background(), ListParams{Category: "peripherals"}))

		snap := store.Snapshot()
		assert.Len(t, snap.Items, 2)
		assert.Equal(t, "peripherals", snap.Params.Category)
	})

	t.Run("Search and sort", func(t *testing.T) {
		srv, store := newFixture(t)
		seedCatalog(srv)

		require.NoError(t, store.ListProducts(context.Background(), ListParams{Sort: "price_asc"}))
		snap := store.Snapshot()
		require.Len(t, snap.Items, 3)
		assert.Equal(t, "Mouse", snap.Items[0].Name)

		require.NoError(t, store.ListProducts(context.Background(), ListParams{Search: "desk"}))
		snap = store.Snapshot()
		require.Len(t, snap.Items, 1)
		assert.Equal(t, "Desk", snap.Items[0].Name)
	})

	t.Run("Pagination", func(t *testing.T) {
		srv, store := newFixture(t)
		seedCatalog(srv)

		require.NoError(t, store.ListProducts(context.Background(), ListParams{Page: 2, Limit: 2}))

		snap := store.Snapshot()
		assert.Len(t, snap.Items, 1)
		assert.Equal(t, 2, snap.Page)
		assert.Equal(t, 2, snap.Pages)
		assert.Equal(t, 3, snap.Total)
	})

	t.Run("Failure keeps previous listing", func(t *testing.T) {
		srv, store := newFixture(t)
		seedCatalog(srv)
		require.NoError(t, store.ListProducts(context.Background(), ListParams{}))

		srv.FailNext(http.StatusInternalServerError, "catalog unavailable")
		err := store.ListProducts(context.Background(), ListParams{})

		require.Error(t, err)
		snap := store.Snapshot()
		assert.Equal(t, state.Failed, snap.Status)
		assert.Equal(t, "catalog unavailable", snap.Error)
		assert.Len(t, snap.Items, 3)
	})
}

func TestGetProduct(t *testing.T) {
	srv, store := newFixture(t)
	p := srv.SeedProduct(apitest.Product{Name: "Keyboard", Price: 30, Stock: 5, Category: "peripherals"})

	got, err := store.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard", got.Name)
	assert.Equal(t, 5, got.Stock)

	_, err = store.GetProduct(context.Background(), "missing")
	var httpErr *gateway.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestListCategories(t *testing.T) {
	srv, store := newFixture(t)
	seedCatalog(srv)

	cats, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"peripherals", "furniture"}, cats)
}

func TestListParamsQuery(t *testing.T) {
	assert.Equal(t, "", ListParams{}.query())
	assert.Equal(t, "category=chairs&page=2", ListParams{Page: 2, Category: "chairs"}.query())
}
