// Package catalog is the read-only store over products and categories.
// Nothing here requires a session.
package catalog

import (
	"context"
	"net/http"
	"sync"

	"buyit-client/internal/gateway"
	"buyit-client/internal/state"
)

// API is the slice of the gateway the catalog store needs.
type API interface {
	Send(ctx context.Context, method, path string, body, out any) error
}

type Store struct {
	api API

	mu     sync.Mutex
	items  []Product
	page   int
	pages  int
	total  int
	params ListParams
	status state.Status
	err    string
}

func NewStore(api API) *Store {
	return &Store{api: api, page: 1, pages: 1}
}

// Snapshot returns a copy of the current listing state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Product, len(s.items))
	copy(items, s.items)
	return Snapshot{
		Items:  items,
		Page:   s.page,
		Pages:  s.pages,
		Total:  s.total,
		Params: s.params,
		Status: s.status,
		Error:  s.err,
	}
}

// ListProducts fetches one page of the catalog and replaces the
// listing state with it.
func (s *Store) ListProducts(ctx context.Context, params ListParams) error {
	s.mu.Lock()
	s.status = state.Loading
	s.err = ""
	s.mu.Unlock()

	path := "/api/products"
	if q := params.query(); q != "" {
		path += "?" + q
	}

	var payload struct {
		Items []Product `json:"items"`
		Page  int       `json:"page"`
		Pages int       `json:"pages"`
		Total int       `json:"total"`
	}
	if err := s.api.Send(ctx, http.MethodGet, path, nil, &payload); err != nil {
		s.mu.Lock()
		s.status = state.Failed
		s.err = gateway.Message(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.items = payload.Items
	s.page = max(payload.Page, 1)
	s.pages = max(payload.Pages, 1)
	s.total = payload.Total
	s.params = params
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()
	return nil
}

// GetProduct fetches one product's detail. The listing state is not
// touched.
func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.api.Send(ctx, http.MethodGet, "/api/products/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCategories fetches the category names.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := s.api.Send(ctx, http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}
