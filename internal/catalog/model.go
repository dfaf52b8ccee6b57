package catalog

import (
	"net/url"
	"strconv"

	"buyit-client/internal/state"
)

type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// ListParams are the catalog listing controls; zero values are left
// out of the query string.
type ListParams struct {
	Page     int
	Limit    int
	Sort     string
	Search   string
	Category string
}

func (p ListParams) query() string {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	return q.Encode()
}

// Snapshot is a copy of the catalog listing state.
type Snapshot struct {
	Items  []Product
	Page   int
	Pages  int
	Total  int
	Params ListParams
	Status state.Status
	Error  string
}
