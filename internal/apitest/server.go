// Package apitest is an in-memory stand-in for the storefront REST API
// used by the store and checkout test suites. It implements every
// endpoint the client consumes, with the same response shapes, bearer
// auth, per-user carts with server-side stock enforcement and
// same-product consolidation, and order placement that snapshots the
// cart and clears it.
package apitest

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image,omitempty"`
	Stock       int     `json:"stock"`
}

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type cartLine struct {
	ProductID string
	Quantity  int
}

type orderLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type order struct {
	ID              string            `json:"_id"`
	Items           []orderLine       `json:"items"`
	TotalAmount     float64           `json:"totalAmount"`
	Status          string            `json:"status"`
	ShippingAddress map[string]string `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

type account struct {
	user     User
	password string
}

type fault struct {
	status  int
	message string
}

// Server is the fake API. All exported methods are safe for concurrent
// use with in-flight requests.
type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	products    []*Product
	accounts    map[string]*account // keyed by email
	sessions    map[string]string   // token -> email
	carts       map[string][]cartLine
	orders      map[string][]order
	nextFault   *fault
	legacyLogin bool
}

func NewServer(t *testing.T) *Server {
	s := &Server{
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		carts:    make(map[string][]cartLine),
		orders:   make(map[string][]order),
	}

	r := chi.NewRouter()
	r.Use(s.faultInjector)
	r.Post("/api/register", s.handleRegister)
	r.Post("/api/login", s.handleLogin)
	r.Get("/api/me", s.requireAuth(s.handleMe))
	r.Get("/api/cart", s.requireAuth(s.handleGetCart))
	r.Post("/api/cart", s.requireAuth(s.handlePostCart))
	r.Delete("/api/cart/{productID}", s.requireAuth(s.handleDeleteCartLine))
	r.Get("/api/products", s.handleListProducts)
	r.Get("/api/products/{productID}", s.handleGetProduct)
	r.Get("/api/categories", s.handleListCategories)
	r.Post("/api/orders", s.requireAuth(s.handlePlaceOrder))
	r.Get("/api/orders", s.requireAuth(s.handleListOrders))

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) URL() string { return s.srv.URL }

// SeedProduct registers a product; a zero ID gets one assigned.
func (s *Server) SeedProduct(p Product) Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	s.products = append(s.products, &p)
	return p
}

// SeedAccount registers a user account and returns a live token for it.
func (s *Server) SeedAccount(name, email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = &account{
		user:     User{ID: uuid.New().String(), Name: name, Email: email, Role: "user"},
		password: password,
	}
	token := uuid.New().String()
	s.sessions[token] = email
	return token
}

// FailNext makes the next request fail with the given status before it
// reaches a handler. One-shot.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFault = &fault{status: status, message: message}
}

// UseLegacyLoginShape switches /api/login to the historical flat
// payload (user fields and token at the top level, no "user" wrapper).
func (s *Server) UseLegacyLoginShape(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacyLogin = on
}

// SetStock rewrites a product's stock, for mid-checkout stock changes.
func (s *Server) SetStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == productID {
			p.Stock = stock
		}
	}
}

// --- middleware ---

func (s *Server) faultInjector(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f := s.nextFault
		s.nextFault = nil
		s.mu.Unlock()
		if f != nil {
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next func(w http.ResponseWriter, r *http.Request, email string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, ok := s.sessions[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authorized"})
			return
		}
		next(w, r, email)
	}
}

// --- auth ---

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid registration payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email already registered"})
		return
	}
	acc := &account{
		user:     User{ID: uuid.New().String(), Name: in.Name, Email: in.Email, Role: "user"},
		password: in.Password,
	}
	s.accounts[in.Email] = acc
	token := uuid.New().String()
	s.sessions[token] = in.Email

	writeJSON(w, http.StatusCreated, map[string]any{"user": acc.user, "token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[in.Email]
	if !ok || acc.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	token := uuid.New().String()
	s.sessions[token] = in.Email

	if s.legacyLogin {
		writeJSON(w, http.StatusOK, map[string]any{
			"_id":   acc.user.ID,
			"name":  acc.user.Name,
			"email": acc.user.Email,
			"role":  acc.user.Role,
			"token": token,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user, "token": token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, email string) {
	s.mu.Lock()
	acc := s.accounts[email]
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"user": acc.user})
}

// --- cart ---

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"cart": s.renderCart(email)})
}

func (s *Server) handlePostCart(w http.ResponseWriter, r *http.Request, email string) {
	var in struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid cart payload"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(in.ProductID)
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}

	lines := s.carts[email]
	idx := -1
	for i, l := range lines {
		if l.ProductID == in.ProductID {
			idx = i
		}
	}

	// POST carries a delta; same-product lines consolidate by summing.
	next := in.Quantity
	if idx >= 0 {
		next += lines[idx].Quantity
	}
	if next > p.Stock {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Insufficient stock"})
		return
	}

	switch {
	case next <= 0 && idx >= 0:
		lines = append(lines[:idx], lines[idx+1:]...)
	case next <= 0:
		// nothing to remove
	case idx >= 0:
		lines[idx].Quantity = next
	default:
		lines = append(lines, cartLine{ProductID: in.ProductID, Quantity: next})
	}
	s.carts[email] = lines

	writeJSON(w, http.StatusOK, map[string]any{"cart": s.renderCart(email)})
}

func (s *Server) handleDeleteCartLine(w http.ResponseWriter, r *http.Request, email string) {
	productID := chi.URLParam(r, "productID")

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[email]
	for i, l := range lines {
		if l.ProductID == productID {
			s.carts[email] = append(lines[:i], lines[i+1:]...)
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cart": s.renderCart(email)})
}

func (s *Server) renderCart(email string) []map[string]any {
	out := make([]map[string]any, 0, len(s.carts[email]))
	for _, l := range s.carts[email] {
		p := s.findProduct(l.ProductID)
		if p == nil {
			continue
		}
		out = append(out, map[string]any{"product": p, "quantity": l.Quantity})
	}
	return out
}

func (s *Server) findProduct(id string) *Product {
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// --- products ---

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 12)

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if c := q.Get("category"); c != "" && p.Category != c {
			continue
		}
		if needle := strings.ToLower(q.Get("search")); needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Get("sort") {
	case "price_asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price_desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}

	total := len(filtered)
	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages == 0 {
		pages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items": filtered[start:end],
		"page":  page,
		"pages": pages,
		"total": total,
	})
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(chi.URLParam(r, "productID"))
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	cats := []string{}
	for _, p := range s.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	writeJSON(w, http.StatusOK, cats)
}

// --- orders ---

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request, email string) {
	var in struct {
		ShippingAddress map[string]string `json:"shippingAddress"`
		PaymentMethod   string            `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid order payload"})
		return
	}
	for _, field := range []string{"street", "city", "state", "zipCode"} {
		if in.ShippingAddress[field] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Shipping address is incomplete"})
			return
		}
	}
	switch in.PaymentMethod {
	case "creditCard", "paypal", "cashOnDelivery":
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Unsupported payment method"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[email]
	if len(lines) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Cart is empty"})
		return
	}

	var total float64
	items := make([]orderLine, 0, len(lines))
	for _, l := range lines {
		p := s.findProduct(l.ProductID)
		if p == nil {
			continue
		}
		if l.Quantity > p.Stock {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "Stock changed, please review your cart"})
			return
		}
		items = append(items, orderLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: l.Quantity})
		total += p.Price * float64(l.Quantity)
	}

	now := time.Now().UTC()
	o := order{
		ID:              uuid.New().String(),
		Items:           items,
		TotalAmount:     total,
		Status:          "pending",
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.orders[email] = append(s.orders[email], o)
	s.carts[email] = nil

	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := s.orders[email]
	if orders == nil {
		orders = []order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
