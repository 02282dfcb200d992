package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"Sweetshop/internal/auth"
	dom "Sweetshop/internal/domain"
	"Sweetshop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// In-memory repositories mirroring the Postgres semantics: unique
// violations surface as *pgconn.PgError, missing rows as pgx.ErrNoRows.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]dom.User // keyed by username
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]dom.User{}}
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	if _, ok := m.users[u.Username]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.users[u.Username] = u
	return u, nil
}

func (m *memUserRepo) seedAdmin(t *testing.T, email, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(context.Background(), dom.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         dom.RoleAdmin,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func (m *memUserRepo) remove(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, username)
}

type memSweetRepo struct {
	mu     sync.Mutex
	nextID int64
	sweets map[int64]dom.Sweet
}

func newMemSweetRepo() *memSweetRepo {
	return &memSweetRepo{sweets: map[int64]dom.Sweet{}}
}

func (m *memSweetRepo) Create(_ context.Context, s dom.Sweet) (dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.sweets[s.ID] = s
	return s, nil
}

func (m *memSweetRepo) GetByID(_ context.Context, id int64) (dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sweets[id]
	if !ok {
		return dom.Sweet{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *memSweetRepo) ordered() []dom.Sweet {
	ids := make([]int64, 0, len(m.sweets))
	for id := range m.sweets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]dom.Sweet, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.sweets[id])
	}
	return out
}

func (m *memSweetRepo) List(_ context.Context, skip, limit int) ([]dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.ordered()
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *memSweetRepo) Search(_ context.Context, f dom.SweetFilter) ([]dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []dom.Sweet
	for _, s := range m.ordered() {
		if f.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && !strings.Contains(strings.ToLower(s.Category), strings.ToLower(f.Category)) {
			continue
		}
		if f.MinPrice != nil && s.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && s.Price > *f.MaxPrice {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSweetRepo) Update(_ context.Context, id int64, patch dom.SweetPatch) (dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sweets[id]
	if !ok {
		return dom.Sweet{}, pgx.ErrNoRows
	}
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Category != nil {
		s.Category = *patch.Category
	}
	if patch.Price != nil {
		s.Price = *patch.Price
	}
	if patch.Quantity != nil {
		s.Quantity = *patch.Quantity
	}
	s.UpdatedAt = time.Now()
	m.sweets[id] = s
	return s, nil
}

func (m *memSweetRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sweets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.sweets, id)
	return nil
}

func (m *memSweetRepo) Purchase(_ context.Context, id, qty int64) (dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sweets[id]
	if !ok {
		return dom.Sweet{}, pgx.ErrNoRows
	}
	if s.Quantity < qty {
		return dom.Sweet{}, &dom.InsufficientStockError{Available: s.Quantity}
	}
	s.Quantity -= qty
	s.UpdatedAt = time.Now()
	m.sweets[id] = s
	return s, nil
}

func (m *memSweetRepo) Restock(_ context.Context, id, qty int64) (dom.Sweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sweets[id]
	if !ok {
		return dom.Sweet{}, pgx.ErrNoRows
	}
	s.Quantity += qty
	s.UpdatedAt = time.Now()
	m.sweets[id] = s
	return s, nil
}

// newTestServer wires the real services, middleware and handlers over the
// in-memory repos, registering routes the same way the app does.
func newTestServer(t *testing.T) (*gin.Engine, *memUserRepo, *memSweetRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	userRepo := newMemUserRepo()
	sweetRepo := newMemSweetRepo()

	tokens := auth.NewManager([]byte("test-secret"), time.Hour)
	userSvc := service.NewUserService(userRepo)
	sweetSvc := service.NewSweetService(sweetRepo, nil)

	authHandler := NewAuthHandler(tokens, userSvc)
	sweetHandler := NewSweetHandler(sweetSvc)

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("", auth.RequireAuth(tokens, userSvc))
	protected.POST("/sweets", sweetHandler.Create)
	protected.GET("/sweets", sweetHandler.List)
	protected.GET("/sweets/search", sweetHandler.Search)
	protected.GET("/sweets/:id", sweetHandler.GetByID)
	protected.PUT("/sweets/:id", sweetHandler.Update)
	protected.POST("/sweets/:id/purchase", sweetHandler.Purchase)

	admin := protected.Group("", auth.RequireAdmin())
	admin.DELETE("/sweets/:id", sweetHandler.Delete)
	admin.POST("/sweets/:id/restock", sweetHandler.Restock)

	return r, userRepo, sweetRepo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func registerUser(t *testing.T, r *gin.Engine, email, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    email,
		"username": username,
		"password": password,
	})
}

func loginUser(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doForm(t, r, "/api/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %q: status %d body %s", username, w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, w, &resp)
	if resp.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", resp.TokenType)
	}
	return resp.AccessToken
}

func userToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	if w := registerUser(t, r, "user@example.com", "testuser", "testpass123"); w.Code != http.StatusCreated {
		t.Fatalf("register: status %d body %s", w.Code, w.Body.String())
	}
	return loginUser(t, r, "testuser", "testpass123")
}

func adminToken(t *testing.T, r *gin.Engine, users *memUserRepo) string {
	t.Helper()
	users.seedAdmin(t, "admin@example.com", "admin", "adminpass123")
	return loginUser(t, r, "admin", "adminpass123")
}

func createSweet(t *testing.T, r *gin.Engine, token, name, category string, price float64, quantity int64) int64 {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/sweets", token, gin.H{
		"name":     name,
		"category": category,
		"price":    price,
		"quantity": quantity,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create sweet: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, w, &resp)
	if resp.ID == 0 {
		t.Fatalf("create sweet: no id in %s", w.Body.String())
	}
	return resp.ID
}
