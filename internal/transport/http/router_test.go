package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/ErlanBelekov/credit-market/internal/email"
	"github.com/ErlanBelekov/credit-market/internal/password"
	"github.com/ErlanBelekov/credit-market/internal/token"
	httptransport "github.com/ErlanBelekov/credit-market/internal/transport/http"
	"github.com/ErlanBelekov/credit-market/internal/transport/http/handler"
	"github.com/ErlanBelekov/credit-market/internal/usecase"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testKey = "router-test-secret-at-least-32-chars"

// ---- in-memory stores ----

type memUsers struct{ byEmail map[string]*domain.User }

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	c := *u
	m.byEmail[u.Email] = &c
	return &c, nil
}

func (m *memUsers) FindByEmail(_ context.Context, e string) (*domain.User, error) {
	u, ok := m.byEmail[e]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (m *memUsers) UpdateRole(_ context.Context, e string, role domain.Role) (*domain.User, error) {
	u, ok := m.byEmail[e]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	c := *u
	return &c, nil
}

type memProducts struct{ items []*domain.Product }

func (m *memProducts) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	c := *p
	c.ID = int64(len(m.items) + 1)
	m.items = append(m.items, &c)
	return &c, nil
}

func (m *memProducts) List(context.Context) ([]*domain.Product, error) { return m.items, nil }

func (m *memProducts) Count(context.Context) (int, error) { return len(m.items), nil }

type nopSender struct{}

func (nopSender) Send(context.Context, email.Message) error { return nil }

// ---- harness ----

type harness struct {
	router   *gin.Engine
	users    *memUsers
	products *memProducts
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := &memUsers{byEmail: map[string]*domain.User{}}
	products := &memProducts{}
	tokens := token.NewManager([]byte(testKey), time.Hour)
	hasher := password.NewHasher(bcrypt.MinCost)

	authUC := usecase.NewAuthUsecase(users, tokens, hasher, nopSender{}, logger, false)
	productUC := usecase.NewProductUsecase(products, 10000)

	r := httptransport.NewRouter(logger, tokens, authUC,
		handler.NewAuthHandler(authUC, logger),
		handler.NewProductHandler(productUC, logger),
		nil,
		5*time.Second,
	)
	return &harness{router: r, users: users, products: products}
}

func (h *harness) do(t *testing.T, method, path, bearer, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) signupAndSignin(t *testing.T, emailAddr string, role domain.Role) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/user/signup", "",
		`{"userName":"x","email":"`+emailAddr+`","password":"secret1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", w.Code, w.Body.String())
	}
	if role != domain.RoleUser {
		h.users.byEmail[emailAddr].Role = role
	}

	w = h.do(t, http.MethodPost, "/user/signin", "", `{"email":"`+emailAddr+`","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("signin: %d %s", w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	return body.Token
}

const productBody = `{"name":"Lamp","image":"https://x.io/lamp.png","credits":120}`

func TestAddProduct_NonAdmin_Forbidden_CatalogUnchanged(t *testing.T) {
	h := newHarness(t)
	tok := h.signupAndSignin(t, "buyer@example.com", domain.RoleUser)

	w := h.do(t, http.MethodPost, "/products", tok, productBody)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if len(h.products.items) != 0 {
		t.Errorf("catalog changed: %d products", len(h.products.items))
	}

	w = h.do(t, http.MethodGet, "/products", "", "")
	if w.Body.String() != `{"products":[],"success":true}` {
		t.Errorf("listing = %s", w.Body.String())
	}
}

func TestAddProduct_Admin_Created(t *testing.T) {
	h := newHarness(t)
	tok := h.signupAndSignin(t, "boss@example.com", domain.RoleAdmin)

	w := h.do(t, http.MethodPost, "/products", tok, productBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (%s)", w.Code, w.Body.String())
	}
	if len(h.products.items) != 1 {
		t.Fatalf("want 1 product, got %d", len(h.products.items))
	}
}

func TestAddProduct_TokenStatuses(t *testing.T) {
	h := newHarness(t)

	if w := h.do(t, http.MethodPost, "/products", "", productBody); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := h.do(t, http.MethodPost, "/products", "garbage", productBody); w.Code != http.StatusForbidden {
		t.Errorf("bad token: status = %d, want 403", w.Code)
	}
}

func TestGetRole_ReflectsStoreAfterDemotion(t *testing.T) {
	h := newHarness(t)
	tok := h.signupAndSignin(t, "boss@example.com", domain.RoleAdmin)

	h.users.byEmail["boss@example.com"].Role = domain.RoleUser

	w := h.do(t, http.MethodGet, "/user/get-role", tok, "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"role":"user"`) {
		t.Errorf("get-role = %d %s", w.Code, w.Body.String())
	}

	delete(h.users.byEmail, "boss@example.com")
	if w := h.do(t, http.MethodGet, "/user/get-role", tok, ""); w.Code != http.StatusNotFound {
		t.Errorf("deleted account: status = %d, want 404", w.Code)
	}
}

func TestSignup_ShortPassword_NoAccount(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/user/signup", "", `{"email":"a@example.com","password":"ab"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"password"`) {
		t.Errorf("password field not named: %s", w.Body.String())
	}
	if len(h.users.byEmail) != 0 {
		t.Error("account created")
	}
}

func TestUpdateRole_AdminPromotesUser(t *testing.T) {
	h := newHarness(t)
	admin := h.signupAndSignin(t, "boss@example.com", domain.RoleAdmin)
	user := h.signupAndSignin(t, "buyer@example.com", domain.RoleUser)

	if w := h.do(t, http.MethodPatch, "/user/role", user, `{"email":"buyer@example.com","role":"admin"}`); w.Code != http.StatusForbidden {
		t.Errorf("self-promotion: status = %d, want 403", w.Code)
	}

	w := h.do(t, http.MethodPatch, "/user/role", admin, `{"email":"buyer@example.com","role":"admin"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	if h.users.byEmail["buyer@example.com"].Role != domain.RoleAdmin {
		t.Error("role not stored")
	}
}

func TestResponses_CarryRequestID(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/products", "", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}
