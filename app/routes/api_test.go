package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutrieve/nutrieve/app/models"
	"github.com/nutrieve/nutrieve/app/routes"
	"github.com/nutrieve/nutrieve/internal/testdb"
	"github.com/nutrieve/nutrieve/pkg/auth"
	"github.com/nutrieve/nutrieve/pkg/mail"
	"github.com/nutrieve/nutrieve/pkg/router"
)

func TestMain(m *testing.M) {
	auth.HashCost = 4
	os.Exit(m.Run())
}

type api struct {
	t      *testing.T
	h      http.Handler
	db     *gorm.DB
	mail   *mail.Fake
	tokens *auth.TokenManager
}

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testdb.Open(t)
	fake := &mail.Fake{}
	tokens := auth.NewTokenManager("routes-test", time.Hour)

	r := router.New()
	routes.RegisterAPI(r, routes.Deps{
		DB:          db,
		Tokens:      tokens,
		Mailer:      mail.NewMailer(fake, mail.Sender{Address: "hello@nutrieve.in"}),
		FrontendURL: "https://nutrieve.in",
	})
	return &api{t: t, h: r.Handler(), db: db, mail: fake, tokens: tokens}
}

func (a *api) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// user creates an account with role and returns a bearer token for it.
func (a *api) user(email, role string) (models.User, string) {
	a.t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(a.t, err)
	u := models.User{Name: "Test", Email: email, Password: hash, Role: role, IsActive: true}
	require.NoError(a.t, a.db.Create(&u).Error)

	token, err := a.tokens.Issue(u.ID, u.Email, u.Role)
	require.NoError(a.t, err)
	return u, token
}

func TestSignupLoginMe(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Asha", "email": "asha@nutrieve.in", "password": "spice-box1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		AccessToken string      `json:"access_token"`
		TokenType   string      `json:"token_type"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "bearer", res.TokenType)
	assert.NotContains(t, string(env.Data), "password")

	rec, env = a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Asha", "email": "asha@nutrieve.in", "password": "spice-box1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Email already registered", env.Message)

	rec, _ = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@nutrieve.in", "password": "spice-box1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@nutrieve.in", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)

	rec, env = a.do(http.MethodGet, "/api/auth/me", res.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "asha@nutrieve.in", me.Email)

	rec, env = a.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authorization header is required", env.Message)
}

func TestSignupValidation(t *testing.T) {
	a := newAPI(t)

	rec, env := a.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "", "email": "not-an-email", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")

	rec, _ = a.do(http.MethodPost, "/api/auth/signup", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	a := newAPI(t)
	u, _ := a.user("asha@nutrieve.in", models.RoleCustomer)

	rec, known := a.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": u.Email})
	require.Equal(t, http.StatusOK, rec.Code)
	_, unknown := a.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ghost@nutrieve.in"})
	assert.Equal(t, known.Message, unknown.Message, "no account enumeration")

	var stored models.User
	require.NoError(t, a.db.First(&stored, u.ID).Error)
	require.NotNil(t, stored.ResetCode)

	body := map[string]string{"email": u.Email, "otp": *stored.ResetCode, "new_password": "fresh-pass1"}
	rec, _ = a.do(http.MethodPost, "/api/auth/reset-password", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := a.do(http.MethodPost, "/api/auth/reset-password", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired reset code", env.Message)
}

func TestCatalogAndAdminSeed(t *testing.T) {
	a := newAPI(t)
	_, customer := a.user("asha@nutrieve.in", models.RoleCustomer)
	_, admin := a.user("admin@nutrieve.in", models.RoleAdmin)

	rec, _ := a.do(http.MethodPost, "/api/admin/seed-products", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := a.do(http.MethodPost, "/api/admin/seed-products", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created":29}`, string(env.Data))

	rec, env = a.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Data, &products))
	require.Len(t, products, 29)
	assert.Equal(t, "Amla Powder", products[0].Name)

	rec, _ = a.do(http.MethodGet, "/api/products/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = a.do(http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartToOrderFlow(t *testing.T) {
	a := newAPI(t)
	u, token := a.user("asha@nutrieve.in", models.RoleCustomer)
	p := models.Product{Name: "Turmeric Powder", BasePrice: decimal.NewFromInt(185), IsActive: true}
	require.NoError(t, a.db.Create(&p).Error)

	rec, _ := a.do(http.MethodPost, "/api/cart/add", token, map[string]any{"product_id": p.ID, "size": "200gm", "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = a.do(http.MethodPost, "/api/cart/add", token, map[string]any{"product_id": p.ID, "size": "200gm", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := a.do(http.MethodPost, "/api/cart/add", token, map[string]any{"product_id": p.ID, "size": "3kg", "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "size")

	rec, env = a.do(http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Items []struct {
			ID       uint `json:"id"`
			Quantity int  `json:"quantity"`
		} `json:"items"`
		Total json.Number `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, "87.32", cart.Total.String())

	rec, env = a.do(http.MethodPost, "/api/orders/addresses", token, map[string]any{
		"full_name": "Asha Rao", "phone": "9876543210", "flat_no": "12B", "street": "MG Road",
		"city": "Bengaluru", "state": "Karnataka", "pincode": "560001",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var addr models.Address
	require.NoError(t, json.Unmarshal(env.Data, &addr))
	assert.True(t, addr.IsDefault)

	rec, env = a.do(http.MethodPost, "/api/orders/addresses", token, map[string]any{
		"full_name": "Asha Rao", "phone": "9876543210", "flat_no": "12B", "street": "MG Road",
		"city": "Bengaluru", "state": "Karnataka", "pincode": "5600",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "pincode")

	rec, env = a.do(http.MethodPost, "/api/orders/create", token, map[string]any{"address_id": addr.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		Order struct {
			ID          uint        `json:"id"`
			TotalAmount json.Number `json:"total_amount"`
			Status      string      `json:"status"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "87.32", res.Order.TotalAmount.String())
	assert.Equal(t, "pending", res.Order.Status)

	rec, env = a.do(http.MethodPost, "/api/orders/create", token, map[string]any{"address_id": addr.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", env.Message)

	rec, _ = a.do(http.MethodGet, "/api/orders/"+jsonID(res.Order.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, other := a.user("ravi@nutrieve.in", models.RoleCustomer)
	rec, _ = a.do(http.MethodGet, "/api/orders/"+jsonID(res.Order.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = a.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(env.Data, &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, u.ID, orders[0].UserID)

	assert.Len(t, a.mail.Sent(), 1)
}

func TestCartLineRoutes(t *testing.T) {
	a := newAPI(t)
	u, token := a.user("asha@nutrieve.in", models.RoleCustomer)
	p := models.Product{Name: "Amla Powder", BasePrice: decimal.NewFromInt(500), IsActive: true}
	require.NoError(t, a.db.Create(&p).Error)
	line := models.CartItem{UserID: u.ID, ProductID: p.ID, Size: "1kg", Quantity: 1}
	require.NoError(t, a.db.Create(&line).Error)

	rec, _ := a.do(http.MethodPut, "/api/cart/"+jsonID(line.ID), token, map[string]int{"quantity": 5})
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, body := range []any{map[string]any{}, map[string]int{"qty": 0}} {
		rec, env := a.do(http.MethodPut, "/api/cart/"+jsonID(line.ID), token, body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, env.Errors, "quantity")
	}
	var kept models.CartItem
	require.NoError(t, a.db.First(&kept, line.ID).Error)
	assert.Equal(t, 5, kept.Quantity, "a missing quantity leaves the line alone")

	rec, _ = a.do(http.MethodDelete, "/api/cart/clear", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := a.do(http.MethodDelete, "/api/cart/"+jsonID(line.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cart item not found", env.Message)
}

func TestLeadRoutesRequireCRMRole(t *testing.T) {
	a := newAPI(t)
	_, customer := a.user("asha@nutrieve.in", models.RoleCustomer)
	crm, crmToken := a.user("crm@nutrieve.in", models.RoleCRM)

	rec, _ := a.do(http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec, _ = a.do(http.MethodGet, "/api/leads", customer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := a.do(http.MethodPost, "/api/leads", crmToken, map[string]any{"type": "sales", "person_name": "Kiran", "stage": "hot"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var lead models.Lead
	require.NoError(t, json.Unmarshal(env.Data, &lead))
	assert.Equal(t, "open", lead.Status)

	rec, env = a.do(http.MethodPost, "/api/leads", crmToken, map[string]any{"type": "barter", "person_name": "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Errors, "type")

	rec, env = a.do(http.MethodGet, "/api/leads?stage=hot&status=open", crmToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var leads []models.Lead
	require.NoError(t, json.Unmarshal(env.Data, &leads))
	assert.Len(t, leads, 1)

	rec, _ = a.do(http.MethodGet, "/api/leads?stage=lukewarm", crmToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec, _ = a.do(http.MethodGet, "/api/leads?limit=ten", crmToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	path := "/api/leads/" + jsonID(lead.ID)
	rec, env = a.do(http.MethodPatch, path, crmToken, map[string]any{"status": "wip", "notes": "Call back Monday"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, &lead))
	assert.Equal(t, "wip", lead.Status)
	assert.Equal(t, "hot", lead.Stage)

	rec, env = a.do(http.MethodPost, path+"/activities", crmToken, map[string]any{"kind": "call", "body": "Intro call"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var act models.LeadActivity
	require.NoError(t, json.Unmarshal(env.Data, &act))
	assert.Equal(t, crm.ID, act.ActorID)

	rec, _ = a.do(http.MethodPost, path+"/activities", crmToken, map[string]any{"body": "no kind"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, env = a.do(http.MethodGet, path+"/activities", crmToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var acts []models.LeadActivity
	require.NoError(t, json.Unmarshal(env.Data, &acts))
	assert.Len(t, acts, 1)

	rec, _ = a.do(http.MethodDelete, path, crmToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = a.do(http.MethodGet, path, crmToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouteTable(t *testing.T) {
	r := router.New()
	routes.RegisterAPI(r, routes.Deps{DB: testdb.Open(t), Tokens: auth.NewTokenManager("x", time.Hour)})

	path, ok := r.Path("leads.activities.store")
	require.True(t, ok)
	assert.Equal(t, "/api/leads/{id}/activities", path)

	url, err := r.URL("addresses.default", map[string]string{"id": "3"})
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/addresses/3/default", url)

	assert.Len(t, r.Routes(), 27)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
