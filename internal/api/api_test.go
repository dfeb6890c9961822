package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pebbling/spaarpot/internal/auth"
	"github.com/pebbling/spaarpot/internal/catalog"
	"github.com/pebbling/spaarpot/internal/db"
	"github.com/pebbling/spaarpot/internal/gifting"
	"github.com/pebbling/spaarpot/internal/model"
	"github.com/pebbling/spaarpot/internal/store"
)

const testJWTSecret = "test-secret"

const testPassword = "password123"

type testServer struct {
	*httptest.Server
	db *sql.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)

	cat, err := catalog.Load(context.Background(), database)
	require.NoError(t, err)
	svc := gifting.New(database, cat, store.UserDirectory{DB: database})

	server := httptest.NewServer(NewRouter(database, svc, testJWTSecret))
	t.Cleanup(server.Close)
	return &testServer{Server: server, db: database}
}

// createUser stores an account and logs it in through the login endpoint.
func (s *testServer) createUser(t *testing.T, email, role string) (*model.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := store.CreateUser(context.Background(), s.db, email, email, string(hash), role)
	require.NoError(t, err)

	resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login loginResponse
	decodeBody(t, resp, &login)
	require.NotEmpty(t, login.Token)
	return user, login.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.createUser(t, "admin@example.nl", model.RoleAdmin)

	resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "admin@example.nl", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.nl", "password": testPassword})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	s := setupTestServer(t)

	body := map[string]string{"email": "Nieuw@Example.nl", "name": "Nieuw", "password": "lang-genoeg"}
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reg loginResponse
	decodeBody(t, resp, &reg)
	assert.Equal(t, "nieuw@example.nl", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)

	resp = s.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "kort@example.nl", "name": "K", "password": "kort"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUser(t, "user@example.nl", model.RoleUser)

	resp := s.do(t, http.MethodGet, "/api/gifts/inventory", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/gifts/inventory", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{"/api/gifts/inventory", "/api/gifts/credits", "/api/users"} {
		resp := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := s.do(t, http.MethodGet, "/api/gifts/inventory", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleBasedAccess(t *testing.T) {
	s := setupTestServer(t)
	user, _ := s.createUser(t, "user@example.nl", model.RoleUser)
	userToken, err := auth.GenerateToken(testJWTSecret, user.ID, user.Email, model.RoleUser)
	require.NoError(t, err)

	resp := s.do(t, http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPut, "/api/gifts/types/22/image", userToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, adminToken := s.createUser(t, "admin@example.nl", model.RoleAdmin)
	resp = s.do(t, http.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []model.User
	decodeBody(t, resp, &users)
	assert.Len(t, users, 2)
}

func TestCatalogEndpoints(t *testing.T) {
	s := setupTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/gifts/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cats []model.Category
	decodeBody(t, resp, &cats)
	assert.Len(t, cats, len(model.Categories()))

	resp = s.do(t, http.MethodGet, "/api/gifts/types", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var groups []catalog.Group
	decodeBody(t, resp, &groups)
	assert.Len(t, groups, len(model.Categories()))

	resp = s.do(t, http.MethodGet, "/api/gifts/types/22/image", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClaimFlow(t *testing.T) {
	s := setupTestServer(t)
	sender, senderToken := s.createUser(t, "sender@example.nl", model.RoleUser)
	_, receiverToken := s.createUser(t, "receiver@example.nl", model.RoleUser)
	require.NoError(t, store.CreditInventory(context.Background(), s.db, sender.ID, 22, 3))

	resp := s.do(t, http.MethodPost, "/api/claims", senderToken, map[string]any{
		"transaction_id": "tx-api",
		"gift_type_id":   22,
		"quantity":       2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/claims", senderToken, map[string]any{
		"transaction_id": "tx-api",
		"gift_type_id":   22,
		"quantity":       2,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "retried create")

	resp = s.do(t, http.MethodGet, "/api/claims/tx-api/status", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status statusResponse
	decodeBody(t, resp, &status)
	assert.Equal(t, model.ClaimSent, status.Status)

	resp = s.do(t, http.MethodPost, "/api/claims/tx-api/resolve", "", map[string]string{"action": "save"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "saving needs a receiver")

	resp = s.do(t, http.MethodPost, "/api/claims/tx-api/resolve", receiverToken, map[string]string{"action": "save"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resolved gifting.ResolvedClaim
	decodeBody(t, resp, &resolved)
	assert.Equal(t, model.ClaimSavedToCredit, resolved.Claim.Status)
	assert.Equal(t, "7.00", resolved.CreditAdded.StringFixed(2))

	resp = s.do(t, http.MethodPost, "/api/claims/tx-api/resolve", receiverToken, map[string]string{"action": "save"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/gifts/credits", receiverToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var credits []model.CategoryCredit
	decodeBody(t, resp, &credits)
	for _, c := range credits {
		if c.Category == "kroeg" {
			assert.Equal(t, "7.00", c.Amount.StringFixed(2))
		}
	}

	resp = s.do(t, http.MethodPost, "/api/gifts/credits/spend", receiverToken, map[string]string{"category": "kroeg", "amount": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/gifts/received", receiverToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var received []model.Claim
	decodeBody(t, resp, &received)
	assert.Len(t, received, 1)
}

func TestResolveByReceiverEmail(t *testing.T) {
	s := setupTestServer(t)
	sender, senderToken := s.createUser(t, "sender@example.nl", model.RoleUser)
	s.createUser(t, "receiver@example.nl", model.RoleUser)
	require.NoError(t, store.CreditInventory(context.Background(), s.db, sender.ID, 22, 1))

	resp := s.do(t, http.MethodPost, "/api/claims", senderToken, map[string]any{"transaction_id": "tx-mail", "gift_type_id": 22, "quantity": 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/claims/tx-mail/resolve", "", map[string]string{"action": "save", "receiver_email": "unknown@example.nl"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/claims/tx-mail/resolve", "", map[string]string{"action": "save", "receiver_email": "receiver@example.nl"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCancelOnlyBySender(t *testing.T) {
	s := setupTestServer(t)
	sender, senderToken := s.createUser(t, "sender@example.nl", model.RoleUser)
	_, otherToken := s.createUser(t, "other@example.nl", model.RoleUser)
	require.NoError(t, store.CreditInventory(context.Background(), s.db, sender.ID, 22, 2))

	resp := s.do(t, http.MethodPost, "/api/claims", senderToken, map[string]any{"transaction_id": "tx-c", "gift_type_id": 22, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/claims/tx-c", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/claims/tx-c", senderToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/api/claims/tx-c", senderToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	qty, err := store.GetQuantity(context.Background(), s.db, sender.ID, 22)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)
}

func TestCreateClaimErrors(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUser(t, "sender@example.nl", model.RoleUser)

	resp := s.do(t, http.MethodPost, "/api/claims", token, map[string]any{"gift_type_id": 22, "quantity": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/claims", token, map[string]any{"gift_type_id": 22, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/claims", token, map[string]any{"gift_type_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPurchaseEndpoint(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUser(t, "buyer@example.nl", model.RoleUser)

	resp := s.do(t, http.MethodPost, "/api/gifts/purchase", token, map[string]any{
		"items": []map[string]int{{"gift_type_id": 22, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/gifts/inventory", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []model.Inventory
	decodeBody(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	resp = s.do(t, http.MethodGet, "/api/gifts/stats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats model.ClaimStats
	decodeBody(t, resp, &stats)
	assert.Equal(t, 2, stats.Held)

	resp = s.do(t, http.MethodGet, "/api/gifts/purchases", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var purchases []model.Purchase
	decodeBody(t, resp, &purchases)
	require.Len(t, purchases, 1)
	assert.Equal(t, 2, purchases[0].ItemsCount)
	assert.Equal(t, "7.00", purchases[0].TotalAmount.StringFixed(2))
}

func TestPurchasesEmpty(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.createUser(t, "nobody@example.nl", model.RoleUser)

	resp := s.do(t, http.MethodGet, "/api/gifts/purchases", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var purchases []model.Purchase
	decodeBody(t, resp, &purchases)
	assert.NotNil(t, purchases)
	assert.Empty(t, purchases)

	resp = s.do(t, http.MethodGet, "/api/gifts/purchases", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
