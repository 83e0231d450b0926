package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	appctx "restoledger/internal/core/context"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/auth"
	"restoledger/internal/domain/catalogs/warehouse"
	v1 "restoledger/internal/infrastructure/http/v1"
	"restoledger/internal/infrastructure/storage/postgres"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T, roles ...string) (*apiClient, *apptest.Fixture) {
	return newAPIWith(t, v1.RouterConfig{}, roles...)
}

func newAPIWith(t *testing.T, cfg v1.RouterConfig, roles ...string) (*apiClient, *apptest.Fixture) {
	t.Helper()
	f := apptest.New(t)
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))

	cfg.Ledger = f.Ledger
	cfg.JWTValidator = jwtSvc
	cfg.Backend = "memory"
	router := v1.NewRouter(cfg)

	token, _, err := jwtSvc.GenerateAccessToken(appctx.UserContext{UserID: "u-1", Name: "Anna", Roles: roles})
	require.NoError(t, err)
	return &apiClient{t: t, router: router, token: token}, f
}

func (a *apiClient) do(method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestRouter_HealthIsPublic(t *testing.T) {
	api, _ := newAPI(t)
	api.token = ""

	w, body := api.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_RequiresToken(t *testing.T) {
	api, _ := newAPI(t)
	api.token = ""

	w, body := api.do(http.MethodGet, "/api/v1/stock/negative", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRouter_CatalogWritesNeedManager(t *testing.T) {
	api, _ := newAPI(t, "cashier")

	w, _ := api.do(http.MethodPost, "/api/v1/catalog/warehouses", map[string]any{"name": "Main"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/catalog/warehouses", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SupplyThenBalance(t *testing.T) {
	api, f := newAPI(t, "manager")

	w, wh := api.do(http.MethodPost, "/api/v1/catalog/warehouses", map[string]any{"name": "Main"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, ing := api.do(http.MethodPost, "/api/v1/catalog/ingredients", map[string]any{"name": "Flour", "unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, doc := api.do(http.MethodPost, "/api/v1/documents", map[string]any{
		"docType":           "supply",
		"targetWarehouseId": wh["id"],
		"lines": []map[string]any{
			{"ingredientId": ing["id"], "quantity": "10", "unitPrice": "2.5"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, doc["isProcessed"])

	w, _ = api.do(http.MethodGet, "/api/v1/stock/balance?warehouseId="+wh["id"].(string)+"&ingredientId="+ing["id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)

	ingredients, err := f.Ingredients.List(f.Ctx)
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	apptest.AssertQty(t, "10", f.Balance(mustWarehouse(t, f), ingredients[0]))
	apptest.AssertQty(t, "2.5", ingredients[0].CurrentCost)
}

func TestRouter_InvalidPathID(t *testing.T) {
	api, _ := newAPI(t, "manager")

	w, body := api.do(http.MethodGet, "/api/v1/documents/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRouter_UnknownDocumentIsNotFound(t *testing.T) {
	api, _ := newAPI(t, "manager")

	w, _ := api.do(http.MethodGet, "/api/v1/documents/0190a0b0-0000-7000-8000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ShiftLifecycle(t *testing.T) {
	api, f := newAPI(t, "manager")
	cashier := f.Employee("Ira", "cashier")

	w, shift := api.do(http.MethodPost, "/api/v1/shifts", map[string]any{
		"employeeId":   cashier.ID.String(),
		"openingFloat": "100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shiftID := shift["id"].(string)

	w, _ = api.do(http.MethodPost, "/api/v1/shifts/"+shiftID+"/transactions", map[string]any{
		"type": "out", "amount": "30", "comment": "bread",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, stats := api.do(http.MethodGet, "/api/v1/shifts/"+shiftID+"/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "70", stats["theoreticalCash"])

	w, _ = api.do(http.MethodPost, "/api/v1/shifts", map[string]any{"employeeId": cashier.ID.String()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, closed := api.do(http.MethodPost, "/api/v1/shifts/"+shiftID+"/close", map[string]any{"actualCash": "70"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, closed["isClosed"])
}

type fakeAudit struct {
	entityType string
	limit      int
}

func (a *fakeAudit) History(_ context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	a.entityType, a.limit = entityType, limit
	return []postgres.AuditEntry{{ID: id.New(), EntityType: entityType, EntityID: entityID, Action: "ShiftClosed"}}, nil
}

func TestRouter_AuditHistory(t *testing.T) {
	audit := &fakeAudit{}
	api, _ := newAPIWith(t, v1.RouterConfig{Audit: audit}, "manager")
	path := "/api/v1/audit/Shift/" + id.New().String()

	w, body := api.do(http.MethodGet, path+"?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "Shift", audit.entityType)
	assert.Equal(t, 5, audit.limit)

	w, _ = api.do(http.MethodGet, "/api/v1/audit/Invoice/"+id.New().String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodGet, path+"?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_AuditHistoryNeedsManager(t *testing.T) {
	api, _ := newAPIWith(t, v1.RouterConfig{Audit: &fakeAudit{}}, "cashier")

	w, _ := api.do(http.MethodGet, "/api/v1/audit/Order/"+id.New().String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func mustWarehouse(t *testing.T, f *apptest.Fixture) *warehouse.Warehouse {
	t.Helper()
	list, err := f.Warehouses.List(f.Ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	return list[0]
}
