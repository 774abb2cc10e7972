package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/assetdesk-backend/api/middleware"
	"github.com/angelmondragon/assetdesk-backend/internal/assets"
	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/internal/auth"
	"github.com/angelmondragon/assetdesk-backend/internal/dashboard"
	"github.com/angelmondragon/assetdesk-backend/internal/employees"
	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/store/memory"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/assetdesk-backend/pkg/errors"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newConsole(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.Nop()
	s := memory.New()

	engine, err := lifecycle.NewEngine(lifecycle.EngineParams{Store: s, Timeout: time.Second, Logger: logg})
	require.NoError(t, err)
	assetSvc, err := assets.NewService(assets.ServiceParams{Store: s, Lifecycle: engine, Timeout: time.Second})
	require.NoError(t, err)
	employeeSvc, err := employees.NewService(employees.ServiceParams{Store: s, Deleter: engine, Timeout: time.Second})
	require.NoError(t, err)
	assignmentSvc, err := assignments.NewService(s, time.Second)
	require.NoError(t, err)
	dashboardSvc, err := dashboard.NewService(s, time.Second)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/employees", EmployeesList(employeeSvc, logg))
	r.Post("/employees", EmployeeCreate(employeeSvc, logg))
	r.Get("/employees/{id}", EmployeeGet(employeeSvc, logg))
	r.Patch("/employees/{id}", EmployeeUpdate(employeeSvc, logg))
	r.Delete("/employees/{id}", EmployeeDelete(employeeSvc, logg))
	r.Get("/assets", AssetsList(assetSvc, logg))
	r.Post("/assets", AssetCreate(assetSvc, logg))
	r.Get("/assets/export", AssetsExport(assetSvc, logg, nil))
	r.Get("/assets/{id}", AssetGet(assetSvc, logg))
	r.Patch("/assets/{id}", AssetUpdate(assetSvc, logg))
	r.Delete("/assets/{id}", AssetDelete(assetSvc, logg))
	r.Post("/assets/{id}/assign", AssetAssign(assetSvc, logg))
	r.Post("/assets/{id}/return", AssetReturn(assetSvc, logg))
	r.Get("/assignments", AssignmentsList(assignmentSvc, logg))
	r.Get("/assignments/{id}", AssignmentGet(assignmentSvc, logg))
	r.Get("/dashboard", DashboardSummary(dashboardSvc, logg))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != xlsxContentType {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func createEmployee(t *testing.T, h http.Handler, email string) employees.EmployeeDTO {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/employees", map[string]any{
		"name":       "Ada Lovelace",
		"email":      email,
		"department": "Engineering",
		"role":       "Developer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out employees.EmployeeDTO
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func createAsset(t *testing.T, h http.Handler, serial string) assets.AssetDTO {
	t.Helper()
	rec, env := do(t, h, http.MethodPost, "/assets", map[string]any{
		"assetName":     "MacBook Pro",
		"assetType":     "Laptop",
		"serialNumber":  serial,
		"purchaseDate":  "2024-01-15",
		"purchasePrice": "1999.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out assets.AssetDTO
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestEmployeeCreateValidation(t *testing.T) {
	h := newConsole(t)

	rec, env := do(t, h, http.MethodPost, "/employees", map[string]any{"name": "No Email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, string(pkgerrors.CodeValidation), env.Error.Code)

	created := createEmployee(t, h, "ada@example.com")
	assert.Equal(t, enums.EmployeeStatusActive, created.Status)

	rec, env = do(t, h, http.MethodPost, "/employees", map[string]any{
		"name":       "Copy",
		"email":      "ADA@example.com",
		"department": "Engineering",
		"role":       "Developer",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), env.Error.Code)
}

func TestEmployeeGetRejectsBadID(t *testing.T) {
	h := newConsole(t)

	rec, _ := do(t, h, http.MethodGet, "/employees/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, h, http.MethodGet, "/employees/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), env.Error.Code)
}

func TestAssignReturnFlow(t *testing.T) {
	h := newConsole(t)
	employee := createEmployee(t, h, "grace@example.com")
	asset := createAsset(t, h, "SN-100")

	rec, env := do(t, h, http.MethodPost, "/assets/"+asset.ID.String()+"/assign", map[string]any{
		"employeeId": employee.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var assigned assets.AssignResult
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	assert.Equal(t, enums.AssetStatusAssigned, assigned.Asset.Status)
	require.NotNil(t, assigned.Asset.AssignedTo)
	assert.Equal(t, employee.ID, *assigned.Asset.AssignedTo)
	assert.Equal(t, enums.AssignmentStatusActive, assigned.Assignment.Status)

	rec, env = do(t, h, http.MethodPost, "/assets/"+asset.ID.String()+"/assign", map[string]any{
		"employeeId": employee.ID.String(),
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), env.Error.Code)

	rec, env = do(t, h, http.MethodDelete, "/assets/"+asset.ID.String(), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeBlocked), env.Error.Code)

	rec, env = do(t, h, http.MethodDelete, "/employees/"+employee.ID.String(), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeBlocked), env.Error.Code)
	assert.Contains(t, env.Error.Message, "MacBook Pro")

	rec, env = do(t, h, http.MethodPost, "/assets/"+asset.ID.String()+"/return", map[string]any{
		"assignmentId": assigned.Assignment.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var returned assets.ReturnResult
	require.NoError(t, json.Unmarshal(env.Data, &returned))
	assert.Equal(t, enums.AssetStatusAvailable, returned.Asset.Status)
	assert.Nil(t, returned.Asset.AssignedTo)
	assert.Equal(t, enums.AssignmentStatusReturned, returned.Assignment.Status)

	rec, _ = do(t, h, http.MethodGet, "/assignments?status=Returned&assetId="+asset.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/employees/"+employee.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAssignRequiresEmployeeID(t *testing.T) {
	h := newConsole(t)
	asset := createAsset(t, h, "SN-200")

	rec, env := do(t, h, http.MethodPost, "/assets/"+asset.ID.String()+"/assign", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), env.Error.Code)
}

func TestAssetUpdateClearsPriceAndRejectsAssignedStatus(t *testing.T) {
	h := newConsole(t)
	asset := createAsset(t, h, "SN-300")
	require.NotNil(t, asset.PurchasePrice)

	rec, env := do(t, h, http.MethodPatch, "/assets/"+asset.ID.String(), map[string]any{"purchasePrice": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated assets.AssetDTO
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Nil(t, updated.PurchasePrice)
	assert.Equal(t, "SN-300", updated.SerialNumber)

	rec, _ = do(t, h, http.MethodPatch, "/assets/"+asset.ID.String(), map[string]any{"status": "Assigned"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPatch, "/assets/"+asset.ID.String(), map[string]any{"assignedTo": uuid.NewString()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetsListFilters(t *testing.T) {
	h := newConsole(t)
	createAsset(t, h, "SN-A")
	createAsset(t, h, "SN-B")

	rec, env := do(t, h, http.MethodGet, "/assets?status=Available&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page assets.ListResult
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Total)
	assert.NotEmpty(t, page.Cursor)

	rec, _ = do(t, h, http.MethodGet, "/assets?status=Broken", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/assets?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssetsExportWritesWorkbook(t *testing.T) {
	h := newConsole(t)
	createAsset(t, h, "SN-X")

	rec, _ := do(t, h, http.MethodGet, "/assets/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "inventory-")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestDashboardSummary(t *testing.T) {
	h := newConsole(t)
	createEmployee(t, h, "linus@example.com")
	createEmployee(t, h, "grace@example.com")
	createAsset(t, h, "SN-D")

	rec, env := do(t, h, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary dashboard.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 2, summary.TotalEmployees)
	assert.Equal(t, map[string]int{"Engineering": 2}, summary.EmployeesByDepartment)
	assert.Equal(t, 1, summary.AvailableAssets)
}

type stubAuthService struct {
	auth.Service
	loggedOut string
	me        *auth.AuthUser
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOut = accessID
	return nil
}

func (s *stubAuthService) Me(_ context.Context, _ uuid.UUID) (*auth.AuthUser, error) {
	return s.me, nil
}

func TestAuthLogoutRequiresBearer(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, config.JWTConfig{Secret: "secret"}, logger.Nop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, svc.loggedOut)
}

func TestAuthMeReadsContext(t *testing.T) {
	adminID := uuid.New()
	svc := &stubAuthService{me: &auth.AuthUser{ID: adminID, Email: "admin@example.com", Role: enums.AdminRoleAdmin}}
	handler := AuthMe(svc, logger.Nop())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.WithAdmin(req.Context(), adminID.String(), string(enums.AdminRoleAdmin), "access"))
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), Dependency{Name: "db", Pinger: ok}, Dependency{Name: "redis"})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"skipped"`)

	rec = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), Dependency{Name: "db", Pinger: down})(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
