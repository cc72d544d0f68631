package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/pathforge/platform/internal/app"
	"github.com/pathforge/platform/internal/app/storage/memory"
	"github.com/pathforge/platform/internal/logging"
	"github.com/pathforge/platform/internal/metrics"
	"github.com/pathforge/platform/internal/middleware"
	"github.com/pathforge/platform/internal/pending"
	"github.com/pathforge/platform/internal/session"
)

const testSecret = "test-jwt-secret"

type fixture struct {
	server *httptest.Server
	store  *memory.Store
	buffer *pending.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	buffer := pending.NewMemory()
	log := logging.New("test", logrus.ErrorLevel)

	application := app.New(app.Options{
		Stores: app.Stores{
			Profiles:           store,
			Assessments:        store,
			SavedOpportunities: store,
			JobApplications:    store,
			GrantApplications:  store,
		},
		Sessions: session.ContextFirst{},
		Pending:  buffer,
		Metrics:  metrics.New(),
		Logger:   log,
	})

	handler := New(application, nil, middleware.NewAuth(testSecret, log), log)
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return &fixture{server: server, store: store, buffer: buffer}
}

func signToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}

func TestCatalog(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/opportunities", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["opportunities"], 4)
}

func TestSubmitAssessmentWithoutTokenBuffers(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/assessments", "", map[string]interface{}{
		"zip_code":           "85001",
		"current_occupation": "warehouse associate",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, true, body["requires_auth"])
	require.Equal(t, true, body["success"])

	buffered, err := f.buffer.Get()
	require.NoError(t, err)
	require.NotNil(t, buffered)
	require.Equal(t, "85001", buffered.ZipCode)
}

func TestSubmitAndFetchAssessment(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	resp, body := f.do(t, http.MethodPost, "/assessments", token, map[string]interface{}{
		"zip_code":           "85001",
		"current_occupation": "warehouse associate",
		"interested_sectors": []string{"semiconductors"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	resp, body = f.do(t, http.MethodGet, "/assessments/latest", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "85001", body["zip_code"])
}

func TestLatestAssessmentMissing(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodGet, "/assessments/latest", signToken(t, "user-1"), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitAssessmentValidation(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/assessments", signToken(t, "user-1"), map[string]interface{}{
		"zip_code": "85001",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errObj := body["error"].(map[string]interface{})
	require.Equal(t, "validation_error", errObj["code"])
}

func TestSaveTwiceReportsAlreadySaved(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	resp, body := f.do(t, http.MethodPost, "/opportunities/1/save", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Opportunity saved", body["message"])

	resp, body = f.do(t, http.MethodPost, "/opportunities/1/save", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Already saved", body["message"])
}

func TestSaveUnknownOpportunity(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/opportunities/999/save", signToken(t, "user-1"), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplyAndList(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	resp, body := f.do(t, http.MethodPost, "/opportunities/2/apply", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	resp, body = f.do(t, http.MethodGet, "/applications", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	apps := body["job_applications"].([]interface{})
	require.Len(t, apps, 1)
	first := apps[0].(map[string]interface{})
	require.Equal(t, "submitted", first["status"])
	require.Equal(t, "Intel Corporation", first["company"])
}

func TestDeleteSaved(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	_, _ = f.do(t, http.MethodPost, "/opportunities/1/save", token, nil)

	resp, body := f.do(t, http.MethodGet, "/saved", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := body["saved_opportunities"].([]interface{})
	require.Len(t, rows, 1)
	id := rows[0].(map[string]interface{})["id"].(string)

	resp, _ = f.do(t, http.MethodDelete, "/saved/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/saved/"+id, token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitGrantAppliesDefaults(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	resp, body := f.do(t, http.MethodPost, "/grants", token, map[string]interface{}{
		"first_name": "Maria",
		"last_name":  "Lopez",
		"email":      "maria@example.com",
		"phone":      "602-555-0101",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["success"])

	resp, body = f.do(t, http.MethodGet, "/grants", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rows := body["grant_applications"].([]interface{})
	require.Len(t, rows, 1)
	first := rows[0].(map[string]interface{})
	require.Equal(t, float64(4500), first["grant_amount"])
	require.Equal(t, "chips_workforce", first["grant_type"])
	require.Equal(t, "submitted", first["status"])
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	token := signToken(t, "user-1")

	_, _ = f.do(t, http.MethodPost, "/opportunities/1/save", token, nil)
	_, _ = f.do(t, http.MethodPost, "/opportunities/2/apply", token, nil)

	resp, body := f.do(t, http.MethodGet, "/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, body["saved_opportunities"], 1)
	require.Len(t, body["job_applications"], 1)
	require.Empty(t, body["grant_applications"])
}

func TestDashboardWithoutToken(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/dashboard", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errObj := body["error"].(map[string]interface{})
	require.Equal(t, "auth_required", errObj["code"])
}

func TestInvalidTokenRejected(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/dashboard", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	errObj := body["error"].(map[string]interface{})
	require.Equal(t, "invalid_token", errObj["code"])
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newFixture(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp, _ := f.do(t, http.MethodGet, "/dashboard", signed, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
