package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parcelhub/internal/auth"
	"parcelhub/internal/domain/storage"
	"parcelhub/internal/ratelimiter"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret    = "test-secret"
	testBasicUser = "ops"
	testBasicPass = "ops-pass"
)

func newTestApplication(t *testing.T, cfg config) *application {
	t.Helper()

	logger := zap.NewNop().Sugar()

	cfg.env = "test"
	cfg.auth.basic = basicConfig{user: testBasicUser, pass: testBasicPass}
	cfg.auth.token = tokenConfig{secret: testSecret, exp: time.Hour, iss: "parcelhub", aud: "parcelhub"}

	limit := cfg.rateLimiter.RequestsPerTimeFrame
	if limit == 0 {
		limit = 100
	}
	window := cfg.rateLimiter.TimeFrame
	if window == 0 {
		window = time.Minute
	}

	return &application{
		config:        cfg,
		logger:        logger,
		store:         storage.NewMemoryContainer(logger),
		authenticator: auth.NewJWTAuthenticator(testSecret, "parcelhub", "parcelhub", time.Hour),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(limit, window),
	}
}

func tokenFor(t *testing.T, app *application, userID string) string {
	t.Helper()

	token, err := app.authenticator.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

func newRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func executeRequest(req *http.Request, mux http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeData unwraps the {"data": ...} envelope into v.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()

	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// bootstrapOrg creates orgID with ownerID as its owner and returns the owner
// role id.
func bootstrapOrg(t *testing.T, app *application, mux http.Handler, orgID, ownerID string) string {
	t.Helper()

	rr := executeRequest(newRequest(t, http.MethodPost, "/v1/organizations/"+orgID+"/bootstrap", tokenFor(t, app, ownerID), map[string]string{"name": "Org " + orgID}), mux)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var out storage.Bootstrap
	decodeData(t, rr, &out)
	return out.RoleID
}
