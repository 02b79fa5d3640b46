package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/gurpsmanager/server/api/rest"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/scheduler"
	"github.com/gurpsmanager/server/sheet"
	"github.com/gurpsmanager/server/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const AdminKey = "integration-admin-key"

// TestServer wraps a real HTTP server wired the way main.go wires serve.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	Audit  *audit.Service
	Sheets *sheet.Service
	Sched  *scheduler.Scheduler
	Server *httptest.Server
	URL    string // http://127.0.0.1:<port>
	Cfg    *config.Config

	cancel context.CancelFunc
}

// NewTestServer starts a fully wired server on a loopback port.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	cfg := &config.Config{
		Server: config.ServerConfig{AdminKey: AdminKey},
		Security: config.SecurityConfig{
			JWTSecret:      "integration-test-secret",
			JWTTTLH:        72 * time.Hour,
			BcryptCost:     bcrypt.MinCost,
			RateLimitRPS:   1000,
			RateLimitBurst: 2000,
		},
		Sheet: config.SheetConfig{CacheTTL: time.Minute, RankingSize: 50},
	}

	ctx, cancel := context.WithCancel(context.Background())
	auditSvc := audit.New(db, logger)
	sheets := sheet.New(db, c, cfg.Sheet, logger)
	sched := scheduler.New(ctx, logger)
	sched.Every("ranking_refresh", time.Hour, sheets.RefreshRankings)

	r := apirest.NewRouter(ctx, cfg, db, c, sheets, auditSvc, sched, logger)
	server := httptest.NewServer(mw.MethodOverride(r))

	ts := &TestServer{
		DB:     db,
		Cache:  c,
		Audit:  auditSvc,
		Sheets: sheets,
		Sched:  sched,
		Server: server,
		URL:    server.URL,
		Cfg:    cfg,
		cancel: cancel,
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close stops the server and background work. It is safe to call twice.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Sched.Stop()
	ts.Audit.Stop(context.Background())
	ts.cancel()
}

// --- HTTP helpers ---

func (ts *TestServer) do(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// PostJSON sends a POST request with JSON body and optional Bearer token.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPost, path, body, token)
}

// Get sends a GET request with optional Bearer token.
func (ts *TestServer) Get(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodGet, path, nil, token)
}

// Put sends a PUT request with JSON body and optional Bearer token.
func (ts *TestServer) Put(t *testing.T, path string, body interface{}, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodPut, path, body, token)
}

// Delete sends a DELETE request with optional Bearer token.
func (ts *TestServer) Delete(t *testing.T, path string, token string) *http.Response {
	t.Helper()
	return ts.do(t, http.MethodDelete, path, nil, token)
}

// PostForm posts an urlencoded form the way an HTML form would.
func (ts *TestServer) PostForm(t *testing.T, path string, form url.Values, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// Admin sends a request carrying the admin key.
func (ts *TestServer) Admin(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", AdminKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// Expect checks the status code and decodes the body into a map.
func Expect(t *testing.T, resp *http.Response, status int) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	ReadJSON(t, resp, &out)
	require.Equal(t, status, resp.StatusCode, "body: %v", out)
	return out
}

// --- Domain helpers ---

// Register creates an account and returns its token and ID.
func (ts *TestServer) Register(t *testing.T, username, password string) (token string, accountID int64) {
	t.Helper()
	out := Expect(t, ts.PostJSON(t, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, ""), http.StatusCreated)
	return out["token"].(string), int64(out["account_id"].(float64))
}

// Login returns a fresh token for an existing account.
func (ts *TestServer) Login(t *testing.T, username, password string) (token string, accountID int64) {
	t.Helper()
	out := Expect(t, ts.PostJSON(t, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, ""), http.StatusOK)
	return out["token"].(string), int64(out["account_id"].(float64))
}

// CreateCampaign creates a campaign and returns its ID.
func (ts *TestServer) CreateCampaign(t *testing.T, token, name string) int64 {
	t.Helper()
	out := Expect(t, ts.PostJSON(t, "/api/campaigns", map[string]string{"name": name}, token), http.StatusCreated)
	return int64(out["id"].(float64))
}

// CreateCharacter creates an all-10s character with the given budget.
func (ts *TestServer) CreateCharacter(t *testing.T, token string, campaignID int64, name string, budget float64) int64 {
	t.Helper()
	out := Expect(t, ts.PostJSON(t, "/api/characters", map[string]interface{}{
		"campaign_id":  campaignID,
		"name":         name,
		"total_points": budget,
	}, token), http.StatusCreated)
	return int64(out["id"].(float64))
}

// Sheet fetches the computed sheet.
func (ts *TestServer) Sheet(t *testing.T, token string, charID int64) map[string]interface{} {
	t.Helper()
	return Expect(t, ts.Get(t, fmt.Sprintf("/api/characters/%d/sheet", charID), token), http.StatusOK)
}

var testCounter uint64

// UniqueID returns a short unique string suitable for usernames.
func UniqueID(prefix string) string {
	n := atomic.AddUint64(&testCounter, 1)
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano()%100000, n)
}
