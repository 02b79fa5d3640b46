package rest_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/api/rest"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/admin/metrics", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/api/admin/metrics", nil, "", "X-Admin-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuthDisabledWithoutKey(t *testing.T) {
	r := gin.New()
	r.GET("/admin", rest.AdminAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminMetrics(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "gm")
	cid := s.createCampaign(t, token, "Camp")
	s.createCharacter(t, token, cid, "Hero", 100)

	w := s.do(http.MethodGet, "/api/admin/metrics", nil, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["accounts"])
	assert.Equal(t, float64(1), resp["campaigns"])
	assert.Equal(t, float64(1), resp["characters"])
	assert.Greater(t, resp["goroutines"].(float64), float64(0))
}

func TestAdminListAccounts(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		s.register(t, fmt.Sprintf("user%d", i))
	}
	w := s.do(http.MethodGet, "/api/admin/accounts?page=2&size=2", nil, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["total"])
	accounts := resp["accounts"].([]interface{})
	require.Len(t, accounts, 1)
	acc := accounts[0].(map[string]interface{})
	assert.Equal(t, "user2", acc["username"])
	assert.NotContains(t, acc, "password_hash")
}

func TestAdminBanAccount(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register(t, "troll")
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/campaigns", nil, token).Code)

	w := s.do(http.MethodPost, fmt.Sprintf("/api/admin/accounts/%d/ban", id), gin.H{"ban": true}, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)

	// Live tokens stop working immediately.
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/campaigns", nil, token).Code)
	var acc model.Account
	require.NoError(t, s.db.First(&acc, id).Error)
	assert.Equal(t, model.AccountBanned, acc.Status)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/admin/accounts/%d/ban", id), gin.H{"ban": false}, "", "X-Admin-Key", testAdminKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/campaigns", nil, token).Code)

	w = s.do(http.MethodPost, "/api/admin/accounts/9999/ban", gin.H{"ban": true}, "", "X-Admin-Key", testAdminKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminBanAccount_MalformedBodyKeepsBan(t *testing.T) {
	s := newTestServer(t)
	token, id := s.register(t, "troll")
	path := fmt.Sprintf("/api/admin/accounts/%d/ban", id)
	require.Equal(t, http.StatusOK, s.do(http.MethodPost, path, gin.H{"ban": true}, "", "X-Admin-Key", testAdminKey).Code)

	for _, body := range []interface{}{gin.H{"ban": "yes"}, gin.H{}, nil} {
		w := s.do(http.MethodPost, path, body, "", "X-Admin-Key", testAdminKey)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}

	var acc model.Account
	require.NoError(t, s.db.First(&acc, id).Error)
	assert.Equal(t, model.AccountBanned, acc.Status)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/campaigns", nil, token).Code)
}

func TestSyncBans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	banned := &model.Account{Username: "banned", PasswordHash: "x"}
	active := &model.Account{Username: "active", PasswordHash: "x"}
	require.NoError(t, db.Create(banned).Error)
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Model(banned).Update("status", model.AccountBanned).Error)

	require.NoError(t, rest.SyncBans(t.Context(), db, c))

	ok, err := c.Exists(t.Context(), mw.BannedKey(banned.ID))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.Exists(t.Context(), mw.BannedKey(active.ID))
	require.NoError(t, err)
	assert.False(t, ok)
}
