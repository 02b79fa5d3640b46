package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCharacterDefaults(t *testing.T) {
	s := newTestServer(t)
	token, owner := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")

	w := s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": cid, "total_points": 100}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "New Character", resp["name"])
	assert.Equal(t, float64(owner), resp["owner_id"])
	for _, attr := range []string{"strength", "dexterity", "intelligence", "health"} {
		assert.Equal(t, float64(10), resp[attr], attr)
	}
	assert.Equal(t, float64(100), resp["total_points"])
}

func TestCreateCharacterUnknownCampaign(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")

	w := s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": 404, "total_points": 100}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "campaign_id")
}

func TestCreateCharacterMissingBudget(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")

	w := s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": cid, "name": "Nobody"}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "total_points", resp["field"])
	assert.NotContains(t, resp, "spent")

	var n int64
	require.NoError(t, s.db.Model(&model.Character{}).Count(&n).Error)
	assert.Zero(t, n, "rejected create must not persist")
}

func TestCreateCharacterOverBudget(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")

	// ST 13 costs 30.
	w := s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": cid, "strength": 13, "total_points": 25}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "total_points", resp["field"])
	assert.Equal(t, float64(25), resp["budget"])
	assert.Equal(t, float64(30), resp["spent"])
	assert.Equal(t, float64(-5), resp["remaining"])
}

func TestCreateCharacterValidation(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")

	w := s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": cid, "strength": -1, "total_points": 10.3}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Equal(t, "notneg", fields["strength"])
	assert.Equal(t, "quarter", fields["total_points"])

	// Wealth must be one of the listed levels; the calculator rejects it.
	w = s.do(http.MethodPost, "/api/characters", gin.H{"campaign_id": cid, "wealth": 7, "total_points": 100}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields = decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "wealth")
}

func TestUpdateCharacter(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")
	id := s.createCharacter(t, token, cid, "Hero", 100)

	w := s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"dexterity": 12, "story": "born"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, float64(12), resp["dexterity"])
	assert.Equal(t, float64(10), resp["strength"], "absent fields keep their value")
	assert.Equal(t, "born", resp["story"])

	// Zero is a legal attribute value and refunds points.
	w = s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"health": 0}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(0), decode(t, w)["health"])
}

func TestUpdateCharacterOverBudgetRollsBack(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")
	id := s.createCharacter(t, token, cid, "Hero", 20)

	// DX 13 costs 30.
	w := s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"dexterity": 13}, token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var ch model.Character
	require.NoError(t, s.db.First(&ch, id).Error)
	assert.Equal(t, 10, ch.Dexterity)

	// Raising the budget in the same write is accepted.
	w = s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"dexterity": 13, "total_points": 30}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCharacterOwnership(t *testing.T) {
	s := newTestServer(t)
	owner, _ := s.register(t, "owner")
	other, _ := s.register(t, "other")
	cid := s.createCampaign(t, owner, "Camp")
	id := s.createCharacter(t, owner, cid, "Hero", 100)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/characters/%d", id), nil, other).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"name": "Mine"}, other).Code)
	assert.Equal(t, http.StatusForbidden, s.addTrait(t, other, id, 5).Code)
	assert.Equal(t, http.StatusForbidden,
		s.do(http.MethodDelete, fmt.Sprintf("/api/characters/%d", id), nil, other).Code)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/characters/9999", nil, owner).Code)
	assert.Equal(t, http.StatusNotFound,
		s.do(http.MethodPut, "/api/characters/9999", gin.H{"name": "x"}, owner).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/characters/abc", nil, owner).Code)
}

func TestListCharacters(t *testing.T) {
	s := newTestServer(t)
	a, _ := s.register(t, "a")
	b, _ := s.register(t, "b")
	c1 := s.createCampaign(t, a, "One")
	c2 := s.createCampaign(t, a, "Two")
	s.createCharacter(t, a, c1, "Alpha", 100)
	s.createCharacter(t, b, c1, "Beta", 100)
	s.createCharacter(t, a, c2, "Gamma", 100)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/characters?campaign_id=%d", c1), nil, a)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["characters"], 2)

	w = s.do(http.MethodGet, "/api/characters?mine=true", nil, b)
	require.Equal(t, http.StatusOK, w.Code)
	chars := decode(t, w)["characters"].([]interface{})
	require.Len(t, chars, 1)
	assert.Equal(t, "Beta", chars[0].(map[string]interface{})["name"])
}

func TestDeleteCharacter(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")
	id := s.createCharacter(t, token, cid, "Hero", 100)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/sheet", id), nil, token).Code)

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/characters/%d", id), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	exists, err := s.cache.Exists(t.Context(), sheet.SheetKey(id))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/sheet", id), nil, token).Code)
}

func TestCharacterSheet(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "player")
	cid := s.createCampaign(t, token, "Camp")
	id := s.createCharacter(t, token, cid, "Hero", 100)
	require.Equal(t, http.StatusCreated, s.addTrait(t, token, id, 15).Code)
	require.Equal(t, http.StatusCreated, s.addTrait(t, token, id, -10).Code)

	w := s.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/sheet", id), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Hero", resp["name"])
	assert.Equal(t, float64(10), resp["hitpoints"])
	assert.Equal(t, float64(5), resp["speed"])
	assert.Equal(t, float64(5), resp["movement"])

	points := resp["points"].(map[string]interface{})
	assert.Equal(t, float64(15), points["advantages"])
	assert.Equal(t, float64(-10), points["disadvantages"])
	assert.Equal(t, float64(5), points["spent"])
	assert.Equal(t, float64(95), points["remaining"])

	// A later write invalidates the cached sheet.
	w = s.do(http.MethodPut, fmt.Sprintf("/api/characters/%d", id), gin.H{"health": 12}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, fmt.Sprintf("/api/characters/%d/sheet", id), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(12), decode(t, w)["hitpoints"])
}
