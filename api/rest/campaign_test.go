package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignCRUD(t *testing.T) {
	s := newTestServer(t)
	token, owner := s.register(t, "gm")
	cid := s.createCampaign(t, token, "Banestorm")

	w := s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Banestorm", resp["name"])
	assert.Equal(t, float64(owner), resp["owner_id"])

	w = s.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d", cid), gin.H{"name": "Yrth", "description": "fantasy"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/campaigns?mine=true", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	camps := decode(t, w)["campaigns"].([]interface{})
	require.Len(t, camps, 1)
	assert.Equal(t, "Yrth", camps[0].(map[string]interface{})["name"])

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignOwnerOnlyWrites(t *testing.T) {
	s := newTestServer(t)
	gm, _ := s.register(t, "gm")
	other, _ := s.register(t, "player")
	cid := s.createCampaign(t, gm, "Mine")

	w := s.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d", cid), gin.H{"name": "Stolen"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", cid), nil, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/items", cid), gin.H{"name": "Sword"}, other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/campaigns/9999", gin.H{"name": "Nope"}, gm)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignDeleteCascades(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "gm")
	cid := s.createCampaign(t, token, "Short")
	charID := s.createCharacter(t, token, cid, "Hero", 100)
	require.Equal(t, http.StatusCreated, s.addTrait(t, token, charID, 10).Code)

	w := s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	var n int64
	require.NoError(t, s.db.Model(&model.Character{}).Where("id = ?", charID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, s.db.Model(&model.Trait{}).Where("character_id = ?", charID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSkillSetCatalog(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "gm")

	w := s.do(http.MethodPost, "/api/skillsets", gin.H{"name": "Combat"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	setID := int64(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, "/api/skillsets", gin.H{"name": "Combat"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/skillsets/%d/skills", setID),
		gin.H{"name": "Broadsword", "category": 3, "difficulty": 2}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, fmt.Sprintf("/api/skillsets/%d/skills", setID),
		gin.H{"name": "Bogus", "category": 9, "difficulty": 2}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/skillsets/%d/skills", setID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["skills"], 1)

	cid := s.createCampaign(t, token, "Arena")
	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/skillsets/%d", cid, setID), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["skill_sets"], 1)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d/skillsets/%d", cid, setID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d", cid), nil, token)
	_, attached := decode(t, w)["skill_sets"]
	assert.False(t, attached)
}

func TestSpellAndItemCatalog(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "gm")
	cid := s.createCampaign(t, token, "Magic")

	w := s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/spells", cid),
		gin.H{"name": "Fireball", "school": "Fire", "difficulty": 3}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	spellID := int64(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/spells", cid),
		gin.H{"name": "Easy", "difficulty": 1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/campaigns/%d/spells/%d", cid, spellID),
		gin.H{"name": "Fireball", "school": "Fire", "difficulty": 4}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(4), decode(t, w)["difficulty"])

	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/items", cid),
		gin.H{"name": "Rope", "value": 5, "weight": 2.5}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemID := int64(decode(t, w)["id"].(float64))

	w = s.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/items", cid),
		gin.H{"name": "Antigrav", "weight": -1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/campaigns/%d/items", cid), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["items"], 1)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d/items/%d", cid, itemID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d/spells/%d", cid, spellID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/campaigns/%d/spells/%d", cid, spellID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
