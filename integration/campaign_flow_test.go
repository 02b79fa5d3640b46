package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A game master builds a campaign catalog and a player builds a character
// against it, spending points until the budget stops them.
func TestCampaignToSheetFlow(t *testing.T) {
	ts := NewTestServer(t)

	gm, _ := ts.Register(t, UniqueID("gm"), "gmpass12")
	player, _ := ts.Register(t, UniqueID("pl"), "plpass12")

	// 1. Catalog.
	cid := ts.CreateCampaign(t, gm, "Fantasy")
	set := Expect(t, ts.PostJSON(t, "/api/skillsets", map[string]string{"name": UniqueID("Athletics")}, gm), http.StatusCreated)
	setID := int64(set["id"].(float64))
	skill := Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/skillsets/%d/skills", setID), map[string]interface{}{
		"name": "Running", "category": 4, "difficulty": 3, "grants_running_bonus": true,
	}, gm), http.StatusCreated)
	skillID := int64(skill["id"].(float64))
	Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/campaigns/%d/skillsets/%d", cid, setID), nil, gm), http.StatusOK)
	item := Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/campaigns/%d/items", cid), map[string]interface{}{
		"name": "Backpack", "value": 60, "weight": 3,
	}, gm), http.StatusCreated)
	itemID := int64(item["id"].(float64))

	// Players cannot edit the catalog.
	Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/campaigns/%d/items", cid), map[string]interface{}{"name": "Gold"}, player), http.StatusForbidden)

	// 2. Character.
	charID := ts.CreateCharacter(t, player, cid, "Runner", 40)
	Expect(t, ts.Put(t, fmt.Sprintf("/api/characters/%d", charID), map[string]interface{}{"health": 11}, player), http.StatusOK)
	Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/characters/%d/skills", charID),
		map[string]interface{}{"skill_id": skillID, "points": 8}, player), http.StatusCreated)
	Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/characters/%d/possessions", charID),
		map[string]interface{}{"item_id": itemID, "quantity": 1}, player), http.StatusCreated)

	sh := ts.Sheet(t, player, charID)
	points := sh["points"].(map[string]interface{})
	assert.Equal(t, float64(10), points["attributes"])
	assert.Equal(t, float64(8), points["skills"])
	assert.Equal(t, float64(18), points["spent"])
	assert.Equal(t, float64(22), points["remaining"])
	assert.Equal(t, float64(11), sh["hitpoints"])
	assert.Equal(t, float64(3), sh["encumbrance"].(map[string]interface{})["weight"])

	// 3. The budget holds.
	over := Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/characters/%d/traits", charID),
		map[string]interface{}{"name": "Wealthy Uncle", "points": 30}, player), http.StatusUnprocessableEntity)
	assert.Equal(t, "total_points", over["field"])
	assert.Equal(t, float64(48), over["spent"])
	assert.Equal(t, float64(18), spentOf(ts.Sheet(t, player, charID)))

	// 4. Ranking.
	var ranking map[string]interface{}
	ReadJSON(t, ts.Get(t, fmt.Sprintf("/api/campaigns/%d/ranking", cid), player), &ranking)
	entries := ranking["ranking"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, float64(18), entries[0].(map[string]interface{})["points_spent"])

	// 5. Deleting the campaign takes the character with it.
	Expect(t, ts.Delete(t, fmt.Sprintf("/api/campaigns/%d", cid), gm), http.StatusOK)
	resp := ts.Get(t, fmt.Sprintf("/api/characters/%d/sheet", charID), player)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// HTML forms can only POST; _method carries the real verb.
func TestBrowserFormFlow(t *testing.T) {
	ts := NewTestServer(t)
	token, _ := ts.Register(t, UniqueID("form"), "formpass")
	cid := ts.CreateCampaign(t, token, "Forms")
	charID := ts.CreateCharacter(t, token, cid, "Clicker", 50)

	out := Expect(t, ts.PostForm(t, fmt.Sprintf("/api/characters/%d", charID), url.Values{
		"_method":  {"PUT"},
		"strength": {"12"},
		"story":    {"typed into a textarea"},
	}, token), http.StatusOK)
	assert.Equal(t, float64(12), out["strength"])
	assert.Equal(t, "typed into a textarea", out["story"])

	out = Expect(t, ts.PostForm(t, fmt.Sprintf("/api/characters/%d", charID), url.Values{
		"_method":      {"PUT"},
		"total_points": {"10.1"},
	}, token), http.StatusBadRequest)
	assert.Equal(t, "quarter", out["fields"].(map[string]interface{})["total_points"])

	Expect(t, ts.PostForm(t, fmt.Sprintf("/api/characters/%d", charID), url.Values{"_method": {"DELETE"}}, token), http.StatusOK)
	resp := ts.Get(t, fmt.Sprintf("/api/characters/%d", charID), token)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMutationsAreAudited(t *testing.T) {
	ts := NewTestServer(t)
	token, accountID := ts.Register(t, UniqueID("aud"), "audpass1")
	cid := ts.CreateCampaign(t, token, "Audited")
	charID := ts.CreateCharacter(t, token, cid, "Tracked", 10)
	Expect(t, ts.PostJSON(t, fmt.Sprintf("/api/characters/%d/traits", charID),
		map[string]interface{}{"name": "Greed", "points": 20}, token), http.StatusUnprocessableEntity)

	// Stop flushes the queue.
	ts.Audit.Stop(t.Context())

	var logs []model.AuditLog
	require.NoError(t, ts.DB.Where("account_id = ?", accountID).Order("id").Find(&logs).Error)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []string{
		audit.ActionCampaignCreate,
		audit.ActionCharacterCreate,
		audit.ActionRowChange,
	}, actions)

	last := logs[len(logs)-1]
	require.NotNil(t, last.CharacterID)
	assert.Equal(t, charID, *last.CharacterID)
	assert.Contains(t, last.Error, "too many character points")
	assert.NotEmpty(t, last.TraceID)
}

func spentOf(sh map[string]interface{}) float64 {
	return sh["points"].(map[string]interface{})["spent"].(float64)
}
