package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/sheet"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultAttribute = 10

// CharacterHandler handles characters, their rows and computed sheets.
type CharacterHandler struct {
	db     *gorm.DB
	sheets *sheet.Service
	audit  auditor
	logger *zap.Logger
}

func NewCharacterHandler(db *gorm.DB, sheets *sheet.Service, auditSvc *audit.Service, logger *zap.Logger) *CharacterHandler {
	return &CharacterHandler{db: db, sheets: sheets, audit: auditor{auditSvc}, logger: logger}
}

// characterRequest carries the editable character fields. Absent fields keep
// their current value; on create, absent attributes start at 10.
type characterRequest struct {
	CampaignID  int64   `json:"campaign_id" form:"campaign_id"`
	Name        *string `json:"name" form:"name" binding:"omitempty,min=1,max=50"`
	Description *string `json:"description" form:"description" binding:"omitempty,max=2000"`
	Story       *string `json:"story" form:"story" binding:"omitempty,max=2000"`

	Strength     *int `json:"strength" form:"strength" binding:"omitempty,notneg"`
	Dexterity    *int `json:"dexterity" form:"dexterity" binding:"omitempty,notneg"`
	Intelligence *int `json:"intelligence" form:"intelligence" binding:"omitempty,notneg"`
	Health       *int `json:"health" form:"health" binding:"omitempty,notneg"`
	Magery       *int `json:"magery" form:"magery" binding:"omitempty,notneg"`

	BonusFatigue    *int `json:"bonus_fatigue" form:"bonus_fatigue"`
	BonusHitpoints  *int `json:"bonus_hitpoints" form:"bonus_hitpoints"`
	BonusAlertness  *int `json:"bonus_alertness" form:"bonus_alertness"`
	BonusWillpower  *int `json:"bonus_willpower" form:"bonus_willpower"`
	BonusFright     *int `json:"bonus_fright" form:"bonus_fright"`
	BonusSpeed      *int `json:"bonus_speed" form:"bonus_speed"`
	BonusMovement   *int `json:"bonus_movement" form:"bonus_movement"`
	BonusDodge      *int `json:"bonus_dodge" form:"bonus_dodge"`
	BonusInitiative *int `json:"bonus_initiative" form:"bonus_initiative"`

	FreeStrength     *int `json:"free_strength" form:"free_strength"`
	FreeDexterity    *int `json:"free_dexterity" form:"free_dexterity"`
	FreeIntelligence *int `json:"free_intelligence" form:"free_intelligence"`
	FreeHealth       *int `json:"free_health" form:"free_health"`

	TotalPoints *float64 `json:"total_points" form:"total_points" binding:"omitempty,quarter"`
	UsedFatigue *float64 `json:"used_fatigue" form:"used_fatigue" binding:"omitempty,quarter"`

	Appearance    *int `json:"appearance" form:"appearance"`
	Wealth        *int `json:"wealth" form:"wealth"`
	EideticMemory *int `json:"eidetic_memory" form:"eidetic_memory"`
	MuscleMemory  *int `json:"muscle_memory" form:"muscle_memory"`
}

func set[T any](cols map[string]interface{}, col string, dst *T, v *T) {
	if v != nil {
		*dst = *v
		cols[col] = *v
	}
}

// apply copies the present fields onto ch and returns them as columns.
func (r *characterRequest) apply(ch *model.Character) map[string]interface{} {
	cols := make(map[string]interface{})
	set(cols, "name", &ch.Name, r.Name)
	set(cols, "description", &ch.Description, r.Description)
	set(cols, "story", &ch.Story, r.Story)

	set(cols, "strength", &ch.Strength, r.Strength)
	set(cols, "dexterity", &ch.Dexterity, r.Dexterity)
	set(cols, "intelligence", &ch.Intelligence, r.Intelligence)
	set(cols, "health", &ch.Health, r.Health)
	set(cols, "magery", &ch.Magery, r.Magery)

	set(cols, "bonus_fatigue", &ch.BonusFatigue, r.BonusFatigue)
	set(cols, "bonus_hitpoints", &ch.BonusHitpoints, r.BonusHitpoints)
	set(cols, "bonus_alertness", &ch.BonusAlertness, r.BonusAlertness)
	set(cols, "bonus_willpower", &ch.BonusWillpower, r.BonusWillpower)
	set(cols, "bonus_fright", &ch.BonusFright, r.BonusFright)
	set(cols, "bonus_speed", &ch.BonusSpeed, r.BonusSpeed)
	set(cols, "bonus_movement", &ch.BonusMovement, r.BonusMovement)
	set(cols, "bonus_dodge", &ch.BonusDodge, r.BonusDodge)
	set(cols, "bonus_initiative", &ch.BonusInitiative, r.BonusInitiative)

	set(cols, "free_strength", &ch.FreeStrength, r.FreeStrength)
	set(cols, "free_dexterity", &ch.FreeDexterity, r.FreeDexterity)
	set(cols, "free_intelligence", &ch.FreeIntelligence, r.FreeIntelligence)
	set(cols, "free_health", &ch.FreeHealth, r.FreeHealth)

	if r.TotalPoints != nil {
		tp := *r.TotalPoints
		ch.TotalPoints = &tp
		cols["total_points"] = tp
	}
	set(cols, "used_fatigue", &ch.UsedFatigue, r.UsedFatigue)

	set(cols, "appearance", &ch.Appearance, r.Appearance)
	set(cols, "wealth", &ch.Wealth, r.Wealth)
	set(cols, "eidetic_memory", &ch.EideticMemory, r.EideticMemory)
	set(cols, "muscle_memory", &ch.MuscleMemory, r.MuscleMemory)
	return cols
}

// List handles GET /api/characters. Filters: ?campaign_id=, ?mine=true.
func (h *CharacterHandler) List(c *gin.Context) {
	q := h.db.Order("name")
	if cid := c.Query("campaign_id"); cid != "" {
		q = q.Where("campaign_id = ?", cid)
	}
	if c.Query("mine") == "true" {
		q = q.Where("owner_id = ?", mw.GetAccountID(c))
	}
	var chars []model.Character
	if err := q.Find(&chars).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": chars})
}

// Create handles POST /api/characters.
func (h *CharacterHandler) Create(c *gin.Context) {
	start := time.Now()
	var req characterRequest
	if !bind(c, &req) {
		return
	}
	var camp model.Campaign
	if err := h.db.First(&camp, req.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": gin.H{"campaign_id": "unknown campaign"}})
			return
		}
		respondError(c, err)
		return
	}

	ch := &model.Character{
		CampaignID:   camp.ID,
		OwnerID:      mw.GetAccountID(c),
		Name:         "New Character",
		Strength:     defaultAttribute,
		Dexterity:    defaultAttribute,
		Intelligence: defaultAttribute,
		Health:       defaultAttribute,
	}
	req.apply(ch)

	err := h.sheets.Create(c.Request.Context(), ch)
	h.audit.log(c, start, audit.ActionCharacterCreate, camp.ID, ch.ID, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// Get handles GET /api/characters/:id.
func (h *CharacterHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var ch model.Character
	if err := h.db.First(&ch, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Update handles PUT /api/characters/:id.
func (h *CharacterHandler) Update(c *gin.Context) {
	start := time.Now()
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req characterRequest
	if !bind(c, &req) {
		return
	}
	after, err := h.write(c, id, func(tx *gorm.DB, ch *model.Character) error {
		cols := req.apply(ch)
		if len(cols) == 0 {
			return nil
		}
		return tx.Model(&model.Character{}).Where("id = ?", ch.ID).Updates(cols).Error
	})
	h.audit.log(c, start, audit.ActionCharacterUpdate, campaignOf(after), id, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, after)
}

// Delete handles DELETE /api/characters/:id.
func (h *CharacterHandler) Delete(c *gin.Context) {
	start := time.Now()
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ch, err := h.owned(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	err = h.sheets.Delete(c.Request.Context(), ch)
	h.audit.log(c, start, audit.ActionCharacterDelete, ch.CampaignID, ch.ID, nil, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Sheet handles GET /api/characters/:id/sheet.
func (h *CharacterHandler) Sheet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sh, err := h.sheets.Sheet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

// owned loads a character without rows and checks the caller owns it.
func (h *CharacterHandler) owned(c *gin.Context, id int64) (*model.Character, error) {
	var ch model.Character
	if err := h.db.First(&ch, id).Error; err != nil {
		return nil, err
	}
	if ch.OwnerID != mw.GetAccountID(c) {
		return nil, errForbidden
	}
	return &ch, nil
}

// write runs fn through the sheet service after the ownership check.
func (h *CharacterHandler) write(c *gin.Context, id int64, fn func(tx *gorm.DB, ch *model.Character) error) (*model.Character, error) {
	if _, err := h.owned(c, id); err != nil {
		return nil, err
	}
	return h.sheets.Write(c.Request.Context(), id, fn)
}

func campaignOf(ch *model.Character) int64 {
	if ch == nil {
		return 0
	}
	return ch.CampaignID
}
