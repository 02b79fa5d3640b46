package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/model"
)

type skillSetRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=50"`
}

type skillRequest struct {
	Name               string `json:"name" form:"name" binding:"required,max=50"`
	Category           int    `json:"category" form:"category" binding:"required,min=1,max=6"`
	Difficulty         int    `json:"difficulty" form:"difficulty" binding:"required,min=1,max=4"`
	GrantsRunningBonus bool   `json:"grants_running_bonus" form:"grants_running_bonus"`
}

type spellRequest struct {
	Name                   string `json:"name" form:"name" binding:"required,max=50"`
	School                 string `json:"school" form:"school" binding:"max=50"`
	Resist                 string `json:"resist" form:"resist" binding:"max=50"`
	Duration               string `json:"duration" form:"duration" binding:"max=50"`
	CastTime               int    `json:"cast_time" form:"cast_time" binding:"notneg"`
	InitialFatigueCost     int    `json:"initial_fatigue_cost" form:"initial_fatigue_cost" binding:"notneg"`
	MaintenanceFatigueCost int    `json:"maintenance_fatigue_cost" form:"maintenance_fatigue_cost" binding:"notneg"`
	Difficulty             int    `json:"difficulty" form:"difficulty" binding:"required,oneof=3 4"`
}

type itemRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,max=50"`
	Description string  `json:"description" form:"description" binding:"max=2000"`
	Value       float64 `json:"value" form:"value" binding:"notneg"`
	Weight      float64 `json:"weight" form:"weight" binding:"notneg"`
}

// ListSkillSets handles GET /api/skillsets.
func (h *CampaignHandler) ListSkillSets(c *gin.Context) {
	var sets []model.SkillSet
	if err := h.db.Order("name").Find(&sets).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skill_sets": sets})
}

// CreateSkillSet handles POST /api/skillsets.
func (h *CampaignHandler) CreateSkillSet(c *gin.Context) {
	var req skillSetRequest
	if !bind(c, &req) {
		return
	}
	set := &model.SkillSet{Name: req.Name}
	if err := h.db.Create(set).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "skill set already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

// ListSkills handles GET /api/skillsets/:id/skills.
func (h *CampaignHandler) ListSkills(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var set model.SkillSet
	if err := h.db.Preload("Skills").First(&set, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skills": set.Skills})
}

// AddSkill handles POST /api/skillsets/:id/skills.
func (h *CampaignHandler) AddSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req skillRequest
	if !bind(c, &req) {
		return
	}
	var set model.SkillSet
	if err := h.db.First(&set, id).Error; err != nil {
		respondError(c, err)
		return
	}
	skill := &model.Skill{
		SkillSetID:         set.ID,
		Name:               req.Name,
		Category:           req.Category,
		Difficulty:         req.Difficulty,
		GrantsRunningBonus: req.GrantsRunningBonus,
	}
	if err := h.db.Create(skill).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, skill)
}

// AttachSkillSet handles POST /api/campaigns/:id/skillsets/:set_id.
func (h *CampaignHandler) AttachSkillSet(c *gin.Context) {
	h.changeSkillSet(c, true)
}

// DetachSkillSet handles DELETE /api/campaigns/:id/skillsets/:set_id.
// Skills already learned from the set stay on their characters.
func (h *CampaignHandler) DetachSkillSet(c *gin.Context) {
	h.changeSkillSet(c, false)
}

func (h *CampaignHandler) changeSkillSet(c *gin.Context, attach bool) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	setID, ok := parseID(c, "set_id")
	if !ok {
		return
	}
	var set model.SkillSet
	if err := h.db.First(&set, setID).Error; err != nil {
		respondError(c, err)
		return
	}
	assoc := h.db.Model(camp).Association("SkillSets")
	var err error
	if attach {
		err = assoc.Append(&set)
	} else {
		err = assoc.Delete(&set)
	}
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, gin.H{"skill_set_id": setID, "attach": attach}, err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.catalogChanged(c, camp.ID)
	c.JSON(http.StatusOK, gin.H{"campaign_id": camp.ID, "skill_set_id": set.ID, "attached": attach})
}

// ListSpells handles GET /api/campaigns/:id/spells.
func (h *CampaignHandler) ListSpells(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var spells []model.Spell
	if err := h.db.Where("campaign_id = ?", id).Order("name").Find(&spells).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spells": spells})
}

// CreateSpell handles POST /api/campaigns/:id/spells.
func (h *CampaignHandler) CreateSpell(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	var req spellRequest
	if !bind(c, &req) {
		return
	}
	spell := &model.Spell{CampaignID: camp.ID}
	req.apply(spell)
	err := h.db.Create(spell).Error
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spell)
}

// UpdateSpell handles PUT /api/campaigns/:id/spells/:spell_id.
func (h *CampaignHandler) UpdateSpell(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	spellID, ok := parseID(c, "spell_id")
	if !ok {
		return
	}
	var req spellRequest
	if !bind(c, &req) {
		return
	}
	var spell model.Spell
	if err := h.db.Where("id = ? AND campaign_id = ?", spellID, camp.ID).First(&spell).Error; err != nil {
		respondError(c, err)
		return
	}
	req.apply(&spell)
	err := h.db.Save(&spell).Error
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.catalogChanged(c, camp.ID)
	c.JSON(http.StatusOK, spell)
}

// DeleteSpell handles DELETE /api/campaigns/:id/spells/:spell_id.
func (h *CampaignHandler) DeleteSpell(c *gin.Context) {
	h.deleteCatalogRow(c, "spell_id", &model.Spell{})
}

// ListItems handles GET /api/campaigns/:id/items.
func (h *CampaignHandler) ListItems(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var items []model.Item
	if err := h.db.Where("campaign_id = ?", id).Order("name").Find(&items).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateItem handles POST /api/campaigns/:id/items.
func (h *CampaignHandler) CreateItem(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	var req itemRequest
	if !bind(c, &req) {
		return
	}
	item := &model.Item{CampaignID: camp.ID, Name: req.Name, Description: req.Description, Value: req.Value, Weight: req.Weight}
	err := h.db.Create(item).Error
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateItem handles PUT /api/campaigns/:id/items/:item_id.
func (h *CampaignHandler) UpdateItem(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	var req itemRequest
	if !bind(c, &req) {
		return
	}
	var item model.Item
	if err := h.db.Where("id = ? AND campaign_id = ?", itemID, camp.ID).First(&item).Error; err != nil {
		respondError(c, err)
		return
	}
	item.Name, item.Description, item.Value, item.Weight = req.Name, req.Description, req.Value, req.Weight
	err := h.db.Save(&item).Error
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.catalogChanged(c, camp.ID)
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/campaigns/:id/items/:item_id.
func (h *CampaignHandler) DeleteItem(c *gin.Context) {
	h.deleteCatalogRow(c, "item_id", &model.Item{})
}

func (h *CampaignHandler) deleteCatalogRow(c *gin.Context, param string, row interface{}) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	rowID, ok := parseID(c, param)
	if !ok {
		return
	}
	res := h.db.Where("id = ? AND campaign_id = ?", rowID, camp.ID).Delete(row)
	h.audit.log(c, start, audit.ActionCatalogChange, camp.ID, 0, gin.H{param: rowID, "deleted": true}, res.Error)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, errNotFound)
		return
	}
	h.catalogChanged(c, camp.ID)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (r spellRequest) apply(s *model.Spell) {
	s.Name = r.Name
	s.School = r.School
	s.Resist = r.Resist
	s.Duration = r.Duration
	s.CastTime = r.CastTime
	s.InitialFatigueCost = r.InitialFatigueCost
	s.MaintenanceFatigueCost = r.MaintenanceFatigueCost
	s.Difficulty = r.Difficulty
}
