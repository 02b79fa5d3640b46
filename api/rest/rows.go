package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/gurps"
	"github.com/gurpsmanager/server/model"
	"gorm.io/gorm"
)

type characterSkillRequest struct {
	SkillID    int64   `json:"skill_id" form:"skill_id"`
	Points     float64 `json:"points" form:"points" binding:"notneg,quarter"`
	BonusLevel int     `json:"bonus_level" form:"bonus_level"`
	Comments   string  `json:"comments" form:"comments" binding:"max=50"`
}

type characterSpellRequest struct {
	SpellID    int64   `json:"spell_id" form:"spell_id"`
	Points     float64 `json:"points" form:"points" binding:"notneg,quarter"`
	BonusLevel int     `json:"bonus_level" form:"bonus_level"`
}

type traitRequest struct {
	Name        string  `json:"name" form:"name" binding:"required,max=50"`
	Description string  `json:"description" form:"description" binding:"max=2000"`
	Points      float64 `json:"points" form:"points" binding:"quarter"`
}

type possessionRequest struct {
	ItemID   int64 `json:"item_id" form:"item_id"`
	Quantity int   `json:"quantity" form:"quantity" binding:"notneg"`
}

type hitLocationRequest struct {
	Name             string `json:"name" form:"name" binding:"required,max=50"`
	Status           string `json:"status" form:"status" binding:"max=500"`
	PassiveDefense   int    `json:"passive_defense" form:"passive_defense"`
	DamageResistance int    `json:"damage_resistance" form:"damage_resistance"`
	DamageTaken      int    `json:"damage_taken" form:"damage_taken" binding:"notneg"`
}

// rowKind describes one kind of character row for the shared handlers.
type rowKind struct {
	name  string
	param string
	model func() interface{}
	list  func() interface{}
}

var (
	skillRows       = rowKind{"skills", "row_id", func() interface{} { return &model.CharacterSkill{} }, func() interface{} { return &[]model.CharacterSkill{} }}
	spellRows       = rowKind{"spells", "row_id", func() interface{} { return &model.CharacterSpell{} }, func() interface{} { return &[]model.CharacterSpell{} }}
	traitRows       = rowKind{"traits", "row_id", func() interface{} { return &model.Trait{} }, func() interface{} { return &[]model.Trait{} }}
	possessionRows  = rowKind{"possessions", "row_id", func() interface{} { return &model.Possession{} }, func() interface{} { return &[]model.Possession{} }}
	hitLocationRows = rowKind{"hit_locations", "row_id", func() interface{} { return &model.HitLocation{} }, func() interface{} { return &[]model.HitLocation{} }}
)

// ---- list / delete, shared by every row kind ----

func (h *CharacterHandler) listRows(c *gin.Context, kind rowKind, preload ...string) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.Select("id").First(&model.Character{}, id).Error; err != nil {
		respondError(c, err)
		return
	}
	q := h.db.Where("character_id = ?", id).Order("id")
	for _, p := range preload {
		q = q.Preload(p)
	}
	rows := kind.list()
	if err := q.Find(rows).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{kind.name: rows})
}

func (h *CharacterHandler) deleteRow(c *gin.Context, kind rowKind) {
	start := time.Now()
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rowID, ok := parseID(c, kind.param)
	if !ok {
		return
	}
	after, err := h.write(c, id, func(tx *gorm.DB, ch *model.Character) error {
		res := tx.Where("id = ? AND character_id = ?", rowID, ch.ID).Delete(kind.model())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errNotFound
		}
		return nil
	})
	h.audit.log(c, start, audit.ActionRowChange, campaignOf(after), id, gin.H{kind.name: rowID, "deleted": true}, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// saveRow runs mutate inside a budget-checked write and responds with the
// row it produced.
func (h *CharacterHandler) saveRow(c *gin.Context, status int, req interface{}, mutate func(tx *gorm.DB, ch *model.Character) (interface{}, error)) {
	start := time.Now()
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var row interface{}
	after, err := h.write(c, id, func(tx *gorm.DB, ch *model.Character) error {
		var err error
		row, err = mutate(tx, ch)
		return err
	})
	h.audit.log(c, start, audit.ActionRowChange, campaignOf(after), id, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, row)
}

func rowID(c *gin.Context) (int64, bool) { return parseID(c, "row_id") }

// ---- skills ----

func (h *CharacterHandler) ListSkills(c *gin.Context) { h.listRows(c, skillRows, "Skill") }

// AddSkill handles POST /api/characters/:id/skills. The skill must belong to
// a skill set attached to the character's campaign.
func (h *CharacterHandler) AddSkill(c *gin.Context) {
	var req characterSkillRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusCreated, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var skill model.Skill
		err := tx.Joins("JOIN campaign_skill_sets ON campaign_skill_sets.skill_set_id = skills.skill_set_id").
			Where("campaign_skill_sets.campaign_id = ? AND skills.id = ?", ch.CampaignID, req.SkillID).
			First(&skill).Error
		if err != nil {
			return nil, notInCampaign(err, "skill_id")
		}
		row := &model.CharacterSkill{
			CharacterID: ch.ID, SkillID: skill.ID, Skill: skill,
			Points: req.Points, BonusLevel: req.BonusLevel, Comments: req.Comments,
		}
		return row, tx.Omit("Skill").Create(row).Error
	})
}

// UpdateSkill handles PUT /api/characters/:id/skills/:row_id.
func (h *CharacterHandler) UpdateSkill(c *gin.Context) {
	rid, ok := rowID(c)
	if !ok {
		return
	}
	var req characterSkillRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusOK, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var row model.CharacterSkill
		if err := tx.Preload("Skill").Where("id = ? AND character_id = ?", rid, ch.ID).First(&row).Error; err != nil {
			return nil, err
		}
		row.Points, row.BonusLevel, row.Comments = req.Points, req.BonusLevel, req.Comments
		return &row, tx.Model(&row).Updates(map[string]interface{}{
			"points": row.Points, "bonus_level": row.BonusLevel, "comments": row.Comments,
		}).Error
	})
}

func (h *CharacterHandler) DeleteSkill(c *gin.Context) { h.deleteRow(c, skillRows) }

// ---- spells ----

func (h *CharacterHandler) ListSpells(c *gin.Context) { h.listRows(c, spellRows, "Spell") }

// AddSpell handles POST /api/characters/:id/spells.
func (h *CharacterHandler) AddSpell(c *gin.Context) {
	var req characterSpellRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusCreated, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var spell model.Spell
		if err := tx.Where("id = ? AND campaign_id = ?", req.SpellID, ch.CampaignID).First(&spell).Error; err != nil {
			return nil, notInCampaign(err, "spell_id")
		}
		row := &model.CharacterSpell{
			CharacterID: ch.ID, SpellID: spell.ID, Spell: spell,
			Points: req.Points, BonusLevel: req.BonusLevel,
		}
		return row, tx.Omit("Spell").Create(row).Error
	})
}

// UpdateSpell handles PUT /api/characters/:id/spells/:row_id.
func (h *CharacterHandler) UpdateSpell(c *gin.Context) {
	rid, ok := rowID(c)
	if !ok {
		return
	}
	var req characterSpellRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusOK, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var row model.CharacterSpell
		if err := tx.Preload("Spell").Where("id = ? AND character_id = ?", rid, ch.ID).First(&row).Error; err != nil {
			return nil, err
		}
		row.Points, row.BonusLevel = req.Points, req.BonusLevel
		return &row, tx.Model(&row).Updates(map[string]interface{}{
			"points": row.Points, "bonus_level": row.BonusLevel,
		}).Error
	})
}

func (h *CharacterHandler) DeleteSpell(c *gin.Context) { h.deleteRow(c, spellRows) }

// ---- traits ----

func (h *CharacterHandler) ListTraits(c *gin.Context) { h.listRows(c, traitRows) }

// AddTrait handles POST /api/characters/:id/traits. Negative points make a
// disadvantage.
func (h *CharacterHandler) AddTrait(c *gin.Context) {
	var req traitRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusCreated, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		row := &model.Trait{CharacterID: ch.ID, Name: req.Name, Description: req.Description, Points: req.Points}
		return row, tx.Create(row).Error
	})
}

func (h *CharacterHandler) UpdateTrait(c *gin.Context) {
	rid, ok := rowID(c)
	if !ok {
		return
	}
	var req traitRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusOK, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var row model.Trait
		if err := tx.Where("id = ? AND character_id = ?", rid, ch.ID).First(&row).Error; err != nil {
			return nil, err
		}
		row.Name, row.Description, row.Points = req.Name, req.Description, req.Points
		return &row, tx.Model(&row).Updates(map[string]interface{}{
			"name": row.Name, "description": row.Description, "points": row.Points,
		}).Error
	})
}

func (h *CharacterHandler) DeleteTrait(c *gin.Context) { h.deleteRow(c, traitRows) }

// ---- possessions ----

func (h *CharacterHandler) ListPossessions(c *gin.Context) {
	h.listRows(c, possessionRows, "Item")
}

// AddPossession handles POST /api/characters/:id/possessions. The item must
// be in the campaign's catalog.
func (h *CharacterHandler) AddPossession(c *gin.Context) {
	var req possessionRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusCreated, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var item model.Item
		if err := tx.Where("id = ? AND campaign_id = ?", req.ItemID, ch.CampaignID).First(&item).Error; err != nil {
			return nil, notInCampaign(err, "item_id")
		}
		row := &model.Possession{CharacterID: ch.ID, ItemID: item.ID, Item: item, Quantity: req.Quantity}
		return row, tx.Omit("Item").Create(row).Error
	})
}

func (h *CharacterHandler) UpdatePossession(c *gin.Context) {
	rid, ok := rowID(c)
	if !ok {
		return
	}
	var req possessionRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusOK, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var row model.Possession
		if err := tx.Preload("Item").Where("id = ? AND character_id = ?", rid, ch.ID).First(&row).Error; err != nil {
			return nil, err
		}
		row.Quantity = req.Quantity
		return &row, tx.Model(&row).Update("quantity", row.Quantity).Error
	})
}

func (h *CharacterHandler) DeletePossession(c *gin.Context) { h.deleteRow(c, possessionRows) }

// ---- hit locations ----

func (h *CharacterHandler) ListHitLocations(c *gin.Context) { h.listRows(c, hitLocationRows) }

func (h *CharacterHandler) AddHitLocation(c *gin.Context) {
	var req hitLocationRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusCreated, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		row := &model.HitLocation{CharacterID: ch.ID}
		req.apply(row)
		return row, tx.Create(row).Error
	})
}

func (h *CharacterHandler) UpdateHitLocation(c *gin.Context) {
	rid, ok := rowID(c)
	if !ok {
		return
	}
	var req hitLocationRequest
	if !bind(c, &req) {
		return
	}
	h.saveRow(c, http.StatusOK, req, func(tx *gorm.DB, ch *model.Character) (interface{}, error) {
		var row model.HitLocation
		if err := tx.Where("id = ? AND character_id = ?", rid, ch.ID).First(&row).Error; err != nil {
			return nil, err
		}
		req.apply(&row)
		return &row, tx.Save(&row).Error
	})
}

func (h *CharacterHandler) DeleteHitLocation(c *gin.Context) { h.deleteRow(c, hitLocationRows) }

func (r hitLocationRequest) apply(l *model.HitLocation) {
	l.Name = r.Name
	l.Status = r.Status
	l.PassiveDefense = r.PassiveDefense
	l.DamageResistance = r.DamageResistance
	l.DamageTaken = r.DamageTaken
}

// notInCampaign turns a missing catalog lookup into a field error.
func notInCampaign(err error, field string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &gurps.ValidationError{Field: field, Msg: "not available in this campaign"}
	}
	return err
}
