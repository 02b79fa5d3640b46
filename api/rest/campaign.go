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

// CampaignHandler handles campaigns and their catalogs.
type CampaignHandler struct {
	db     *gorm.DB
	sheets *sheet.Service
	audit  auditor
	logger *zap.Logger
}

func NewCampaignHandler(db *gorm.DB, sheets *sheet.Service, auditSvc *audit.Service, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{db: db, sheets: sheets, audit: auditor{auditSvc}, logger: logger}
}

type campaignRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=50"`
	Description string `json:"description" form:"description" binding:"max=2000"`
}

// List handles GET /api/campaigns. ?mine=true limits to the caller's campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	q := h.db.Order("name")
	if c.Query("mine") == "true" {
		q = q.Where("owner_id = ?", mw.GetAccountID(c))
	}
	var camps []model.Campaign
	if err := q.Find(&camps).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": camps})
}

// Create handles POST /api/campaigns.
func (h *CampaignHandler) Create(c *gin.Context) {
	start := time.Now()
	var req campaignRequest
	if !bind(c, &req) {
		return
	}
	camp := &model.Campaign{OwnerID: mw.GetAccountID(c), Name: req.Name, Description: req.Description}
	err := h.db.Create(camp).Error
	h.audit.log(c, start, audit.ActionCampaignCreate, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, camp)
}

// Get handles GET /api/campaigns/:id.
func (h *CampaignHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var camp model.Campaign
	if err := h.db.Preload("SkillSets").First(&camp, id).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, camp)
}

// Update handles PUT /api/campaigns/:id.
func (h *CampaignHandler) Update(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	var req campaignRequest
	if !bind(c, &req) {
		return
	}
	camp.Name, camp.Description = req.Name, req.Description
	err := h.db.Model(camp).Updates(map[string]interface{}{
		"name":        camp.Name,
		"description": camp.Description,
	}).Error
	h.audit.log(c, start, audit.ActionCampaignUpdate, camp.ID, 0, req, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, camp)
}

// Delete handles DELETE /api/campaigns/:id. Characters and catalogs go with it.
func (h *CampaignHandler) Delete(c *gin.Context) {
	start := time.Now()
	camp, ok := h.owned(c)
	if !ok {
		return
	}
	// Computed before the rows disappear.
	if err := h.sheets.InvalidateCampaign(c.Request.Context(), camp.ID); err != nil {
		h.logger.Warn("campaign cache invalidation failed", zap.Int64("campaign_id", camp.ID), zap.Error(err))
	}
	err := h.db.Select("SkillSets").Delete(camp).Error
	h.audit.log(c, start, audit.ActionCampaignDelete, camp.ID, 0, nil, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// owned loads the :id campaign and checks the caller owns it, writing the
// error response otherwise.
func (h *CampaignHandler) owned(c *gin.Context) (*model.Campaign, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	camp, err := loadOwnedCampaign(h.db, id, mw.GetAccountID(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return camp, true
}

func loadOwnedCampaign(db *gorm.DB, id, accountID int64) (*model.Campaign, error) {
	var camp model.Campaign
	if err := db.First(&camp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	if camp.OwnerID != accountID {
		return nil, errForbidden
	}
	return &camp, nil
}

// catalogChanged drops cached sheets after an edit that can move scores.
func (h *CampaignHandler) catalogChanged(c *gin.Context, campaignID int64) {
	if err := h.sheets.InvalidateCampaign(c.Request.Context(), campaignID); err != nil {
		h.logger.Warn("campaign cache invalidation failed", zap.Int64("campaign_id", campaignID), zap.Error(err))
	}
}
