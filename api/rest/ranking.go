package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/sheet"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingHandler serves per-campaign points rankings.
type RankingHandler struct {
	db     *gorm.DB
	sheets *sheet.Service
	logger *zap.Logger
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(db *gorm.DB, sheets *sheet.Service, logger *zap.Logger) *RankingHandler {
	return &RankingHandler{db: db, sheets: sheets, logger: logger}
}

// Campaign returns the campaign's characters sorted by points spent.
// GET /api/campaigns/:id/ranking
func (h *RankingHandler) Campaign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.Select("id").First(&model.Campaign{}, id).Error; err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.sheets.Ranking(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("ranking failed", zap.Int64("campaign_id", id), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}
