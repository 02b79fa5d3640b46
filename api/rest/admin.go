package rest

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/cache"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"github.com/gurpsmanager/server/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAccountPage = 100

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db      *gorm.DB
	cache   cache.Cache
	audit   auditor
	sched   *scheduler.Scheduler
	started time.Time
	logger  *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
// sched may be nil when no background jobs run.
func NewAdminHandler(db *gorm.DB, c cache.Cache, auditSvc *audit.Service, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, cache: c, audit: auditor{auditSvc}, sched: sched, started: time.Now(), logger: logger}
}

// Metrics returns server health metrics.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var accounts, campaigns, characters int64
	for _, q := range []struct {
		m interface{}
		n *int64
	}{
		{&model.Account{}, &accounts},
		{&model.Campaign{}, &campaigns},
		{&model.Character{}, &characters},
	} {
		if err := h.db.Model(q.m).Count(q.n).Error; err != nil {
			respondError(c, err)
			return
		}
	}
	jobs := []scheduler.Status{}
	if h.sched != nil {
		jobs = h.sched.Jobs()
	}
	c.JSON(http.StatusOK, gin.H{
		"accounts":       accounts,
		"campaigns":      campaigns,
		"characters":     characters,
		"goroutines":     runtime.NumGoroutine(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"jobs":           jobs,
	})
}

// ListAccounts pages through accounts.
// GET /api/admin/accounts?page=1&size=20
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxAccountPage {
		size = 20
	}
	var total int64
	if err := h.db.Model(&model.Account{}).Count(&total).Error; err != nil {
		respondError(c, err)
		return
	}
	var accounts []model.Account
	if err := h.db.Order("id").Offset((page - 1) * size).Limit(size).Find(&accounts).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "total": total, "page": page, "size": size})
}

// BanAccount bans or unbans an account. A ban takes effect on the next
// authenticated request of any live token.
// POST /api/admin/accounts/:id/ban
func (h *AdminHandler) BanAccount(c *gin.Context) {
	start := time.Now()
	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Ban *bool `json:"ban" form:"ban" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	ban := *req.Ban

	status := model.AccountActive
	if ban {
		status = model.AccountBanned
	}
	result := h.db.Model(&model.Account{}).Where("id = ?", accountID).Update("status", status)
	if result.Error != nil {
		respondError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}

	ctx := c.Request.Context()
	var err error
	if ban {
		err = h.cache.Set(ctx, mw.BannedKey(accountID), "1", 0)
	} else {
		err = h.cache.Del(ctx, mw.BannedKey(accountID))
	}
	if err != nil {
		h.logger.Warn("ban cache update failed", zap.Int64("account_id", accountID), zap.Error(err))
	}
	h.audit.log(c, start, audit.ActionBan, 0, 0, gin.H{"account_id": accountID, "ban": ban}, nil)
	h.logger.Info("admin changed account status", zap.Int64("account_id", accountID), zap.Bool("ban", ban))
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
}

// SyncBans marks every banned account in the cache. The local cache starts
// empty, so serve calls this on boot.
func SyncBans(ctx context.Context, db *gorm.DB, c cache.Cache) error {
	var ids []int64
	if err := db.WithContext(ctx).Model(&model.Account{}).
		Where("status = ?", model.AccountBanned).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.Set(ctx, mw.BannedKey(id), "1", 0); err != nil {
			return err
		}
	}
	return nil
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		if c.GetHeader("X-Admin-Key") != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
