package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/scheduler"
	"github.com/gurpsmanager/server/sheet"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// NewRouter builds the gin engine with every REST route. ctx bounds the
// rate limiter's background sweep.
func NewRouter(ctx context.Context, cfg *config.Config, db *gorm.DB, c cache.Cache, sheets *sheet.Service, auditSvc *audit.Service, sched *scheduler.Scheduler, logger *zap.Logger) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(db, c, cfg.Security, auditSvc, logger)
	campH := NewCampaignHandler(db, sheets, auditSvc, logger)
	charH := NewCharacterHandler(db, sheets, auditSvc, logger)
	rankH := NewRankingHandler(db, sheets, logger)
	adminH := NewAdminHandler(db, c, auditSvc, sched, logger)
	auth := mw.Auth(cfg.Security, c)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", auth, authH.Logout)
		authG.POST("/refresh", auth, authH.Refresh)

		campG := api.Group("/campaigns")
		campG.Use(auth)
		campG.GET("", campH.List)
		campG.POST("", campH.Create)
		campG.GET("/:id", campH.Get)
		campG.PUT("/:id", campH.Update)
		campG.DELETE("/:id", campH.Delete)
		campG.GET("/:id/ranking", rankH.Campaign)
		campG.POST("/:id/skillsets/:set_id", campH.AttachSkillSet)
		campG.DELETE("/:id/skillsets/:set_id", campH.DetachSkillSet)
		campG.GET("/:id/spells", campH.ListSpells)
		campG.POST("/:id/spells", campH.CreateSpell)
		campG.PUT("/:id/spells/:spell_id", campH.UpdateSpell)
		campG.DELETE("/:id/spells/:spell_id", campH.DeleteSpell)
		campG.GET("/:id/items", campH.ListItems)
		campG.POST("/:id/items", campH.CreateItem)
		campG.PUT("/:id/items/:item_id", campH.UpdateItem)
		campG.DELETE("/:id/items/:item_id", campH.DeleteItem)

		setG := api.Group("/skillsets")
		setG.Use(auth)
		setG.GET("", campH.ListSkillSets)
		setG.POST("", campH.CreateSkillSet)
		setG.GET("/:id/skills", campH.ListSkills)
		setG.POST("/:id/skills", campH.AddSkill)

		charG := api.Group("/characters")
		charG.Use(auth)
		charG.GET("", charH.List)
		charG.POST("", charH.Create)
		charG.GET("/:id", charH.Get)
		charG.PUT("/:id", charH.Update)
		charG.DELETE("/:id", charH.Delete)
		charG.GET("/:id/sheet", charH.Sheet)
		for _, rr := range []struct {
			path                   string
			list, add, upd, remove gin.HandlerFunc
		}{
			{"skills", charH.ListSkills, charH.AddSkill, charH.UpdateSkill, charH.DeleteSkill},
			{"spells", charH.ListSpells, charH.AddSpell, charH.UpdateSpell, charH.DeleteSpell},
			{"traits", charH.ListTraits, charH.AddTrait, charH.UpdateTrait, charH.DeleteTrait},
			{"possessions", charH.ListPossessions, charH.AddPossession, charH.UpdatePossession, charH.DeletePossession},
			{"hit-locations", charH.ListHitLocations, charH.AddHitLocation, charH.UpdateHitLocation, charH.DeleteHitLocation},
		} {
			charG.GET("/:id/"+rr.path, rr.list)
			charG.POST("/:id/"+rr.path, rr.add)
			charG.PUT("/:id/"+rr.path+"/:row_id", rr.upd)
			charG.DELETE("/:id/"+rr.path+"/:row_id", rr.remove)
		}

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs), AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/accounts", adminH.ListAccounts)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
	}

	return r
}
