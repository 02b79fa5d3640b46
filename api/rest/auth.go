package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/audit"
	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
	mw "github.com/gurpsmanager/server/middleware"
	"github.com/gurpsmanager/server/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles authentication REST endpoints.
type AuthHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	sec    config.SecurityConfig
	audit  auditor
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig, auditSvc *audit.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, cache: c, sec: sec, audit: auditor{auditSvc}, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=2,max=32"`
	Password string `json:"password" form:"password" binding:"required,min=4,max=64"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	start := time.Now()
	var req credentialsRequest
	if !bind(c, &req) {
		return
	}

	acc, err := CreateAccount(h.db, req.Username, req.Password, h.sec.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		respondError(c, err)
		return
	}
	h.audit.log(c, start, audit.ActionRegister, 0, 0, gin.H{"username": req.Username}, nil)
	h.issue(c, acc, http.StatusCreated)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()
	var req credentialsRequest
	if !bind(c, &req) {
		return
	}

	var acc model.Account
	err := h.db.Where("username = ?", req.Username).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if acc.Status == model.AccountBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account banned"})
		return
	}

	// Best-effort bookkeeping.
	now := time.Now()
	if err := h.db.Model(&acc).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": c.ClientIP(),
	}).Error; err != nil {
		h.logger.Warn("last login update failed", zap.Int64("account_id", acc.ID), zap.Error(err))
	}
	h.audit.log(c, start, audit.ActionLogin, 0, 0, gin.H{"username": req.Username}, nil)
	h.issue(c, &acc, http.StatusOK)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := mw.RevokeToken(ctx, h.cache, mw.GetClaims(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Refresh handles POST /api/auth/refresh. The presented token is revoked.
func (h *AuthHandler) Refresh(c *gin.Context) {
	claims := mw.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := mw.RevokeToken(ctx, h.cache, claims); err != nil {
		respondError(c, err)
		return
	}
	token, _, err := mw.GenerateToken(claims.AccountID, claims.Username, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) issue(c *gin.Context, acc *model.Account, status int) {
	token, _, err := mw.GenerateToken(acc.ID, acc.Username, h.sec.JWTSecret, h.sec.JWTTTLH)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"token":      token,
		"account_id": acc.ID,
		"username":   acc.Username,
	})
}

// ErrUsernameTaken is returned by CreateAccount for duplicate usernames.
var ErrUsernameTaken = errors.New("username already taken")

// CreateAccount hashes the password and stores a new active account.
func CreateAccount(db *gorm.DB, username, password string, cost int) (*model.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{
		Username:     username,
		PasswordHash: string(hash),
		Status:       model.AccountActive,
	}
	if err := db.Create(acc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return acc, nil
}

// isUniqueViolation detects duplicate-key errors from common database drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
