package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gurpsmanager/server/cache"
	"github.com/gurpsmanager/server/config"
)

const (
	AccountIDKey = "account_id"
	ClaimsKey    = "claims"
)

// RevokedKey is the cache key marking a token ID as logged out.
func RevokedKey(tokenID string) string { return "auth:revoked:" + tokenID }

// BannedKey is the cache key marking an account as banned.
func BannedKey(accountID int64) string {
	return "auth:banned:" + strconv.FormatInt(accountID, 10)
}

// Auth validates the Bearer JWT and rejects revoked tokens and banned accounts.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := ParseToken(strings.TrimPrefix(header, "Bearer "), sec.JWTSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		revoked, err := c.Exists(cacheCtx, RevokedKey(claims.ID))
		if err != nil || revoked {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		banned, err := c.Exists(cacheCtx, BannedKey(claims.AccountID))
		if err != nil || banned {
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account banned"})
			return
		}

		ctx.Set(AccountIDKey, claims.AccountID)
		ctx.Set(ClaimsKey, claims)
		ctx.Next()
	}
}

// RevokeToken marks the token as logged out until it would have expired.
func RevokeToken(ctx context.Context, c cache.Cache, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return c.Set(ctx, RevokedKey(claims.ID), "1", ttl)
}

// GetAccountID retrieves the authenticated account ID from the Gin context.
func GetAccountID(c *gin.Context) int64 {
	if v, exists := c.Get(AccountIDKey); exists {
		return v.(int64)
	}
	return 0
}

// GetClaims returns the parsed token claims, or nil outside Auth.
func GetClaims(c *gin.Context) *Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		return v.(*Claims)
	}
	return nil
}
