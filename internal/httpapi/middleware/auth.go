package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/beelyapp/beely/internal/auth"
	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// AuthRequired validates the bearer JWT and stores the user id on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "missing bearer token")
			return
		}
		uid, err := auth.ParseJWT(strings.TrimSpace(token), secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid or expired token")
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// LoadUser fetches the authenticated user once per request.
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := c.Get(UserIDKey)
		if !ok {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			return
		}
		var u models.User
		if err := db.WithContext(c.Request.Context()).First(&u, uid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				common.Fail(c, http.StatusUnauthorized, 40103, "user no longer exists")
				return
			}
			common.Fail(c, http.StatusInternalServerError, 50001, "db error")
			return
		}
		c.Set(UserKey, &u)
		c.Next()
	}
}

// VerifiedRequired must run after LoadUser.
func VerifiedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.IsVerified() {
			common.Fail(c, http.StatusForbidden, 40301, "email address is not verified")
			return
		}
		c.Next()
	}
}

// AdminRequired must run after LoadUser.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.IsAdmin() {
			common.Fail(c, http.StatusForbidden, 40302, "admin only")
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
