package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/beelyapp/beely/internal/auth"
	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/models"
	"github.com/beelyapp/beely/internal/store/redisstore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type captchaReq struct {
	Email string `json:"email" binding:"required,email,max=255"`
}

type createUserReq struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Captcha  string `json:"captcha" binding:"required,len=6,numeric"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userView struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}

// sixDigitCode returns a zero padded random code.
func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (h *Handler) SendCaptcha(c *gin.Context) {
	var req captchaReq
	if !bindJSON(c, &req) {
		return
	}
	addr := normalizeEmail(req.Email)

	code, err := sixDigitCode()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to generate captcha")
		return
	}
	if err := h.Captcha.SetCaptcha(c.Request.Context(), addr, code); err != nil {
		h.Log.Error("store captcha", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50003, "redis error")
		return
	}

	h.sendMailAsync(addr, "Beely doğrulama kodun",
		"Merhaba,\n\nBeely doğrulama kodun: "+code+"\n\nKod 10 dakika geçerlidir.\n")

	common.OK(c, gin.H{"sent": true, "expires_in": int(redisstore.CaptchaTTL.Seconds())})
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	addr := normalizeEmail(req.Email)

	// redis verification
	code, err := h.Captcha.GetCaptcha(ctx, addr)
	if err != nil {
		if errors.Is(err, redisstore.ErrCaptchaNotFound) {
			fieldError(c, "captcha", "captcha expired or not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50003, "redis error")
		return
	}
	if code != req.Captcha {
		fieldError(c, "captcha", "invalid captcha")
		return
	}

	var n int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", addr).Count(&n).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	if n > 0 {
		common.Fail(c, http.StatusConflict, 40901, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to hash password")
		return
	}

	// the captcha proved ownership of the address
	now := time.Now()
	user := models.User{
		Name:            strings.TrimSpace(req.Name),
		Email:           addr,
		PasswordHash:    hash,
		Role:            models.RoleUser,
		EmailVerifiedAt: &now,
	}
	if err := h.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			common.Fail(c, http.StatusConflict, 40901, "email already registered")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create user")
		return
	}
	_ = h.Captcha.DeleteCaptcha(ctx, addr)

	token, err := h.signToken(user.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to sign token")
		return
	}

	h.sendMailAsync(user.Email, "Beely'e hoş geldin 🐝",
		"Merhaba "+user.Name+",\n\nHesabın hazır. Bugün nasıl hissediyorsun? Beely sana uygun videoları bulmak için seni bekliyor.\n")

	common.Created(c, gin.H{"user": toUserView(&user), "token": token})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if !bindJSON(c, &req) {
		return
	}
	var user models.User
	err := h.DB.WithContext(c.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40104, "invalid email or password")
		return
	}

	token, err := h.signToken(user.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"user": toUserView(&user), "token": token})
}

func (h *Handler) Me(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	common.OK(c, toUserView(u))
}

func (h *Handler) signToken(userID uint64) (string, error) {
	ttl := time.Duration(h.Cfg.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return auth.SignJWT(userID, h.Cfg.JWTSecret, ttl)
}

func (h *Handler) sendMailAsync(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Mailer.SendText(ctx, to, subject, body); err != nil {
			h.Log.Warn("send mail failed", zap.String("to", to), zap.Error(err))
		}
	}()
}
