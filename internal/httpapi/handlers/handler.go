package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/chat"
	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/config"
	"github.com/beelyapp/beely/internal/email"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/httpapi/middleware"
	"github.com/beelyapp/beely/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CaptchaStore is implemented by redisstore.Store.
type CaptchaStore interface {
	SetCaptcha(ctx context.Context, email, code string) error
	GetCaptcha(ctx context.Context, email string) (string, error)
	DeleteCaptcha(ctx context.Context, email string) error
}

// ProbePublisher is implemented by rabbitmq.Publisher.
type ProbePublisher interface {
	PublishVideoProbe(ctx context.Context, videoID uint64) (string, error)
}

type Deps struct {
	DB        *gorm.DB
	Cfg       config.Config
	Captcha   CaptchaStore
	Mailer    email.Sender
	Publisher ProbePublisher
	ChatSvc   *chat.Service
	Composer  *feed.Composer
	Likes     *feed.Likes
	Logger    *zap.Logger
}

type Handler struct {
	DB         *gorm.DB
	Cfg        config.Config
	Captcha    CaptchaStore
	Mailer     email.Sender
	Publisher  ProbePublisher
	ChatSvc    *chat.Service
	Composer   *feed.Composer
	Likes      *feed.Likes
	Categories *catalog.Repo
	Videos     *feed.Repo
	ChatRepo   *chat.Repo
	Log        *zap.Logger
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Mailer == nil {
		d.Mailer = email.Nop{}
	}
	return &Handler{
		DB:         d.DB,
		Cfg:        d.Cfg,
		Captcha:    d.Captcha,
		Mailer:     d.Mailer,
		Publisher:  d.Publisher,
		ChatSvc:    d.ChatSvc,
		Composer:   d.Composer,
		Likes:      d.Likes,
		Categories: catalog.NewRepo(d.DB),
		Videos:     feed.NewRepo(d.DB),
		ChatRepo:   chat.NewRepo(d.DB),
		Log:        d.Logger,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func currentUser(c *gin.Context) *models.User {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return nil
	}
	return u
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid "+name)
		return 0, false
	}
	return id, true
}
