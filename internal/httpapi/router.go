package httpapi

import (
	"net/http"

	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/config"
	"github.com/beelyapp/beely/internal/httpapi/handlers"
	"github.com/beelyapp/beely/internal/httpapi/middleware"
	"github.com/beelyapp/beely/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, cfg config.Config, log *zap.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	handlers.RegisterJSONFieldNames()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(log, m))
	r.Use(middleware.Recovery(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// captcha
	r.POST("/captcha", h.SendCaptcha)

	// register + login
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret), middleware.LoadUser(h.DB))
	authGroup.GET("/me", h.Me)

	verified := authGroup.Group("/")
	verified.Use(middleware.VerifiedRequired())
	verified.GET("/categories", h.ListCategories)
	verified.GET("/feed", h.Feed)
	verified.GET("/feed/:category", h.Feed)
	verified.POST("/videos/:id/like", h.ToggleLike)
	verified.GET("/liked-videos", h.LikedVideos)

	// Chat
	verified.GET("/chat", h.ChatPage)
	verified.POST("/chat/send", h.SendChatMessage)
	verified.POST("/chat/new", h.NewChatSession)
	verified.GET("/chat/history", h.ChatHistory)

	admin := authGroup.Group("/admin")
	admin.Use(middleware.AdminRequired())
	admin.GET("", h.AdminStats)
	admin.GET("/users", h.AdminListUsers)
	admin.DELETE("/users/:id", h.AdminDeleteUser)
	admin.POST("/users/:id/verify-email", h.AdminVerifyUser)
	admin.GET("/videos", h.AdminListVideos)
	admin.POST("/videos", h.AdminCreateVideo)
	admin.DELETE("/videos/:id", h.AdminDeleteVideo)
	admin.POST("/videos/:id/probe", h.AdminProbeVideo)
	admin.GET("/categories", h.AdminListCategories)
	admin.POST("/categories", h.AdminCreateCategory)
	admin.DELETE("/categories/:id", h.AdminDeleteCategory)

	return r
}
