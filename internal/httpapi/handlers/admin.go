package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/chat"
	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/beelyapp/beely/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createVideoReq struct {
	VideoURL   string `json:"video_url" binding:"required,url,max=2048"`
	CategoryID uint64 `json:"category_id" binding:"required,gt=0"`
}

type createCategoryReq struct {
	Name        string `json:"name" binding:"required,max=255"`
	Slug        string `json:"slug" binding:"required,max=255"`
	Icon        string `json:"icon" binding:"required,max=255"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// AdminStats backs the back-office dashboard.
func (h *Handler) AdminStats(c *gin.Context) {
	ctx := c.Request.Context()

	var users int64
	if err := h.DB.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	videos, err := h.Videos.Count(ctx, false)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	active, err := h.Videos.Count(ctx, true)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	cats, err := h.Categories.Count(ctx)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	sessions, err := h.ChatRepo.CountSessions(ctx)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}

	common.OK(c, gin.H{
		"total_users":         users,
		"total_videos":        videos,
		"active_videos":       active,
		"total_categories":    cats,
		"total_chat_sessions": sessions,
	})
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	common.OK(c, gin.H{"users": out})
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	me := currentUser(c)
	if me == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if id == me.ID {
		common.Fail(c, http.StatusBadRequest, 10005, "cannot delete your own account")
		return
	}

	err := deleteUser(c.Request.Context(), h.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		common.Fail(c, http.StatusNotFound, 40402, "user not found")
		return
	}
	if err != nil {
		h.Log.Error("delete user", zap.Uint64("user_id", id), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

// deleteUser removes the user and everything they own.
func deleteUser(ctx context.Context, db *gorm.DB, id uint64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&feed.LikedVideo{}).Error; err != nil {
			return err
		}
		sessions := tx.Model(&chat.Session{}).Select("session_id").Where("user_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessions).Delete(&chat.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&chat.Session{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (h *Handler) AdminVerifyUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	if !user.IsVerified() {
		now := time.Now()
		if err := h.DB.WithContext(ctx).Model(&user).Update("email_verified_at", now).Error; err != nil {
			common.Fail(c, http.StatusInternalServerError, 50001, "db error")
			return
		}
		user.EmailVerifiedAt = &now
	}
	common.OK(c, toUserView(&user))
}

func (h *Handler) AdminListVideos(c *gin.Context) {
	ctx := c.Request.Context()
	videos, err := h.Videos.List(ctx)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	cats, err := h.Categories.List(ctx)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"videos": videos, "categories": cats})
}

func (h *Handler) AdminCreateVideo(c *gin.Context) {
	var req createVideoReq
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	cat, err := h.Categories.GetByID(ctx, req.CategoryID)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		fieldError(c, "category_id", "category_id does not exist")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}

	v := feed.Video{
		CategoryID: cat.ID,
		VideoURL:   strings.TrimSpace(req.VideoURL),
		IsActive:   true,
	}
	if err := h.Videos.Create(ctx, &v); err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create video")
		return
	}
	v.Category = cat

	jobID := h.publishProbe(ctx, v.ID)
	common.Created(c, gin.H{"video": v, "probe_job_id": jobID})
}

func (h *Handler) AdminDeleteVideo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	err := h.Videos.Delete(c.Request.Context(), id)
	if errors.Is(err, feed.ErrVideoNotFound) {
		common.Fail(c, http.StatusNotFound, 40401, "video not found")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

// AdminProbeVideo queues a reachability check for the video.
func (h *Handler) AdminProbeVideo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Videos.GetByID(ctx, id); err != nil {
		if errors.Is(err, feed.ErrVideoNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "video not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	if h.Publisher == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "probe queue unavailable")
		return
	}
	jobID, err := h.Publisher.PublishVideoProbe(ctx, id)
	if err != nil {
		h.Log.Error("publish probe", zap.Uint64("video_id", id), zap.Error(err))
		common.Fail(c, http.StatusServiceUnavailable, 50301, "probe queue unavailable")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"code":    0,
		"message": "accepted",
		"data":    gin.H{"job_id": jobID, "status": "queued"},
	})
}

// publishProbe is best effort; the video stays active if the queue is down.
func (h *Handler) publishProbe(ctx context.Context, videoID uint64) string {
	if h.Publisher == nil {
		return ""
	}
	jobID, err := h.Publisher.PublishVideoProbe(ctx, videoID)
	if err != nil {
		h.Log.Warn("publish probe failed", zap.Uint64("video_id", videoID), zap.Error(err))
		return ""
	}
	return jobID
}

func (h *Handler) AdminListCategories(c *gin.Context) {
	cats, err := h.Categories.ListWithVideoCounts(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"categories": cats})
}

func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req createCategoryReq
	if !bindJSON(c, &req) {
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if slug == feed.SlugPersonalized || slug == feed.SlugLiked {
		fieldError(c, "slug", "slug is reserved")
		return
	}

	cat := catalog.Category{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Icon:        strings.TrimSpace(req.Icon),
		Description: strings.TrimSpace(req.Description),
	}
	err := h.Categories.Create(c.Request.Context(), &cat)
	if errors.Is(err, catalog.ErrCategoryExists) {
		common.Fail(c, http.StatusConflict, 40902, "category name or slug already exists")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create category")
		return
	}
	common.Created(c, cat)
}

func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	err := h.Categories.Delete(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		common.Fail(c, http.StatusNotFound, 40403, "category not found")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}
