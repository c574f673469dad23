package handlers

import (
	"errors"
	"net/http"

	"github.com/beelyapp/beely/internal/common"
	"github.com/beelyapp/beely/internal/feed"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Feed serves /feed and /feed/:category. The personalized route reads its
// slugs from ?categories=a,b,c.
func (h *Handler) Feed(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	page, err := h.Composer.Build(c.Request.Context(), u.ID, c.Param("category"), c.Query("categories"))
	if err != nil {
		h.Log.Error("compose feed", zap.Uint64("user_id", u.ID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to load feed")
		return
	}
	common.OK(c, page)
}

func (h *Handler) ToggleLike(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	videoID, ok := idParam(c, "id")
	if !ok {
		return
	}
	liked, err := h.Likes.Toggle(c.Request.Context(), u.ID, videoID)
	if errors.Is(err, feed.ErrVideoNotFound) {
		common.Fail(c, http.StatusNotFound, 40401, "video not found")
		return
	}
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"is_liked": liked,
	})
}

func (h *Handler) LikedVideos(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	videos, err := h.Likes.ListLiked(c.Request.Context(), u.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, gin.H{"videos": videos})
}
