package handlers

import (
	"errors"
	"net/http"

	"github.com/beelyapp/beely/internal/chat"
	"github.com/beelyapp/beely/internal/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendMessageReq struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatPage serves the chat screen: the latest session, its messages and the
// category list.
func (h *Handler) ChatPage(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	page, err := h.ChatSvc.Current(c.Request.Context(), u.ID)
	if err != nil {
		h.Log.Error("load chat page", zap.Uint64("user_id", u.ID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	common.OK(c, page)
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	var req sendMessageReq
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.ChatSvc.Send(c.Request.Context(), u.ID, req.SessionID, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		fieldError(c, "message", "message is required")
		return
	case errors.Is(err, chat.ErrMessageTooLong):
		fieldError(c, "message", chat.ErrMessageTooLong.Error())
		return
	case err != nil:
		h.Log.Error("chat turn failed",
			zap.Uint64("user_id", u.ID),
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to send message")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": res.SessionID,
		"message":    res.Message,
	})
}

func (h *Handler) NewChatSession(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	res, err := h.ChatSvc.NewSession(c.Request.Context(), u.ID, u.Name)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": res.SessionID,
		"message":    res.Message,
	})
}

func (h *Handler) ChatHistory(c *gin.Context) {
	u := currentUser(c)
	if u == nil {
		return
	}
	sessions, err := h.ChatSvc.History(c.Request.Context(), u.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "db error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sessions": sessions,
	})
}
