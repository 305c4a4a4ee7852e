package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brainfish/brainfish-chat/internal/common"
)

type uploadRequest struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// Upload stores extracted file text as session context. Format-specific
// extraction happens before this endpoint; it receives plain text.
func (h *Handler) Upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if _, err := h.ChatSvc.SaveFileContext(c.Request.Context(), sessionID, req.Filename, req.Content); err != nil {
		log.Printf("[upload] save failed session_id=%s filename=%s err=%v", sessionID, req.Filename, err)
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to process file")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"filename":   req.Filename,
		"status":     "saved",
	})
}

// ClearUploads removes every stored file context for the session together
// with the upload meta-notices in the transcript.
func (h *Handler) ClearUploads(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "session_id required")
		return
	}

	if err := h.ChatSvc.ClearFileContexts(c.Request.Context(), sessionID); err != nil {
		log.Printf("[upload] clear failed session_id=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to clear files")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
