package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brainfish/brainfish-chat/internal/ai"
	"github.com/brainfish/brainfish-chat/internal/common"
	"github.com/brainfish/brainfish-chat/internal/sse"
)

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=user assistant system"`
	Content string `json:"content"`
}

type chatRequest struct {
	SessionID string        `json:"session_id"`
	Messages  []chatMessage `json:"messages" binding:"required,min=1,dive"`
}

type fragment struct {
	Content string `json:"content"`
}

// Chat runs one streaming turn: persist the inbound messages, stream the
// reply as SSE, persist the accumulated assistant reply when the stream
// ends or the client disconnects.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid request body")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	inbound := make([]ai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		inbound = append(inbound, ai.Message{Role: m.Role, Content: m.Content})
	}

	ctx := c.Request.Context()
	stream, err := h.ChatSvc.StreamTurn(ctx, sessionID, inbound)
	if err != nil {
		var cfgErr *ai.ConfigError
		if errors.Is(err, ai.ErrUnknownProvider) || errors.As(err, &cfgErr) {
			common.Fail(c, http.StatusBadRequest, 40002, err.Error())
			return
		}
		log.Printf("[chat] start turn failed session_id=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to start chat turn")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // helpful if behind nginx
	c.Header("X-Session-ID", sessionID)
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		log.Printf("[chat] response writer does not support flushing")
		return
	}

	chunks, errs := stream.Chunks, stream.Errs
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				if stream.SignalsDone {
					_, _ = c.Writer.Write(sse.Done())
					flusher.Flush()
				}
				return
			}
			_, _ = c.Writer.Write(sse.Encode(fragment{Content: chunk}))
			flusher.Flush()

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			// once streaming has begun failures degrade silently: log and
			// let the stream end
			log.Printf("[chat] stream error session_id=%s err=%v", sessionID, err)
			return

		case <-ctx.Done():
			// client disconnect; the service finalizes the turn with
			// whatever was streamed
			return
		}
	}
}

// History returns the session transcript, oldest first.
func (h *Handler) History(c *gin.Context) {
	sessionID := c.Param("session_id")

	msgs, err := h.ChatSvc.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("[history] load failed session_id=%s err=%v", sessionID, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to load history")
		return
	}

	out := make([]gin.H, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, gin.H{"role": m.Role, "content": m.Content})
	}
	c.JSON(http.StatusOK, out)
}
