package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/quizgen-backend/internal/http/response"
	"github.com/yungbote/quizgen-backend/internal/services"
	"github.com/yungbote/quizgen-backend/internal/session"
)

type HistoryHandler struct {
	sessions services.SessionController
}

func NewHistoryHandler(sessions services.SessionController) *HistoryHandler {
	return &HistoryHandler{sessions: sessions}
}

// GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	id, ok := requestSessionID(c)
	if !ok {
		return
	}
	rows, err := h.sessions.History(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": session.HistoryItems(rows)})
}
