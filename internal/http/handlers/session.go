package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quizgen-backend/internal/http/response"
	"github.com/yungbote/quizgen-backend/internal/platform/ctxutil"
	"github.com/yungbote/quizgen-backend/internal/platform/logger"
	"github.com/yungbote/quizgen-backend/internal/services"
	"github.com/yungbote/quizgen-backend/internal/session"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionController
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionController) *SessionHandler {
	return &SessionHandler{log: log.With("handler", "SessionHandler"), sessions: sessions}
}

type actionRequest struct {
	Action     string `json:"action"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	Question   *int   `json:"question"`
	Option     string `json:"option"`
}

func requestData(c *gin.Context) (*ctxutil.RequestData, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing session"))
		return nil, false
	}
	return rd, true
}

func requestSessionID(c *gin.Context) (uuid.UUID, bool) {
	rd, ok := requestData(c)
	if !ok {
		return uuid.Nil, false
	}
	return rd.SessionID, true
}

// POST /api/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	s, token, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
		SessionID: s.ID,
		Screen:    string(s.State),
	}))
	c.JSON(http.StatusCreated, gin.H{"token": token, "session": s.View()})
}

// GET /api/session
func (h *SessionHandler) Get(c *gin.Context) {
	rd, ok := requestData(c)
	if !ok {
		return
	}
	s, err := h.sessions.Get(c.Request.Context(), rd.SessionID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rd.Screen = string(s.State)
	response.RespondOK(c, gin.H{"session": s.View()})
}

// POST /api/session/actions
func (h *SessionHandler) Act(c *gin.Context) {
	rd, ok := requestData(c)
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	action, err := session.ParseAction(req.Action)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unknown_action", err)
		return
	}
	rd.Action = string(action)

	s, err := h.sessions.Act(c.Request.Context(), rd.SessionID, session.Input{
		Action:     action,
		Username:   req.Username,
		Password:   req.Password,
		Text:       req.Text,
		Difficulty: req.Difficulty,
		Question:   req.Question,
		Option:     req.Option,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	rd.Screen = string(s.State)
	response.RespondOK(c, gin.H{"session": s.View()})
}
