package workout

import (
	"net/http"
	"strconv"

	"gymops/internal/api"
	"gymops/internal/auth"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidSessionID = api.InvalidInput("INVALID_SESSION_ID", "invalid workout session id")
	errInvalidMemberID  = api.InvalidInput("INVALID_MEMBER_ID", "invalid memberId")
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateSession godoc
// @Summary      Plan a workout session
// @Tags         workouts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Session"
// @Success      201      {object}  Session
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /workouts [post]
func (h *Handler) CreateSession(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	var req CreateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// UpdateSession godoc
// @Summary      Update or evaluate a workout session
// @Tags         workouts
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sessionID  path      int            true  "Session ID"
// @Param        request    body      UpdateRequest  true  "Fields to change"
// @Success      200        {object}  Session
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /workouts/{sessionID} [put]
func (h *Handler) UpdateSession(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	sessionID, err := strconv.Atoi(c.Param("sessionID"))
	if err != nil || sessionID <= 0 {
		api.RespondError(c, errInvalidSessionID)
		return
	}

	var req UpdateRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.Update(c.Request.Context(), actor, sessionID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListSessions godoc
// @Summary      List a member's workout sessions
// @Tags         workouts
// @Security     BearerAuth
// @Produce      json
// @Param        memberId  query     int  false  "Member ID (defaults to the caller for members)"
// @Success      200       {array}   Session
// @Router       /workouts [get]
func (h *Handler) ListSessions(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	requested := 0
	if raw := c.Query("memberId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			api.RespondError(c, errInvalidMemberID)
			return
		}
		requested = id
	}

	memberID, err := actor.ScopeMember(requested)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	sessions, err := h.service.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}
