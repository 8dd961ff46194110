package member

import (
	"net/http"
	"strconv"

	"gymops/internal/api"
	"gymops/internal/auth"

	"github.com/gin-gonic/gin"
)

var errInvalidMemberID = api.InvalidInput("INVALID_MEMBER_ID", "invalid member id")

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// LookupByCode godoc
// @Summary      Find a member by desk code
// @Description  Returns the member and the subscription covering today, if any.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        code  path      string  true  "Member code"
// @Success      200   {object}  CodeLookup
// @Failure      404   {object}  api.ErrorResponse
// @Router       /members/by-code/{code} [get]
func (h *Handler) LookupByCode(c *gin.Context) {
	lookup, err := h.service.LookupByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lookup)
}

// GetMember godoc
// @Summary      Member profile and subscriptions
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {object}  Details
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID} [get]
func (h *Handler) GetMember(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil || memberID <= 0 {
		api.RespondError(c, errInvalidMemberID)
		return
	}

	details, err := h.service.Details(c.Request.Context(), actor, memberID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}
