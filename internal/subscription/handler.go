package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"gymops/internal/api"
	"gymops/internal/auth"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidMemberID       = api.InvalidInput("INVALID_MEMBER_ID", "invalid memberId")
	errInvalidSubscriptionID = api.InvalidInput("INVALID_SUBSCRIPTION_ID", "invalid subscription id")
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateInitial godoc
// @Summary      Create initial subscription
// @Description  Starts a member's first subscription today.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      InitialRequest  true  "Member and package"
// @Success      201      {object}  Response
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /subscriptions/initial [post]
func (h *Handler) CreateInitial(c *gin.Context) {
	var req InitialRequest
	if !api.BindJSON(c, &req) {
		return
	}

	sub, err := h.service.CreateInitial(c.Request.Context(), req.MemberID, req.PackageID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Subscription: sub})
}

// Extend godoc
// @Summary      Extend subscription
// @Description  Appends a subscription that starts today, or the day after a still-running one ends.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ExtendRequest  true  "Member and new package"
// @Success      201      {object}  Response
// @Failure      404      {object}  api.ErrorResponse
// @Router       /subscriptions/extend [post]
func (h *Handler) Extend(c *gin.Context) {
	var req ExtendRequest
	if !api.BindJSON(c, &req) {
		return
	}

	sub, err := h.service.Extend(c.Request.Context(), req.MemberID, req.NewPackageID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Subscription: sub})
}

// Current godoc
// @Summary      Current subscription
// @Description  Returns the completed subscription covering today, or null.
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        memberId  query     int  false  "Member ID (defaults to the caller for members)"
// @Success      200       {object}  Response
// @Router       /subscriptions/current [get]
func (h *Handler) Current(c *gin.Context) {
	memberID, ok := scopedMember(c)
	if !ok {
		return
	}

	sub, err := h.service.Current(c.Request.Context(), memberID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Subscription: sub})
}

// History godoc
// @Summary      Subscription history
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        memberId  query     int  false  "Member ID (defaults to the caller for members)"
// @Success      200       {array}   Subscription
// @Router       /subscriptions [get]
func (h *Handler) History(c *gin.Context) {
	memberID, ok := scopedMember(c)
	if !ok {
		return
	}

	subs, err := h.service.History(c.Request.Context(), memberID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// ConsumeSession godoc
// @Summary      Record a used session
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        subscriptionID  path      int  true  "Subscription ID"
// @Success      200             {object}  Response
// @Failure      404             {object}  api.ErrorResponse
// @Failure      409             {object}  api.ErrorResponse
// @Router       /subscriptions/{subscriptionID}/consume [post]
func (h *Handler) ConsumeSession(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil || id <= 0 {
		api.RespondError(c, errInvalidSubscriptionID)
		return
	}

	sub, err := h.service.ConsumeSession(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Subscription: sub})
}

// SimulatePayment godoc
// @Summary      Buy a package with a simulated card
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      SimulatePaymentRequest  true  "Package and desired outcome"
// @Success      201      {object}  Response
// @Failure      402      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /payments/simulate [post]
func (h *Handler) SimulatePayment(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	var req SimulatePaymentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	sub, err := h.service.Purchase(c.Request.Context(), actor.UserID, req.PackageID, req.ShouldSucceed)
	if errors.Is(err, ErrPaymentFailed) {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":        ErrPaymentFailed.Message,
			"code":         ErrPaymentFailed.Code,
			"subscription": sub,
		})
		return
	}
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Subscription: sub})
}

// scopedMember resolves the memberId query parameter against the caller.
func scopedMember(c *gin.Context) (int, bool) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return 0, false
	}

	requested := 0
	if raw := c.Query("memberId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			api.RespondError(c, errInvalidMemberID)
			return 0, false
		}
		requested = id
	}

	memberID, err := actor.ScopeMember(requested)
	if err != nil {
		api.RespondError(c, err)
		return 0, false
	}
	return memberID, true
}
