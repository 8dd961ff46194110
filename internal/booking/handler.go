package booking

import (
	"net/http"
	"strconv"

	"gymops/internal/api"
	"gymops/internal/auth"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidBookingID = api.InvalidInput("INVALID_BOOKING_ID", "invalid booking id")
	errInvalidTrainerID = api.InvalidInput("INVALID_TRAINER_ID", "invalid trainerId")
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking godoc
// @Summary      Create booking
// @Description  Books a session between a member and a trainer. Members may only book for themselves.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking"
// @Success      201      {object}  Response
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Booking: b})
}

// TransitionBooking godoc
// @Summary      Complete or cancel a booking
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                true  "Booking ID"
// @Param        request    body      TransitionRequest  true  "Target status"
// @Success      200        {object}  Response
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/status [post]
func (h *Handler) TransitionBooking(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil || bookingID <= 0 {
		api.RespondError(c, errInvalidBookingID)
		return
	}

	var req TransitionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Transition(c.Request.Context(), actor, bookingID, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Booking: b})
}

// MyBookings godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  BookingWithTrainer
// @Router       /bookings/me [get]
func (h *Handler) MyBookings(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), actor.UserID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// AssignedMembers godoc
// @Summary      Members assigned to a trainer
// @Description  Distinct members with any booking for the trainer, ordered by name. Trainers default to themselves.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        trainerId  query     int  false  "Trainer ID"
// @Success      200        {array}   MemberSummary
// @Failure      403        {object}  api.ErrorResponse
// @Router       /bookings/assigned [get]
func (h *Handler) AssignedMembers(c *gin.Context) {
	actor, ok := auth.MustIdentity(c)
	if !ok {
		return
	}

	trainerID := 0
	if raw := c.Query("trainerId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			api.RespondError(c, errInvalidTrainerID)
			return
		}
		trainerID = id
	}

	members, err := h.service.AssignedMembers(c.Request.Context(), actor, trainerID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// UnassignedMembers godoc
// @Summary      Members without any booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  MemberSummary
// @Router       /bookings/unassigned [get]
func (h *Handler) UnassignedMembers(c *gin.Context) {
	members, err := h.service.UnassignedMembers(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}
