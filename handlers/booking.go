package handlers

import (
	"errors"
	"net/http"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	"talkbid/models"
	"talkbid/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookings bookingRepo.BookingRepository
	logger   *zap.Logger
}

// NewBookingHandler builds the booking endpoints.
func NewBookingHandler(bookings bookingRepo.BookingRepository, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

// CreateBookingHandler records a concluded auction as a booking. The winning
// amount and the gateway authorization are fixed here and never change.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input struct {
		RoomName        string    `json:"roomName" binding:"required"`
		BuyerID         string    `json:"buyerId" binding:"required"`
		HostID          string    `json:"hostId" binding:"required"`
		ScheduledStart  time.Time `json:"scheduledStart" binding:"required"`
		DurationMinutes int       `json:"durationMinutes" binding:"required,gt=0"`
		AmountCents     int64     `json:"amountCents" binding:"required,gt=0"`
		Currency        string    `json:"currency" binding:"required"`
		AuthorizationID string    `json:"authorizationId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking input", err.Error())
		return
	}

	booking := models.Booking{
		RoomName:        input.RoomName,
		BuyerID:         input.BuyerID,
		HostID:          input.HostID,
		ScheduledStart:  input.ScheduledStart,
		DurationMinutes: input.DurationMinutes,
		AmountCents:     input.AmountCents,
		Currency:        input.Currency,
		AuthorizationID: input.AuthorizationID,
		Status:          models.BookingStatusReady,
	}

	id, err := h.bookings.Create(c.Request.Context(), booking)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", err.Error())
		return
	}

	h.logger.Info("booking created", zap.String("bookingId", id), zap.String("roomName", input.RoomName))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetBookingHandler returns a booking by ID.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	booking, err := h.bookings.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, bookingRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "booking not found", c.Param("id"))
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking", err.Error())
		return
	}
	c.JSON(http.StatusOK, booking)
}
