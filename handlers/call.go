package handlers

import (
	"errors"
	"net/http"
	"time"

	bookingRepo "talkbid/database/repository/booking"
	"talkbid/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallHandler records client-reported join/leave stamps on the booking. These
// feed the degraded completion path when the video provider never delivers
// webhook events, so the stamps are best-effort and only the host's matter.
type CallHandler struct {
	bookings bookingRepo.BookingRepository
	logger   *zap.Logger
}

// NewCallHandler builds the call lifecycle endpoints.
func NewCallHandler(bookings bookingRepo.BookingRepository, logger *zap.Logger) *CallHandler {
	return &CallHandler{bookings: bookings, logger: logger}
}

// CallJoinedHandler marks the host as joined. Non-host participants are
// acknowledged without stamping anything.
func (h *CallHandler) CallJoinedHandler(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		ParticipantID string `json:"participantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid join input", err.Error())
		return
	}

	booking, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking", err.Error())
		return
	}

	if input.ParticipantID == booking.HostID {
		if err := h.bookings.StampHostJoin(c.Request.Context(), bookingID, time.Now()); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to record join", err.Error())
			return
		}
		h.logger.Info("host joined call", zap.String("bookingId", bookingID))
	}

	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID})
}

// CallLeftHandler marks the host as left and records the talked duration.
func (h *CallHandler) CallLeftHandler(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		ParticipantID string `json:"participantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid leave input", err.Error())
		return
	}

	booking, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking", err.Error())
		return
	}

	if input.ParticipantID == booking.HostID {
		now := time.Now()
		actualMinutes := 0
		if booking.HostJoinedAt != nil {
			actualMinutes = int(now.Sub(*booking.HostJoinedAt).Minutes())
		}
		if err := h.bookings.StampCallEnd(c.Request.Context(), bookingID, now, actualMinutes); err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "failed to record leave", err.Error())
			return
		}
		h.logger.Info("host left call",
			zap.String("bookingId", bookingID),
			zap.Int("actualMinutes", actualMinutes),
		)
	}

	c.JSON(http.StatusOK, gin.H{"bookingId": bookingID})
}
