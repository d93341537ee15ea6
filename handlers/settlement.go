package handlers

import (
	"errors"
	"net/http"

	bookingRepo "talkbid/database/repository/booking"
	settlementRepo "talkbid/database/repository/settlement"
	"talkbid/services/ingestion"
	"talkbid/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SettlementHandler struct {
	bookings    bookingRepo.BookingRepository
	settlements settlementRepo.SettlementRepository
	queue       ingestion.SettlementEnqueuer
	logger      *zap.Logger
}

// NewSettlementHandler builds the operator-facing settlement endpoints.
func NewSettlementHandler(
	bookings bookingRepo.BookingRepository,
	settlements settlementRepo.SettlementRepository,
	queue ingestion.SettlementEnqueuer,
	logger *zap.Logger,
) *SettlementHandler {
	return &SettlementHandler{
		bookings:    bookings,
		settlements: settlements,
		queue:       queue,
		logger:      logger,
	}
}

// TriggerSettlementHandler queues a settlement run for a booking and returns
// immediately. Used to recover stuck bookings; callers poll the booking and
// settlement state for the outcome rather than awaiting this call.
func (h *SettlementHandler) TriggerSettlementHandler(c *gin.Context) {
	bookingID := c.Param("id")

	if _, err := h.bookings.GetByID(c.Request.Context(), bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", bookingID)
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to load booking", err.Error())
		return
	}

	if err := h.queue.EnqueueSettlement(c.Request.Context(), bookingID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to queue settlement run", err.Error())
		return
	}

	h.logger.Info("manual settlement run queued", zap.String("bookingId", bookingID))
	c.JSON(http.StatusAccepted, gin.H{"bookingId": bookingID, "status": "queued"})
}

// GetSettlementHandler returns the booking's settlement record, if any.
func (h *SettlementHandler) GetSettlementHandler(c *gin.Context) {
	bookingID := c.Param("id")

	record, err := h.settlements.GetByBookingID(c.Request.Context(), bookingID)
	if errors.Is(err, settlementRepo.ErrNotFound) {
		utils.JSONError(c, http.StatusNotFound, "no settlement for booking", bookingID)
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to load settlement", err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}
