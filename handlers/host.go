package handlers

import (
	"net/http"

	hostRepo "talkbid/database/repository/host"
	"talkbid/models"
	"talkbid/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HostHandler struct {
	hosts  hostRepo.HostRepository
	logger *zap.Logger
}

// NewHostHandler builds the host profile endpoints.
func NewHostHandler(hosts hostRepo.HostRepository, logger *zap.Logger) *HostHandler {
	return &HostHandler{hosts: hosts, logger: logger}
}

// RegisterHostHandler creates or updates a host profile. PayeeAccountID may
// be left empty; payouts for such hosts are skipped until it is on file.
func (h *HostHandler) RegisterHostHandler(c *gin.Context) {
	var input struct {
		ID             string `json:"id" binding:"required"`
		DisplayName    string `json:"displayName" binding:"required"`
		PayeeAccountID string `json:"payeeAccountId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid host input", err.Error())
		return
	}

	id, err := h.hosts.Upsert(c.Request.Context(), models.HostProfile{
		ID:             input.ID,
		DisplayName:    input.DisplayName,
		PayeeAccountID: input.PayeeAccountID,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to save host", err.Error())
		return
	}

	h.logger.Info("host profile saved", zap.String("hostId", id))
	c.JSON(http.StatusOK, gin.H{"id": id})
}
