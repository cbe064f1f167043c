package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/hatch_server/internal/pkg/response"
	"github.com/qs3c/hatch_server/internal/tier"
)

type TierHandler struct{}

func NewTierHandler() *TierHandler {
	return &TierHandler{}
}

// List returns the tier catalog in rank order.
// GET /api/v1/tiers
func (h *TierHandler) List(c *gin.Context) {
	response.Success(c, gin.H{"tiers": tier.All()})
}
