package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"sabhahub/services"
	"sabhahub/storage"

	"github.com/gin-gonic/gin"
)

type AggregationController struct {
	Aggregator *services.Aggregator
}

func NewAggregationController(agg *services.Aggregator) *AggregationController {
	return &AggregationController{Aggregator: agg}
}

// ConsumedTime reports per-party consumed seconds for a bill, keyed by the
// canonical party names from the bill's allocations plus Others, alongside
// member_<seat> duration keys.
func (ac *AggregationController) ConsumedTime(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}

	consumed, err := ac.Aggregator.ConsumedByParty(uint(id), c.Query("date"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": consumed})
}

// MemberTotals reports cumulative spoken seconds per seat for a bill.
func (ac *AggregationController) MemberTotals(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}

	totals, err := ac.Aggregator.MemberTotals(uint(id), c.Query("date"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": totals})
}
