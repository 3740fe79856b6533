package controllers

import (
	"net/http"

	"sabhahub/broadcast"

	"github.com/gin-gonic/gin"
)

// BroadcastController exposes the shared feed state that remote display
// clients poll.
type BroadcastController struct {
	State *broadcast.State
}

func NewBroadcastController(state *broadcast.State) *BroadcastController {
	return &BroadcastController{State: state}
}

func (bc *BroadcastController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, bc.State.Snapshot())
}

func (bc *BroadcastController) Set(c *gin.Context) {
	var req struct {
		IsActive bool                   `json:"is_active"`
		Mode     string                 `json:"mode"`
		Payload  map[string]interface{} `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid broadcast payload"})
		return
	}
	bc.State.Update(req.IsActive, req.Mode, req.Payload)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bc.State.Snapshot()})
}
