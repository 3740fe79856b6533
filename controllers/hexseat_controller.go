package controllers

import (
	"errors"
	"net/http"

	"sabhahub/logging"
	"sabhahub/utils"

	"github.com/gin-gonic/gin"
)

// HexSeatController accepts seat selections encoded as hex strings, the same
// representation the hardware panel emits. Decoded selections are fed through
// Publish, the same path UDP signals take.
type HexSeatController struct {
	MaxSeat int
	Publish func(seatNo int)
}

func NewHexSeatController(maxSeat int, publish func(seatNo int)) *HexSeatController {
	return &HexSeatController{MaxSeat: maxSeat, Publish: publish}
}

func (hc *HexSeatController) Post(c *gin.Context) {
	var req struct {
		Hex string `json:"hex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "hex is required"})
		return
	}

	seatNo, err := utils.ParseHexSeat(req.Hex, hc.MaxSeat)
	if errors.Is(err, utils.ErrInvalidHex) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid hex value"})
		return
	}
	if errors.Is(err, utils.ErrSeatOutOfRange) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Seat number out of range"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	logging.Log.Infof("Hex seat selection: %s -> seat %d", req.Hex, seatNo)
	hc.Publish(seatNo)
	// The caller's hex string is echoed back verbatim.
	c.JSON(http.StatusOK, gin.H{"success": true, "seat_no": seatNo, "hex": req.Hex})
}
