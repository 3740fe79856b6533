package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"

	"github.com/gin-gonic/gin"
)

type MemberController struct {
	Storage storage.MemberStorage
}

func NewMemberController(s storage.MemberStorage) *MemberController {
	return &MemberController{Storage: s}
}

type memberRequest struct {
	SeatNo      int    `json:"seat_no"`
	Name        string `json:"name" binding:"required"`
	Party       string `json:"party" binding:"required"`
	State       string `json:"state" binding:"required"`
	TenureStart string `json:"tenure_start"`
	Picture     []byte `json:"picture"`
}

func (mc *MemberController) GetAll(c *gin.Context) {
	members, err := mc.Storage.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": members})
}

func (mc *MemberController) Get(c *gin.Context) {
	seatNo, err := strconv.Atoi(c.Param("seat_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid seat number"})
		return
	}
	member, err := mc.Storage.GetBySeat(seatNo)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": member})
}

func (mc *MemberController) Create(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Seat number, name, party, and state are required"})
		return
	}
	if req.SeatNo < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Seat number, name, party, and state are required"})
		return
	}

	member := &models.Member{
		SeatNo:      req.SeatNo,
		Name:        req.Name,
		Party:       req.Party,
		State:       req.State,
		TenureStart: parseTenure(req.TenureStart),
		Picture:     req.Picture,
	}
	if err := mc.Storage.Create(member); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Added member: Seat %d - %s", member.SeatNo, member.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Member added successfully"})
}

func (mc *MemberController) Update(c *gin.Context) {
	seatNo, err := strconv.Atoi(c.Param("seat_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid seat number"})
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Name, party, and state are required"})
		return
	}

	member := &models.Member{
		SeatNo:      seatNo,
		Name:        req.Name,
		Party:       req.Party,
		State:       req.State,
		TenureStart: parseTenure(req.TenureStart),
		Picture:     req.Picture,
	}
	err = mc.Storage.Update(member)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Updated member: Seat %d - %s", seatNo, req.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Member updated successfully"})
}

func (mc *MemberController) Delete(c *gin.Context) {
	seatNo, err := strconv.Atoi(c.Param("seat_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid seat number"})
		return
	}
	err = mc.Storage.Delete(seatNo)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Deleted member: Seat %d", seatNo)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Member deleted successfully"})
}

// SetVacant clears all data for a seat except the seat number itself.
func (mc *MemberController) SetVacant(c *gin.Context) {
	seatNo, err := strconv.Atoi(c.Param("seat_no"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid seat number"})
		return
	}
	if err := mc.Storage.SetVacant(seatNo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Set seat %d as VACANT", seatNo)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Seat marked as vacant"})
}

func parseTenure(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
