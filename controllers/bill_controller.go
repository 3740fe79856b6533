package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"

	"github.com/gin-gonic/gin"
)

type BillController struct {
	Bills    storage.BillStorage
	Activity storage.ActivityStorage
}

func NewBillController(bills storage.BillStorage, activity storage.ActivityStorage) *BillController {
	return &BillController{Bills: bills, Activity: activity}
}

type billRequest struct {
	BillName         string                  `json:"bill_name" binding:"required"`
	PartyAllocations models.PartyAllocations `json:"party_allocations"`
	OthersTime       models.OthersTime       `json:"others_time"`
}

func (bc *BillController) List(c *gin.Context) {
	status := ""
	if param := c.Query("status"); param != "" {
		normalized, ok := models.NormalizeBillStatus(param)
		if !ok {
			normalized = param
		}
		status = normalized
	}
	bills, err := bc.Bills.List(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": bills})
}

func (bc *BillController) Create(c *gin.Context) {
	var req billRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Bill name is required"})
		return
	}
	bill := &models.Bill{
		BillName:         req.BillName,
		PartyAllocations: req.PartyAllocations,
		OthersTime:       req.OthersTime,
		Status:           models.BillStatusActive,
	}
	if err := bc.Bills.Create(bill); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Added bill: %s", bill.BillName)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bill created successfully", "id": bill.ID})
}

// Update edits a bill's name and allocations. Renaming repoints every
// historical session carrying this bill's id or old name at the new name,
// without altering their recorded times.
func (bc *BillController) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}
	var req billRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Bill name is required"})
		return
	}

	existing, err := bc.Bills.Get(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	oldName := existing.BillName

	bill := &models.Bill{
		ID:               uint(id),
		BillName:         req.BillName,
		PartyAllocations: req.PartyAllocations,
		OthersTime:       req.OthersTime,
	}
	if err := bc.Bills.Update(bill); err != nil && !errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	count, err := bc.Activity.RenameBillReferences(uint(id), oldName, req.BillName)
	if err != nil {
		logging.Log.Errorf("Error updating activity logs after bill rename: %v", err)
	} else if oldName != req.BillName {
		logging.Log.Infof("Updated %d activity log entries for bill rename %s -> %s", count, oldName, req.BillName)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bill updated successfully"})
}

func (bc *BillController) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Status is required"})
		return
	}
	status, ok := models.NormalizeBillStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status value"})
		return
	}

	err = bc.Bills.UpdateStatus(uint(id), status)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Updated bill %d status to %s", id, status)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bill status updated"})
}

func (bc *BillController) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}
	err = bc.Bills.Delete(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Deleted bill: %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bill deleted successfully"})
}
