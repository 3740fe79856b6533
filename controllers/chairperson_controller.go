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

type ChairpersonController struct {
	Storage storage.ChairpersonStorage
}

func NewChairpersonController(s storage.ChairpersonStorage) *ChairpersonController {
	return &ChairpersonController{Storage: s}
}

type chairpersonRequest struct {
	Name     string `json:"name" binding:"required"`
	Position string `json:"position" binding:"required"`
	Picture  []byte `json:"picture"`
}

func (cc *ChairpersonController) GetAll(c *gin.Context) {
	chairs, err := cc.Storage.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": chairs})
}

func (cc *ChairpersonController) Create(c *gin.Context) {
	var req chairpersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Name and position are required"})
		return
	}
	chair := &models.Chairperson{Name: req.Name, Position: req.Position, Picture: req.Picture}
	if err := cc.Storage.Create(chair); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Added chairperson: %s - %s", chair.Position, chair.Name)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chairperson added successfully", "id": chair.ID})
}

func (cc *ChairpersonController) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid chairperson id"})
		return
	}
	var req chairpersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Name and position are required"})
		return
	}
	chair := &models.Chairperson{ID: uint(id), Name: req.Name, Position: req.Position, Picture: req.Picture}
	err = cc.Storage.Update(chair)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Chairperson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chairperson updated successfully"})
}

func (cc *ChairpersonController) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid chairperson id"})
		return
	}
	err = cc.Storage.Delete(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Chairperson not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Deleted chairperson: %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Chairperson deleted successfully"})
}
