package controllers

import (
	"errors"
	"net/http"

	"sabhahub/models"
	"sabhahub/services"
	"sabhahub/storage"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Engine *services.Engine
	Lookup *services.Lookup
}

func NewSessionController(engine *services.Engine, lookup *services.Lookup) *SessionController {
	return &SessionController{Engine: engine, Lookup: lookup}
}

type sessionStartRequest struct {
	ActivityType     string `json:"activity_type" binding:"required"`
	SeatNo           int    `json:"seat_no" binding:"required"`
	Bill             string `json:"bill"`
	Chairperson      string `json:"chairperson"`
	CountdownSeconds int    `json:"countdown_seconds"`
}

// Start begins a speaking session for a seat. An active session is finalized
// first; its elapsed time is logged, not lost.
func (sc *SessionController) Start(c *gin.Context) {
	var req sessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "activity_type and seat_no are required"})
		return
	}

	member, err := sc.Lookup.ResolveSeat(req.SeatNo)
	if errors.Is(err, storage.ErrNotFound) {
		member = services.VacantSnapshot(req.SeatNo)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	start := services.StartRequest{
		ActivityType:     req.ActivityType,
		Member:           member,
		Chairperson:      req.Chairperson,
		CountdownSeconds: req.CountdownSeconds,
		AllottedSeconds:  req.CountdownSeconds,
	}
	if req.ActivityType == models.ActivityBillDiscussion && req.Bill != "" {
		bill, err := sc.Lookup.ResolveBill(req.Bill)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		id := bill.ID
		start.BillID = &id
		start.BillName = bill.Name
	}

	if err := sc.Engine.Start(start); err != nil {
		if errors.Is(err, services.ErrFinalizePending) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc.Engine.Snapshot()})
}

func (sc *SessionController) Pause(c *gin.Context) {
	if err := sc.Engine.Pause(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc.Engine.Snapshot()})
}

func (sc *SessionController) Resume(c *gin.Context) {
	if err := sc.Engine.Resume(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc.Engine.Snapshot()})
}

// Stop finalizes and logs the active session. Stopping when nothing is
// active succeeds and returns the last logged id, so double stops from the
// operator panel are harmless. This is also the retry path after a failed
// persist.
func (sc *SessionController) Stop(c *gin.Context) {
	logID, err := sc.Engine.Stop()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "log_id": logID, "data": sc.Engine.Snapshot()})
}

func (sc *SessionController) Reset(c *gin.Context) {
	if err := sc.Engine.Reset(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc.Engine.Snapshot()})
}

func (sc *SessionController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sc.Engine.Snapshot()})
}

type debateContextRequest struct {
	ActivityType     string `json:"activity_type" binding:"required"`
	Bill             string `json:"bill"`
	Chairperson      string `json:"chairperson"`
	CountdownSeconds int    `json:"countdown_seconds"`
}

// SetContext binds incoming seat signals to an activity so a panel press
// starts a session directly. Clearing makes selections display-only again.
func (sc *SessionController) SetContext(c *gin.Context) {
	var req debateContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "activity_type is required"})
		return
	}

	ctx := &services.DebateContext{
		ActivityType:     req.ActivityType,
		Chairperson:      req.Chairperson,
		CountdownSeconds: req.CountdownSeconds,
	}
	if req.ActivityType == models.ActivityBillDiscussion && req.Bill != "" {
		bill, err := sc.Lookup.ResolveBill(req.Bill)
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		ctx.Bill = &bill
	}

	sc.Engine.SetContext(ctx)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Debate context set"})
}

func (sc *SessionController) ClearContext(c *gin.Context) {
	sc.Engine.SetContext(nil)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Debate context cleared"})
}
