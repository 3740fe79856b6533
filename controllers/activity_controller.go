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

type ActivityLogController struct {
	Storage storage.ActivityStorage
	Members storage.MemberStorage
	Bills   storage.BillStorage
}

func NewActivityLogController(s storage.ActivityStorage, members storage.MemberStorage, bills storage.BillStorage) *ActivityLogController {
	return &ActivityLogController{Storage: s, Members: members, Bills: bills}
}

type activityLogRequest struct {
	ActivityType    string `json:"activity_type" binding:"required"`
	MemberName      string `json:"member_name"`
	Chairperson     string `json:"chairperson"`
	StartTime       string `json:"start_time" binding:"required"`
	EndTime         string `json:"end_time"`
	DurationSeconds int    `json:"duration_seconds"`
	AllottedSeconds int    `json:"allotted_seconds"`
	SpokenSeconds   int    `json:"spoken_seconds"`
	BillName        string `json:"bill_name"`
	BillID          *uint  `json:"bill_id"`
	Party           string `json:"party"`
	SeatNo          int    `json:"seat_no"`
	Heading         string `json:"heading"`
	Notes           string `json:"notes"`
}

// List returns logs, newest first, capped at 100 rows unless all=true.
func (ac *ActivityLogController) List(c *gin.Context) {
	all := false
	switch c.Query("all") {
	case "1", "true", "yes", "all":
		all = true
	}
	filter := storage.ActivityFilter{
		Date:         c.Query("date"),
		ActivityType: c.Query("activity_type"),
		All:          all,
	}
	logs, err := ac.Storage.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}

func (ac *ActivityLogController) Create(c *gin.Context) {
	var req activityLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Activity type and start time are required"})
		return
	}

	startTime, err := parseLogTime(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid start_time"})
		return
	}
	var endTime *time.Time
	if req.EndTime != "" {
		t, err := parseLogTime(req.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid end_time"})
			return
		}
		endTime = &t
	}

	entry := &models.ActivityLog{
		ActivityType:    req.ActivityType,
		MemberName:      req.MemberName,
		Chairperson:     req.Chairperson,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationSeconds: req.DurationSeconds,
		AllottedSeconds: req.AllottedSeconds,
		SpokenSeconds:   req.SpokenSeconds,
		BillName:        req.BillName,
		BillID:          req.BillID,
		Party:           req.Party,
		SeatNo:          req.SeatNo,
		Heading:         req.Heading,
		Notes:           req.Notes,
	}
	id, err := ac.Storage.Append(entry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Added activity log: %s - %s (Seat: %d, Party: %s)",
		req.ActivityType, req.MemberName, req.SeatNo, req.Party)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Activity logged successfully", "id": id})
}

// Patch corrects duration_seconds and/or spoken_seconds on a logged session.
func (ac *ActivityLogController) Patch(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid log id"})
		return
	}
	var req struct {
		SpokenSeconds   *int `json:"spoken_seconds"`
		DurationSeconds *int `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.SpokenSeconds == nil && req.DurationSeconds == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "spoken_seconds or duration_seconds is required"})
		return
	}

	err = ac.Storage.UpdateDurations(uint(id), req.DurationSeconds, req.SpokenSeconds)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Log entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Log entry updated"})
}

func (ac *ActivityLogController) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid log id"})
		return
	}
	err = ac.Storage.Delete(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Log entry not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Deleted activity log entry: %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Log entry deleted"})
}

// Clear removes every log entry. Irreversible.
func (ac *ActivityLogController) Clear(c *gin.Context) {
	if err := ac.Storage.DeleteAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Info("Cleared all activity logs")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All logs cleared"})
}

// DeleteByBill removes all logs for one bill, optionally only for one date.
func (ac *ActivityLogController) DeleteByBill(c *gin.Context) {
	billName := c.Query("bill_name")
	if billName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "bill_name parameter is required"})
		return
	}
	count, err := ac.Storage.DeleteByBill(billName, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Deleted %d activity log entries for bill: %s", count, billName)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Log entries deleted", "deleted_count": count})
}

// ListByBillName fetches Bill Discussion logs for a bill by name, matching
// by id as well when the name resolves to a registered bill.
func (ac *ActivityLogController) ListByBillName(c *gin.Context) {
	billName := c.Param("bill_name")

	var billID *uint
	if bill, err := ac.Bills.GetByName(billName); err == nil {
		billID = &bill.ID
	}

	logs, err := ac.Storage.ListByBill(billID, billName, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}

func (ac *ActivityLogController) ListByBillID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid bill id"})
		return
	}
	bill, err := ac.Bills.Get(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	logs, err := ac.Storage.ListByBill(&bill.ID, bill.BillName, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}

// MigrateBillIDs is a one-shot migration that backfills bill_id on legacy
// logs matched by bill name. Explicitly invoked and logged, never automatic.
func (ac *ActivityLogController) MigrateBillIDs(c *gin.Context) {
	bills, err := ac.Bills.List("")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	count, err := ac.Storage.AssignBillIDs(bills)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Migrated %d activity log entries with bill_id", count)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bill ids assigned", "updated_count": count})
}

// MergeBills moves logs recorded under a stale bill name onto a target bill.
func (ac *ActivityLogController) MergeBills(c *gin.Context) {
	var req struct {
		OldBillName  string `json:"old_bill_name"`
		TargetBillID uint   `json:"target_bill_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OldBillName == "" || req.TargetBillID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "old_bill_name and target_bill_id are required"})
		return
	}

	target, err := ac.Bills.Get(req.TargetBillID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Target bill not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	count, err := ac.Storage.MergeByName(req.OldBillName, target.ID, target.BillName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	logging.Log.Infof("Merged %d logs from %q to bill %d (%q)", count, req.OldBillName, target.ID, target.BillName)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Log entries merged", "merged_count": count})
}

// BackfillSeatNumbers fills seat_no on logs that lack one by looking the
// member name up in the directory. One-shot, explicitly invoked.
func (ac *ActivityLogController) BackfillSeatNumbers(c *gin.Context) {
	logs, err := ac.Storage.ListMissingSeat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	updated, notFound := 0, 0
	for _, entry := range logs {
		if entry.MemberName == "" {
			notFound++
			continue
		}
		seatNo, err := ac.Members.FindSeatByName(entry.MemberName)
		if err != nil {
			notFound++
			continue
		}
		if err := ac.Storage.SetSeat(entry.ID, seatNo); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		updated++
	}

	logging.Log.Infof("Updated %d activity logs with seat numbers, %d members not found", updated, notFound)
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated, "not_found": notFound})
}

func parseLogTime(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format")
}
