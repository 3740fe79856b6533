package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	testutils "sabhahub/controllers/testing"
	"sabhahub/db"
	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBillTestController(t *testing.T) (*gin.Engine, storage.BillStorage, storage.ActivityStorage) {
	t.Helper()
	logging.Log = logrus.New()

	gdb, err := db.Connect("sqlite", filepath.Join(t.TempDir(), "bills_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	controller := NewBillController(bills, activity)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/bills", controller.List)
	r.POST("/api/bills", controller.Create)
	r.PUT("/api/bills/:id", controller.Update)
	r.PATCH("/api/bills/:id/status", controller.UpdateStatus)
	r.DELETE("/api/bills/:id", controller.Delete)
	return r, bills, activity
}

func createTestBill(t *testing.T, router *gin.Engine, name string) uint {
	t.Helper()
	res := testutils.PerformRequest(router, http.MethodPost, "/api/bills", map[string]interface{}{
		"bill_name": name,
		"party_allocations": []map[string]interface{}{
			{"party": "BJP", "hours": 2, "minutes": 0},
		},
		"others_time": map[string]interface{}{"hours": 0, "minutes": 30},
	})
	require.Equal(t, http.StatusOK, res.Code)

	var body struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.NotZero(t, body.ID)
	return body.ID
}

func TestCreateBillDefaultsToActive(t *testing.T) {
	router, bills, _ := setupBillTestController(t)

	id := createTestBill(t, router, "Finance Bill 2026")
	bill, err := bills.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.BillStatusActive, bill.Status)
	assert.Len(t, bill.PartyAllocations, 1)
}

func TestCreateBillRequiresName(t *testing.T) {
	router, _, _ := setupBillTestController(t)

	res := testutils.PerformRequest(router, http.MethodPost, "/api/bills", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListBillsNormalizesStatusFilter(t *testing.T) {
	router, bills, _ := setupBillTestController(t)

	activeID := createTestBill(t, router, "Finance Bill 2026")
	pastID := createTestBill(t, router, "Water Bill 2025")
	require.NoError(t, bills.UpdateStatus(pastID, models.BillStatusPast))

	// Legacy clients send "current" and "archived"; both normalize.
	for filter, wantID := range map[string]uint{
		"current":  activeID,
		"active":   activeID,
		"archived": pastID,
		"past":     pastID,
	} {
		res := testutils.PerformRequest(router, http.MethodGet, "/api/bills?status="+filter, nil)
		require.Equal(t, http.StatusOK, res.Code)

		var body struct {
			Data []models.Bill `json:"data"`
		}
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
		require.Len(t, body.Data, 1, "status=%s", filter)
		assert.Equal(t, wantID, body.Data[0].ID, "status=%s", filter)
	}
}

func TestUpdateBillStatusRejectsUnknownValue(t *testing.T) {
	router, _, _ := setupBillTestController(t)
	id := createTestBill(t, router, "Finance Bill 2026")

	res := testutils.PerformRequest(router, http.MethodPatch, fmt.Sprintf("/api/bills/%d/status", id),
		map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = testutils.PerformRequest(router, http.MethodPatch, fmt.Sprintf("/api/bills/%d/status", id),
		map[string]string{"status": "inactive"})
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestRenameBillRepointsActivityLogs(t *testing.T) {
	router, bills, activity := setupBillTestController(t)
	id := createTestBill(t, router, "Finance Bill 2026")

	// One log carries the id, one is a legacy name-only row.
	_, err := activity.Append(&models.ActivityLog{
		ActivityType:    models.ActivityBillDiscussion,
		MemberName:      "A. Sharma",
		StartTime:       time.Now(),
		DurationSeconds: 300,
		SpokenSeconds:   300,
		BillName:        "Finance Bill 2026",
		BillID:          &id,
		Party:           "BJP",
		SeatNo:          12,
	})
	require.NoError(t, err)
	_, err = activity.Append(&models.ActivityLog{
		ActivityType:    models.ActivityBillDiscussion,
		MemberName:      "B. Rao",
		StartTime:       time.Now(),
		DurationSeconds: 120,
		SpokenSeconds:   120,
		BillName:        "Finance Bill 2026",
		Party:           "INC",
		SeatNo:          34,
	})
	require.NoError(t, err)

	res := testutils.PerformRequest(router, http.MethodPut, fmt.Sprintf("/api/bills/%d", id),
		map[string]interface{}{"bill_name": "Finance (Amendment) Bill 2026"})
	require.Equal(t, http.StatusOK, res.Code)

	bill, err := bills.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Finance (Amendment) Bill 2026", bill.BillName)

	logs, err := activity.ListByBill(&id, "Finance (Amendment) Bill 2026", "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "Finance (Amendment) Bill 2026", entry.BillName)
		// Recorded times are untouched by the rename.
		assert.NotZero(t, entry.DurationSeconds)
	}
}

func TestDeleteBillKeepsActivityLogs(t *testing.T) {
	router, _, activity := setupBillTestController(t)
	id := createTestBill(t, router, "Finance Bill 2026")

	_, err := activity.Append(&models.ActivityLog{
		ActivityType:    models.ActivityBillDiscussion,
		StartTime:       time.Now(),
		DurationSeconds: 60,
		BillName:        "Finance Bill 2026",
		BillID:          &id,
	})
	require.NoError(t, err)

	res := testutils.PerformRequest(router, http.MethodDelete, fmt.Sprintf("/api/bills/%d", id), nil)
	require.Equal(t, http.StatusOK, res.Code)

	// The historical record survives the bill's removal.
	logs, err := activity.List(storage.ActivityFilter{All: true})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	res = testutils.PerformRequest(router, http.MethodDelete, fmt.Sprintf("/api/bills/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
