package models

import "time"

const (
	ActivityBillDiscussion = "Bill Discussion"
	ActivityZeroHour       = "Zero Hour"
	ActivityMemberSpeaking = "Member Speaking"
)

// ActivityLog is one finalized speaking session. Party is snapshotted at
// session time so historical attribution survives later member edits.
// BillID is nullable; legacy rows are matched by BillName instead.
type ActivityLog struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ActivityType    string     `gorm:"size:100;not null" json:"activity_type"`
	MemberName      string     `gorm:"size:255" json:"member_name"`
	Chairperson     string     `gorm:"size:255" json:"chairperson"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int        `gorm:"default:0" json:"duration_seconds"`
	AllottedSeconds int        `gorm:"default:0" json:"allotted_seconds"`
	SpokenSeconds   int        `gorm:"default:0" json:"spoken_seconds"`
	BillName        string     `gorm:"size:255" json:"bill_name"`
	BillID          *uint      `json:"bill_id,omitempty"`
	Party           string     `gorm:"size:100" json:"party"`
	SeatNo          int        `gorm:"column:seat_no" json:"seat_no"`
	Heading         string     `gorm:"size:255" json:"heading,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
