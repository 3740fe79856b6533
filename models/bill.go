package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	BillStatusActive = "Active"
	BillStatusPast   = "Past"
)

// NormalizeBillStatus maps the status aliases accepted at the API boundary
// onto the two canonical values. Returns false for anything unrecognized.
func NormalizeBillStatus(status string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "current", "active":
		return BillStatusActive, true
	case "past", "archived", "inactive":
		return BillStatusPast, true
	}
	return "", false
}

// PartyAllocation is one party's budgeted speaking time for a bill debate.
type PartyAllocation struct {
	Party   string `json:"party"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
}

func (p PartyAllocation) AllottedSeconds() int {
	return (p.Hours*60 + p.Minutes) * 60
}

type PartyAllocations []PartyAllocation

func (a PartyAllocations) Value() (driver.Value, error) {
	if a == nil {
		a = PartyAllocations{}
	}
	return json.Marshal(a)
}

func (a *PartyAllocations) Scan(value interface{}) error {
	if value == nil {
		*a = PartyAllocations{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("cannot scan %T into PartyAllocations", value)
}

// OthersTime is the catch-all budget for members outside the allocated parties.
type OthersTime struct {
	Hours   int      `json:"hours"`
	Minutes int      `json:"minutes"`
	Members []string `json:"members"`
}

func (o OthersTime) Value() (driver.Value, error) {
	if o.Members == nil {
		o.Members = []string{}
	}
	return json.Marshal(o)
}

func (o *OthersTime) Scan(value interface{}) error {
	if value == nil {
		*o = OthersTime{Members: []string{}}
		return nil
	}
	var err error
	switch v := value.(type) {
	case []byte:
		err = json.Unmarshal(v, o)
	case string:
		err = json.Unmarshal([]byte(v), o)
	default:
		return fmt.Errorf("cannot scan %T into OthersTime", value)
	}
	if err != nil {
		return err
	}
	if o.Members == nil {
		o.Members = []string{}
	}
	return nil
}

type Bill struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	BillName         string           `gorm:"size:500;not null" json:"bill_name"`
	PartyAllocations PartyAllocations `gorm:"type:json" json:"party_allocations"`
	OthersTime       OthersTime       `gorm:"type:json" json:"others_time"`
	Status           string           `gorm:"size:50;default:Active" json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (Bill) TableName() string {
	return "bill_details"
}
