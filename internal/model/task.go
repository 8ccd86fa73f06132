package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepeatValue selects the recurrence rule a task follows.
type RepeatValue string

const (
	RepeatDaily   RepeatValue = "daily"
	RepeatWeekly  RepeatValue = "weekly"
	RepeatMonthly RepeatValue = "monthly"
	RepeatYearly  RepeatValue = "yearly"
	RepeatCustom  RepeatValue = "custom"
)

// RepeatValues lists every supported repetition in display order.
var RepeatValues = []RepeatValue{RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly, RepeatCustom}

func (r RepeatValue) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly, RepeatCustom:
		return true
	default:
		return false
	}
}

func ParseRepeatValue(input string) (RepeatValue, error) {
	r := RepeatValue(strings.TrimSpace(strings.ToLower(input)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid repeat value: %q", input)
	}
	return r, nil
}

// Task is a recurring obligation owned by a user.
// StartDate and EndDate carry a calendar date only; the time of day is ignored.
type Task struct {
	ID             string `gorm:"primaryKey;size:36"`
	UserID         uint   `gorm:"index"`
	Title          string `gorm:"size:100"`
	Category       string `gorm:"size:50;index"`
	Subtitle       string
	StartDate      time.Time
	EndDate        *time.Time
	RepeatValue    RepeatValue `gorm:"size:16"`
	CustomRrule    string
	IsShared       bool         `gorm:"default:false"`
	IsActive       bool         `gorm:"default:true;index"`
	CompletedDates []Completion `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ShortID is the prefix shown to users in place of the full identifier.
func (t Task) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}
