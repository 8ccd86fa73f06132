package model

import "time"

// Completion records that the occurrence of a task on Date was done.
// Date is a YYYY-MM-DD key; at most one row exists per (TaskID, Date).
type Completion struct {
	ID          uint   `gorm:"primaryKey"`
	TaskID      string `gorm:"size:36;uniqueIndex:idx_completion_task_date"`
	Date        string `gorm:"size:10;uniqueIndex:idx_completion_task_date"`
	CompletedAt time.Time
	CompletedBy string
}
