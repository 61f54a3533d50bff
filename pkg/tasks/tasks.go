// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import (
	"fmt"
	"time"

	"mindcare-go/internal/model"
)

// PlanArchiveTask is published every time an assessment produces a plan.
type PlanArchiveTask struct {
	UserID      uint                `json:"user_id"`
	Username    string              `json:"username"`
	Topic       string              `json:"topic"`
	Plan        model.GeneratedPlan `json:"plan"`
	Answers     map[string]string   `json:"answers"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// Key identifies the task across redeliveries.
func (t PlanArchiveTask) Key() string {
	return fmt.Sprintf("%d-%d", t.UserID, t.GeneratedAt.UnixMilli())
}
