package models

import "fmt"

// ScheduleSlot is one recurring time-of-day trigger in the scheduler's
// timezone.
type ScheduleSlot struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (s ScheduleSlot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}
