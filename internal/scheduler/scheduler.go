// Package scheduler fires publish cycles at fixed times of day in a
// configured timezone.
package scheduler

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/maheshrc27/postpilot/internal/models"
	"github.com/maheshrc27/postpilot/internal/transfer"
)

// Scheduler owns one cron instance. Fire callbacks must be cheap: the
// callback only enqueues a task, the cycle itself runs on the queue worker.
type Scheduler struct {
	cron     *cron.Cron
	slots    []models.ScheduleSlot
	entryIDs map[cron.EntryID]models.ScheduleSlot
	timezone string
	enabled  bool
	running  bool
	fire     func()
}

func New(timezone string, rawSlots []string, enabled bool, fire func()) *Scheduler {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("unknown timezone, falling back to UTC", "timezone", timezone, "error", err)
		location = time.UTC
		timezone = "UTC"
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		slots:    ParseSlots(rawSlots),
		entryIDs: make(map[cron.EntryID]models.ScheduleSlot),
		timezone: timezone,
		enabled:  enabled,
		fire:     fire,
	}
}

// ParseSlots converts "HH:MM" strings into schedule slots, dropping
// anything malformed or out of range.
func ParseSlots(raw []string) []models.ScheduleSlot {
	var slots []models.ScheduleSlot
	for _, entry := range raw {
		slot, err := parseSlot(entry)
		if err != nil {
			slog.Warn("dropping invalid post slot", "slot", entry, "error", err)
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

func parseSlot(raw string) (models.ScheduleSlot, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return models.ScheduleSlot{}, fmt.Errorf("expected HH:MM")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return models.ScheduleSlot{}, fmt.Errorf("hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return models.ScheduleSlot{}, fmt.Errorf("minute out of range")
	}

	return models.ScheduleSlot{Hour: hour, Minute: minute}, nil
}

// Start registers one cron entry per slot and starts firing. Disabled or
// slotless schedulers stay idle.
func (s *Scheduler) Start() error {
	if !s.enabled {
		slog.Info("pipeline disabled, scheduler not started")
		return nil
	}
	if len(s.slots) == 0 {
		slog.Info("no valid post slots configured, scheduler not started")
		return nil
	}

	for _, slot := range s.slots {
		spec := fmt.Sprintf("%d %d * * *", slot.Minute, slot.Hour)
		id, err := s.cron.AddFunc(spec, s.fire)
		if err != nil {
			return fmt.Errorf("failed to register slot %s: %w", slot, err)
		}
		s.entryIDs[id] = slot
	}

	s.cron.Start()
	s.running = true
	slog.Info("scheduler started", "timezone", s.timezone, "slots", len(s.slots))
	return nil
}

// Stop halts firing and waits for the dispatch goroutine. Safe to call on
// a scheduler that never started.
func (s *Scheduler) Stop() {
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	slog.Info("scheduler stopped")
}

func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) Overview() transfer.ScheduleOverview {
	overview := transfer.ScheduleOverview{
		Enabled:   s.enabled,
		Running:   s.running,
		Timezone:  s.timezone,
		PostSlots: make([]string, 0, len(s.slots)),
		Entries:   []transfer.ScheduleEntry{},
	}
	for _, slot := range s.slots {
		overview.PostSlots = append(overview.PostSlots, slot.String())
	}

	// Entries() sorts by next fire time, so slots are matched by entry id.
	for _, entry := range s.cron.Entries() {
		slot := ""
		if matched, ok := s.entryIDs[entry.ID]; ok {
			slot = matched.String()
		}
		overview.Entries = append(overview.Entries, transfer.ScheduleEntry{
			Slot:    slot,
			NextRun: entry.Next,
		})
	}
	return overview
}
