package interview

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow/internal/config"
	"dealflow/internal/startup"
)

// DurationMinutes is the length of every scheduled interview.
const DurationMinutes = 45

var slotHours = [...]int{10, 14}

// Slot is a proposed interview window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Schedule is a proposed interview.
type Schedule struct {
	MeetingID       string   `json:"meeting_id"`
	MeetingLink     string   `json:"meeting_link"`
	Slots           []Slot   `json:"slots"`
	Agenda          []string `json:"agenda"`
	DurationMinutes int      `json:"duration_minutes"`
	Priority        string   `json:"priority_level"`
}

// Scheduler proposes interview slots.
type Scheduler struct {
	baseURL  string
	days     int
	location *time.Location
	now      func() time.Time
}

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler builds a Scheduler from the interview config.
func NewScheduler(cfg config.Interview, location *time.Location, opts ...SchedulerOption) *Scheduler {
	if location == nil {
		location = time.Local
	}
	s := &Scheduler{
		baseURL:  strings.TrimRight(cfg.MeetingBaseURL, "/"),
		days:     cfg.SlotDays,
		location: location,
		now:      time.Now,
	}
	if s.days <= 0 {
		s.days = 1
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule proposes an interview for profile. score is the analysis score
// and sets the priority.
func (s *Scheduler) Schedule(profile startup.Profile, score float64) Schedule {
	id := uuid.NewString()
	meetingID := id[:8]
	return Schedule{
		MeetingID:       meetingID,
		MeetingLink:     s.baseURL + "/" + meetingID,
		Slots:           s.Slots(),
		Agenda:          Agenda(profile),
		DurationMinutes: DurationMinutes,
		Priority:        priority(score),
	}
}

// Slots returns two slots on each of the next business days, starting
// tomorrow.
func (s *Scheduler) Slots() []Slot {
	now := s.now().In(s.location)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)

	slots := make([]Slot, 0, s.days*len(slotHours))
	for found := 0; found < s.days; {
		day = day.AddDate(0, 0, 1)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for _, hour := range slotHours {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.location)
			slots = append(slots, Slot{Start: start, End: start.Add(DurationMinutes * time.Minute)})
		}
		found++
	}
	return slots
}

func priority(score float64) string {
	switch {
	case score >= 7:
		return "high"
	case score >= 5:
		return "medium"
	default:
		return "low"
	}
}

// Agenda derives the interview topics from the profile.
func Agenda(profile startup.Profile) []string {
	agenda := []string{"Discuss market opportunity and competitive landscape"}
	if profile.Market.CompetitionLevel == startup.CompetitionHigh && len(profile.Market.KeyPlayers) > 0 {
		agenda = append(agenda, "Differentiation against "+strings.Join(profile.Market.KeyPlayers, ", "))
	}

	names := strings.Join(profile.FounderNames(), ", ")
	agenda = append(agenda, fmt.Sprintf("Review founder background and team dynamics (%s)", names))

	metrics := profile.Metrics
	if metrics.HasRevenue() {
		agenda = append(agenda, "Revenue quality, growth and retention")
	} else {
		agenda = append(agenda, "Path to first revenue and monetization strategy")
	}
	if metrics.ChurnRate != nil && *metrics.ChurnRate > 0.1 {
		agenda = append(agenda, "Drivers of customer churn")
	}
	agenda = append(agenda,
		"Assess technical differentiation and IP strategy",
		fmt.Sprintf("Understand %s funding needs and use of capital", profile.FundingStage),
	)
	return agenda
}
