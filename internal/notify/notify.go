// Package notify computes when a reminder should fire. It only produces
// the schedule descriptor; delivering notifications belongs to an
// external collaborator.
package notify

import (
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/mindstash/mindstash/internal/model"
)

var parser *when.Parser

func init() {
	parser = when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
}

// ExtractTimeFromText parses a natural-language time mention out of the
// text ("call mom at 3pm", "meeting tomorrow", "in 2 hours"). A parsed
// time already in the past rolls forward one day. Returns nil when
// nothing parses.
func ExtractTimeFromText(text string, now time.Time) *time.Time {
	r, err := parser.Parse(text, now)
	if err != nil || r == nil {
		return nil
	}
	t := r.Time
	if t.Before(now) {
		t = t.AddDate(0, 0, 1)
	}
	return &t
}

// DefaultReminderTime picks a time based on urgency when the text gave
// none: high fires in 15 minutes, medium in an hour, everything else
// tomorrow at 09:00.
func DefaultReminderTime(urgency model.Urgency, now time.Time) time.Time {
	switch urgency {
	case model.UrgencyHigh:
		return now.Add(15 * time.Minute)
	case model.UrgencyMedium:
		return now.Add(time.Hour)
	default:
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 9, 0, 0, 0, now.Location())
	}
}
