package classify

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mindstash/mindstash/internal/model"
)

// Keyword cue tables. Order matters: reminder cues win over task cues,
// task cues over idea cues; anything uncued stays a note.
var (
	reminderCues = []string{"remind", "don't forget", "remember to", "remember that"}
	taskCues     = []string{"need to", "should", "todo", "to do", "must", "have to", "gotta"}
	ideaCues     = []string{"idea", "what if", "maybe", "could", "might be cool", "thinking about"}
	urgentCues   = []string{"urgent", "asap", "immediately", "right now", "today"}
	filmCues     = []string{"film", "movie", "script", "scene"}
	businessCues = []string{"business", "company", "startup"}
)

const offlineConfidence = 0.3

// Offline is the heuristic classifier. It is total: every input yields a
// categorization, always at low confidence so downstream consumers know
// it was not AI-derived.
type Offline struct {
	knownProjects []string
}

// NewOffline builds the heuristic classifier. knownProjects are matched
// case-insensitively as substrings for entity extraction.
func NewOffline(knownProjects []string) *Offline {
	lowered := make([]string, 0, len(knownProjects))
	for _, p := range knownProjects {
		if p = strings.TrimSpace(p); p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}
	return &Offline{knownProjects: lowered}
}

func (o *Offline) Categorize(_ context.Context, text string) (model.Categorization, error) {
	lower := strings.ToLower(text)

	category := model.CategoryNote
	urgency := model.UrgencyNone
	var subcategory *string

	switch {
	case containsAny(lower, reminderCues):
		category = model.CategoryReminder
		urgency = model.UrgencyMedium
	case containsAny(lower, taskCues):
		category = model.CategoryTask
		urgency = model.UrgencyMedium
	case containsAny(lower, ideaCues):
		category = model.CategoryIdea
	}

	if containsAny(lower, urgentCues) {
		urgency = model.UrgencyHigh
	}

	if category == model.CategoryIdea {
		if containsAny(lower, filmCues) {
			s := "Film"
			subcategory = &s
		} else if containsAny(lower, businessCues) {
			s := "Business"
			subcategory = &s
		}
	}

	var projects []string
	for _, p := range o.knownProjects {
		if strings.Contains(lower, p) {
			projects = append(projects, titleCase(p))
		}
	}

	return model.Categorization{
		Category:    category,
		Subcategory: subcategory,
		Title:       makeTitle(text),
		Entities:    model.Entities{Projects: projects},
		Urgency:     urgency,
		Confidence:  offlineConfidence,
	}, nil
}

func containsAny(s string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(s, cue) {
			return true
		}
	}
	return false
}

// makeTitle keeps the first 60 runes, appending an ellipsis when the
// input was longer. Slicing by runes keeps multibyte input valid UTF-8.
func makeTitle(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= 60 {
		return text
	}
	return strings.TrimSpace(string(runes[:60])) + "..."
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
