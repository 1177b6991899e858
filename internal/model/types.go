package model

import "time"

// Category classifies a captured thought.
type Category string

const (
	CategoryIdea     Category = "idea"
	CategoryTask     Category = "task"
	CategoryReminder Category = "reminder"
	CategoryNote     Category = "note"
)

// ValidCategory reports whether s is one of the four known categories.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryIdea, CategoryTask, CategoryReminder, CategoryNote:
		return true
	}
	return false
}

// Urgency orders items for sorting and grouping: high > medium > low > none.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
	UrgencyNone   Urgency = "none"
)

// ValidUrgency reports whether s is one of the four known urgency levels.
func ValidUrgency(s string) bool {
	switch Urgency(s) {
	case UrgencyHigh, UrgencyMedium, UrgencyLow, UrgencyNone:
		return true
	}
	return false
}

// Status is the item lifecycle state.
type Status string

const (
	StatusInbox    Status = "inbox"
	StatusCaptured Status = "captured"
	StatusActed    Status = "acted"
	StatusArchived Status = "archived"
)

// Entities holds mentions extracted from a transcript. Dates are
// ISO-normalized where resolvable, otherwise the original phrase.
type Entities struct {
	People    []string `json:"people,omitempty"`
	Dates     []string `json:"dates,omitempty"`
	Projects  []string `json:"projects,omitempty"`
	Locations []string `json:"locations,omitempty"`
}

// NotificationSchedule is the reminder descriptor owned by the external
// notification collaborator. The core only reads and writes it.
type NotificationSchedule struct {
	At      time.Time `json:"at"`
	Message string    `json:"message,omitempty"`
}

// Item is the unit of captured thought. RawInput is immutable once the
// item exists; a split-extraction creates replacement items instead.
type Item struct {
	ID                    string                `json:"id"`
	RawInput              string                `json:"rawInput"`
	Category              Category              `json:"category"`
	Subcategory           *string               `json:"subcategory,omitempty"`
	Title                 string                `json:"title"`
	Tags                  []string              `json:"tags"`
	Entities              Entities              `json:"entities"`
	Urgency               Urgency               `json:"urgency"`
	Status                Status                `json:"status"`
	PendingAIProcessing   bool                  `json:"pendingAIProcessing"`
	Synced                bool                  `json:"synced"`
	ScheduledNotification *NotificationSchedule `json:"scheduledNotification,omitempty"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// ItemUpdate is a partial update applied by Store.Items().Update.
// Nil fields are left untouched. ClearNotification removes the reminder
// descriptor regardless of ScheduledNotification.
type ItemUpdate struct {
	Category              *Category
	Subcategory           *string
	Title                 *string
	Tags                  *[]string
	Entities              *Entities
	Urgency               *Urgency
	Status                *Status
	PendingAIProcessing   *bool
	Synced                *bool
	ScheduledNotification *NotificationSchedule
	ClearNotification     bool
}

// ApplyTo folds the non-nil fields of the update into it. UpdatedAt is
// left to the storage adapter.
func (u ItemUpdate) ApplyTo(it *Item) {
	if u.Category != nil {
		it.Category = *u.Category
	}
	if u.Subcategory != nil {
		it.Subcategory = u.Subcategory
	}
	if u.Title != nil {
		it.Title = *u.Title
	}
	if u.Tags != nil {
		it.Tags = *u.Tags
	}
	if u.Entities != nil {
		it.Entities = *u.Entities
	}
	if u.Urgency != nil {
		it.Urgency = *u.Urgency
	}
	if u.Status != nil {
		it.Status = *u.Status
	}
	if u.PendingAIProcessing != nil {
		it.PendingAIProcessing = *u.PendingAIProcessing
	}
	if u.Synced != nil {
		it.Synced = *u.Synced
	}
	if u.ClearNotification {
		it.ScheduledNotification = nil
	} else if u.ScheduledNotification != nil {
		it.ScheduledNotification = u.ScheduledNotification
	}
}

// Project is a named grouping of item ids. It only exists after explicit
// user approval of a suggestion; suggestions themselves are never stored.
type Project struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Color         string    `json:"color"`
	ItemIDs       []string  `json:"itemIds"`
	SuggestedByAI bool      `json:"suggestedByAI"`
	UserApproved  bool      `json:"userApproved"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Categorization is the Classification Service output for one transcript.
type Categorization struct {
	Category    Category `json:"category"`
	Subcategory *string  `json:"subcategory,omitempty"`
	Title       string   `json:"title"`
	Entities    Entities `json:"entities"`
	Urgency     Urgency  `json:"urgency"`
	Confidence  float64  `json:"confidence"`
	Reasoning   string   `json:"reasoning,omitempty"`
}

// ExtractedItem is one discrete item pulled out of a transcript by the
// Multi-Item Extraction Service. Never persisted directly; always
// converted to a full Item first.
type ExtractedItem struct {
	Category   Category `json:"category"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Urgency    Urgency  `json:"urgency"`
	Confidence float64  `json:"confidence"`
	RawText    string   `json:"rawText"`
	Entities   Entities `json:"entities"`
}

// ExtractionResult is the Multi-Item Extraction Service output.
// Items is never empty for non-empty input.
type ExtractionResult struct {
	Items     []ExtractedItem `json:"items"`
	Reasoning string          `json:"reasoning"`
}

// ThoughtGroup is an ephemeral merge proposal covering 2+ items. Accepting
// it creates a merged item and archives the sources; rejecting returns the
// sources to captured status unchanged.
type ThoughtGroup struct {
	ID                string   `json:"id"`
	Thoughts          []*Item  `json:"thoughts"`
	MergedContent     string   `json:"mergedContent"`
	SuggestedCategory Category `json:"suggestedCategory"`
	SuggestedTitle    string   `json:"suggestedTitle"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
}

// GroupingResult partitions its input exactly: every analyzed item appears
// either in one group or in Ungrouped, never both, never neither.
type GroupingResult struct {
	Groups    []ThoughtGroup `json:"groups"`
	Ungrouped []*Item        `json:"ungrouped"`
	Summary   string         `json:"summary"`
}

// ProjectSuggestion is a detected project candidate awaiting user review.
type ProjectSuggestion struct {
	ProjectName    string   `json:"projectName"`
	Description    string   `json:"description"`
	RelatedItemIDs []string `json:"relatedItemIds"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	SuggestedColor string   `json:"suggestedColor"`
}

// ProjectDetection is the project detection response.
type ProjectDetection struct {
	Suggestions []ProjectSuggestion `json:"suggestions"`
	Reasoning   string              `json:"reasoning"`
}

// MergePreview describes what merging two items would produce. It is
// always user-confirmed before any write happens.
type MergePreview struct {
	MergedTitle       string   `json:"mergedTitle"`
	MergedRawInput    string   `json:"mergedRawInput"`
	MergedTags        []string `json:"mergedTags"`
	SuggestedCategory Category `json:"suggestedCategory"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning"`
}

// UserContext is embedded in online prompts so entity extraction can match
// against the user's known projects.
type UserContext struct {
	Name              string   `json:"name"`
	Profession        string   `json:"profession"`
	Company           string   `json:"company"`
	Projects          []string `json:"projects"`
	AdditionalContext string   `json:"additionalContext,omitempty"`
}
