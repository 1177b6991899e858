package classify

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindstash/mindstash/internal/model"
)

func TestOfflineCueTables(t *testing.T) {
	o := NewOffline(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		category model.Category
		urgency  model.Urgency
	}{
		{"reminder cue", "remind me to water the plants", model.CategoryReminder, model.UrgencyMedium},
		{"dont forget", "don't forget the meeting notes", model.CategoryReminder, model.UrgencyMedium},
		{"task cue", "need to renew the passport", model.CategoryTask, model.UrgencyMedium},
		{"gotta", "gotta send that invoice", model.CategoryTask, model.UrgencyMedium},
		{"idea cue", "what if the app worked offline", model.CategoryIdea, model.UrgencyNone},
		{"plain note", "the sky was purple tonight", model.CategoryNote, model.UrgencyNone},
		{"urgency escalation", "need to call the bank today", model.CategoryTask, model.UrgencyHigh},
		{"urgent note stays note", "urgent weird noise from the car", model.CategoryNote, model.UrgencyHigh},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := o.Categorize(ctx, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.category, got.Category)
			assert.Equal(t, tc.urgency, got.Urgency)
			assert.Equal(t, 0.3, got.Confidence)
		})
	}
}

func TestOfflineReminderCueWinsOverTaskCue(t *testing.T) {
	o := NewOffline(nil)
	got, err := o.Categorize(context.Background(), "remind me that I need to buy milk")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryReminder, got.Category)
}

func TestOfflineIdeaSubcategories(t *testing.T) {
	o := NewOffline(nil)
	ctx := context.Background()

	got, err := o.Categorize(ctx, "idea for a movie about deep sea mining")
	require.NoError(t, err)
	require.NotNil(t, got.Subcategory)
	assert.Equal(t, "Film", *got.Subcategory)

	got, err = o.Categorize(ctx, "idea for a startup selling plant subscriptions")
	require.NoError(t, err)
	require.NotNil(t, got.Subcategory)
	assert.Equal(t, "Business", *got.Subcategory)

	got, err = o.Categorize(ctx, "idea about gardening")
	require.NoError(t, err)
	assert.Nil(t, got.Subcategory)
}

func TestOfflineKnownProjectEntities(t *testing.T) {
	o := NewOffline([]string{"Oro Verde", "storiq"})
	got, err := o.Categorize(context.Background(), "notes from the oro verde shoot")
	require.NoError(t, err)
	assert.Equal(t, []string{"Oro Verde"}, got.Entities.Projects)
}

func TestOfflineTitleTruncation(t *testing.T) {
	o := NewOffline(nil)
	long := strings.Repeat("a", 100)
	got, err := o.Categorize(context.Background(), long)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 60)+"...", got.Title)

	short, err := o.Categorize(context.Background(), "short one")
	require.NoError(t, err)
	assert.Equal(t, "short one", short.Title)
}

func TestOfflineTitleTruncationKeepsMultibyteRunesIntact(t *testing.T) {
	o := NewOffline(nil)
	long := "a" + strings.Repeat("é", 80)
	got, err := o.Categorize(context.Background(), long)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got.Title), "title must stay valid UTF-8: %q", got.Title)
	assert.Equal(t, "a"+strings.Repeat("é", 59)+"...", got.Title)
	assert.Equal(t, 63, utf8.RuneCountInString(got.Title))
}

func TestOfflineKnownProjectCapitalizationIsRuneSafe(t *testing.T) {
	o := NewOffline([]string{"école courte"})
	got, err := o.Categorize(context.Background(), "sketches for the école courte pitch")
	require.NoError(t, err)
	require.Len(t, got.Entities.Projects, 1)
	assert.Equal(t, "École Courte", got.Entities.Projects[0])
	assert.True(t, utf8.ValidString(got.Entities.Projects[0]))
}
