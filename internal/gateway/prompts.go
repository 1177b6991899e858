package gateway

import (
	"fmt"
	"strings"

	"github.com/mindstash/mindstash/internal/model"
)

func promptHeader(uc model.UserContext) string {
	return fmt.Sprintf(`You are an AI assistant helping %s, a %s at %s.
%s

Current projects: %s`, uc.Name, uc.Profession, uc.Company, uc.AdditionalContext, strings.Join(uc.Projects, ", "))
}

func buildCategorizePrompt(rawInput string, uc model.UserContext) string {
	projects := strings.Join(uc.Projects, ", ")
	return promptHeader(uc) + fmt.Sprintf(`

Analyze the following captured thought and categorize it:

%q

Respond with a JSON object containing:
- category: one of "idea", "task", "reminder", "note"
- subcategory: optional more specific category (e.g., "Film", "Business", "Personal", "Health")
- title: a concise, actionable title (max 60 chars)
- entities: { people?: string[], dates?: string[], projects?: string[], locations?: string[] }
- urgency: one of "high", "medium", "low", "none"
- confidence: 0-1 score of how confident you are in this categorization

Guidelines:
- "idea" = creative concepts, brainstorms, possibilities, "what if" scenarios
- "task" = actionable items requiring completion, has verbs like "need to", "should", "must"
- "reminder" = time-sensitive notifications, things to remember, "don't forget"
- "note" = information capture, observations, references, general thoughts

Extract any mentioned people, dates (convert to ISO format if possible), projects (especially %s), and locations.

Respond ONLY with valid JSON, no markdown formatting or explanation.`, rawInput, projects)
}

func buildExtractionPrompt(rawInput string, uc model.UserContext) string {
	projects := strings.Join(uc.Projects, ", ")
	return promptHeader(uc) + fmt.Sprintf(`

TASK: Extract MULTIPLE discrete items from the following voice note. People with ADHD often capture many thoughts at once, so identify each distinct item separately.

Voice note: %q

For EACH distinct item you identify, extract:
- category: "idea" | "task" | "reminder" | "note"
- title: concise, actionable title (max 60 chars)
- tags: array of 2-5 relevant contextual tags (e.g., ["family", "phone"], ["app", "development"])
- urgency: "high" | "medium" | "low" | "none"
- confidence: 0-1 score of how confident you are in this extraction
- rawText: the specific portion of the voice note related to this item
- entities: { people?: string[], dates?: string[], projects?: string[], locations?: string[] }

Guidelines:
- Separate by intent: "Remind me to call mom at 3pm" + "I have an idea for an app" = 2 items
- Separate by category: "Buy groceries" (task) + "Don't forget the meeting" (reminder) = 2 items
- Keep together: "Build an app that tracks fitness goals" = 1 item (even if long)
- Contextual tags: generate tags from context (time pressure, people mentioned, domain)
- Extract people: names and relationships (mom, boss, etc.)
- Extract dates: convert to ISO format if possible, otherwise keep as-is
- Extract projects: match against: %s

CRITICAL: Even if there's only 1 item, return it in the items array.

Respond with valid JSON of the shape {"items": [...], "reasoning": "..."}.

Respond ONLY with valid JSON, no markdown or explanation.`, rawInput, projects)
}

func buildGroupingPrompt(thoughts []groupThought) string {
	var b strings.Builder
	b.WriteString(`TASK: Group related thoughts captured by the user. Thoughts that express the same underlying intent or topic belong together; everything else stays ungrouped.

Thoughts (id | createdAt | text):
`)
	for _, t := range thoughts {
		fmt.Fprintf(&b, "- %s | %s | %q\n", t.ID, t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), t.Text)
	}
	b.WriteString(`
For each group of 2 or more related thoughts, produce:
- thoughtIds: the ids of the grouped thoughts
- mergedContent: the thoughts merged into one coherent text
- suggestedCategory: one of "idea", "task", "reminder", "note"
- suggestedTitle: concise title (max 60 chars)
- confidence: 0-1 score
- reasoning: one short sentence

Respond with valid JSON of the shape {"groups": [...], "summary": "..."}.
Never place a thought in more than one group. Respond ONLY with valid JSON, no markdown or explanation.`)
	return b.String()
}

func buildProjectDetectionPrompt(items []projectItem, existing []string, uc model.UserContext) string {
	var b strings.Builder
	b.WriteString(promptHeader(uc))
	b.WriteString(`

TASK: Detect recurring projects among the user's captured items. A project is a named effort that 3 or more items clearly relate to.

Items (id | category | title | tags | text):
`)
	for _, it := range items {
		fmt.Fprintf(&b, "- %s | %s | %q | %s | %q\n", it.ID, it.Category, it.Title, strings.Join(it.Tags, ","), it.RawInput)
	}
	fmt.Fprintf(&b, `
Existing projects (do not re-suggest these): %s

For each detected project, produce:
- projectName: short display name
- description: one sentence
- relatedItemIds: ids of the related items (3 or more)
- confidence: 0-1 score
- reasoning: one short sentence
- suggestedColor: a hex color

Respond with valid JSON of the shape {"suggestions": [...], "reasoning": "..."}.
Respond ONLY with valid JSON, no markdown or explanation.`, strings.Join(existing, ", "))
	return b.String()
}

func buildMergePreviewPrompt(a, b mergeItem) string {
	return fmt.Sprintf(`TASK: The user wants to merge two captured items into one. Propose the merged result.

Item 1: title %q, category %q, tags [%s], text %q
Item 2: title %q, category %q, tags [%s], text %q

Respond with a JSON object containing:
- mergedTitle: concise title for the merged item (max 60 chars)
- mergedRawInput: the two texts combined into one coherent text
- mergedTags: deduplicated union of useful tags
- suggestedCategory: one of "idea", "task", "reminder", "note"
- confidence: 0-1 score
- reasoning: one short sentence

Respond ONLY with valid JSON, no markdown or explanation.`,
		a.Title, a.Category, strings.Join(a.Tags, ","), a.RawInput,
		b.Title, b.Category, strings.Join(b.Tags, ","), b.RawInput)
}

func buildTagSuggestionPrompt(rawInput, category string, uc model.UserContext) string {
	return promptHeader(uc) + fmt.Sprintf(`

TASK: Suggest up to 5 short lowercase tags for the following captured %s:

%q

Respond with valid JSON of the shape {"tags": ["...", "..."]}.
Respond ONLY with valid JSON, no markdown or explanation.`, category, rawInput)
}
