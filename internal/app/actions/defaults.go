package actions

import (
	"strings"
	"unicode/utf8"
)

const (
	defaultTaskTitle    = "New task"
	defaultNoteTitle    = "New note"
	defaultProjectTitle = "New project"
	defaultHabitName    = "New habit"

	noteTitleRunes = 20
)

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// noteTitleFrom derives a title from note content: the content itself when
// short, else its first 20 characters followed by "...".
func noteTitleFrom(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if utf8.RuneCountInString(content) <= noteTitleRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:noteTitleRunes]) + "..."
}

// cleanTags trims, drops blanks and de-duplicates, keeping first-seen order.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
