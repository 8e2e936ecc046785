package storypdf

import "strings"

// Validation messages shared by Validate and DecodeStory.
const (
	reasonMissingTitle    = "story must have a title"
	reasonInvalidChapters = "story must have valid chapters"
	reasonNoChapters      = "story must have at least one chapter"
)

// Validate checks that a document can be rendered.
// All missing top-level fields are reported together; title and chapters are
// checked only once the top-level shape is complete.
func Validate(doc *StoryDocument) error {
	if doc == nil {
		return &ValidationError{Missing: []string{"id", "name", "story"}}
	}

	var missing []string
	if strings.TrimSpace(doc.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(doc.Name) == "" {
		missing = append(missing, "name")
	}
	if doc.Story == nil {
		missing = append(missing, "story")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	if strings.TrimSpace(doc.Story.Title) == "" {
		return &ValidationError{Reason: reasonMissingTitle}
	}
	if doc.Story.Chapters == nil {
		return &ValidationError{Reason: reasonInvalidChapters}
	}
	if len(doc.Story.Chapters) == 0 {
		return &ValidationError{Reason: reasonNoChapters}
	}
	return nil
}
