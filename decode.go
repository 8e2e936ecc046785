package storypdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxStoryBytes caps the size of a story document accepted by DecodeStory.
const MaxStoryBytes = 10 * 1024 * 1024

// DecodeStory reads a JSON story document.
// Malformed JSON and type mismatches are reported as validation errors;
// a non-array "chapters" value yields the same error Validate returns for
// missing chapters. The decoded document is not validated.
func DecodeStory(r io.Reader) (*StoryDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxStoryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading story: %v", ErrIO, err)
	}
	if len(data) > MaxStoryBytes {
		return nil, &ValidationError{Reason: fmt.Sprintf("story document exceeds %d bytes", MaxStoryBytes)}
	}
	return DecodeStoryBytes(data)
}

// DecodeStoryBytes is DecodeStory for an in-memory document.
func DecodeStoryBytes(data []byte) (*StoryDocument, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Missing: []string{"id", "name", "story"}}
	}

	var doc StoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			if typeErr.Field == "story.chapters" || strings.HasPrefix(typeErr.Field, "story.chapters.") {
				return nil, &ValidationError{Reason: reasonInvalidChapters}
			}
			return nil, &ValidationError{Reason: fmt.Sprintf("field %q has invalid type %s", typeErr.Field, typeErr.Value)}
		}
		return nil, &ValidationError{Reason: "malformed story JSON: " + err.Error()}
	}
	return &doc, nil
}
