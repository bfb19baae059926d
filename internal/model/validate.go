package model

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 300
)

// Field-level messages shown next to the form.
const (
	MsgTitleRequired      = "Title is required"
	MsgTitleTooLong       = "Title must be under 100 characters"
	MsgDescriptionTooLong = "Description must be under 300 characters"
)

// TaskFormErrors maps a field name ("title", "description") to its message.
// A missing key means the field is valid.
type TaskFormErrors map[string]string

func (e TaskFormErrors) Valid() bool { return len(e) == 0 }

// Validate checks a creation payload against the field constraints.
func Validate(in CreateTaskInput) TaskFormErrors {
	errs := TaskFormErrors{}

	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = MsgTitleRequired
	} else if utf8.RuneCountInString(in.Title) > MaxTitleLen {
		errs["title"] = MsgTitleTooLong
	}

	if utf8.RuneCountInString(in.Description) > MaxDescriptionLen {
		errs["description"] = MsgDescriptionTooLong
	}
	return errs
}
