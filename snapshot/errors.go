package snapshot

import "fmt"

// FieldError is returned when a snapshot field holds the wrong type or
// shape
type FieldError struct {
	Field    string
	Expected string
	Got      string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("snapshot: expected %s, got %s", e.Expected, e.Got)
	}
	return fmt.Sprintf("snapshot: %s: expected %s, got %s", e.Field, e.Expected, e.Got)
}
