// Package naming turns human-readable labels into file and directory names.
package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidName is matched by every NamingError.
var ErrInvalidName = errors.New("invalid name")

// NamingError reports a label that cannot be turned into a file name.
type NamingError struct {
	Label string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("filename %q not valid", e.Label)
}

func (e *NamingError) Is(target error) bool {
	return target == ErrInvalidName
}

// Normalize keeps letters, numbers, '_' and '-' and replaces every other
// code point with '_'. Distinct labels may collide ("a/b" and "a_b");
// callers that need unique names add a sequence number.
func Normalize(label string) (string, error) {
	var buf strings.Builder
	buf.Grow(len(label))
	for _, r := range label {
		if isNameRune(r) {
			buf.WriteRune(r)
		} else {
			buf.WriteRune('_')
		}
	}

	// Inert: whitespace is substituted above, so nothing is ever trimmed.
	// Kept so the result stays trimmed if the alphabet ever changes.
	name := strings.TrimSpace(buf.String())
	if name == "" {
		return "", &NamingError{Label: label}
	}
	return name, nil
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || r == '-'
}

// ItemFileName builds the PNG name for one rendition of a segment:
// "007-label.png" for the first rendition, "007-label-2.png" for the second.
// seq and rendition are 1-based.
func ItemFileName(seq int, label string, rendition int) (string, error) {
	safe, err := Normalize(label)
	if err != nil {
		return "", err
	}
	if rendition > 1 {
		return fmt.Sprintf("%03d-%s-%d.png", seq, safe, rendition), nil
	}
	return fmt.Sprintf("%03d-%s.png", seq, safe), nil
}

// OutputDirBase is the output directory name before the collision suffix:
// "<name>-<engine>-png", or "<engine>-png" when the deck is unnamed.
func OutputDirBase(deckName, engine string) (string, error) {
	if deckName == "" {
		return fmt.Sprintf("%s-png", engine), nil
	}
	safe, err := Normalize(deckName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-png", safe, engine), nil
}
