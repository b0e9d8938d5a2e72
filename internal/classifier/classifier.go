// Package classifier routes each read audio file to an output bucket.
package classifier

import (
	"podscan/internal/textcheck"
)

// Bucket is where a file ends up after its title has been judged.
type Bucket string

const (
	// Exported files go to the song list.
	Exported Bucket = "EXPORTED"
	// EmptyTitle files have a tag block but no title.
	EmptyTitle Bucket = "EMPTY_TITLE"
	// InvalidTitle files have a title that looks garbled.
	InvalidTitle Bucket = "INVALID_TITLE"
	// ReadError files could not be read at all.
	ReadError Bucket = "READ_ERROR"
)

// Validator judges a title. *textcheck.Validator satisfies it.
type Validator interface {
	IsValid(text string) bool
}

// Classification represents the result of classifying a file.
type Classification struct {
	Bucket Bucket
	Title  string
	// Reason carries the read error message for ReadError.
	Reason string
}

// IsProblem reports whether the file belongs in the problem report.
func (c Classification) IsProblem() bool {
	return c.Bucket != Exported
}

// Classifier classifies titles with a Validator.
type Classifier struct {
	validator Validator
}

// New returns a Classifier. A nil validator uses the built-in text check.
func New(v Validator) *Classifier {
	if v == nil {
		v = textcheck.New()
	}
	return &Classifier{validator: v}
}

// Classify is a pure function of the title and the error met while reading
// it. A read error wins over anything else; then an empty title; then a
// title the validator rejects.
func (c *Classifier) Classify(title string, readErr error) Classification {
	if readErr != nil {
		return Classification{Bucket: ReadError, Reason: readErr.Error()}
	}
	if title == "" {
		return Classification{Bucket: EmptyTitle}
	}
	if !c.validator.IsValid(title) {
		return Classification{Bucket: InvalidTitle, Title: title}
	}
	return Classification{Bucket: Exported, Title: title}
}

// Classify uses the built-in text check.
func Classify(title string, readErr error) Classification {
	return defaultClassifier.Classify(title, readErr)
}

var defaultClassifier = New(nil)
