// Package providers loads the documents a run starts from: candidate
// profiles and job descriptions.
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
)

// ProfileStore loads stored candidate profiles.
type ProfileStore interface {
	LoadProfile(ctx context.Context, id string) (*models.Profile, error)
}

// JobDescriptionProvider loads job posting text.
type JobDescriptionProvider interface {
	JobDescription(ctx context.Context, id string) (string, error)
}

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidDocument  = errors.New("invalid document")
	ErrInvalidID        = errors.New("invalid document id")
)

// DocumentError wraps provider errors with the operation and document id.
type DocumentError struct {
	Op  string
	ID  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s failed for document %s: %v", e.Op, e.ID, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func (e *DocumentError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func NewDocumentError(op, id string, err error) *DocumentError {
	return &DocumentError{Op: op, ID: id, Err: err}
}

// ValidateID rejects ids that could escape the provider root.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}

	if strings.Contains(id, "..") || strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%w: contains invalid characters", ErrInvalidID)
	}

	return nil
}

func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

func IsInvalidDocument(err error) bool {
	return errors.Is(err, ErrInvalidDocument)
}
