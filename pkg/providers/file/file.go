// Package file provides directory backed profile and job description providers.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/resumeflow/pkg/models"
	"github.com/dukex/resumeflow/pkg/providers"
)

// ProfileStore reads <root>/<id>.json profile documents.
type ProfileStore struct {
	root string
}

func NewProfileStore(root string) *ProfileStore {
	return &ProfileStore{root: strings.TrimPrefix(root, "file://")}
}

func (s *ProfileStore) LoadProfile(_ context.Context, id string) (*models.Profile, error) {
	id = strings.TrimSuffix(id, ".json")
	if err := providers.ValidateID(id); err != nil {
		return nil, providers.NewDocumentError("LoadProfile", id, err)
	}

	data, err := readFile(s.root, id+".json")
	if err != nil {
		return nil, providers.NewDocumentError("LoadProfile", id, err)
	}

	profile, err := DecodeProfile(data)
	if err != nil {
		return nil, providers.NewDocumentError("LoadProfile", id, err)
	}

	return profile, nil
}

// DecodeProfile validates a JSON profile document and decodes it.
func DecodeProfile(data []byte) (*models.Profile, error) {
	if err := validateProfileDocument(data); err != nil {
		return nil, fmt.Errorf("%w: %w", providers.ErrInvalidDocument, err)
	}

	var profile models.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: %w", providers.ErrInvalidDocument, err)
	}

	return &profile, nil
}

// LoadProfileFile loads a profile document from an explicit path.
func LoadProfileFile(ctx context.Context, path string) (*models.Profile, error) {
	return NewProfileStore(filepath.Dir(path)).LoadProfile(ctx, filepath.Base(path))
}

// JobDescriptions reads <root>/<id>.txt job postings. An id that already
// carries an extension is used as is.
type JobDescriptions struct {
	root string
}

func NewJobDescriptions(root string) *JobDescriptions {
	return &JobDescriptions{root: strings.TrimPrefix(root, "file://")}
}

func (j *JobDescriptions) JobDescription(_ context.Context, id string) (string, error) {
	if err := providers.ValidateID(id); err != nil {
		return "", providers.NewDocumentError("JobDescription", id, err)
	}

	name := id
	if filepath.Ext(name) == "" {
		name += ".txt"
	}

	data, err := readFile(j.root, name)
	if err != nil {
		return "", providers.NewDocumentError("JobDescription", id, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", providers.NewDocumentError("JobDescription", id, fmt.Errorf("%w: empty job description", providers.ErrInvalidDocument))
	}

	return text, nil
}

// LoadJobDescriptionFile loads a job posting from an explicit path.
func LoadJobDescriptionFile(ctx context.Context, path string) (string, error) {
	return NewJobDescriptions(filepath.Dir(path)).JobDescription(ctx, filepath.Base(path))
}

func readFile(root, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(root, name)) // #nosec G304 -- name is validated by providers.ValidateID
	if errors.Is(err, os.ErrNotExist) {
		return nil, providers.ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	return data, nil
}

var (
	_ providers.ProfileStore           = (*ProfileStore)(nil)
	_ providers.JobDescriptionProvider = (*JobDescriptions)(nil)
)
