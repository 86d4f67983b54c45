package domain

import (
	"fmt"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// Artifact references raw captured input awaiting submission.
// It is owned by the orchestrator until the encoder consumes it and is never persisted.
type Artifact struct {
	// Kind selects the processing endpoint and the multipart layout.
	Kind constants.ArtifactKind
	// Paths holds one audio path, or 1..MaxImages image paths in page order.
	Paths []string
}

// NewAudioArtifact references a single recorded or uploaded audio file.
func NewAudioArtifact(path string) Artifact {
	return Artifact{Kind: constants.ArtifactAudio, Paths: []string{path}}
}

// NewImageArtifactSet references an ordered set of photographed pages.
// It rejects an empty set and sets larger than constants.MaxImages.
func NewImageArtifactSet(paths []string) (Artifact, error) {
	switch {
	case len(paths) == 0:
		return Artifact{}, errors.ErrNoImages
	case len(paths) > constants.MaxImages:
		return Artifact{}, fmt.Errorf("%w: got %d, limit is %d", errors.ErrTooManyImages, len(paths), constants.MaxImages)
	}
	return Artifact{Kind: constants.ArtifactImages, Paths: append([]string(nil), paths...)}, nil
}

// Validate checks the artifact shape against its kind.
func (a Artifact) Validate() error {
	switch a.Kind {
	case constants.ArtifactAudio:
		if len(a.Paths) != 1 || a.Paths[0] == "" {
			return fmt.Errorf("%w: audio artifact needs exactly one path", errors.ErrInvalidArtifact)
		}
	case constants.ArtifactImages:
		if len(a.Paths) == 0 {
			return errors.ErrNoImages
		}
		if len(a.Paths) > constants.MaxImages {
			return fmt.Errorf("%w: got %d, limit is %d", errors.ErrTooManyImages, len(a.Paths), constants.MaxImages)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", errors.ErrInvalidArtifact, a.Kind)
	}
	return nil
}
