// Package encoder builds the multipart/form-data request bodies sent to the
// processing service.
//
// All source files are read fully into memory before any bytes are encoded,
// so a read failure never produces a partial body.
//
// Import rules:
//   - CAN import: internal/constants, internal/ctxutil, internal/domain,
//     internal/errors, std lib
//   - MUST NOT import: internal/client, internal/capture, internal/cli
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/ctxutil"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/errors"
)

// Form field names and part metadata expected by the processing service.
const (
	AudioFieldName   = "file"
	AudioFileName    = "audio.m4a"
	AudioContentType = "audio/m4a"

	ImageFieldName   = "files"
	ImageContentType = "image/jpeg"
)

// Body is an encoded multipart request body.
type Body struct {
	Data     []byte
	Boundary string
}

// ContentType returns the request Content-Type header value for the body.
func (b *Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.Boundary
}

// Len returns the body size in bytes.
func (b *Body) Len() int {
	return len(b.Data)
}

// Reader returns a fresh reader over the body bytes.
func (b *Body) Reader() *bytes.Reader {
	return bytes.NewReader(b.Data)
}

// BoundaryFunc returns a new multipart boundary.
type BoundaryFunc func() string

// Encoder turns artifacts into multipart bodies.
type Encoder struct {
	boundary BoundaryFunc
	readFile func(string) ([]byte, error)
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithBoundaryFunc overrides boundary generation.
func WithBoundaryFunc(fn BoundaryFunc) Option {
	return func(e *Encoder) {
		e.boundary = fn
	}
}

// New creates an Encoder that uses a random UUID as the boundary.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		boundary: uuid.NewString,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode reads every source file of the artifact and encodes it.
// Audio artifacts produce a single "file" part; image sets produce one
// "files" part per page in input order.
func (e *Encoder) Encode(ctx context.Context, artifact domain.Artifact) (*Body, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	contents, err := e.readAll(ctx, artifact.Paths)
	if err != nil {
		return nil, err
	}

	switch artifact.Kind {
	case constants.ArtifactAudio:
		return e.encodeParts(AudioFieldName, AudioContentType, contents, func(int) string {
			return AudioFileName
		})
	case constants.ArtifactImages:
		return e.encodeParts(ImageFieldName, ImageContentType, contents, ImageFileName)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidArtifact, "unsupported kind %q", artifact.Kind)
	}
}

// ImageFileName returns the part filename for the image at index i.
func ImageFileName(i int) string {
	return fmt.Sprintf("image%d.jpg", i)
}

// readAll loads every path into an indexed slot so the parts keep input order.
func (e *Encoder) readAll(ctx context.Context, paths []string) ([][]byte, error) {
	contents := make([][]byte, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctxutil.Canceled(gctx); err != nil {
				return err
			}
			data, err := e.readFile(path)
			if err != nil {
				return errors.Join(err, errors.ErrFileRead)
			}
			contents[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return contents, nil
}

func (e *Encoder) encodeParts(field, contentType string, contents [][]byte, filename func(int) string) (*Body, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	boundary := e.boundary()
	if err := w.SetBoundary(boundary); err != nil {
		return nil, errors.Wrapf(err, "set boundary %q", boundary)
	}

	for i, data := range contents {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename(i)))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, errors.Wrap(err, "create part")
		}
		if _, err := part.Write(data); err != nil {
			return nil, errors.Wrap(err, "write part")
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}
	return &Body{Data: buf.Bytes(), Boundary: boundary}, nil
}
