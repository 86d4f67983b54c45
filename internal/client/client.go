// Package client submits encoded artifacts to the remote processing service
// and decodes the structured meeting result it returns.
//
// Each submission is a single attempt bounded by a per-endpoint timeout:
// 300 seconds for audio, 120 seconds for images. There are no retries.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/encoder, internal/errors, std lib
//   - MUST NOT import: internal/capture, internal/cli
package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/domain"
	"github.com/mrz1836/minutes/internal/encoder"
	"github.com/mrz1836/minutes/internal/errors"
)

// tracerName identifies spans produced by this package.
const tracerName = "github.com/mrz1836/minutes/internal/client"

// Client talks to the processing service.
type Client struct {
	baseURL      string
	authToken    string
	audioTimeout time.Duration
	imageTimeout time.Duration
	http         *http.Client
	encoder      *encoder.Encoder
	tracer       trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithAuthToken sends "Authorization: Bearer <token>" with every request.
func WithAuthToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithTimeouts overrides the per-endpoint timeouts. Zero values keep the default.
func WithTimeouts(audio, images time.Duration) Option {
	return func(c *Client) {
		if audio > 0 {
			c.audioTimeout = audio
		}
		if images > 0 {
			c.imageTimeout = images
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithEncoder replaces the multipart encoder.
func WithEncoder(enc *encoder.Encoder) Option {
	return func(c *Client) {
		c.encoder = enc
	}
}

// WithTracerProvider sets the provider used for submission spans.
// The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		audioTimeout: constants.DefaultAudioTimeout,
		imageTimeout: constants.DefaultImageTimeout,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
		encoder: encoder.New(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitAudio posts a single audio file to /process-meeting.
func (c *Client) SubmitAudio(ctx context.Context, artifact domain.Artifact) (*domain.MeetingResult, error) {
	if artifact.Kind != constants.ArtifactAudio {
		return nil, errors.Wrapf(errors.ErrInvalidArtifact, "expected audio artifact, got %q", artifact.Kind)
	}
	return c.submit(ctx, constants.EndpointProcessMeeting, c.audioTimeout, artifact)
}

// SubmitImages posts an ordered image set to /process-images.
func (c *Client) SubmitImages(ctx context.Context, artifact domain.Artifact) (*domain.MeetingResult, error) {
	if artifact.Kind != constants.ArtifactImages {
		return nil, errors.Wrapf(errors.ErrInvalidArtifact, "expected image artifact, got %q", artifact.Kind)
	}
	return c.submit(ctx, constants.EndpointProcessImages, c.imageTimeout, artifact)
}

func (c *Client) submit(ctx context.Context, endpoint string, timeout time.Duration, artifact domain.Artifact) (*domain.MeetingResult, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("component", "client").
		Str("endpoint", endpoint).
		Str("kind", artifact.Kind.String()).
		Logger()

	ctx, span := c.tracer.Start(ctx, "minutes.submit", trace.WithAttributes(
		attribute.String("minutes.endpoint", endpoint),
		attribute.String("minutes.artifact.kind", artifact.Kind.String()),
		attribute.Int("minutes.artifact.parts", len(artifact.Paths)),
	))
	defer span.End()

	result, err := c.roundTrip(ctx, endpoint, timeout, artifact, span, &logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Msg("submission failed")
		return nil, err
	}
	return result, nil
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, timeout time.Duration,
	artifact domain.Artifact, span trace.Span, logger *zerolog.Logger,
) (*domain.MeetingResult, error) {
	// Files are read before the timeout starts so a slow disk does not eat into it.
	body, err := c.encoder.Encode(ctx, artifact)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("minutes.request.bytes", body.Len()))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body.Reader())
	if err != nil {
		return nil, errors.Join(err, errors.ErrNetwork)
	}
	req.Header.Set("Content-Type", body.ContentType())
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	logger.Debug().Int("bytes", body.Len()).Dur("timeout", timeout).Msg("submitting artifact")

	resp, metrics, err := doTraced(c.http, req)
	if metrics != nil {
		logger.Debug().Object("network", metrics).Msg("request timing")
	}
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, resp.Body)
	}

	var result domain.MeetingResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.Join(err, errors.ErrDecode)
	}

	logger.Info().
		Int("minutes", len(result.Minutes)).
		Int("decisions", len(result.Decisions)).
		Int("action_items", len(result.ActionItems)).
		Bool("transcript", result.Transcript != "").
		Msg("result received")
	return &result, nil
}

// classifyTransportError maps a failed round trip onto ErrNetwork, adding
// ErrRequestTimeout when the endpoint deadline expired.
func classifyTransportError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Join(err, errors.ErrNetwork, errors.ErrRequestTimeout)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(err, errors.ErrNetwork, errors.ErrRequestTimeout)
	}
	return errors.Join(err, errors.ErrNetwork)
}
