// Package logging provides logging utilities including sensitive data filtering.
// The processing service may be protected by a bearer token; this package makes
// sure that token never reaches the console or the rotating log file.
package logging

import (
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// minSecretLength is the shortest registered secret that will be redacted literally.
// Shorter values would redact unrelated text.
const minSecretLength = 6

// sensitivePatterns contains compiled regular expressions for detecting sensitive values.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Bearer tokens, as sent in the Authorization header
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]{16,}`),

	// Authorization headers with tokens
	regexp.MustCompile(`(?i)authorization\s*[:=]\s*["']?[a-zA-Z0-9._~+/=-]{16,}["']?`),

	// API keys assigned in query strings, env dumps or config (api_key=..., apikey: ...)
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*["']?([a-zA-Z0-9_-]{16,})["']?`),

	// auth_token / token assignments
	regexp.MustCompile(`(?i)(auth[_-]?token|token)\s*[:=]\s*["']?[a-zA-Z0-9._~+/=-]{16,}["']?`),

	// Generic secret patterns
	regexp.MustCompile(`(?i)(secret|password|passwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),
}

// sensitiveFieldNames contains field names that should always have their values redacted.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"auth_token",
	"authtoken",
	"api_key",
	"apikey",
	"authorization",
	"bearer",
	"password",
	"secret",
	"token",
}

// secrets holds literal values registered at runtime (the configured auth token).
//
//nolint:gochecknoglobals // Process-wide registry shared by hooks and writers
var secrets = struct {
	mu     sync.RWMutex
	values []string
}{}

// RegisterSecret adds a literal value that must always be redacted.
// Values shorter than six characters are ignored.
func RegisterSecret(value string) {
	value = strings.TrimSpace(value)
	if len(value) < minSecretLength {
		return
	}
	secrets.mu.Lock()
	defer secrets.mu.Unlock()
	for _, v := range secrets.values {
		if v == value {
			return
		}
	}
	secrets.values = append(secrets.values, value)
}

// resetSecrets clears registered secrets. Used by tests.
func resetSecrets() {
	secrets.mu.Lock()
	secrets.values = nil
	secrets.mu.Unlock()
}

// SensitiveDataHook is a zerolog hook that flags log entries whose message
// contains sensitive data. Field values are filtered by FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains any sensitive data.
func ContainsSensitiveData(s string) bool {
	secrets.mu.RLock()
	for _, v := range secrets.values {
		if strings.Contains(s, v) {
			secrets.mu.RUnlock()
			return true
		}
	}
	secrets.mu.RUnlock()

	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces registered secrets and pattern matches with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value

	secrets.mu.RLock()
	for _, v := range secrets.values {
		result = strings.ReplaceAll(result, v, RedactedValue)
	}
	secrets.mu.RUnlock()

	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns a filtered value for a field, redacting sensitive data.
//
//	logger.Debug().Str("auth_token", logging.SafeValue("auth_token", cfg.Server.AuthToken)).Msg("loaded")
func SafeValue(fieldName, value string) string {
	if value == "" {
		return ""
	}
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It reports the original length so callers don't see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
