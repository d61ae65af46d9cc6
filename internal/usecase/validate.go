package usecase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"jscenario/internal/domain"
)

var (
	ErrEmptyScenarioID     = errors.New("scenario id is empty")
	ErrMalformedScenarioID = errors.New("scenario id is malformed")
	ErrAudioMissing        = errors.New("audio file does not exist")
	ErrAudioNotRegular     = errors.New("audio file is not a regular file")
	ErrAudioExtension      = errors.New("audio file extension is not accepted")
	ErrAudioTooSmall       = errors.New("audio file is too small")
	ErrAudioTooLarge       = errors.New("audio file is too large")
)

// AcceptedAudioExtensions lists the upload formats the backend accepts.
var AcceptedAudioExtensions = []string{".wav", ".mp3", ".amr", ".m4a", ".ogg", ".flac"}

// UploadLimits bounds the size of an uploaded recording.
type UploadLimits struct {
	MinBytes int64
	MaxBytes int64
}

// DefaultUploadLimits is 1 KiB to 10 MiB.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{MinBytes: 1 << 10, MaxBytes: domain.MaxUploadBytes}
}

// ValidationError pairs a validation sentinel with the details used to
// render it.
type ValidationError struct {
	Err  error
	Data map[string]any
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, data map[string]any) error {
	return &ValidationError{Err: err, Data: data}
}

// ValidateScenarioID checks id against scenario_XXX or scenario_XXX_N.
func ValidateScenarioID(id string) error {
	if id == "" {
		return invalid(ErrEmptyScenarioID, nil)
	}
	if !domain.ValidScenarioID(id) {
		return invalid(ErrMalformedScenarioID, map[string]any{"ID": id})
	}
	return nil
}

// ValidateAudioFile checks that path is an accepted recording within limits.
func ValidateAudioFile(path string, limits UploadLimits) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || path == "" {
			return invalid(ErrAudioMissing, map[string]any{"Path": path})
		}
		return invalid(fmt.Errorf("%w: %v", ErrAudioMissing, err), map[string]any{"Path": path})
	}
	if !info.Mode().IsRegular() {
		return invalid(ErrAudioNotRegular, map[string]any{"Path": path})
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !acceptedExtension(ext) {
		return invalid(ErrAudioExtension, map[string]any{"Ext": ext})
	}

	size := info.Size()
	if limits.MaxBytes > 0 && size > limits.MaxBytes {
		return invalid(ErrAudioTooLarge, map[string]any{"Size": size, "MaxMB": limits.MaxBytes >> 20})
	}
	if size < limits.MinBytes {
		return invalid(ErrAudioTooSmall, map[string]any{"Size": size, "Min": limits.MinBytes})
	}
	return nil
}

func acceptedExtension(ext string) bool {
	for _, accepted := range AcceptedAudioExtensions {
		if ext == accepted {
			return true
		}
	}
	return false
}

var userIDDisallowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

const maxUserIDLength = 64

// SanitizeUserID strips characters outside [A-Za-z0-9_-] and truncates to 64
// characters. An empty result means no user id is sent.
func SanitizeUserID(id string) string {
	id = userIDDisallowed.ReplaceAllString(id, "")
	if len(id) > maxUserIDLength {
		id = id[:maxUserIDLength]
	}
	return id
}

var validationMessageIDs = map[error]string{
	ErrEmptyScenarioID:     "error_scenario_id_empty",
	ErrMalformedScenarioID: "error_scenario_id_malformed",
	ErrAudioMissing:        "error_audio_missing",
	ErrAudioNotRegular:     "error_audio_not_regular",
	ErrAudioExtension:      "error_audio_extension",
	ErrAudioTooSmall:       "error_audio_too_small",
	ErrAudioTooLarge:       "error_audio_too_large",
}

func validationMessageID(err error) string {
	for sentinel, id := range validationMessageIDs {
		if errors.Is(err, sentinel) {
			return id
		}
	}
	return "error_unknown"
}
