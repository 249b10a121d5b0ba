package api

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"packhub/internal/logging"
)

// Upload limits.
const (
	minNameLength        = 3
	maxNameLength        = 100
	maxDescriptionLength = 2000
	maxCodeLength        = 50
	minDifficulty        = 1
	maxDifficulty        = 5
	maxTags              = 10
	maxTagLength         = 30
	minUploadShots       = 1
	maxUploadShots       = 100
	maxVersionLength     = 50
)

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// ErrInvalidUpload matches every *ValidationError.
var ErrInvalidUpload = errors.New("invalid upload")

// Violation is one failed upload rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violation found in an upload. Decode holds
// the metadata decode failure, if any, so callers can inspect its kind.
type ValidationError struct {
	Violations []Violation
	Decode     error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidUpload, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Decode }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidUpload }

func (e *ValidationError) add(field, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateUpload checks a plugin upload and decodes its metadata. It returns
// a *ValidationError listing every problem, or the normalized upload.
func (s *DecodeService) ValidateUpload(ctx context.Context, upload Upload) (*ValidatedUpload, error) {
	if s == nil {
		return nil, errors.New("decode service is not configured")
	}
	verr := &ValidationError{}

	upload.Name = strings.TrimSpace(upload.Name)
	checkLength(verr, "name", upload.Name, minNameLength, maxNameLength)
	checkOptionalLength(verr, "description", upload.Description, maxDescriptionLength)
	checkOptionalLength(verr, "code", upload.Code, maxCodeLength)
	checkOptionalLength(verr, "gameVersion", upload.GameVersion, maxVersionLength)
	checkOptionalLength(verr, "pluginVersion", upload.PluginVersion, maxVersionLength)

	if upload.Difficulty != nil && (*upload.Difficulty < minDifficulty || *upload.Difficulty > maxDifficulty) {
		verr.add("difficulty", "must be between %d and %d, got %d", minDifficulty, maxDifficulty, *upload.Difficulty)
	}

	upload.Tags = normalizeTags(verr, upload.Tags)
	upload.Visibility = normalizeVisibility(verr, upload.Visibility)
	checkShots(verr, upload.Shots)

	upload.PackMetadataCompressed = strings.TrimSpace(upload.PackMetadataCompressed)
	var result *DecodeResult
	switch {
	case upload.PackMetadataCompressed == "":
		verr.add("packMetadataCompressed", "pack metadata is required (Base64)")
	case !base64Pattern.MatchString(upload.PackMetadataCompressed):
		verr.add("packMetadataCompressed", "invalid Base64 data provided for pack metadata")
	default:
		decoded, err := s.Decode(ctx, DecodeRequest{Payload: upload.PackMetadataCompressed})
		if err != nil {
			verr.Decode = err
			verr.add("packMetadataCompressed", "%v", err)
			break
		}
		result = decoded
		if n := len(upload.Shots); n > 0 && decoded.Pack.ShotCount != n {
			verr.add("shots", "upload has %d shots but metadata declares %d", n, decoded.Pack.ShotCount)
		}
	}

	if len(verr.Violations) > 0 {
		s.logger.Debug("upload rejected",
			logging.String("name", upload.Name),
			logging.Int("violations", len(verr.Violations)))
		return nil, verr
	}
	return &ValidatedUpload{Upload: upload, Pack: result.Pack, Key: result.Key}, nil
}

func checkLength(verr *ValidationError, field, value string, lo, hi int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n < lo:
		verr.add(field, "must be at least %d characters", lo)
	case n > hi:
		verr.add(field, "must be at most %d characters", hi)
	}
}

func checkOptionalLength(verr *ValidationError, field string, value *string, hi int) {
	if value == nil {
		return
	}
	checkLength(verr, field, *value, 0, hi)
}

func normalizeTags(verr *ValidationError, tags []string) []string {
	if len(tags) > maxTags {
		verr.add("tags", "at most %d tags allowed, got %d", maxTags, len(tags))
	}
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for i, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLength {
			verr.add(fmt.Sprintf("tags[%d]", i), "must be at most %d characters", maxTagLength)
			continue
		}
		tag = strings.TrimSpace(lower.String(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeVisibility(verr *ValidationError, v Visibility) Visibility {
	value := Visibility(strings.ToUpper(strings.TrimSpace(string(v))))
	switch value {
	case "":
		return VisibilityPublic
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return value
	default:
		verr.add("visibility", "must be PUBLIC, PRIVATE or UNLISTED, got %q", string(v))
		return v
	}
}

func checkShots(verr *ValidationError, shots []UploadShot) {
	switch {
	case len(shots) < minUploadShots:
		verr.add("shots", "at least %d shot is required", minUploadShots)
		return
	case len(shots) > maxUploadShots:
		verr.add("shots", "at most %d shots allowed, got %d", maxUploadShots, len(shots))
	}
	seen := make(map[int]struct{}, len(shots))
	for i, shot := range shots {
		field := fmt.Sprintf("shots[%d]", i)
		if shot.ShotIndex < 0 {
			verr.add(field+".shotIndex", "must be non-negative, got %d", shot.ShotIndex)
		} else if _, dup := seen[shot.ShotIndex]; dup {
			verr.add(field+".shotIndex", "duplicate shot index %d", shot.ShotIndex)
		} else {
			seen[shot.ShotIndex] = struct{}{}
		}
		if shot.RecordingDataCompressed == "" {
			verr.add(field+".recordingDataCompressed", "recording data is required")
		}
	}
}
