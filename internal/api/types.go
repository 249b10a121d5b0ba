package api

import "packhub/internal/trainingpack"

// Result sources reported in DecodeResult.Source.
const (
	SourceMemory  = "memory"
	SourceCache   = "cache"
	SourceDecoder = "decoder"
)

// DecodeRequest describes one decode call.
type DecodeRequest struct {
	// PackID is the hub's identifier for the pack. When empty the cache key
	// falls back to a fingerprint of the metadata bytes.
	PackID string
	// Payload is the Base64 metadata text.
	Payload string
	// Mode overrides the service's overrun policy ("strict" or "permissive").
	Mode string
	// Trace logs each decoded field at debug level.
	Trace bool
	// SkipCache bypasses both cache layers for reads and writes.
	SkipCache bool
}

// DecodeResult is the outcome of a successful decode. Pack may be shared with
// the in-process cache and must be treated as read-only.
type DecodeResult struct {
	Key           string             `json:"key"`
	CorrelationID string             `json:"correlation_id"`
	Mode          string             `json:"mode"`
	Cached        bool               `json:"cached"`
	Source        string             `json:"source"`
	Pack          *trainingpack.Pack `json:"pack"`
}

// Visibility controls who can see an uploaded pack.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilityUnlisted Visibility = "UNLISTED"
)

// UploadShot is one recorded shot in a plugin upload.
type UploadShot struct {
	ShotIndex               int    `json:"shotIndex"`
	RecordingDataCompressed string `json:"recordingDataCompressed"`
}

// Upload is the body the game plugin posts when sharing a pack. Optional
// fields use pointers so "absent" and "empty" stay distinguishable.
type Upload struct {
	Name                   string       `json:"name"`
	Description            *string      `json:"description,omitempty"`
	Code                   *string      `json:"code,omitempty"`
	Difficulty             *int         `json:"difficulty,omitempty"`
	Tags                   []string     `json:"tags,omitempty"`
	PackMetadataCompressed string       `json:"packMetadataCompressed"`
	Shots                  []UploadShot `json:"shots"`
	Visibility             Visibility   `json:"visibility,omitempty"`
	GameVersion            *string      `json:"gameVersion,omitempty"`
	PluginVersion          *string      `json:"pluginVersion,omitempty"`
}

// ValidatedUpload is a normalized upload together with its decoded metadata.
type ValidatedUpload struct {
	Upload Upload             `json:"upload"`
	Pack   *trainingpack.Pack `json:"pack"`
	Key    string             `json:"key"`
}
