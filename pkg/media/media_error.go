package media

// Canonical error codes carried by EventError. Backends map their native
// failures to these so the player sees consistent values.
const (
	// ErrCodeSourceError indicates the media source could not be loaded.
	// Covers network failures, invalid URLs, unsupported formats, and
	// container parsing errors.
	ErrCodeSourceError = "source_error"

	// ErrCodeDecoderError indicates the media could not be decoded or
	// rendered.
	ErrCodeDecoderError = "decoder_error"

	// ErrCodePlaybackFailed indicates a general playback failure that
	// does not fit a more specific category.
	ErrCodePlaybackFailed = "playback_failed"
)
