package media

// PlaybackState summarizes an element's state for display.
// Errors are delivered as events rather than as a playback state.
type PlaybackState int

const (
	// PlaybackStateIdle indicates no media is loaded.
	PlaybackStateIdle PlaybackState = iota

	// PlaybackStateBuffering indicates the element is waiting for data.
	PlaybackStateBuffering

	// PlaybackStatePlaying indicates media is actively playing.
	PlaybackStatePlaying

	// PlaybackStateCompleted indicates playback has reached the end of the media.
	PlaybackStateCompleted

	// PlaybackStatePaused indicates playback is paused and can be resumed.
	PlaybackStatePaused
)

// String returns a human-readable label for the playback state.
func (s PlaybackState) String() string {
	switch s {
	case PlaybackStateIdle:
		return "Idle"
	case PlaybackStateBuffering:
		return "Buffering"
	case PlaybackStatePlaying:
		return "Playing"
	case PlaybackStateCompleted:
		return "Completed"
	case PlaybackStatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}
