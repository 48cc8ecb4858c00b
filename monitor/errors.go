package monitor

import "errors"

var (
	// ErrUserNotFound means Twitch has no profile for the configured login.
	// The cycle aborts without touching the store or the presence cache.
	ErrUserNotFound = errors.New("streamer login not found")

	// ErrChannelUnavailable means the Discord notification channel could not
	// be resolved. The cycle aborts; the next tick retries.
	ErrChannelUnavailable = errors.New("notification channel unavailable")
)
