// Package flow implements the conversational state machine that drives the
// music search and download dialog. It is transport-agnostic: the bot layer
// normalizes messenger updates into Events, and maps the returned Response
// back onto messages and buttons.
package flow

import "strings"

// EventKind tags the inbound event variant.
type EventKind int

const (
	// EventText is free text typed by the user.
	EventText EventKind = iota
	// EventCommand is a slash command with an optional argument string.
	EventCommand
	// EventCallback is a button press carrying an opaque payload.
	EventCallback
)

// Commands understood by the engine.
const (
	CommandStart  = "start"
	CommandSearch = "music"
	CommandSelect = "select"
)

// Callback keys understood by the engine.
const (
	CallbackSongPick    = "song_pick"
	CallbackQualityPick = "quality_pick"
	CallbackPageNav     = "page_nav"
)

// Event is a normalized inbound event. UserID is the primary identifier;
// AltUserID is consulted only when the primary is empty (some transports
// populate one or the other depending on the update type).
type Event struct {
	Kind      EventKind
	UserID    string
	AltUserID string

	// Text carries free text for EventText, or the argument string for
	// EventCommand.
	Text string

	// Command is set for EventCommand.
	Command string

	// CallbackKey and Payload are set for EventCallback.
	CallbackKey string
	Payload     string
}

// ResolvedUserID applies the primary-then-fallback identifier rule.
func (e Event) ResolvedUserID() string {
	if id := strings.TrimSpace(e.UserID); id != "" {
		return id
	}
	return strings.TrimSpace(e.AltUserID)
}
