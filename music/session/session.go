// Package session holds per-user conversation state for the music flow.
//
// A session walks a fixed set of states: idle, waiting for a search keyword,
// waiting for a track choice, waiting for a quality choice. Sessions are
// keyed by user identifier and expire after a period of inactivity; expiry
// is lazy and happens on the next access.
package session

import (
	"time"

	"github.com/soundfetch/tunebot/music/catalog"
)

// State names a position in the conversation.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingKeyword       State = "waiting_for_keyword"
	StateAwaitingTrackChoice   State = "waiting_for_song_choice"
	StateAwaitingQualityChoice State = "waiting_for_quality_choice"
)

// Session is one user's position in the conversation plus the data
// accumulated along the way. Fields beyond State are only meaningful in the
// states that set them: Keyword, Tracks and Page after a search, Selected
// after a track choice.
type Session struct {
	State        State           `json:"state"`
	Keyword      string          `json:"keyword,omitempty"`
	Tracks       []catalog.Track `json:"tracks,omitempty"`
	Page         int             `json:"page,omitempty"`
	Selected     *catalog.Track  `json:"selected,omitempty"`
	Quality      string          `json:"quality,omitempty"`
	LastActiveAt time.Time       `json:"last_active_at"`
}

// InProgress reports whether the session is mid-dialog, i.e. plain text from
// the user should be routed to the flow rather than treated as noise.
func (s *Session) InProgress() bool {
	return s != nil && s.State != StateIdle
}
