package flow

import "github.com/soundfetch/tunebot/music/render"

// Response is the single outbound reaction to one inbound event. Text is
// always set; the remaining fields tell the transport which interactive
// elements to attach.
type Response struct {
	Text string

	// Cards describes one selectable button per visible track.
	Cards []render.Card

	// NavPrev and NavNext request page-navigation buttons.
	NavPrev bool
	NavNext bool

	// QualityTrackID, when non-empty, requests the quality menu buttons for
	// the given track.
	QualityTrackID string
}

func textResponse(text string) Response { return Response{Text: text} }
