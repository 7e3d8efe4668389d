package bot

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/soundfetch/tunebot/core/telegram/helpers"
	"github.com/soundfetch/tunebot/core/telegram/keyboard"
	"github.com/soundfetch/tunebot/music/flow"
	"github.com/soundfetch/tunebot/music/quality"
)

const trackButtonsPerRow = 2

// respond maps a flow response onto a single outbound message, attaching
// track cards, page navigation or the quality menu as inline buttons.
func respond(c tele.Context, resp flow.Response) error {
	markup := buildMarkup(resp)
	// Button presses refresh the existing message instead of stacking new ones.
	if c.Callback() != nil {
		return tghelpers.EditOrSendText(c, resp.Text, markup)
	}
	if markup == nil {
		return tghelpers.SendText(c, resp.Text)
	}
	return tghelpers.SendText(c, resp.Text, &tele.SendOptions{ReplyMarkup: markup})
}

func buildMarkup(resp flow.Response) *tele.ReplyMarkup {
	if resp.QualityTrackID != "" {
		return qualityMarkup(resp.QualityTrackID)
	}
	if len(resp.Cards) == 0 && !resp.NavPrev && !resp.NavNext {
		return nil
	}

	buttons := make([]keyboard.InlineBtn, 0, len(resp.Cards))
	for _, card := range resp.Cards {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   card.Title,
			Unique: flow.CallbackSongPick,
			Data:   card.TrackID,
		})
	}

	var rows [][]keyboard.InlineBtn
	for i := 0; i < len(buttons); i += trackButtonsPerRow {
		end := i + trackButtonsPerRow
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}

	var nav []keyboard.InlineBtn
	if resp.NavPrev {
		nav = append(nav, keyboard.InlineBtn{Text: "⬅️ Prev", Unique: flow.CallbackPageNav, Data: "prev"})
	}
	if resp.NavNext {
		nav = append(nav, keyboard.InlineBtn{Text: "Next ➡️", Unique: flow.CallbackPageNav, Data: "next"})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return keyboard.InlineButtonsRows(rows...)
}

func qualityMarkup(trackID string) *tele.ReplyMarkup {
	tiers := quality.Tiers()
	buttons := make([]keyboard.InlineBtn, 0, len(tiers))
	for _, tier := range tiers {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   tier.Name,
			Unique: flow.CallbackQualityPick,
			Data:   trackID + "|" + tier.Code,
		})
	}
	return keyboard.InlineButtonsNPerRow(buttons, 2)
}
