package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/soundfetch/tunebot/core/telegram/helpers"
	"github.com/soundfetch/tunebot/music/flow"
)

// conversation adapts the flow engine to the text router's dialog interface.
type conversation struct {
	engine *flow.Engine
}

func (cv *conversation) InProgress(userID int64) bool {
	return cv.engine.InProgress(logCtx(), strconv.FormatInt(userID, 10))
}

func (cv *conversation) HandleText(c tele.Context) error {
	resp := cv.engine.Handle(tghelpers.BuildContext(c), textEvent(c))
	return respond(c, resp)
}

// textEvent normalizes a plain message. The chat id backs up the sender id
// for update types that carry only one of the two.
func textEvent(c tele.Context) flow.Event {
	return flow.Event{
		Kind:      flow.EventText,
		UserID:    senderID(c),
		AltUserID: chatID(c),
		Text:      c.Text(),
	}
}

func commandEvent(c tele.Context, command string) flow.Event {
	return flow.Event{
		Kind:      flow.EventCommand,
		UserID:    senderID(c),
		AltUserID: chatID(c),
		Command:   command,
		Text:      c.Message().Payload,
	}
}

func callbackEvent(c tele.Context, key, payload string) flow.Event {
	return flow.Event{
		Kind:        flow.EventCallback,
		UserID:      senderID(c),
		AltUserID:   chatID(c),
		CallbackKey: key,
		Payload:     payload,
	}
}

func senderID(c tele.Context) string {
	if s := c.Sender(); s != nil {
		return strconv.FormatInt(s.ID, 10)
	}
	return ""
}

func chatID(c tele.Context) string {
	if ch := c.Chat(); ch != nil {
		return strconv.FormatInt(ch.ID, 10)
	}
	return ""
}
