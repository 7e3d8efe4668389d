// Package bot wires the music flow into the messenger surface: commands,
// free-text routing and inline button callbacks.
package bot

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/soundfetch/tunebot/core/logger"
	tg "github.com/soundfetch/tunebot/core/telegram"
	"github.com/soundfetch/tunebot/core/telegram/callbacks"
	"github.com/soundfetch/tunebot/core/telegram/commands"
	tghelpers "github.com/soundfetch/tunebot/core/telegram/helpers"
	"github.com/soundfetch/tunebot/core/telegram/router"
	"github.com/soundfetch/tunebot/music/flow"
	"github.com/soundfetch/tunebot/music/history"
)

// HealthChecker probes catalog availability for the operator command.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Options collects the dependencies of the messenger surface.
type Options struct {
	Engine  *flow.Engine
	History *history.Service // nil disables /history
	Health  HealthChecker    // nil disables /status
	AdminID int64
}

// Surface is the assembled messenger-facing layer.
type Surface struct {
	opts Options
	reg  *tg.Registry
}

// New builds the registry of commands and callbacks for the music bot.
func New(opts Options) *Surface {
	s := &Surface{opts: opts, reg: tg.NewRegistry()}
	s.registerCommands()
	s.registerCallbacks()
	return s
}

// Registry exposes the built command/callback registry.
func (s *Surface) Registry() *tg.Registry { return s.reg }

// Routes returns all bot routes: commands, the text dialog route and the
// callback route.
func (s *Surface) Routes() []tg.Route {
	conv := &conversation{engine: s.opts.Engine}
	routes := router.CommandRoutes(s.reg, router.CommandRouteOptions{
		AdminID: s.opts.AdminID,
	})
	routes = append(routes,
		router.TextRoute(conv, s.reg, router.TextOptions{}),
		router.CallbackRoute(s.reg, router.CallbackOptions{}),
	)
	return routes
}

func (s *Surface) registerCommands() {
	s.reg.RegisterCommand("/start", commands.Command{
		Description: "Greeting and usage help",
		Aliases:     []string{"help"},
		Handler: func(c tele.Context) error {
			resp := s.opts.Engine.Handle(tghelpers.BuildContext(c), commandEvent(c, flow.CommandStart))
			return respond(c, resp)
		},
	})

	s.reg.RegisterCommand("/music", commands.Command{
		Description: "Search for a track: /music <keywords>",
		Aliases:     []string{"search"},
		Handler: func(c tele.Context) error {
			resp := s.opts.Engine.Handle(tghelpers.BuildContext(c), commandEvent(c, flow.CommandSearch))
			return respond(c, resp)
		},
	})

	s.reg.RegisterCommand("/select", commands.Command{
		Description: "Pick a result: /select <number|next|prev>",
		Handler: func(c tele.Context) error {
			resp := s.opts.Engine.Handle(tghelpers.BuildContext(c), commandEvent(c, flow.CommandSelect))
			return respond(c, resp)
		},
	})

	s.reg.RegisterCommand("/history", commands.Command{
		Description: "Show your recent downloads",
		Handler:     s.handleHistory,
	})

	s.reg.RegisterCommand("/status", commands.Command{
		Description: "Check music service availability",
		AdminOnly:   true,
		Hidden:      true,
		Handler:     s.handleStatus,
	})
}

func (s *Surface) registerCallbacks() {
	_ = s.reg.RegisterCallback(flow.CallbackSongPick, func(c tele.Context) error {
		ev := callbackEvent(c, flow.CallbackSongPick, callbacks.CallbackPayload(c))
		return respond(c, s.opts.Engine.Handle(tghelpers.BuildContext(c), ev))
	})
	_ = s.reg.RegisterCallback(flow.CallbackQualityPick, func(c tele.Context) error {
		ev := callbackEvent(c, flow.CallbackQualityPick, callbacks.CallbackPayload(c))
		return respond(c, s.opts.Engine.Handle(tghelpers.BuildContext(c), ev))
	})
	_ = s.reg.RegisterCallback(flow.CallbackPageNav, func(c tele.Context) error {
		ev := callbackEvent(c, flow.CallbackPageNav, callbacks.CallbackPayload(c))
		return respond(c, s.opts.Engine.Handle(tghelpers.BuildContext(c), ev))
	})
}

func (s *Surface) handleHistory(c tele.Context) error {
	if s.opts.History == nil {
		return tghelpers.SendText(c, "Download history is not enabled.")
	}
	ctx := tghelpers.BuildContext(c)
	userID := strconv.FormatInt(c.Sender().ID, 10)
	entries, err := s.opts.History.Recent(ctx, userID, 10)
	if err != nil {
		return tghelpers.SendText(c, "❌ Could not load your history, please try again.")
	}
	return tghelpers.SendText(c, history.FormatRecent(entries))
}

func (s *Surface) handleStatus(c tele.Context) error {
	if s.opts.Health == nil {
		return tghelpers.SendText(c, "Status check is not configured.")
	}
	if err := s.opts.Health.Health(tghelpers.BuildContext(c)); err != nil {
		return tghelpers.SendText(c, "❌ Music service is unreachable: "+err.Error())
	}
	return tghelpers.SendText(c, "✅ Music service is up.")
}

func logCtx() context.Context {
	return logger.Background()
}
