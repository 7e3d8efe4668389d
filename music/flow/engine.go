package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soundfetch/tunebot/core/logger"
	"github.com/soundfetch/tunebot/music/catalog"
	"github.com/soundfetch/tunebot/music/quality"
	"github.com/soundfetch/tunebot/music/render"
	"github.com/soundfetch/tunebot/music/session"
)

// Catalog is the slice of the catalog client the engine needs.
type Catalog interface {
	Search(ctx context.Context, keyword string, limit int) (*catalog.SearchResult, error)
	Download(ctx context.Context, trackID, qualityCode string) (*catalog.Outcome, error)
}

// Recorder receives completed downloads. A nil Recorder disables recording.
type Recorder interface {
	RecordDownload(ctx context.Context, userID string, track catalog.Track, out *catalog.Outcome) error
}

// Config tunes the engine.
type Config struct {
	// SearchLimit caps catalog search results.
	SearchLimit int
	// DefaultQuality is a tier code, or quality.Ask to prompt per download.
	DefaultQuality string
	// LinkBase, when set, is used to build shareable download links.
	LinkBase string
	// PageSize is the number of tracks per result page.
	PageSize int
}

// Free-text phrases that start a search dialog from idle.
var triggerPhrases = []string{
	"下载音乐",
	"下载歌曲",
	"网易云音乐",
	"netease",
	"download music",
	"download song",
}

// Page-navigation tokens accepted in place of a track number.
var (
	nextTokens = map[string]bool{"n": true, "next": true}
	prevTokens = map[string]bool{"p": true, "prev": true, "previous": true}
)

// Engine is the conversational state machine. It is safe for concurrent use
// across users; per-user ordering is the transport's concern.
type Engine struct {
	store    session.Store
	catalog  Catalog
	recorder Recorder
	cfg      Config
}

// New builds an Engine. recorder may be nil.
func New(store session.Store, cat Catalog, recorder Recorder, cfg Config) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 8
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.DefaultQuality == "" {
		cfg.DefaultQuality = "exhigh"
	}
	return &Engine{store: store, catalog: cat, recorder: recorder, cfg: cfg}
}

// Handle runs one event through the state machine and returns exactly one
// response. A panic inside a transition is contained here and surfaces as a
// generic failure message, never crashing the handling loop.
func (e *Engine) Handle(ctx context.Context, ev Event) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "flow", "handle.panic",
				slog.String("status", "fail"),
				slog.Any("panic", r),
			)
			resp = textResponse(msgInternal)
		}
	}()

	userID := ev.ResolvedUserID()
	if userID == "" {
		return textResponse(msgInternal)
	}

	switch ev.Kind {
	case EventCommand:
		return e.handleCommand(ctx, userID, ev)
	case EventCallback:
		return e.handleCallback(ctx, userID, ev)
	default:
		return e.handleText(ctx, userID, ev.Text)
	}
}

// InProgress reports whether the user is mid-dialog.
func (e *Engine) InProgress(ctx context.Context, userID string) bool {
	s, ok := e.store.Get(ctx, userID)
	return ok && s.InProgress()
}

func (e *Engine) handleCommand(ctx context.Context, userID string, ev Event) Response {
	switch ev.Command {
	case CommandStart:
		// Reset is idempotent: the greeting is identical with or without a
		// prior session.
		_ = e.store.Remove(ctx, userID)
		return textResponse(msgGreeting)

	case CommandSearch:
		keyword := strings.TrimSpace(ev.Text)
		if keyword == "" {
			_ = e.store.Put(ctx, userID, &session.Session{State: session.StateAwaitingKeyword})
			return textResponse(msgAskKeyword)
		}
		return e.runSearch(ctx, userID, keyword)

	case CommandSelect:
		s, ok := e.store.Get(ctx, userID)
		if !ok {
			return textResponse(msgExpired)
		}
		switch s.State {
		case session.StateAwaitingTrackChoice:
			return e.trackChoiceInput(ctx, userID, s, ev.Text)
		case session.StateAwaitingQualityChoice:
			return e.qualityChoiceInput(ctx, userID, s, ev.Text)
		default:
			return textResponse(msgExpired)
		}

	default:
		return textResponse(msgGreeting)
	}
}

func (e *Engine) handleText(ctx context.Context, userID, text string) Response {
	text = strings.TrimSpace(text)

	s, ok := e.store.Get(ctx, userID)
	if !ok {
		// No live session: a trigger phrase silently starts a fresh flow,
		// anything else gets the greeting.
		if containsTrigger(text) {
			_ = e.store.Put(ctx, userID, &session.Session{State: session.StateAwaitingKeyword})
			return textResponse(msgAskKeyword)
		}
		return textResponse(msgGreeting)
	}

	switch s.State {
	case session.StateAwaitingKeyword:
		if text == "" {
			return textResponse(msgAskKeyword)
		}
		return e.runSearch(ctx, userID, text)

	case session.StateAwaitingTrackChoice:
		return e.trackChoiceInput(ctx, userID, s, text)

	case session.StateAwaitingQualityChoice:
		return e.qualityChoiceInput(ctx, userID, s, text)

	default:
		logger.Warn(ctx, "flow", "state.unknown",
			slog.String("user_id", userID),
			slog.String("state", string(s.State)),
		)
		_ = e.store.Remove(ctx, userID)
		return textResponse(msgSessionReset)
	}
}

func (e *Engine) handleCallback(ctx context.Context, userID string, ev Event) Response {
	s, ok := e.store.Get(ctx, userID)
	if !ok {
		return textResponse(msgExpired)
	}

	switch ev.CallbackKey {
	case CallbackSongPick:
		if s.State != session.StateAwaitingTrackChoice {
			return textResponse(msgExpired)
		}
		track, found := findTrack(s.Tracks, ev.Payload)
		if !found {
			return textResponse(msgExpired)
		}
		return e.trackSelected(ctx, userID, s, track)

	case CallbackQualityPick:
		trackID, code, ok := strings.Cut(ev.Payload, "|")
		if !ok || !quality.ValidCode(code) {
			return textResponse(msgPickQuality)
		}
		track := s.Selected
		if track == nil || track.ID != trackID {
			if t, found := findTrack(s.Tracks, trackID); found {
				track = &t
			}
		}
		if track == nil {
			return textResponse(msgExpired)
		}
		return e.download(ctx, userID, *track, code)

	case CallbackPageNav:
		if s.State != session.StateAwaitingTrackChoice {
			return textResponse(msgExpired)
		}
		return e.turnPage(ctx, userID, s, ev.Payload)

	default:
		return textResponse(msgInternal)
	}
}

// runSearch performs a catalog search and, on success, moves the user to
// track selection on page 0. Empty results and catalog failures both land
// the user back in idle with an explanatory message.
func (e *Engine) runSearch(ctx context.Context, userID, keyword string) Response {
	res, err := e.catalog.Search(ctx, keyword, e.cfg.SearchLimit)
	if err != nil {
		logger.Warn(ctx, "flow", "search.failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("keyword", logger.SanitizeLimit(keyword, 64)),
			slog.String("err", err.Error()),
		)
		_ = e.store.Remove(ctx, userID)
		return textResponse(fmt.Sprintf("❌ Search failed: %s. Please try again later.", failureReason(err)))
	}
	if len(res.Tracks) == 0 {
		_ = e.store.Remove(ctx, userID)
		return textResponse(fmt.Sprintf("❌ No tracks found for \"%s\". Try different keywords.", keyword))
	}

	if err := e.store.Put(ctx, userID, &session.Session{
		State:   session.StateAwaitingTrackChoice,
		Keyword: keyword,
		Tracks:  res.Tracks,
		Page:    0,
	}); err != nil {
		return textResponse(msgInternal)
	}

	logger.Info(ctx, "flow", "search.done",
		slog.String("status", "ok"),
		slog.String("user_id", userID),
		slog.String("keyword", logger.SanitizeLimit(keyword, 64)),
		slog.Int("tracks", len(res.Tracks)),
	)
	return e.listingResponse(res.Tracks, 0)
}

// trackChoiceInput interprets free text while a track list is showing:
// a page token, or a global ordinal into the result list.
func (e *Engine) trackChoiceInput(ctx context.Context, userID string, s *session.Session, text string) Response {
	token := strings.ToLower(strings.TrimSpace(text))
	if nextTokens[token] || prevTokens[token] {
		dir := "next"
		if prevTokens[token] {
			dir = "prev"
		}
		return e.turnPage(ctx, userID, s, dir)
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return textResponse(msgPickTrack)
	}
	if n < 1 || n > len(s.Tracks) {
		return textResponse(fmt.Sprintf("❌ Number out of range, pick between 1 and %d.", len(s.Tracks)))
	}
	return e.trackSelected(ctx, userID, s, s.Tracks[n-1])
}

// turnPage moves the listing one page in the given direction. Stepping past
// either end changes nothing and tells the user so.
func (e *Engine) turnPage(ctx context.Context, userID string, s *session.Session, dir string) Response {
	pages := render.TotalPages(len(s.Tracks), e.cfg.PageSize)
	switch dir {
	case "next":
		if s.Page+1 >= pages {
			return textResponse(msgLastPage)
		}
		s.Page++
	case "prev":
		if s.Page == 0 {
			return textResponse(msgFirstPage)
		}
		s.Page--
	default:
		return textResponse(msgPickTrack)
	}

	if err := e.store.Put(ctx, userID, s); err != nil {
		return textResponse(msgInternal)
	}
	return e.listingResponse(s.Tracks, s.Page)
}

// trackSelected records the chosen track and either prompts for quality or
// downloads immediately with the configured tier.
func (e *Engine) trackSelected(ctx context.Context, userID string, s *session.Session, track catalog.Track) Response {
	if e.cfg.DefaultQuality != quality.Ask {
		return e.download(ctx, userID, track, e.cfg.DefaultQuality)
	}

	s.State = session.StateAwaitingQualityChoice
	s.Selected = &track
	if err := e.store.Put(ctx, userID, s); err != nil {
		return textResponse(msgInternal)
	}
	return Response{
		Text:           render.QualityMenu(track),
		QualityTrackID: track.ID,
	}
}

// qualityChoiceInput interprets a numeric quality pick.
func (e *Engine) qualityChoiceInput(ctx context.Context, userID string, s *session.Session, text string) Response {
	if s.Selected == nil {
		_ = e.store.Remove(ctx, userID)
		return textResponse(msgSessionReset)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return textResponse(msgPickQuality)
	}
	tier, ok := quality.ByOrdinal(n)
	if !ok {
		return textResponse(fmt.Sprintf("❌ Pick a quality between 1 and %d.", quality.Count()))
	}
	return e.download(ctx, userID, *s.Selected, tier.Code)
}

// download is the terminal step: one catalog call, one outcome message, and
// the session is cleared whichever way the call went.
func (e *Engine) download(ctx context.Context, userID string, track catalog.Track, qualityCode string) Response {
	out, err := e.catalog.Download(ctx, track.ID, qualityCode)
	_ = e.store.Remove(ctx, userID)

	if err != nil {
		logger.Warn(ctx, "flow", "download.failed",
			slog.String("status", "fail"),
			slog.String("user_id", userID),
			slog.String("track_id", track.ID),
			slog.String("quality", qualityCode),
			slog.String("err", err.Error()),
		)
		return textResponse(render.DownloadFailure(track, failureReason(err)))
	}

	logger.Info(ctx, "flow", "download.done",
		slog.String("status", "ok"),
		slog.String("user_id", userID),
		slog.String("track_id", track.ID),
		slog.String("quality", qualityCode),
	)

	if e.recorder != nil {
		if err := e.recorder.RecordDownload(ctx, userID, track, out); err != nil {
			logger.Warn(ctx, "flow", "history.record.failed",
				slog.String("status", "fail"),
				slog.String("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
	}
	return textResponse(render.DownloadSuccess(out, e.cfg.LinkBase))
}

func (e *Engine) listingResponse(tracks []catalog.Track, page int) Response {
	pages := render.TotalPages(len(tracks), e.cfg.PageSize)
	return Response{
		Text:    render.TrackPage(tracks, page, e.cfg.PageSize),
		Cards:   render.Cards(tracks, page, e.cfg.PageSize),
		NavPrev: page > 0,
		NavNext: page+1 < pages,
	}
}

func containsTrigger(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func findTrack(tracks []catalog.Track, id string) (catalog.Track, bool) {
	for _, t := range tracks {
		if t.ID == id {
			return t, true
		}
	}
	return catalog.Track{}, false
}

// failureReason extracts the message worth showing the user.
func failureReason(err error) string {
	var ce *catalog.Error
	if errors.As(err, &ce) {
		if ce.Kind == catalog.KindRemote && ce.Message != "" {
			return ce.Message
		}
		return "music service unavailable"
	}
	return "unexpected error"
}
