package flow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfetch/tunebot/music/catalog"
	"github.com/soundfetch/tunebot/music/session"
)

type downloadCall struct {
	trackID string
	quality string
}

// fakeCatalog serves canned tracks and records download calls.
type fakeCatalog struct {
	tracks      []catalog.Track
	searchErr   error
	downloadErr error
	searched    []string
	downloads   []downloadCall
}

func (f *fakeCatalog) Search(_ context.Context, keyword string, _ int) (*catalog.SearchResult, error) {
	f.searched = append(f.searched, keyword)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &catalog.SearchResult{Tracks: f.tracks}, nil
}

func (f *fakeCatalog) Download(_ context.Context, trackID, qualityCode string) (*catalog.Outcome, error) {
	f.downloads = append(f.downloads, downloadCall{trackID: trackID, quality: qualityCode})
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return &catalog.Outcome{
		Title:       "Song",
		Artist:      "Artist",
		QualityName: "Extra High",
		FilePath:    "/music/song.mp3",
		FileSize:    "8.1 MB",
	}, nil
}

type recordedDownload struct {
	userID string
	track  catalog.Track
}

type fakeRecorder struct {
	records []recordedDownload
}

func (f *fakeRecorder) RecordDownload(_ context.Context, userID string, track catalog.Track, _ *catalog.Outcome) error {
	f.records = append(f.records, recordedDownload{userID: userID, track: track})
	return nil
}

func tracksN(n int) []catalog.Track {
	out := make([]catalog.Track, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, catalog.Track{
			ID:     fmt.Sprintf("t%d", i),
			Title:  fmt.Sprintf("Song %d", i),
			Artist: fmt.Sprintf("Artist %d", i),
		})
	}
	return out
}

type fixture struct {
	engine  *Engine
	store   *session.MemoryStore
	catalog *fakeCatalog
}

func newFixture(cat *fakeCatalog, cfg Config) *fixture {
	store := session.NewMemoryStore(5 * time.Minute)
	return &fixture{
		engine:  New(store, cat, nil, cfg),
		store:   store,
		catalog: cat,
	}
}

func text(userID, s string) Event {
	return Event{Kind: EventText, UserID: userID, Text: s}
}

func command(userID, cmd, args string) Event {
	return Event{Kind: EventCommand, UserID: userID, Command: cmd, Text: args}
}

func callback(userID, key, payload string) Event {
	return Event{Kind: EventCallback, UserID: userID, CallbackKey: key, Payload: payload}
}

func (f *fixture) state(t *testing.T, userID string) session.State {
	t.Helper()
	s, ok := f.store.Get(context.Background(), userID)
	if !ok {
		return session.StateIdle
	}
	return s.State
}

func TestGreetingIsIdempotent(t *testing.T) {
	f := newFixture(&fakeCatalog{}, Config{})
	ctx := context.Background()

	first := f.engine.Handle(ctx, text("1", "hello there"))
	second := f.engine.Handle(ctx, text("1", "hi again"))

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
	assert.Zero(t, f.store.Len(), "greeting must not create a session")
}

func TestTriggerPhraseStartsFlow(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	resp := f.engine.Handle(ctx, text("1", "我想下载音乐"))
	assert.Equal(t, msgAskKeyword, resp.Text)
	assert.Equal(t, session.StateAwaitingKeyword, f.state(t, "1"))

	resp = f.engine.Handle(ctx, text("1", "周杰伦"))
	assert.Contains(t, resp.Text, "1. Song 1 - Artist 1")
	assert.Equal(t, []string{"周杰伦"}, f.catalog.searched)
	assert.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "1"))
}

func TestSearchCommandThreeResults(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})

	resp := f.engine.Handle(context.Background(), command("1", CommandSearch, "周杰伦"))

	assert.Contains(t, resp.Text, "1. Song 1 - Artist 1")
	assert.Contains(t, resp.Text, "3. Song 3 - Artist 3")
	assert.NotContains(t, resp.Text, "next")
	assert.NotContains(t, resp.Text, "prev")
	assert.Len(t, resp.Cards, 3)
	assert.False(t, resp.NavNext)
	assert.False(t, resp.NavPrev)
	assert.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "1"))
}

func TestPaginationForwardAndBack(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(12)}, Config{})
	ctx := context.Background()

	resp := f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	assert.Contains(t, resp.Text, "8. Song 8")
	assert.NotContains(t, resp.Text, "9. Song 9")
	assert.Contains(t, resp.Text, "next")
	assert.NotContains(t, resp.Text, "prev")
	assert.True(t, resp.NavNext)
	assert.False(t, resp.NavPrev)

	resp = f.engine.Handle(ctx, text("1", "next"))
	assert.Contains(t, resp.Text, "9. Song 9")
	assert.Contains(t, resp.Text, "12. Song 12")
	assert.Contains(t, resp.Text, "prev")
	assert.NotContains(t, resp.Text, "next\"")
	assert.False(t, resp.NavNext)
	assert.True(t, resp.NavPrev)

	// Forward past the last page is a no-op on state.
	resp = f.engine.Handle(ctx, text("1", "next"))
	assert.Equal(t, msgLastPage, resp.Text)
	s, ok := f.store.Get(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, 1, s.Page)

	resp = f.engine.Handle(ctx, text("1", "prev"))
	assert.Contains(t, resp.Text, "1. Song 1")

	// Backward past page 0 is a no-op on state.
	resp = f.engine.Handle(ctx, text("1", "p"))
	assert.Equal(t, msgFirstPage, resp.Text)
	s, ok = f.store.Get(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, 0, s.Page)
}

func TestPageNavCallback(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(12)}, Config{})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, callback("1", CallbackPageNav, "next"))
	assert.Contains(t, resp.Text, "9. Song 9")
}

func TestOutOfRangeSelection(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, text("1", "5"))

	assert.Contains(t, resp.Text, "between 1 and 3")
	assert.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "1"))
	assert.Empty(t, f.catalog.downloads)
}

func TestNonNumericSelection(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, text("1", "banana"))

	assert.Equal(t, msgPickTrack, resp.Text)
	assert.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "1"))
}

func TestAskQualityFlow(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{DefaultQuality: "ask"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, text("1", "1"))

	assert.Contains(t, resp.Text, "Pick a quality")
	assert.Equal(t, "t1", resp.QualityTrackID)
	assert.Equal(t, session.StateAwaitingQualityChoice, f.state(t, "1"))
	assert.Empty(t, f.catalog.downloads)

	// "2" is the second tier of the menu.
	resp = f.engine.Handle(ctx, text("1", "2"))
	require.Len(t, f.catalog.downloads, 1)
	assert.Equal(t, downloadCall{trackID: "t1", quality: "exhigh"}, f.catalog.downloads[0])
	assert.Contains(t, resp.Text, "Download complete")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestQualityChoiceOutOfRange(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{DefaultQuality: "ask"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	f.engine.Handle(ctx, text("1", "1"))

	resp := f.engine.Handle(ctx, text("1", "9"))
	assert.Contains(t, resp.Text, "between 1 and 7")
	assert.Equal(t, session.StateAwaitingQualityChoice, f.state(t, "1"))

	resp = f.engine.Handle(ctx, text("1", "loud"))
	assert.Equal(t, msgPickQuality, resp.Text)
	assert.Equal(t, session.StateAwaitingQualityChoice, f.state(t, "1"))
}

func TestConfiguredQualityDownloadsImmediately(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{DefaultQuality: "exhigh"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, text("1", "2"))

	require.Len(t, f.catalog.downloads, 1)
	assert.Equal(t, downloadCall{trackID: "t2", quality: "exhigh"}, f.catalog.downloads[0])
	assert.Contains(t, resp.Text, "Download complete")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestDownloadFailureStillResets(t *testing.T) {
	cat := &fakeCatalog{
		tracks:      tracksN(3),
		downloadErr: &catalog.Error{Kind: catalog.KindRemote, Op: "download", Message: "track unavailable"},
	}
	f := newFixture(cat, Config{DefaultQuality: "exhigh"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, text("1", "1"))

	assert.Contains(t, resp.Text, "track unavailable")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestTrackPickCallback(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(12)}, Config{DefaultQuality: "ask"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, callback("1", CallbackSongPick, "t11"))

	assert.Contains(t, resp.Text, "Song 11")
	assert.Equal(t, "t11", resp.QualityTrackID)
	assert.Equal(t, session.StateAwaitingQualityChoice, f.state(t, "1"))
}

func TestQualityPickCallback(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{DefaultQuality: "ask"})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	f.engine.Handle(ctx, callback("1", CallbackSongPick, "t1"))
	resp := f.engine.Handle(ctx, callback("1", CallbackQualityPick, "t1|lossless"))

	require.Len(t, f.catalog.downloads, 1)
	assert.Equal(t, downloadCall{trackID: "t1", quality: "lossless"}, f.catalog.downloads[0])
	assert.Contains(t, resp.Text, "Download complete")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestSearchFailureResetsToIdle(t *testing.T) {
	cat := &fakeCatalog{
		searchErr: &catalog.Error{Kind: catalog.KindRemote, Op: "search", Message: "rate limited"},
	}
	f := newFixture(cat, Config{})

	resp := f.engine.Handle(context.Background(), command("1", CommandSearch, "pop"))
	assert.Contains(t, resp.Text, "rate limited")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestEmptyResultsResetToIdle(t *testing.T) {
	f := newFixture(&fakeCatalog{}, Config{})

	resp := f.engine.Handle(context.Background(), command("1", CommandSearch, "unknown band"))
	assert.Contains(t, resp.Text, "No tracks found")
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestExpiredSessionSelectionVsSearch(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	// No session at all behaves the same as an expired one.
	resp := f.engine.Handle(ctx, command("1", CommandSelect, "1"))
	assert.Equal(t, msgExpired, resp.Text)

	resp = f.engine.Handle(ctx, callback("1", CallbackSongPick, "t1"))
	assert.Equal(t, msgExpired, resp.Text)

	// A new search trigger starts fresh silently.
	resp = f.engine.Handle(ctx, text("1", "netease"))
	assert.Equal(t, msgAskKeyword, resp.Text)
	assert.Equal(t, session.StateAwaitingKeyword, f.state(t, "1"))
}

func TestUnknownStateResets(t *testing.T) {
	f := newFixture(&fakeCatalog{}, Config{})
	ctx := context.Background()

	require.NoError(t, f.store.Put(ctx, "1", &session.Session{State: session.State("bogus")}))
	resp := f.engine.Handle(ctx, text("1", "anything"))

	assert.Equal(t, msgSessionReset, resp.Text)
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestStartCommandResets(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	require.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "1"))

	first := f.engine.Handle(ctx, command("1", CommandStart, ""))
	second := f.engine.Handle(ctx, command("1", CommandStart, ""))
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, session.StateIdle, f.state(t, "1"))
}

func TestSelectCommandRoutesPageTokens(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(12)}, Config{})
	ctx := context.Background()

	f.engine.Handle(ctx, command("1", CommandSearch, "pop"))
	resp := f.engine.Handle(ctx, command("1", CommandSelect, "next"))
	assert.Contains(t, resp.Text, "9. Song 9")

	resp = f.engine.Handle(ctx, command("1", CommandSelect, "9"))
	assert.Contains(t, resp.Text, "Download complete")
}

func TestUserIDFallback(t *testing.T) {
	f := newFixture(&fakeCatalog{tracks: tracksN(3)}, Config{})
	ctx := context.Background()

	ev := Event{Kind: EventCommand, Command: CommandSearch, Text: "pop", AltUserID: "99"}
	f.engine.Handle(ctx, ev)
	assert.Equal(t, session.StateAwaitingTrackChoice, f.state(t, "99"))

	// Primary wins when both are present.
	ev = Event{Kind: EventText, UserID: "7", AltUserID: "99", Text: "1"}
	resp := f.engine.Handle(ctx, ev)
	assert.Equal(t, msgGreeting, resp.Text, "primary id has no session, so it gets the greeting")
}

func TestRecorderReceivesCompletedDownloads(t *testing.T) {
	store := session.NewMemoryStore(5 * time.Minute)
	cat := &fakeCatalog{tracks: tracksN(3)}
	rec := &fakeRecorder{}
	engine := New(store, cat, rec, Config{DefaultQuality: "exhigh"})
	ctx := context.Background()

	engine.Handle(ctx, command("1", CommandSearch, "pop"))
	engine.Handle(ctx, text("1", "1"))

	require.Len(t, rec.records, 1)
	assert.Equal(t, "1", rec.records[0].userID)
	assert.Equal(t, "t1", rec.records[0].track.ID)
}

func TestSearchLimitClampedInEngineConfig(t *testing.T) {
	e := New(session.NewMemoryStore(0), &fakeCatalog{}, nil, Config{})
	assert.Equal(t, 8, e.cfg.PageSize)
	assert.Equal(t, 10, e.cfg.SearchLimit)
	assert.Equal(t, "exhigh", e.cfg.DefaultQuality)
}
