package render

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfetch/tunebot/music/catalog"
)

func makeTracks(n int) []catalog.Track {
	tracks := make([]catalog.Track, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, catalog.Track{
			ID:     fmt.Sprintf("%d", i),
			Title:  fmt.Sprintf("Song %d", i),
			Artist: fmt.Sprintf("Artist %d", i),
		})
	}
	return tracks
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 8))
	assert.Equal(t, 1, TotalPages(1, 8))
	assert.Equal(t, 1, TotalPages(8, 8))
	assert.Equal(t, 2, TotalPages(9, 8))
	assert.Equal(t, 2, TotalPages(12, 8))
	assert.Equal(t, 3, TotalPages(17, 8))
}

func TestTrackPageSinglePageHasNoNavHints(t *testing.T) {
	out := TrackPage(makeTracks(3), 0, 8)
	assert.Contains(t, out, "1. Song 1 - Artist 1")
	assert.Contains(t, out, "3. Song 3 - Artist 3")
	assert.Contains(t, out, "page 1/1")
	assert.NotContains(t, out, "next")
	assert.NotContains(t, out, "prev")
}

func TestTrackPageGlobalOrdinals(t *testing.T) {
	tracks := makeTracks(12)

	first := TrackPage(tracks, 0, 8)
	assert.Contains(t, first, "1. Song 1 - Artist 1")
	assert.Contains(t, first, "8. Song 8 - Artist 8")
	assert.NotContains(t, first, "9. Song 9")
	assert.Contains(t, first, "page 1/2")
	assert.Contains(t, first, "next")
	assert.NotContains(t, first, "prev")

	second := TrackPage(tracks, 1, 8)
	assert.Contains(t, second, "9. Song 9 - Artist 9")
	assert.Contains(t, second, "12. Song 12 - Artist 12")
	assert.NotContains(t, second, "8. Song 8")
	assert.Contains(t, second, "page 2/2")
	assert.Contains(t, second, "prev")
	assert.NotContains(t, second, "next")
}

func TestTrackPageMiddlePageHintsBothDirections(t *testing.T) {
	out := TrackPage(makeTracks(20), 1, 8)
	assert.Contains(t, out, "page 2/3")
	assert.Contains(t, out, "next")
	assert.Contains(t, out, "prev")
}

func TestTrackPageClampsOutOfRangePage(t *testing.T) {
	out := TrackPage(makeTracks(3), 7, 8)
	assert.Contains(t, out, "page 1/1")
	out = TrackPage(makeTracks(3), -2, 8)
	assert.Contains(t, out, "page 1/1")
}

func TestTrackPageEmpty(t *testing.T) {
	assert.Empty(t, TrackPage(nil, 0, 8))
}

func TestCardsWindow(t *testing.T) {
	tracks := makeTracks(12)
	tracks[8].Album = "Best Of"
	tracks[8].CoverURL = "http://img/9.jpg"

	cards := Cards(tracks, 1, 8)
	require.Len(t, cards, 4)
	assert.Equal(t, "9", cards[0].TrackID)
	assert.Equal(t, "9. Song 9", cards[0].Title)
	assert.Equal(t, "Artist 9 · Best Of", cards[0].Subtitle)
	assert.Equal(t, "http://img/9.jpg", cards[0].CoverURL)
	assert.Equal(t, "12. Song 12", cards[3].Title)
}

func TestQualityMenuListsAllTiers(t *testing.T) {
	out := QualityMenu(catalog.Track{Title: "Hello", Artist: "Adele"})
	assert.Contains(t, out, "Hello - Adele")
	for i := 1; i <= 7; i++ {
		assert.Contains(t, out, fmt.Sprintf("%d. ", i))
	}
	assert.Equal(t, 7, strings.Count(out, "(")) // one description per tier
}

func TestDownloadSuccessLink(t *testing.T) {
	out := &catalog.Outcome{
		Title:       "Hello",
		Artist:      "Adele",
		Album:       "25",
		QualityName: "Lossless",
		FilePath:    "/music/downloads/Adele - Hello.flac",
		FileSize:    "28.4 MB",
	}

	withLink := DownloadSuccess(out, "https://files.example.com/music/")
	assert.Contains(t, withLink, "Hello")
	assert.Contains(t, withLink, "Lossless")
	assert.Contains(t, withLink, "https://files.example.com/music/Adele - Hello.flac")

	withoutLink := DownloadSuccess(out, "")
	assert.NotContains(t, withoutLink, "📥")
}

func TestDownloadFailure(t *testing.T) {
	track := catalog.Track{Title: "Hello", Artist: "Adele"}
	assert.Contains(t, DownloadFailure(track, "track unavailable"), "track unavailable")
	assert.Contains(t, DownloadFailure(track, ""), "try again")
}
