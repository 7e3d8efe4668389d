// Package render turns flow data into user-facing message text and inline
// card descriptions. It knows nothing about the transport; the bot layer
// maps its output onto messenger primitives.
package render

import (
	"fmt"
	"path"
	"strings"

	"github.com/soundfetch/tunebot/music/catalog"
	"github.com/soundfetch/tunebot/music/quality"
)

// Card describes one selectable track button.
type Card struct {
	TrackID  string
	Title    string
	Subtitle string
	CoverURL string
}

// TotalPages reports how many pages the track list spans.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// pageBounds clamps page to the valid range and returns the slice window.
func pageBounds(total, page, pageSize int) (lo, hi, clamped int) {
	pages := TotalPages(total, pageSize)
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	lo = page * pageSize
	hi = lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi, page
}

// TrackPage renders one page of search results as numbered lines. Ordinals
// are global across pages so a reply of "9" always means the ninth result
// regardless of which page is showing. Navigation hints appear only when the
// page in that direction exists.
func TrackPage(tracks []catalog.Track, page, pageSize int) string {
	if len(tracks) == 0 {
		return ""
	}
	lo, hi, page := pageBounds(len(tracks), page, pageSize)
	pages := TotalPages(len(tracks), pageSize)

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Found %d track(s), page %d/%d:\n\n", len(tracks), page+1, pages)
	for i := lo; i < hi; i++ {
		t := tracks[i]
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, t.Title, t.Artist)
	}
	b.WriteString("\nReply with a number to pick a track")
	switch {
	case page > 0 && page < pages-1:
		b.WriteString(", \"next\"/\"prev\" to turn pages")
	case page < pages-1:
		b.WriteString(", \"next\" for more")
	case page > 0:
		b.WriteString(", \"prev\" to go back")
	}
	b.WriteString(".")
	return b.String()
}

// Cards returns button descriptions for the visible page.
func Cards(tracks []catalog.Track, page, pageSize int) []Card {
	if len(tracks) == 0 {
		return nil
	}
	lo, hi, _ := pageBounds(len(tracks), page, pageSize)
	cards := make([]Card, 0, hi-lo)
	for i := lo; i < hi; i++ {
		t := tracks[i]
		sub := t.Artist
		if t.Album != "" {
			sub += " · " + t.Album
		}
		cards = append(cards, Card{
			TrackID:  t.ID,
			Title:    fmt.Sprintf("%d. %s", i+1, t.Title),
			Subtitle: sub,
			CoverURL: t.CoverURL,
		})
	}
	return cards
}

// QualityMenu lists every tier with its ordinal so the user can answer with
// a number.
func QualityMenu(track catalog.Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎵 %s - %s\n\nPick a quality:\n\n", track.Title, track.Artist)
	for i, tier := range quality.Tiers() {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, tier.Name, tier.Description)
	}
	b.WriteString("\nReply with a number.")
	return b.String()
}

// DownloadSuccess renders the completion message. When linkBase is set the
// stored file is exposed as a direct link built from the file's base name.
func DownloadSuccess(out *catalog.Outcome, linkBase string) string {
	var b strings.Builder
	b.WriteString("✅ Download complete!\n\n")
	fmt.Fprintf(&b, "🎵 %s\n", out.Title)
	fmt.Fprintf(&b, "👤 %s\n", out.Artist)
	if out.Album != "" {
		fmt.Fprintf(&b, "💿 %s\n", out.Album)
	}
	if out.QualityName != "" {
		fmt.Fprintf(&b, "🎚 %s\n", out.QualityName)
	}
	if out.FileSize != "" {
		fmt.Fprintf(&b, "📦 %s\n", out.FileSize)
	}
	if linkBase != "" && out.FilePath != "" {
		fmt.Fprintf(&b, "\n📥 %s/%s", strings.TrimRight(linkBase, "/"), path.Base(out.FilePath))
	}
	return b.String()
}

// DownloadFailure renders a failed download. The remote message is shown
// when the service provided one.
func DownloadFailure(track catalog.Track, reason string) string {
	if reason == "" {
		return fmt.Sprintf("❌ Download failed for %s - %s. Please try again later.", track.Title, track.Artist)
	}
	return fmt.Sprintf("❌ Download failed for %s - %s: %s", track.Title, track.Artist, reason)
}
