package catalog

import (
	"encoding/json"
	"strings"
)

// Track is a single searchable item returned by the catalog service.
// Tracks are immutable once returned by a search.
type Track struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	CoverURL    string
	PublishYear int
}

// SearchResult carries a relevance-ordered track list.
type SearchResult struct {
	Tracks []Track
}

// Outcome describes a completed download as reported by the service.
// QualityName reflects the tier the service actually used, which may be
// lower than the requested one when the track is not available in it.
type Outcome struct {
	Title       string
	Artist      string
	Album       string
	QualityName string
	FilePath    string
	FileSize    string
	CoverURL    string
}

// wireTrack mirrors the search response item. The service emits the artist
// under either "artists" or "ar_name" depending on its revision, and "album"
// as either a plain name or an object with publish metadata.
type wireTrack struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Artists string      `json:"artists"`
	ArName  string      `json:"ar_name"`
	Album   wireAlbum   `json:"album"`
	PicURL  string      `json:"picUrl"`
}

type wireAlbum struct {
	Name        string
	PublishYear int
}

func (a *wireAlbum) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		return nil
	}
	var obj struct {
		Name        string `json:"name"`
		PublishYear int    `json:"publish_year"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	a.PublishYear = obj.PublishYear
	return nil
}

func (w wireTrack) toTrack() Track {
	artist := strings.TrimSpace(w.Artists)
	if artist == "" {
		artist = strings.TrimSpace(w.ArName)
	}
	return Track{
		ID:          w.ID.String(),
		Title:       w.Name,
		Artist:      artist,
		Album:       w.Album.Name,
		CoverURL:    w.PicURL,
		PublishYear: w.Album.PublishYear,
	}
}

type searchResponse struct {
	Success bool        `json:"success"`
	Data    []wireTrack `json:"data"`
	Message string      `json:"message"`
}

type downloadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Name              string `json:"name"`
		Artist            string `json:"artist"`
		Album             string `json:"album"`
		QualityName       string `json:"quality_name"`
		FilePath          string `json:"file_path"`
		FileSizeFormatted string `json:"file_size_formatted"`
		PicURL            string `json:"pic_url"`
	} `json:"data"`
}
