package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, DefaultLimit: 10, Client: srv.Client()})
}

func TestSearchDecodesTracks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "hello", r.URL.Query().Get("keywords"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"success":true,"data":[
			{"id":123,"name":"Hello","artists":"Adele","album":"25","picUrl":"http://img/1.jpg"},
			{"id":"456","name":"Hello Again","ar_name":"Band","album":{"name":"Greatest","publish_year":2019}}
		]}`))
	})

	res, err := c.Search(context.Background(), "hello", 0)
	require.NoError(t, err)
	require.Len(t, res.Tracks, 2)

	assert.Equal(t, Track{
		ID: "123", Title: "Hello", Artist: "Adele", Album: "25", CoverURL: "http://img/1.jpg",
	}, res.Tracks[0])
	assert.Equal(t, Track{
		ID: "456", Title: "Hello Again", Artist: "Band", Album: "Greatest", PublishYear: 2019,
	}, res.Tracks[1])
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	})

	res, err := c.Search(context.Background(), "no such song", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Tracks)
}

func TestSearchRejectsBlankKeyword(t *testing.T) {
	c := New(Config{BaseURL: "http://localhost:5100"})
	_, err := c.Search(context.Background(), "   ", 5)
	assert.ErrorIs(t, err, ErrEmptyKeyword)
}

func TestSearchRemoteFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"rate limited"}`))
	})

	_, err := c.Search(context.Background(), "hello", 5)
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.Contains(t, err.Error(), "rate limited")
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens on the address anymore

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Search(context.Background(), "hello", 5)
	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}

func TestDownloadPostsFormAndDecodesOutcome(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/download", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "123", r.PostForm.Get("id"))
		assert.Equal(t, "lossless", r.PostForm.Get("quality"))
		assert.Equal(t, "json", r.PostForm.Get("format"))
		w.Write([]byte(`{"success":true,"data":{
			"name":"Hello","artist":"Adele","album":"25",
			"quality_name":"Lossless","file_path":"/music/Adele - Hello.flac",
			"file_size_formatted":"28.4 MB","pic_url":"http://img/1.jpg"
		}}`))
	})

	out, err := c.Download(context.Background(), "123", "lossless")
	require.NoError(t, err)
	assert.Equal(t, &Outcome{
		Title:       "Hello",
		Artist:      "Adele",
		Album:       "25",
		QualityName: "Lossless",
		FilePath:    "/music/Adele - Hello.flac",
		FileSize:    "28.4 MB",
		CoverURL:    "http://img/1.jpg",
	}, out)
}

func TestDownloadRemoteFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"track unavailable"}`))
	})

	_, err := c.Download(context.Background(), "123", "exhigh")
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.Contains(t, err.Error(), "track unavailable")
}

func TestHealth(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"ok"}`))
	})
	assert.NoError(t, ok.Health(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := down.Health(context.Background())
	require.Error(t, err)
	assert.True(t, IsRemote(err))
}
