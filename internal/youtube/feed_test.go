package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func feedTestServer(t *testing.T, pageHTML string) *httptest.Server {
	t.Helper()
	recent := time.Now().AddDate(0, -1, 0).UTC().Format(time.RFC3339)
	stale := time.Now().AddDate(-2, 0, 0).UTC().Format(time.RFC3339)
	feedXML := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <id>yt:channel:UCtest123</id>
  <title>Test Channel</title>
  <entry>
    <id>yt:video:vid001</id>
    <title>Market Recap</title>
    <published>%s</published>
    <updated>%s</updated>
  </entry>
  <entry>
    <id>yt:video:vid002</id>
    <title>Earnings Deep Dive</title>
    <published>%s</published>
    <updated>%s</updated>
  </entry>
  <entry>
    <id>yt:video:vid003</id>
    <title>Old Recap</title>
    <published>%s</published>
    <updated>%s</updated>
  </entry>
</feed>`, recent, recent, recent, recent, stale, stale)

	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML)
	})
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("channel_id") != "UCtest123" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, feedXML)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedListResolvesChannelFromPage(t *testing.T) {
	page := `<html><head><meta itemprop="identifier" content="UCtest123"></head><body></body></html>`
	srv := feedTestServer(t, page)
	lister := NewFeedLister(nil,
		WithFeedHTTPClient(srv.Client()),
		WithFeedURL(srv.URL+"/feed?channel_id=%s"),
	)

	videos, err := lister.List(context.Background(), srv.URL+"/page", 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("List() returned %d videos, want 2 (stale entry filtered)", len(videos))
	}
	if videos[0].ID != "vid001" || videos[0].Title != "Market Recap" {
		t.Fatalf("unexpected first video: %+v", videos[0])
	}
	if len(videos[0].UploadDate) != 8 {
		t.Fatalf("upload date %q not in YYYYMMDD form", videos[0].UploadDate)
	}
}

func TestFeedListDirectChannelURL(t *testing.T) {
	srv := feedTestServer(t, "")
	lister := NewFeedLister(nil,
		WithFeedHTTPClient(srv.Client()),
		WithFeedURL(srv.URL+"/feed?channel_id=%s"),
	)

	videos, err := lister.List(context.Background(), "https://www.youtube.com/channel/UCtest123/videos", 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("List() returned %d videos, want 2", len(videos))
	}
}

func TestFeedListHonorsLimit(t *testing.T) {
	srv := feedTestServer(t, "")
	lister := NewFeedLister(nil,
		WithFeedHTTPClient(srv.Client()),
		WithFeedURL(srv.URL+"/feed?channel_id=%s"),
	)

	videos, err := lister.List(context.Background(), "https://www.youtube.com/channel/UCtest123", 1)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(videos) != 1 {
		t.Fatalf("List() returned %d videos, want 1", len(videos))
	}
}

func TestFeedListChannelNotResolved(t *testing.T) {
	srv := feedTestServer(t, "<html><head></head><body></body></html>")
	lister := NewFeedLister(nil, WithFeedHTTPClient(srv.Client()))

	_, err := lister.List(context.Background(), srv.URL+"/page", 10)
	if !errors.Is(err, ErrChannelNotResolved) {
		t.Fatalf("List() error = %v, want ErrChannelNotResolved", err)
	}
}

func TestChannelIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/channel/UCabc", "UCabc"},
		{"https://www.youtube.com/channel/UCabc/videos", "UCabc"},
		{"https://www.youtube.com/channel/UCabc?view=0", "UCabc"},
		{"https://www.youtube.com/@handle", ""},
		{"https://www.youtube.com/c/SomeName", ""},
	}
	for _, tt := range tests {
		if got := channelIDFromURL(tt.url); got != tt.want {
			t.Errorf("channelIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
