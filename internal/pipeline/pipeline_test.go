package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tickerlens/tickerlens/internal/youtube"
	"github.com/tickerlens/tickerlens/pkg/models"
)

type fakeLister struct {
	videos []models.Video
	err    error
}

func (f *fakeLister) List(ctx context.Context, channelURL string, limit int) ([]models.Video, error) {
	return f.videos, f.err
}

type fakeCaptions struct {
	errs map[string]error
}

func (f *fakeCaptions) Fetch(ctx context.Context, videoID string) (string, error) {
	if err, ok := f.errs[videoID]; ok {
		return "", err
	}
	return "transcript for " + videoID, nil
}

type fakeAnalyzer struct {
	panicOn string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string) models.VideoAnalysis {
	if f.panicOn != "" && transcript == "transcript for "+f.panicOn {
		panic("analyzer blew up")
	}
	return models.VideoAnalysis{
		Summary: "summary",
		Stocks:  []models.StockMention{{StockName: "AAPL", Sentiment: 0.5}},
	}
}

type recordingSaver struct {
	mu     sync.Mutex
	saved  []string
	failOn string
}

func (r *recordingSaver) Save(ctx context.Context, videoID, rawPublishDate string, analysis models.VideoAnalysis) error {
	if videoID == r.failOn {
		return errors.New("save refused")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, videoID)
	return nil
}

func testVideos(n int) []models.Video {
	videos := make([]models.Video, n)
	for i := range videos {
		videos[i] = models.Video{
			ID:         fmt.Sprintf("vid%d", i),
			Title:      fmt.Sprintf("Video %d", i),
			UploadDate: "20250810",
		}
	}
	return videos
}

func TestRunIsolatesFailures(t *testing.T) {
	var cleanups atomic.Int32
	saver := &recordingSaver{failOn: "vid7"}
	p := New(Options{
		Lister:      &fakeLister{videos: testVideos(10)},
		Captions:    &fakeCaptions{errs: map[string]error{"vid5": youtube.ErrNoCaptions}},
		Analyzer:    &fakeAnalyzer{panicOn: "vid3"},
		Saver:       saver,
		ChannelURL:  "https://www.youtube.com/@somechannel",
		Limit:       10,
		Workers:     4,
		DownloadDir: t.TempDir(),
		Cleanup: func(dir string) (int, error) {
			cleanups.Add(1)
			return 0, nil
		},
	})

	outcomes, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(outcomes) != 10 {
		t.Fatalf("Run() returned %d outcomes, want 10", len(outcomes))
	}

	for i, o := range outcomes {
		want := StateDone
		switch o.VideoID {
		case "vid3", "vid7":
			want = StateFailed
		case "vid5":
			want = StateSkipped
		}
		if o.State != want {
			t.Errorf("outcome %d (%s) state = %s, want %s", i, o.VideoID, o.State, want)
		}
	}
	if outcomes[3].Err == nil {
		t.Error("panicking task should carry an error")
	}
	if outcomes[5].Reason != "no captions" {
		t.Errorf("vid5 reason = %q, want %q", outcomes[5].Reason, "no captions")
	}

	if got := len(saver.saved); got != 7 {
		t.Errorf("saver stored %d videos, want 7", got)
	}
	if n := cleanups.Load(); n != 1 {
		t.Errorf("cleanup ran %d times, want exactly 1", n)
	}

	counts := CountStates(outcomes)
	if counts[StateDone] != 7 || counts[StateFailed] != 2 || counts[StateSkipped] != 1 {
		t.Errorf("unexpected state counts: %v", counts)
	}
}

func TestRunSkipsMalformedMetadata(t *testing.T) {
	videos := []models.Video{
		{ID: "", Title: "no id", UploadDate: "20250810"},
		{ID: "vid1", Title: "bad date", UploadDate: "August 10"},
		{ID: "vid2", Title: "fine", UploadDate: "20250810"},
	}
	saver := &recordingSaver{}
	p := New(Options{
		Lister:      &fakeLister{videos: videos},
		Captions:    &fakeCaptions{},
		Analyzer:    &fakeAnalyzer{},
		Saver:       saver,
		DownloadDir: t.TempDir(),
		Cleanup:     func(dir string) (int, error) { return 0, nil },
	})

	outcomes, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcomes[0].State != StateSkipped || outcomes[0].Reason != "missing video id" {
		t.Errorf("outcome 0 = %+v, want skipped for missing id", outcomes[0])
	}
	if outcomes[1].State != StateSkipped || outcomes[1].Reason != "malformed upload date" {
		t.Errorf("outcome 1 = %+v, want skipped for malformed date", outcomes[1])
	}
	if outcomes[2].State != StateDone {
		t.Errorf("outcome 2 = %+v, want done", outcomes[2])
	}
	if len(saver.saved) != 1 || saver.saved[0] != "vid2" {
		t.Errorf("saved = %v, want only vid2", saver.saved)
	}
}

func TestRunCaptionFailureFailsTask(t *testing.T) {
	p := New(Options{
		Lister:      &fakeLister{videos: testVideos(1)},
		Captions:    &fakeCaptions{errs: map[string]error{"vid0": errors.New("network down")}},
		Analyzer:    &fakeAnalyzer{},
		Saver:       &recordingSaver{},
		DownloadDir: t.TempDir(),
		Cleanup:     func(dir string) (int, error) { return 0, nil },
	})

	outcomes, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if outcomes[0].State != StateFailed || outcomes[0].Reason != "caption download failed" {
		t.Fatalf("outcome = %+v, want failed caption download", outcomes[0])
	}
}

func TestRunListError(t *testing.T) {
	p := New(Options{
		Lister:      &fakeLister{err: errors.New("channel unreachable")},
		Captions:    &fakeCaptions{},
		Analyzer:    &fakeAnalyzer{},
		Saver:       &recordingSaver{},
		DownloadDir: t.TempDir(),
	})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("Run() expected listing error, got nil")
	}
}
