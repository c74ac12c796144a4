package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tickerlens/tickerlens/internal/youtube"
	"github.com/tickerlens/tickerlens/pkg/models"
)

// TaskState tracks one video through the pipeline.
type TaskState string

const (
	StatePending     TaskState = "pending"
	StateDownloading TaskState = "downloading"
	StateAnalyzing   TaskState = "analyzing"
	StateSaving      TaskState = "saving"
	StateDone        TaskState = "done"
	StateSkipped     TaskState = "skipped"
	StateFailed      TaskState = "failed"
)

// Outcome is the terminal record of one video task.
type Outcome struct {
	VideoID string
	State   TaskState
	Reason  string
	Err     error
}

// VideoLister lists recent channel uploads.
type VideoLister interface {
	List(ctx context.Context, channelURL string, limit int) ([]models.Video, error)
}

// CaptionFetcher downloads one video's transcript. It returns
// youtube.ErrNoCaptions when the video has no English captions.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Analyzer extracts per-company sentiment from a transcript. It never
// fails a video outright; degraded inputs yield a reduced analysis.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) models.VideoAnalysis
}

// Saver persists one finished analysis.
type Saver interface {
	Save(ctx context.Context, videoID, rawPublishDate string, analysis models.VideoAnalysis) error
}

// Options wires the pipeline's collaborators and tuning knobs.
type Options struct {
	Lister   VideoLister
	Captions CaptionFetcher
	Analyzer Analyzer
	Saver    Saver

	ChannelURL  string
	Limit       int
	Workers     int
	DownloadDir string

	// Cleanup runs once after all tasks finish. Defaults to
	// youtube.CleanupMedia over DownloadDir.
	Cleanup func(dir string) (int, error)

	Log *zap.Logger
}

// Pipeline fans channel videos out to a bounded worker pool. A failure
// in one video never stops the others; every video ends in exactly one
// terminal outcome.
type Pipeline struct {
	opts Options
	log  *zap.Logger
}

// New creates a pipeline from opts.
func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Cleanup == nil {
		opts.Cleanup = youtube.CleanupMedia
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{opts: opts, log: log}
}

// Run lists the channel and processes every video, returning one
// outcome per listed video in listing order.
func (p *Pipeline) Run(ctx context.Context) ([]Outcome, error) {
	if err := os.MkdirAll(p.opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	videos, err := p.opts.Lister.List(ctx, p.opts.ChannelURL, p.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list channel videos: %w", err)
	}
	p.log.Info("starting analysis", zap.Int("videos", len(videos)), zap.Int("workers", p.opts.Workers))

	outcomes := make([]Outcome, len(videos))
	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, video := range videos {
		i, video := i, video
		g.Go(func() error {
			outcomes[i] = p.process(ctx, video, i+1, len(videos))
			return nil
		})
	}
	_ = g.Wait() // tasks report through outcomes, never through errors

	removed, err := p.opts.Cleanup(p.opts.DownloadDir)
	if err != nil {
		p.log.Warn("media cleanup incomplete", zap.Error(err))
	}
	p.log.Info("analysis finished", zap.Int("videos", len(videos)), zap.Int("files_removed", removed))
	return outcomes, nil
}

// process runs one video from fetch to save. Panics are contained so a
// bad video cannot take the pool down.
func (p *Pipeline) process(ctx context.Context, video models.Video, seq, total int) (outcome Outcome) {
	outcome = Outcome{VideoID: video.ID, State: StatePending}
	defer func() {
		if r := recover(); r != nil {
			outcome.State = StateFailed
			outcome.Reason = "unexpected error"
			outcome.Err = fmt.Errorf("panic: %v", r)
			p.log.Error("video task panicked",
				zap.String("video_id", video.ID), zap.Any("panic", r))
		}
	}()

	log := p.log.With(zap.String("video_id", video.ID), zap.String("progress", fmt.Sprintf("%d/%d", seq, total)))

	if video.ID == "" {
		outcome.State = StateSkipped
		outcome.Reason = "missing video id"
		log.Warn("skipping video with missing id")
		return outcome
	}
	if _, err := time.Parse("20060102", video.UploadDate); err != nil {
		outcome.State = StateSkipped
		outcome.Reason = "malformed upload date"
		log.Warn("skipping video with malformed upload date", zap.String("upload_date", video.UploadDate))
		return outcome
	}

	outcome.State = StateDownloading
	log.Info("downloading captions", zap.String("title", video.Title))
	transcript, err := p.opts.Captions.Fetch(ctx, video.ID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoCaptions) {
			outcome.State = StateSkipped
			outcome.Reason = "no captions"
			log.Info("no captions available, skipping")
			return outcome
		}
		outcome.State = StateFailed
		outcome.Reason = "caption download failed"
		outcome.Err = err
		log.Error("caption download failed", zap.Error(err))
		return outcome
	}

	outcome.State = StateAnalyzing
	analysis := p.opts.Analyzer.Analyze(ctx, transcript)

	outcome.State = StateSaving
	if err := p.opts.Saver.Save(ctx, video.ID, video.UploadDate, analysis); err != nil {
		outcome.State = StateFailed
		outcome.Reason = "save failed"
		outcome.Err = err
		log.Error("save failed", zap.Error(err))
		return outcome
	}

	outcome.State = StateDone
	log.Info("video analyzed", zap.Int("mentions", len(analysis.Stocks)))
	return outcome
}

// CountStates tallies outcomes by terminal state.
func CountStates(outcomes []Outcome) map[TaskState]int {
	counts := make(map[TaskState]int)
	for _, o := range outcomes {
		counts[o.State]++
	}
	return counts
}
