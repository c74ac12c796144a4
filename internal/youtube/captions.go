package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoCaptions signals that a video has no English captions available.
var ErrNoCaptions = errors.New("youtube: no captions available")

// Captions downloads English subtitles for single videos through
// yt-dlp and returns cleaned transcript text. Any subtitle file written
// to the download directory is removed before Fetch returns, whether
// the fetch succeeded or not.
type Captions struct {
	runner    CommandRunner
	ytdlpPath string
	dir       string
	timeout   time.Duration
	limiter   *rate.Limiter
	log       *zap.Logger
}

// CaptionsOption configures the caption fetcher.
type CaptionsOption func(*Captions)

// WithCaptionsRunner sets a custom command runner.
func WithCaptionsRunner(r CommandRunner) CaptionsOption {
	return func(c *Captions) { c.runner = r }
}

// WithCaptionsYtdlpPath sets the yt-dlp executable path.
func WithCaptionsYtdlpPath(path string) CaptionsOption {
	return func(c *Captions) { c.ytdlpPath = path }
}

// WithCaptionsTimeout bounds each subtitle download.
func WithCaptionsTimeout(d time.Duration) CaptionsOption {
	return func(c *Captions) { c.timeout = d }
}

// WithCaptionsRateLimit throttles downloads to n per minute.
func WithCaptionsRateLimit(perMinute int) CaptionsOption {
	return func(c *Captions) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// NewCaptions creates a caption fetcher writing transient files to dir.
func NewCaptions(dir string, log *zap.Logger, opts ...CaptionsOption) *Captions {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Captions{
		runner:    ExecRunner{},
		ytdlpPath: "yt-dlp",
		dir:       dir,
		timeout:   60 * time.Second,
		log:       log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads and cleans the English captions for one video.
// Returns ErrNoCaptions when the video has none.
func (c *Captions) Fetch(ctx context.Context, videoID string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	videoURL := "https://www.youtube.com/watch?v=" + videoID
	outputTemplate := filepath.Join(c.dir, videoID)
	captionFile := outputTemplate + ".en.vtt"

	// The subtitle file is transient; remove it no matter how we exit.
	defer func() {
		if err := os.Remove(captionFile); err != nil && !os.IsNotExist(err) {
			c.log.Warn("could not remove caption file",
				zap.String("path", captionFile), zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.runner.Run(runCtx, c.ytdlpPath,
		"--write-subs", "--write-auto-subs", "--sub-langs", "en.*",
		"--skip-download", "--output", outputTemplate, "--no-warnings",
		videoURL,
	)
	if err != nil {
		return "", fmt.Errorf("download captions for %s: %w", videoID, err)
	}

	raw, err := os.ReadFile(captionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCaptions
		}
		return "", fmt.Errorf("read caption file for %s: %w", videoID, err)
	}

	cleaned := CleanTranscript(string(raw))
	if cleaned == "" {
		return "", ErrNoCaptions
	}
	return cleaned, nil
}
