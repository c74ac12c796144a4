package youtube

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tickerlens/tickerlens/pkg/models"
)

// Lister fetches recent channel uploads through yt-dlp, which prints
// one JSON metadata object per video.
type Lister struct {
	runner    CommandRunner
	ytdlpPath string
	log       *zap.Logger
}

// ListerOption configures the yt-dlp lister.
type ListerOption func(*Lister)

// WithListerRunner sets a custom command runner.
func WithListerRunner(r CommandRunner) ListerOption {
	return func(l *Lister) { l.runner = r }
}

// WithListerYtdlpPath sets the yt-dlp executable path.
func WithListerYtdlpPath(path string) ListerOption {
	return func(l *Lister) { l.ytdlpPath = path }
}

// NewLister creates a yt-dlp backed video lister.
func NewLister(log *zap.Logger, opts ...ListerOption) *Lister {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Lister{
		runner:    ExecRunner{},
		ytdlpPath: "yt-dlp",
		log:       log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// List returns up to limit recent uploads of the channel, bounded to
// the past year.
func (l *Lister) List(ctx context.Context, channelURL string, limit int) ([]models.Video, error) {
	l.log.Info("fetching video details from channel", zap.Int("limit", limit))

	out, err := l.runner.Run(ctx, l.ytdlpPath,
		"--print-json", "--playlist-end", strconv.Itoa(limit),
		"--dateafter", "now-1year", "--no-warnings", channelURL,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos for %s: %w", channelURL, err)
	}

	var videos []models.Video
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024) // metadata lines can be large
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v models.Video
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parse video metadata: %w", err)
		}
		videos = append(videos, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan yt-dlp output: %w", err)
	}

	return videos, nil
}
