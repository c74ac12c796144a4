package youtube

import (
	"errors"
	"os"
	"path/filepath"
)

var mediaPatterns = []string{"*.vtt", "*.mp4", "*.m4a", "*.webm"}

// CleanupMedia removes leftover subtitle and media files from dir and
// returns how many files were deleted.
func CleanupMedia(dir string) (int, error) {
	removed := 0
	var errs []error
	for _, pattern := range mediaPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, match := range matches {
			if err := os.Remove(match); err != nil {
				errs = append(errs, err)
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}
