package harvest

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/utils"
)

// Recorder owns the append-only error log. The log is truncated and stamped
// with a run header when opened, and is never read back by this program.
type Recorder struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	runID uuid.UUID
	log   *logrus.Entry
}

// OpenRecorder truncates (or creates) the error log at path and writes the
// run header.
func OpenRecorder(path string, runID uuid.UUID, log *logrus.Logger) (*Recorder, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening error log '%s': %v", utils.ErrFilesystem, path, err)
	}

	header := fmt.Sprintf("Harvest errors log - %s (run %s)\n\n",
		time.Now().UTC().Format(time.RFC3339), runID)
	if _, err := file.WriteString(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: writing error log header: %v", utils.ErrFilesystem, err)
	}

	return &Recorder{
		file:  file,
		path:  path,
		runID: runID,
		log:   log.WithField("component", "error_recorder"),
	}, nil
}

// Record appends one timestamped failure line for the offending URL.
func (r *Recorder) Record(offendingURL, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return
	}

	line := fmt.Sprintf("[%s] %s: %s\n", time.Now().UTC().Format(time.RFC3339), offendingURL, message)
	if _, err := r.file.WriteString(line); err != nil {
		r.log.WithField("error_log", r.path).Errorf("Failed to append error log entry: %v", err)
	}
}

// Close syncs and closes the log file.
func (r *Recorder) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return
	}
	if err := r.file.Sync(); err != nil {
		r.log.Errorf("Error syncing error log '%s': %v", r.path, err)
	}
	if err := r.file.Close(); err != nil {
		r.log.Errorf("Error closing error log '%s': %v", r.path, err)
	}
	r.file = nil
}
