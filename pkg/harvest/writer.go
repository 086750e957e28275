package harvest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/utils"
)

// Writer persists harvested documents: one markdown file per page, named
// from the page URL, with a metadata header identifying the source and
// capture time.
type Writer struct {
	outputDir string
	now       func() time.Time
	log       *logrus.Entry
}

// NewWriter creates a Writer targeting outputDir. The directory is created
// on first EnsureDir call, not here.
func NewWriter(outputDir string, log *logrus.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		now:       time.Now,
		log:       log.WithField("component", "writer"),
	}
}

// EnsureDir creates the output directory if absent.
func (w *Writer) EnsureDir() error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("%w: creating output dir '%s': %v", utils.ErrFilesystem, w.outputDir, err)
	}
	return nil
}

// Save writes the extracted content for pageURL, prefixed with a metadata
// header, overwriting any existing file at the derived path. Returns the
// path written.
func (w *Writer) Save(pageURL, content string) (string, error) {
	filename, err := utils.PageFilename(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrFilesystem, err)
	}
	path := filepath.Join(w.outputDir, filename)

	header := fmt.Sprintf("---\nsource_url: %s\ndate_scraped: %s\n---\n\n",
		pageURL, w.now().UTC().Format(time.RFC3339))

	if err := os.WriteFile(path, []byte(header+content), 0644); err != nil {
		return "", fmt.Errorf("%w: writing '%s': %v", utils.ErrFilesystem, path, err)
	}

	w.log.WithFields(logrus.Fields{"url": pageURL, "path": path}).Debug("Saved content")
	return path, nil
}
