package job

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/postpilot/internal/service"
)

// Archiver is the slice of R2Service the sync job needs.
type Archiver interface {
	Enabled() bool
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// ArchiveSyncJob mirrors ready-directory assets into R2. It remembers what
// it already uploaded, so each file goes out once per process lifetime.
type ArchiveSyncJob struct {
	readyDir string
	r2       Archiver

	mu       sync.Mutex
	uploaded map[string]struct{}
}

func NewArchiveSyncJob(readyDir string, r2 Archiver) *ArchiveSyncJob {
	return &ArchiveSyncJob{
		readyDir: readyDir,
		r2:       r2,
		uploaded: make(map[string]struct{}),
	}
}

func (j *ArchiveSyncJob) SyncArchive() {
	if !j.r2.Enabled() {
		return
	}
	ctx := context.Background()

	entries, err := os.ReadDir(j.readyDir)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !service.IsSupportedImage(name) {
			continue
		}

		j.mu.Lock()
		_, done := j.uploaded[name]
		j.mu.Unlock()
		if done {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(name string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			data, err := os.ReadFile(filepath.Join(j.readyDir, name))
			if err != nil {
				slog.Info(err.Error())
				return
			}

			if err := j.r2.Upload(ctx, "assets/"+name, data, http.DetectContentType(data)); err != nil {
				slog.Info("unable to archive asset", "asset", name)
				return
			}

			j.mu.Lock()
			j.uploaded[name] = struct{}{}
			j.mu.Unlock()
		}(name)
	}

	wg.Wait()
}
