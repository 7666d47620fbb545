package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/wheelvend/wheelvend/internal/resolve"
)

const downloadTimeout = 300 * time.Second

// Downloader fetches a resolved artifact to a local file. One transfer per
// invocation; cancellation comes from the caller's context.
type Downloader struct {
	httpClient   *http.Client
	showProgress bool
	logger       *logrus.Entry
}

// NewDownloader creates a Downloader. A nil httpClient selects a default
// client with a generous download timeout. showProgress renders a terminal
// progress bar during transfers.
func NewDownloader(httpClient *http.Client, showProgress bool) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	return &Downloader{
		httpClient:   httpClient,
		showProgress: showProgress,
		logger:       logrus.WithField("component", "downloader"),
	}
}

// Fetch downloads the artifact into destDir and returns the path of the
// downloaded archive. The transfer goes through a temp file that is renamed
// into place only after the size check passes.
func (d *Downloader) Fetch(ctx context.Context, artifact resolve.ResolvedArtifact, destDir string) (string, error) {
	d.logger.WithFields(logrus.Fields{
		"filename": artifact.Filename,
		"url":      artifact.DownloadURL,
		"size":     artifact.SizeBytes,
	}).Info("Starting artifact download")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifact.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.WithError(err).Error("Failed to download artifact")
		return "", fmt.Errorf("failed to download %s: %w", artifact.Filename, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s failed with status %d", artifact.Filename, resp.StatusCode)
	}

	tempFile, err := os.CreateTemp(destDir, "wheelvend-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer func() {
		tempFile.Close()
		os.Remove(tempPath)
	}()

	var dest io.Writer = tempFile
	if d.showProgress {
		bar := progressbar.NewOptions64(artifact.SizeBytes,
			progressbar.OptionSetDescription(fmt.Sprintf("downloading %s", artifact.Filename)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(100*time.Millisecond),
		)
		defer bar.Finish()
		dest = io.MultiWriter(tempFile, bar)
	}

	written, err := copyWithContext(ctx, dest, resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", artifact.Filename, err)
	}

	if artifact.SizeBytes > 0 && written != artifact.SizeBytes {
		return "", fmt.Errorf("size mismatch for %s: got %d bytes, index declares %d", artifact.Filename, written, artifact.SizeBytes)
	}

	if err := tempFile.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync download: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close download: %w", err)
	}

	finalPath := filepath.Join(destDir, artifact.Filename)
	if err := os.Remove(finalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to replace existing archive: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("failed to finalize download: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"filename": artifact.Filename,
		"bytes":    written,
	}).Info("Artifact download completed")
	return finalPath, nil
}

// copyWithContext copies src to dst, checking for cancellation before each
// read.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, 32*1024)
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
