package portable

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pypack-labs/pypack/internal/platform"
)

// Install runs the download sequence for d: fetch the archive into workDir,
// create targetDir, unpack the archive into it, delete the archive and
// delete the ._pth marker so pip can be used. It stops at the first failing
// step; callers re-probe for the interpreter afterwards either way.
func (f *Fetcher) Install(ctx context.Context, d Distribution, workDir, targetDir string) error {
	archivePath := filepath.Join(workDir, d.ArchiveName())
	if err := f.Download(ctx, f.SourceURL(d), archivePath); err != nil {
		return err
	}
	defer os.Remove(archivePath)

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", targetDir, err)
	}
	if err := Extract(archivePath, targetDir); err != nil {
		return err
	}
	if err := os.Remove(archivePath); err != nil {
		return fmt.Errorf("removing archive: %w", err)
	}

	marker, err := d.MarkerName()
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(targetDir, marker)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", marker, err)
	}
	return nil
}

// Download fetches url into destPath.
func (f *Fetcher) Download(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating download request: %w", err)
	}
	req.Header.Set("User-Agent", "pypack")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer out.Close()

	total := resp.ContentLength
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if f.progress != nil && total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(f.progress, "\rDownloading Python... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if f.progress != nil && total > 0 {
		fmt.Fprintln(f.progress)
	}

	return out.Close()
}

// Extract unpacks every entry of the zip archive into destDir.
func Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", destDir, err)
	}

	for _, zf := range r.File {
		if err := extractEntry(zf, root); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(zf *zip.File, root string) error {
	destPath := filepath.Join(root, filepath.FromSlash(zf.Name))
	if destPath != root && !strings.HasPrefix(destPath, root+string(os.PathSeparator)) {
		return fmt.Errorf("zip entry %q escapes the target directory", zf.Name)
	}

	if zf.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", destPath, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(destPath), err)
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("opening zip entry %s: %w", zf.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("extracting %s: %w", zf.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destPath, err)
	}

	if perm := zf.Mode().Perm(); perm != 0 {
		return platform.Chmod(destPath, perm)
	}
	return nil
}
