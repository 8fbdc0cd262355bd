// Package packaging writes a generated site to storage and bundles it into a zip archive.
package packaging

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/storage"
)

const (
	// ArchiveName is the download file name of every packaged site.
	ArchiveName = "portfolio_website.zip"
	// ArchiveContentType is the MIME type of the archive.
	ArchiveContentType = "application/zip"
)

// Package describes the stored output of one run.
type Package struct {
	RunID      string            `json:"run_id"`
	ArchiveKey string            `json:"archive_key"`
	Files      map[string]string `json:"files"`
	Archive    []byte            `json:"-"`
}

// Packager stores artifacts in an ObjectStore under a per-run prefix.
type Packager struct {
	Store storage.ObjectStore
}

// New returns a Packager writing to store.
func New(store storage.ObjectStore) *Packager {
	return &Packager{Store: store}
}

// ArtifactKey returns the storage key of a file belonging to runID.
func ArtifactKey(runID, name string) string {
	return path.Join(runID, name)
}

// Write stores the three artifacts and their archive for runID. Either all four
// objects are written or none are: on failure, objects already written for the
// run are deleted before the error is returned.
func (p *Packager) Write(ctx context.Context, runID string, s site.Site) (*Package, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run ID is required")
	}

	archive, err := BuildArchive(s)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	pkg := &Package{
		RunID:      runID,
		ArchiveKey: ArtifactKey(runID, ArchiveName),
		Files:      make(map[string]string, 3),
		Archive:    archive,
	}

	// A failed Put may still leave bytes behind, so the key is recorded before
	// the write is attempted.
	var written []string
	put := func(key, contentType string, r io.Reader) error {
		written = append(written, key)
		_, err := p.Store.Put(ctx, key, contentType, r)
		return err
	}

	for _, f := range s.Files() {
		key := ArtifactKey(runID, f.Name)
		if err := put(key, f.ContentType, strings.NewReader(f.Content)); err != nil {
			p.rollback(ctx, written)
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		pkg.Files[f.Name] = key
	}

	if err := put(pkg.ArchiveKey, ArchiveContentType, bytes.NewReader(archive)); err != nil {
		p.rollback(ctx, written)
		return nil, fmt.Errorf("write %s: %w", ArchiveName, err)
	}

	return pkg, nil
}

// rollback removes partially written objects. It uses a fresh context so a
// canceled request still cleans up after itself.
func (p *Packager) rollback(ctx context.Context, keys []string) {
	cleanupCtx := context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := p.Store.Delete(cleanupCtx, key); err != nil {
			log.Printf("[packaging] failed to remove %s during rollback: %v", key, err)
		}
	}
}

// BuildArchive zips the three artifacts in a fixed order. Entries carry no
// timestamps, so the same site always yields the same bytes.
func BuildArchive(s site.Site) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range s.Files() {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("create entry %s: %w", f.Name, err)
		}
		if _, err := io.WriteString(w, f.Content); err != nil {
			return nil, fmt.Errorf("write entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
