package deck

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Limits on archive contents. A PPTX is a ZIP package, and these caps keep a
// hostile or corrupted file from exhausting memory during extraction.
const (
	maxZipEntrySize = 50 << 20  // 50 MB per part
	maxZipTotalSize = 200 << 20 // 200 MB per package
	maxZipEntries   = 10000
)

// archive holds every part of an open package as raw bytes, preserving the
// original entry order for serialization.
type archive struct {
	parts map[string][]byte
	order []string
}

func readArchive(zipPath string) (*archive, error) {
	f, err := os.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > maxZipTotalSize {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed (%d bytes)", info.Size(), int64(maxZipTotalSize))
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	if len(zr.File) > maxZipEntries {
		return nil, fmt.Errorf("zip archive contains too many entries (%d > %d)", len(zr.File), maxZipEntries)
	}

	a := &archive{parts: make(map[string][]byte, len(zr.File))}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		if zf.UncompressedSize64 > maxZipEntrySize {
			return nil, fmt.Errorf("part %s exceeds maximum allowed size (%d bytes)", zf.Name, int64(maxZipEntrySize))
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in zip: %w", zf.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, int64(maxZipEntrySize)+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s from zip: %w", zf.Name, err)
		}
		if len(data) > maxZipEntrySize {
			return nil, fmt.Errorf("part %s actual size exceeds maximum allowed size", zf.Name)
		}
		a.parts[zf.Name] = data
		a.order = append(a.order, zf.Name)
	}
	return a, nil
}

func (a *archive) part(name string) ([]byte, bool) {
	data, ok := a.parts[name]
	return data, ok
}

// setPart replaces or adds a part. New parts are appended to the entry order.
func (a *archive) setPart(name string, data []byte) {
	if _, exists := a.parts[name]; !exists {
		a.order = append(a.order, name)
	}
	a.parts[name] = data
}

// save serializes the archive to a file, creating the destination directory
// first. On a write failure the partial file is removed.
func (a *archive) save(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	writeErr := a.writeTo(f)
	closeErr := f.Close()

	if writeErr != nil {
		os.Remove(path)
		return writeErr
	}
	return closeErr
}

func (a *archive) writeTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, name := range a.order {
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("failed to create zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(a.parts[name]); err != nil {
			return fmt.Errorf("failed to write zip entry %s: %w", name, err)
		}
	}
	return zw.Close()
}
