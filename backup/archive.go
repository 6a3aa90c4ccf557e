package backup

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"
)

// WriteDocument writes the document as pretty-printed JSON. The write goes
// through a temp file and a rename so a failed run never leaves a partial
// document at path.
func WriteDocument(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write backup document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close backup document: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move backup document into place: %w", err)
	}
	return nil
}

// Zip compresses the file at path into a single-entry path+".zip" and
// removes the uncompressed original. The original survives any failure.
func Zip(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	zipPath := path + ".zip"
	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", zipPath, err)
	}

	zw := zip.NewWriter(out)
	entry, err := zw.Create(filepath.Base(path))
	if err == nil {
		_, err = io.Copy(entry, src)
	}
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(zipPath)
		return "", fmt.Errorf("zip %s: %w", path, err)
	}

	// The intermediate goes away only once the archive exists.
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove %s after zip: %w", path, err)
	}
	return zipPath, nil
}

// XZ compresses the file at path into path+".xz" and removes the
// uncompressed original. The original survives any failure.
func XZ(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	xzPath := path + ".xz"
	out, err := os.Create(xzPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", xzPath, err)
	}

	xw, err := xz.NewWriter(out)
	if err == nil {
		_, err = io.Copy(xw, src)
	}
	if xw != nil {
		if cerr := xw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(xzPath)
		return "", fmt.Errorf("xz %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove %s after xz: %w", path, err)
	}
	return xzPath, nil
}

// MoveTo relocates the artifact into dir, keeping its base name. Falls
// back to copy+remove when a plain rename crosses filesystems.
func MoveTo(path, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(path))
	if err := os.Rename(path, dst); err == nil {
		return dst, nil
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copy %s to %s: %w", path, dst, err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove %s after move: %w", path, err)
	}
	return dst, nil
}

// Extract unpacks a zipped backup into dir.
func Extract(archive, dir string) error {
	if err := unzip.Extract(archive, dir); err != nil {
		return fmt.Errorf("extract %s: %w", archive, err)
	}
	return nil
}
