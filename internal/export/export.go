// Package export bundles a snapshot directory into a single portable
// archive (tar + zstd) and unpacks such archives, so snapshots can be
// shipped between machines or attached to reviews.
package export

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"archscope/internal/errors"
)

// ArchiveExtension is the suffix of exported snapshot archives.
const ArchiveExtension = ".tar.zst"

// Archive packs every file under snapshotDir into a zstd-compressed
// tar at outPath. Entries are written in sorted path order so the same
// snapshot always produces the same archive.
func Archive(snapshotDir, outPath string) error {
	info, err := os.Stat(snapshotDir)
	if err != nil || !info.IsDir() {
		return errors.New(errors.SnapshotMissing,
			fmt.Sprintf("snapshot directory %s not found", snapshotDir), err)
	}

	var files []string
	err = filepath.WalkDir(snapshotDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)

	for _, file := range files {
		rel, err := filepath.Rel(snapshotDir, file)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name: filepath.ToSlash(rel),
			Mode: 0o644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

// Unarchive unpacks an archive produced by Archive into destDir.
// Entries escaping destDir are rejected.
func Unarchive(archivePath, destDir string) error {
	in, err := os.Open(archivePath)
	if err != nil {
		return errors.New(errors.SnapshotMissing,
			fmt.Sprintf("archive %s not found", archivePath), err)
	}
	defer in.Close()

	zr, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to open zstd stream: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		name := filepath.FromSlash(hdr.Name)
		if strings.Contains(hdr.Name, "..") || filepath.IsAbs(name) {
			return fmt.Errorf("archive entry %q escapes destination", hdr.Name)
		}
		target := filepath.Join(destDir, name)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
}
