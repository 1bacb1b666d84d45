package extract

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"archscope/internal/config"
	"archscope/internal/errors"
	"archscope/internal/logging"
	"archscope/internal/paths"
	"archscope/internal/snapshot"
)

// SkippedFile records one file that could not be extracted and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report summarizes a tree extraction: what went in, what was skipped,
// and any qualified-name collisions found at seal time.
type Report struct {
	FilesScanned int                  `json:"filesScanned"`
	TypesFound   int                  `json:"typesFound"`
	Skipped      []SkippedFile        `json:"skipped,omitempty"`
	Duplicates   []snapshot.Duplicate `json:"duplicates,omitempty"`
}

// Walker runs the per-file extraction over a source tree with a
// bounded worker pool.
type Walker struct {
	cfg    *config.Config
	logger *logging.Logger
}

// NewWalker creates a walker using the given configuration.
func NewWalker(cfg *config.Config, logger *logging.Logger) *Walker {
	return &Walker{cfg: cfg, logger: logger}
}

type fileResult struct {
	path string
	unit *snapshot.SourceUnit
	err  error
}

// ExtractTree extracts every matching file under root into a sealed
// snapshot. Files that fail to scan are skipped and reported, never
// fatal. The registry is built and call sites resolved only after all
// workers have joined, so the result does not depend on walk or
// completion order.
func (w *Walker) ExtractTree(ctx context.Context, root, crateName string) (*snapshot.Snapshot, *Report, error) {
	files, err := w.collectFiles(root)
	if err != nil {
		return nil, nil, err
	}

	extractor := NewExtractor(crateName)
	jobs := make(chan string)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.EffectiveWorkers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for canonical := range jobs {
				unit, err := extractor.ExtractFile(ctx, filepath.Join(root, filepath.FromSlash(canonical)), canonical)
				results <- fileResult{path: canonical, unit: unit, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	snap := snapshot.New()
	report := &Report{}
	var fatal error
	for res := range results {
		if fatal != nil {
			continue
		}
		if res.err != nil {
			if !errors.HasCode(res.err, errors.ScanFailed) {
				// Drain remaining results so the workers can exit.
				fatal = res.err
				continue
			}
			w.logger.Warn("skipping file with malformed syntax", map[string]interface{}{
				"path":  res.path,
				"error": res.err.Error(),
			})
			report.Skipped = append(report.Skipped, SkippedFile{Path: res.path, Reason: res.err.Error()})
			continue
		}
		snap.Add(res.unit)
		report.FilesScanned++
	}
	if fatal != nil {
		return nil, nil, fatal
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(report.Skipped, func(i, j int) bool {
		return report.Skipped[i].Path < report.Skipped[j].Path
	})

	report.Duplicates = snap.Seal()
	for _, d := range report.Duplicates {
		w.logger.Warn("duplicate qualified name", map[string]interface{}{
			"qualified": d.Qualified,
			"files":     strings.Join(d.Files, ", "),
		})
	}

	ResolveCalls(crateName, snap)
	report.TypesFound = snap.TypeCount()
	return snap, report, nil
}

// collectFiles walks the tree and returns canonical paths of files
// matching the configured extensions, with ignored directories pruned.
func (w *Walker) collectFiles(root string) ([]string, error) {
	ignored := make(map[string]bool, len(w.cfg.Source.IgnoreDirs))
	for _, dir := range w.cfg.Source.IgnoreDirs {
		ignored[dir] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && (ignored[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.matchesExtension(name) {
			return nil
		}
		canonical, err := paths.CanonicalizePath(p, root)
		if err != nil {
			return err
		}
		files = append(files, canonical)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (w *Walker) matchesExtension(name string) bool {
	for _, ext := range w.cfg.Source.Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
