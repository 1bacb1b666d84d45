// Package render invokes the external mermaid-cli (mmdc) backend to
// turn diagram markup into image files. Markup generation never
// depends on this package; rendering is a strictly downstream step.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"archscope/internal/config"
	"archscope/internal/errors"
	"archscope/internal/logging"
	"archscope/internal/mermaid"
)

// supported output formats for mmdc.
var supportedFormats = map[string]bool{
	"svg": true,
	"png": true,
	"pdf": true,
}

// Backend wraps one configured mmdc installation.
type Backend struct {
	cfg    config.RenderConfig
	theme  string
	logger *logging.Logger
}

// NewBackend creates a rendering backend from configuration.
func NewBackend(cfg config.RenderConfig, theme string, logger *logging.Logger) *Backend {
	return &Backend{cfg: cfg, theme: theme, logger: logger}
}

// Check verifies the backend binary is installed and reachable.
func (b *Backend) Check() error {
	if _, err := exec.LookPath(b.cfg.Command); err != nil {
		return errors.New(errors.RenderBackendMissing,
			fmt.Sprintf("%s not found on PATH", b.cfg.Command), err)
	}
	return nil
}

// Render writes markup to a temporary file, runs the backend on it,
// and produces outputPath in the requested format. The invocation gets
// the configured timeout; a missing binary reports
// RENDER_BACKEND_MISSING with an install hint rather than a raw exec
// error.
func (b *Backend) Render(ctx context.Context, markup, outputPath, format string) error {
	if !supportedFormats[format] {
		return errors.New(errors.RenderMarkup,
			fmt.Sprintf("unsupported output format %q (expected svg, png, or pdf)", format), nil)
	}
	if err := b.Check(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "archscope-*.mmd")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	themed := mermaid.WithThemeInit(markup, b.theme)
	if _, err := tmp.WriteString(themed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	timeout := time.Duration(b.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-i", tmp.Name(), "-o", outputPath}
	b.logger.Debug("invoking render backend", map[string]interface{}{
		"command": b.cfg.Command,
		"output":  outputPath,
		"format":  format,
	})

	cmd := exec.CommandContext(ctx, b.cfg.Command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.New(errors.RenderMarkup,
				fmt.Sprintf("%s timed out after %s", b.cfg.Command, timeout), ctx.Err())
		}
		return errors.New(errors.RenderMarkup,
			fmt.Sprintf("%s failed: %s", b.cfg.Command, strings.TrimSpace(string(out))), err)
	}
	return nil
}

// OutputPath derives the image path for a markup file: the visuals
// directory, the markup file's stem, and the format as extension.
func OutputPath(visualsDir, markupPath, format string) string {
	stem := strings.TrimSuffix(filepath.Base(markupPath), filepath.Ext(markupPath))
	return filepath.Join(visualsDir, stem+"."+format)
}
