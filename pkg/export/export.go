// Package export writes rendered scenes next to their source drawing.
//
// Writing is the only part that can fail. Opening the output folder in the
// platform's file browser afterwards is best-effort: failures are logged and
// the export still counts as successful.
package export

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
)

// PNGPath returns the PNG path for source: same directory, same base name.
func PNGPath(source string) string {
	return Path(source, "png")
}

// Path returns the output path for source in format. PNGs replace the
// extension; other formats get a ".layout" infix so that exporting a YAML
// drawing as YAML never overwrites it.
func Path(source, format string) string {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	if format == "png" {
		return base + ".png"
	}
	return base + ".layout." + format
}

// WritePNG writes data to path and returns the directory it was written to.
func WritePNG(path string, data []byte) (string, error) {
	return Write(path, data)
}

// Write writes data to path and returns the directory it was written to.
func Write(path string, data []byte) (string, error) {
	if path == "" {
		return "", cerrors.New(cerrors.ErrCodeInvalidPath, "empty output path")
	}
	dir := filepath.Dir(path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", cerrors.Wrap(cerrors.ErrCodeExportFailed, err, "write %s", path)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, nil
	}
	return abs, nil
}

// Opener shows a directory to the user.
type Opener func(dir string) error

// OpenFolder opens dir in the platform's file browser without waiting for
// it to exit.
func OpenFolder(dir string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Exporter writes PNGs and optionally reveals the output folder.
type Exporter struct {
	// Reveal opens the output folder after a successful write.
	Reveal bool

	// Open is used to reveal the folder. Nil means OpenFolder.
	Open Opener

	Logger *log.Logger
}

// Export writes PNG data next to source and returns the output path and its
// directory.
func (e *Exporter) Export(source string, data []byte) (path, dir string, err error) {
	return e.ExportTo(PNGPath(source), data)
}

// ExportTo writes data to path.
func (e *Exporter) ExportTo(path string, data []byte) (string, string, error) {
	dir, err := Write(path, data)
	if err != nil {
		return "", "", err
	}
	e.logger().Info("exported", "path", path, "bytes", len(data))

	if e.Reveal {
		e.reveal(dir)
	}
	return path, dir, nil
}

func (e *Exporter) reveal(dir string) {
	open := e.Open
	if open == nil {
		open = OpenFolder
	}
	if err := open(dir); err != nil {
		e.logger().Warn("could not open output folder", "dir", dir, "err", err)
	}
}

func (e *Exporter) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
