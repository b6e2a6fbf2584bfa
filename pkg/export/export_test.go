package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
)

func TestPNGPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/data/parts/bracket.dxf", "/data/parts/bracket.png"},
		{"bracket.yaml", "bracket.png"},
		{"/data/v1.2/plate", "/data/v1.2/plate.png"},
		{"/data/plate.tar.dxf", "/data/plate.tar.png"},
	}
	for _, tt := range tests {
		if got := PNGPath(tt.in); got != tt.want {
			t.Errorf("PNGPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathYAML(t *testing.T) {
	if got, want := Path("/data/bracket.yaml", "yaml"), "/data/bracket.layout.yaml"; got != want {
		t.Errorf("Path = %q, want %q", got, want)
	}
}

func TestWritePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	got, err := WritePNG(path, []byte("png"))
	if err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Errorf("dir = %q, want %q", got, want)
	}
	if data, _ := os.ReadFile(path); string(data) != "png" {
		t.Errorf("content = %q", data)
	}

	_, err = WritePNG(filepath.Join(dir, "missing", "out.png"), nil)
	if !cerrors.Is(err, cerrors.ErrCodeExportFailed) {
		t.Errorf("write into missing dir: err = %v, want EXPORT_FAILED", err)
	}
}

func TestExportRevealFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	var opened string
	e := &Exporter{
		Reveal: true,
		Open: func(dir string) error {
			opened = dir
			return errors.New("no file browser")
		},
		Logger: log.New(&logs),
	}

	src := filepath.Join(t.TempDir(), "bracket.dxf")
	path, dir, err := e.Export(src, []byte("png"))
	if err != nil {
		t.Fatalf("Export should succeed when reveal fails: %v", err)
	}
	if path != PNGPath(src) {
		t.Errorf("path = %q", path)
	}
	if opened != dir {
		t.Errorf("opened %q, want %q", opened, dir)
	}
	if !bytes.Contains(logs.Bytes(), []byte("no file browser")) {
		t.Errorf("reveal failure not logged: %q", logs.String())
	}
}

func TestExportWithoutReveal(t *testing.T) {
	e := &Exporter{Open: func(string) error {
		t.Error("Open called with Reveal off")
		return nil
	}}
	if _, _, err := e.Export(filepath.Join(t.TempDir(), "a.dxf"), []byte("x")); err != nil {
		t.Fatal(err)
	}
}
