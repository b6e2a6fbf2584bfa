package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cadlayout/pkg/engine"
	"github.com/matzehuels/cadlayout/pkg/loader"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// drawingExts are the extensions the picker lists.
var drawingExts = []string{".dxf", ".yaml", ".yml"}

// drawingFile is one row of the picker.
type drawingFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// listDrawings returns the drawings directly inside dir, newest first.
func listDrawings(dir string) ([]drawingFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []drawingFile
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(drawingExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, drawingFile{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(files, func(a, b drawingFile) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}

// =============================================================================
// FileListModel - Interactive drawing selection
// =============================================================================

// FileListModel is the bubbletea model for interactive drawing selection.
type FileListModel struct {
	Files    []drawingFile
	Cursor   int
	Selected *drawingFile
	Height   int
	Offset   int
}

// NewFileListModel creates a new file list model.
func NewFileListModel(files []drawingFile) FileListModel {
	return FileListModel{Files: files, Height: 15}
}

func (m FileListModel) Init() tea.Cmd {
	return nil
}

func (m FileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Files)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Files) == 0 {
				return m, nil
			}
			f := m.Files[m.Cursor]
			m.Selected = &f
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m FileListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Drawing"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Files))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Files[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		format := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
		rows = append(rows, []string{cursor, filepath.Base(f.Path), format, formatSize(f.Size), formatRelativeTime(f.ModTime)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Drawing", "Format", "Size", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(m.Files) > 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files))))
	}

	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// pickCommand creates the interactive picker command.
func (c *CLI) pickCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "pick [dir]",
		Short: "Choose a drawing interactively and render it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			files, err := listDrawings(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				printInfo("No drawings in %s", dir)
				printNextStep("Supported formats", strings.Join(drawingExts, " "))
				return nil
			}

			final, err := tea.NewProgram(NewFileListModel(files)).Run()
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			picked := final.(FileListModel).Selected
			if picked == nil {
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd, &cfg)

			runner, err := c.newRunner(cmd.Context(), cfg, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering "+filepath.Base(picked.Path)+"...")
			sp.Start()
			c.logPicked(picked.Path)
			err = c.render(cmd.Context(), runner, cfg, loader.FileSource(picked.Path), flags, cmd.OutOrStdout())
			sp.Stop()
			return err
		},
	}

	cmd.Flags().BoolVar(&flags.reveal, "reveal", false, "open the output folder after exporting")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "re-render even if a cached result exists")

	return cmd
}

// logPicked logs the detected content format of path.
func (c *CLI) logPicked(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := f.Read(head)
	c.Logger.Debug("picked drawing", "path", path, "format", engine.Detect(head[:n]))
}

// =============================================================================
// Helpers
// =============================================================================

func formatSize(n int64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	}
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
