package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/token-launchpad/internal/logger"
	"github.com/rovshanmuradov/token-launchpad/internal/ui/style"
)

// CompactLogViewer shows the tail of the LogBuffer under the launch form.
type CompactLogViewer struct {
	buffer    *logger.LogBuffer
	viewport  viewport.Model
	showDebug bool
	visible   bool
	title     string

	container lipgloss.Style
	titleSt   lipgloss.Style
	timestamp lipgloss.Style
	error     lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	debug     lipgloss.Style
}

// NewCompactLogViewer creates a new compact log viewer
func NewCompactLogViewer(logBuffer *logger.LogBuffer) *CompactLogViewer {
	palette := style.DefaultPalette()

	return &CompactLogViewer{
		buffer:  logBuffer,
		visible: true,
		title:   "Recent Logs",

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1).
			MarginTop(1),
		titleSt:   lipgloss.NewStyle().Foreground(palette.Info).Bold(true),
		timestamp: lipgloss.NewStyle().Foreground(palette.TextMuted),
		error:     lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
		warning:   lipgloss.NewStyle().Foreground(palette.Warning).Bold(true),
		info:      lipgloss.NewStyle().Foreground(palette.Text),
		debug:     lipgloss.NewStyle().Foreground(palette.TextMuted),

		viewport: viewport.New(60, 5),
	}
}

// SetSize sets the component dimensions
func (clv *CompactLogViewer) SetSize(width, height int) {
	clv.container = clv.container.Width(width - 4)

	viewportHeight := height - 3 // Border + title
	if viewportHeight < 2 {
		viewportHeight = 2
	}
	clv.viewport.Width = width - 6
	clv.viewport.Height = viewportHeight
}

func (clv *CompactLogViewer) ToggleVisible() { clv.visible = !clv.visible }

func (clv *CompactLogViewer) IsVisible() bool { return clv.visible }

// SetShowDebug включает отладочные записи.
func (clv *CompactLogViewer) SetShowDebug(show bool) { clv.showDebug = show }

// View renders the compact log viewer
func (clv *CompactLogViewer) View() string {
	if !clv.visible {
		return ""
	}
	clv.refresh()

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		clv.titleSt.Render(clv.title+" [ctrl+l] toggle"),
		clv.viewport.View(),
	)
	return clv.container.Render(content)
}

func (clv *CompactLogViewer) refresh() {
	if clv.buffer == nil {
		clv.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range clv.buffer.GetRecentLogs(50) {
		if strings.EqualFold(entry.Level, "debug") && !clv.showDebug {
			continue
		}
		lines = append(lines, clv.formatLogEntry(entry))
	}
	if len(lines) == 0 {
		clv.viewport.SetContent("No logs yet")
		return
	}
	clv.viewport.SetContent(strings.Join(lines, "\n"))
	clv.viewport.GotoBottom()
}

func (clv *CompactLogViewer) formatLogEntry(entry logger.LogEntry) string {
	ts := clv.timestamp.Render(entry.Timestamp.Format("15:04:05"))

	var msg string
	switch strings.ToLower(entry.Level) {
	case "error", "fatal":
		msg = clv.error.Render(entry.Message)
	case "warning", "warn":
		msg = clv.warning.Render(entry.Message)
	case "debug":
		msg = clv.debug.Render(entry.Message)
	default:
		msg = clv.info.Render(entry.Message)
	}
	if mint, ok := entry.Fields["mint"].(string); ok && mint != "" {
		msg += clv.timestamp.Render(" mint=" + mint)
	}
	return fmt.Sprintf("%s %s", ts, msg)
}
