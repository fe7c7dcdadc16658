package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/logic"
)

const (
	headerHeight = 3 // title + stats + blank
	legendHeight = 2
	borderSize   = 2

	flexSet = "flex"
	magSet  = "magnitude"

	// Chart ranges cover the rep thresholds with headroom and a brisk arm swing.
	flexMax = 300
	magMax  = 0.5
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	flexStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	magStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("201"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type recordMsg diag.Record

type streamEndMsg struct{ err error }

func waitForRecord(f *feed) tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-f.records
		if !ok {
			return streamEndMsg{err: <-f.err}
		}
		return recordMsg(rec)
	}
}

type monitorModel struct {
	feed   *feed
	source string
	flex   *streamlinechart.Model
	mag    *streamlinechart.Model
	width  int
	height int

	last      diag.Record
	received  int
	successes int
	fails     int

	ended    bool
	err      error
	quitting bool
}

func newMonitorModel(f *feed, source string) monitorModel {
	flex := streamlinechart.New(80, 10, streamlinechart.WithYRange(0, flexMax))
	flex.SetDataSetStyles(flexSet, runes.ThinLineStyle, flexStyle)

	mag := streamlinechart.New(80, 6, streamlinechart.WithYRange(0, magMax))
	mag.SetDataSetStyles(magSet, runes.ThinLineStyle, magStyle)

	return monitorModel{
		feed:   f,
		source: source,
		flex:   &flex,
		mag:    &mag,
	}
}

// chartSizes splits the space below the header between the two charts,
// two thirds to flex.
func (m *monitorModel) chartSizes() (width, flexH, magH int) {
	if m.width == 0 || m.height == 0 {
		return 80, 10, 6
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	avail := m.height - headerHeight - legendHeight - 2*borderSize
	if avail < 12 {
		avail = 12
	}
	flexH = avail * 2 / 3
	magH = avail - flexH
	return width, flexH, magH
}

func (m *monitorModel) resizeCharts() {
	w, fh, mh := m.chartSizes()
	m.flex.Resize(w, fh)
	m.mag.Resize(w, mh)
}

func (m monitorModel) Init() tea.Cmd {
	return waitForRecord(m.feed)
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeCharts()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case recordMsg:
		rec := diag.Record(msg)
		m.observe(rec)
		m.flex.PushDataSet(flexSet, float64(rec.Flex))
		m.mag.PushDataSet(magSet, float64(rec.Magnitude))
		m.flex.DrawAll()
		m.mag.DrawAll()
		return m, waitForRecord(m.feed)

	case streamEndMsg:
		m.ended = true
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m *monitorModel) observe(rec diag.Record) {
	m.last = rec
	m.received++
	if success, ok := logic.OutcomeForTone(rec.BeepHz); ok {
		if success {
			m.successes++
		} else {
			m.fails++
		}
	}
}

func (m monitorModel) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Rep Monitor"))
	sb.WriteString(statusStyle.Render(" - " + m.source))
	sb.WriteString("\n")
	sb.WriteString(m.statsLine())
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.flex.View()))
	sb.WriteString("\n")
	sb.WriteString(chartStyle.Render(m.mag.View()))
	sb.WriteString("\n")

	sb.WriteString(renderLegend())
	sb.WriteString("  ")
	switch {
	case m.err != nil:
		sb.WriteString(errStyle.Render("stream error: " + m.err.Error()))
	case m.ended:
		sb.WriteString(statusStyle.Render("stream ended, press 'q' to quit"))
	default:
		sb.WriteString(statusStyle.Render("press 'q' to quit"))
	}
	sb.WriteString("\n")

	return sb.String()
}

func (m monitorModel) statsLine() string {
	if m.received == 0 {
		return statusStyle.Render("waiting for data...")
	}
	r := m.last
	line := fmt.Sprintf("reps %d  ", r.RepCount) +
		successStyle.Render(fmt.Sprintf("ok %d", m.successes)) + "  " +
		failStyle.Render(fmt.Sprintf("short %d", m.fails)) +
		fmt.Sprintf("  flex %.1f  %s  mag %.4f", r.Flex, r.Direction, r.Magnitude)
	if skipped := m.feed.skipped.Load(); skipped > 0 {
		line += statusStyle.Render(fmt.Sprintf("  skipped %d", skipped))
	}
	return line
}

func renderLegend() string {
	return flexStyle.Bold(true).Render("━━") + " " + flexSet + "  " +
		magStyle.Bold(true).Render("━━") + " " + magSet
}
