// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Gary Servin

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/garyservin/linka-firmware/pkg/pms"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Live terminal dashboard of sensor readings",
	Long: `Full-screen dashboard showing the latest reading broken down by
particle size, decode statistics, and a scrolling event log. Press 'q'
to quit.`,
	RunE: runTui,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// Messages
type tickMsg time.Time
type readingMsg struct {
	reading          *pms.Reading
	decodeErr        error
	validationErrors []pms.ValidationError
}
type syncMsg struct {
	invalidBytes int
}
type connLostMsg struct {
	err error
}

// TUI model
type tuiModel struct {
	connInfo      string
	stats         *pms.Statistics
	spin          spinner.Model
	tbl           table.Model
	eventLog      []eventLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	lastReading   *pms.Reading
	width         int
	height        int
	quitting      bool
	connErr       error
}

func initialTuiModel(connInfo string) tuiModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	columns := []table.Column{
		{Title: "Size (um)", Width: 10},
		{Title: "PM std (ug/m3)", Width: 15},
		{Title: "PM atm (ug/m3)", Width: 15},
		{Title: "Count (/0.1L)", Width: 14},
	}
	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(emptyBinRows()),
		table.WithHeight(7),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).Foreground(lipgloss.Color("12")).
		BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("240"))
	st.Selected = lipgloss.NewStyle()
	tbl.SetStyles(st)

	return tuiModel{
		connInfo:      connInfo,
		stats:         pms.NewStatistics(),
		spin:          sp,
		tbl:           tbl,
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

func emptyBinRows() []table.Row {
	sizes := []string{"0.3", "0.5", "1.0", "2.5", "5.0", "10"}
	rows := make([]table.Row, len(sizes))
	for i, sz := range sizes {
		rows[i] = table.Row{sz, "-", "-", "-"}
	}
	return rows
}

// binRows lays the reading out per particle size. Mass concentrations
// exist only for 1.0/2.5/10; counts exist for all six bins when the
// sensor reports the 13-word variant.
func binRows(r *pms.Reading) []table.Row {
	u := func(v uint16) string { return fmt.Sprintf("%d", v) }
	count := func(v uint16) string {
		if !r.HasCounts() {
			return "-"
		}
		return fmt.Sprintf("%d", v)
	}
	return []table.Row{
		{"0.3", "-", "-", count(r.PPD0_3)},
		{"0.5", "-", "-", count(r.PPD0_5)},
		{"1.0", u(r.PM1_0SP), u(r.PM1_0AE), count(r.PPD1_0)},
		{"2.5", u(r.PM2_5SP), u(r.PM2_5AE), count(r.PPD2_5)},
		{"5.0", "-", "-", count(r.PPD5_0)},
		{"10", u(r.PM10SP), u(r.PM10AE), count(r.PPD10)},
	}
}

func (m tuiModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		tuiTickCmd(),
		tea.EnterAltScreen,
	)
}

func tuiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			m.stats.Reset()
			m.addLogEntry("Statistics reset", false)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tickMsg:
		m.stats.CalculateRates()
		return m, tuiTickCmd()

	case syncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d invalid bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case connLostMsg:
		m.connErr = msg.err
		m.addLogEntry(fmt.Sprintf("CONNECTION LOST: %v", msg.err), true)

	case readingMsg:
		if msg.decodeErr != nil {
			if m.synchronized {
				m.stats.Update(nil, msg.decodeErr, nil)
				m.addLogEntry(fmt.Sprintf("DECODE ERROR: %v", msg.decodeErr), true)
			}
		} else if msg.reading != nil {
			m.stats.Update(msg.reading, nil, msg.validationErrors)
			m.lastReading = msg.reading
			m.tbl.SetRows(binRows(msg.reading))

			for _, verr := range msg.validationErrors {
				m.addLogEntry(verr.Message, verr.Type != pms.AnomalyZeroCounts)
			}
		}
	}

	return m, nil
}

func (m *tuiModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	var s strings.Builder
	s.WriteString(titleStyle.Render("LINKA - AIR QUALITY MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Press 'q' to quit, 'r' to reset stats", m.connInfo)))
	s.WriteString("\n\n")

	if m.connErr != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("CONNECTION LOST: %v", m.connErr)))
		s.WriteString("\n\n")
	} else if !m.synchronized {
		s.WriteString(m.spin.View())
		s.WriteString(warningStyle.Render(" Waiting for frame synchronization..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(valueStyle.Render("Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d invalid bytes)", m.invalidBytes)))
		}
		s.WriteString("\n\n")
	}

	// Latest reading table
	if m.lastReading != nil {
		s.WriteString(labelStyle.Render("Latest Reading:"))
		s.WriteString(headerStyle.Render(fmt.Sprintf("  %s", m.lastReading.Timestamp.Format("15:04:05.000"))))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(m.tbl.View()))
		s.WriteString("\n\n")
	}

	// Statistics
	m.stats.CalculateRates()
	var validPercent float64
	if m.stats.TotalFrames > 0 {
		validPercent = float64(m.stats.ValidFrames) * 100.0 / float64(m.stats.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", m.stats.ValidFrames, validPercent)),
	))
	if m.stats.ChecksumErrors > 0 || m.stats.SyncErrors > 0 || m.stats.LengthErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Checksum:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.ChecksumErrors)),
			labelStyle.Render("Sync:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.SyncErrors)),
			labelStyle.Render("Length:"), errorStyle.Render(fmt.Sprintf("%d", m.stats.LengthErrors)),
		))
	}
	if m.stats.ZeroCountReadings > 0 || m.stats.AnomalousReadings > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			labelStyle.Render("Zero-Count:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.ZeroCountReadings)),
			labelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", m.stats.AnomalousReadings)),
		))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", m.stats.FrameRate)),
		labelStyle.Render("Error Rate:"), func() string {
			if m.stats.ErrorRate > 0 {
				return errorStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
			}
			return valueStyle.Render(fmt.Sprintf("%.1f err/s", m.stats.ErrorRate))
		}(),
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 24
	if logHeight < 3 {
		logHeight = 3
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("x "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("- "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}

func runTui(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	m := initialTuiModel(connInfo)
	p := tea.NewProgram(m)

	// Reader goroutine feeds the TUI via p.Send
	go func() {
		decoder := pms.NewDecoder()
		synchronized := false
		invalidBytesBeforeSync := 0
		buf := make([]byte, 128)

		for {
			n, err := conn.Read(buf)
			if err != nil && err != io.EOF {
				p.Send(connLostMsg{err: err})
				return
			}
			if n == 0 {
				time.Sleep(10 * time.Millisecond)
				continue
			}

			for i := 0; i < n; i++ {
				r, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					if !synchronized {
						invalidBytesBeforeSync++
					} else {
						p.Send(readingMsg{decodeErr: decodeErr})
					}
					continue
				}
				if r != nil {
					if !synchronized {
						synchronized = true
						p.Send(syncMsg{invalidBytes: invalidBytesBeforeSync})
					}
					p.Send(readingMsg{
						reading:          r,
						validationErrors: pms.ValidateReading(r),
					})
				}
			}
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}
