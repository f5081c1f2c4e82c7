// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	ephemeris "github.com/litescript/ls-ephemeris"
	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/report"
	"github.com/litescript/ls-ephemeris/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewPositions ViewMode = iota
	ViewDetail
)

// TickMsg advances the clock while the UI follows real time.
type TickMsg time.Time

// Time step sizes cycled with +/-.
var steps = []struct {
	label string
	days  float64
}{
	{"1h", 1.0 / 24},
	{"1d", 1},
	{"1w", 7},
	{"1m", 30},
	{"1y", 365.25},
}

// Model is the root Bubble Tea model. It owns the ephemeris context;
// all computations happen on the update goroutine, which satisfies the
// context's single-threaded contract.
type Model struct {
	ctx    *ephemeris.Context
	bodies []ephemeris.Body

	viewMode ViewMode
	width    int
	height   int
	ready    bool

	jdUT     float64
	follow   bool
	stepIdx  int
	sidereal bool
	selected int

	rows []report.Row
}

// New creates the root UI model positioned at the current instant.
func New(ctx *ephemeris.Context, bodies []ephemeris.Body) Model {
	if len(bodies) == 0 {
		bodies = report.DefaultBodies
	}
	m := Model{
		ctx:     ctx,
		bodies:  bodies,
		jdUT:    astro.JulianDay(time.Now().UTC()),
		follow:  true,
		stepIdx: 1,
	}
	m.recompute()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "p":
			m.viewMode = ViewPositions
		case "2", "d":
			m.viewMode = ViewDetail
		case "tab":
			m.viewMode = (m.viewMode + 1) % 2

		case "left", "h":
			m.follow = false
			m.jdUT -= steps[m.stepIdx].days
			m.recompute()
		case "right", "l":
			m.follow = false
			m.jdUT += steps[m.stepIdx].days
			m.recompute()
		case "+", "=":
			if m.stepIdx < len(steps)-1 {
				m.stepIdx++
			}
		case "-":
			if m.stepIdx > 0 {
				m.stepIdx--
			}
		case "n":
			m.follow = true
			m.jdUT = astro.JulianDay(time.Now().UTC())
			m.recompute()

		case "s":
			m.sidereal = !m.sidereal
			m.recompute()

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.bodies)-1 {
				m.selected++
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		if m.follow {
			m.jdUT = astro.JulianDay(time.Time(msg).UTC())
			m.recompute()
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m *Model) recompute() {
	var flags ephemeris.Flag
	if m.sidereal {
		flags |= ephemeris.FlagSidereal
	}
	m.rows = report.GenerateRows(m.ctx, m.jdTT(), m.bodies, flags)
}

func (m Model) jdTT() float64 {
	return astro.UTToTT(m.jdUT)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewPositions:
		content = m.renderPositions()
	case ViewDetail:
		content = m.renderDetail()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	selStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D946EF")).Bold(true)
)

func (m Model) renderHeader() string {
	logo := []string{
		`  ██╗     ███████╗      ███████╗██████╗ ██╗  ██╗███████╗███╗   ███╗`,
		`  ██║     ██╔════╝      ██╔════╝██╔══██╗██║  ██║██╔════╝████╗ ████║`,
		`  ██║     ███████╗█████╗█████╗  ██████╔╝███████║█████╗  ██╔████╔██║`,
		`  ██║     ╚════██║╚════╝██╔══╝  ██╔═══╝ ██╔══██║██╔══╝  ██║╚██╔╝██║`,
		`  ███████╗███████║      ███████╗██║     ██║  ██║███████╗██║ ╚═╝ ██║`,
		`  ╚══════╝╚══════╝      ╚══════╝╚═╝     ╚═╝  ╚═╝╚══════╝╚═╝     ╚═╝`,
	}

	var b strings.Builder
	b.WriteString("\n")
	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render("  Solar System Ephemeris · Apparent Positions"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("  (c) 2026 litescript.net | v%s", version.Version)))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	return b.String()
}

// gradientColor returns a hex color for a position in the logo
// gradient: blue through purple to pink, fading toward the bottom.
func gradientColor(col, row, width, height int) string {
	x := float64(col) / float64(width)
	y := float64(row) / float64(height)

	var r, g, b float64
	if x < 0.5 {
		t := x / 0.5
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else {
		t := (x - 0.5) / 0.5
		r = 139 + t*(236-139)
		g = 92 + t*(72-92)
		b = 246 + t*(153-246)
	}

	fade := 1.0 - y*0.5
	return fmt.Sprintf("#%02X%02X%02X", clamp8(r*fade), clamp8(g*fade), clamp8(b*fade))
}

func clamp8(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Positions", "[2] Detail"}
	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, accentStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderPositions() string {
	var b strings.Builder

	header := fmt.Sprintf("  %-14s %-16s %-12s %12s %10s %-6s",
		"Body", "Longitude", "Latitude", "Distance AU", "°/day", "Source")
	b.WriteString(dimStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  " + strings.Repeat("─", 74)))
	b.WriteString("\n")

	for i, r := range m.rows {
		var line string
		if r.Err != nil {
			line = fmt.Sprintf("  %-14s %s", r.Body, errorStyle.Render(r.Err.Error()))
		} else {
			line = fmt.Sprintf("  %-14s %-16s %-12s %12.8f %+10.5f %-6s",
				r.Body,
				report.FormatZodiac(r.Longitude),
				report.FormatDMS(r.Latitude),
				r.Distance,
				r.Speed,
				tierBadge(r.Tier))
		}
		if i == m.selected {
			line = selStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.sidereal {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ayanamsa: %.6f°", m.ctx.Ayanamsa(m.jdTT()))))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderDetail() string {
	if m.selected >= len(m.rows) {
		return "  no selection"
	}
	row := m.rows[m.selected]

	var flags ephemeris.Flag
	if m.sidereal {
		flags |= ephemeris.FlagSidereal
	}
	res, err := m.ctx.ComputePosition(m.jdTT(), row.Body, flags|ephemeris.FlagSpeed)
	if err != nil {
		return "  " + errorStyle.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(accentStyle.Render(fmt.Sprintf("  %s", row.Body)))
	b.WriteString(dimStyle.Render(fmt.Sprintf("   source: %s", tierBadge(res.Tier))))
	b.WriteString("\n\n")

	p := res.All
	rad := 180 / math.Pi
	fmt.Fprintf(&b, "  %-22s λ %12.6f°  β %+11.6f°  r %12.8f AU\n",
		"ecliptic polar", p.EclipticPolar[0]*rad, p.EclipticPolar[1]*rad, p.EclipticPolar[2])
	fmt.Fprintf(&b, "  %-22s α %12.6f°  δ %+11.6f°  r %12.8f AU\n",
		"equatorial polar", p.EquatorialPolar[0]*rad, p.EquatorialPolar[1]*rad, p.EquatorialPolar[2])
	fmt.Fprintf(&b, "  %-22s x %+12.8f  y %+12.8f  z %+12.8f\n",
		"ecliptic cartesian", p.EclipticXYZ[0], p.EclipticXYZ[1], p.EclipticXYZ[2])
	fmt.Fprintf(&b, "  %-22s x %+12.8f  y %+12.8f  z %+12.8f\n",
		"equatorial cartesian", p.EquatorialXYZ[0], p.EquatorialXYZ[1], p.EquatorialXYZ[2])
	fmt.Fprintf(&b, "\n  %-22s λ̇ %+11.6f°/d β̇ %+11.6f°/d ṙ %+12.8f AU/d\n",
		"rates", p.EclipticPolar[3]*rad, p.EclipticPolar[4]*rad, p.EclipticPolar[5])

	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range res.Warnings {
			b.WriteString(dimStyle.Render("  ⚠ " + w))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func tierBadge(t ephemeris.Tier) string {
	switch t {
	case ephemeris.TierPrimary:
		return "file"
	case ephemeris.TierSecondary:
		return "file2"
	case ephemeris.TierAnalytic:
		return "model"
	default:
		return "-"
	}
}

func (m Model) renderFooter() string {
	mode := "tropical"
	if m.sidereal {
		mode = "sidereal"
	}
	clock := "paused"
	if m.follow {
		clock = "live"
	}
	status := accentStyle.Render(fmt.Sprintf("JD %.5f UT", m.jdUT)) +
		dimStyle.Render(fmt.Sprintf("  %s · %s · step %s", mode, clock, steps[m.stepIdx].label))
	help := dimStyle.Render("←/→: time | +/-: step | n: now | s: sidereal | ↑↓: select | tab: view | q: quit")
	return "  " + status + "\n  " + help
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
