package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	ephemeris "github.com/litescript/ls-ephemeris"
)

func TestGradientColorFormat(t *testing.T) {
	for _, pos := range [][4]int{{0, 0, 70, 6}, {69, 5, 70, 6}, {35, 3, 70, 6}} {
		c := gradientColor(pos[0], pos[1], pos[2], pos[3])
		if len(c) != 7 || !strings.HasPrefix(c, "#") {
			t.Errorf("gradientColor(%v) = %q, want #RRGGBB", pos, c)
		}
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0}, {0, 0}, {128.7, 128}, {255, 255}, {300, 255},
	}
	for _, tt := range tests {
		if got := clamp8(tt.in); got != tt.want {
			t.Errorf("clamp8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTimeStepping(t *testing.T) {
	m := New(ephemeris.New(), nil)
	m.ready = true
	start := m.jdUT

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	m = next.(Model)
	if m.follow {
		t.Error("stepping should leave follow mode")
	}
	if got := m.jdUT - start; got != steps[1].days {
		t.Errorf("step advanced %v days, want %v", got, steps[1].days)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m = next.(Model)
	if m.jdUT != start {
		t.Errorf("jd = %v after step back, want %v", m.jdUT, start)
	}
}

func TestSiderealToggleChangesLongitudes(t *testing.T) {
	m := New(ephemeris.New(), []ephemeris.Body{ephemeris.Sun})
	tropical := m.rows[0].Longitude

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Model)
	if !m.sidereal {
		t.Fatal("s should enable sidereal mode")
	}
	if m.rows[0].Longitude == tropical {
		t.Error("sidereal longitude equals tropical")
	}
}

func TestViewSwitching(t *testing.T) {
	m := New(ephemeris.New(), nil)
	m.ready = true

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	m = next.(Model)
	if m.viewMode != ViewDetail {
		t.Errorf("viewMode = %v, want detail", m.viewMode)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.viewMode != ViewPositions {
		t.Errorf("viewMode = %v, want positions after tab", m.viewMode)
	}
}

func TestPositionsViewRenders(t *testing.T) {
	m := New(ephemeris.New(), nil)
	m.ready = true
	m.width, m.height = 100, 40

	out := m.View()
	for _, want := range []string{"Sun", "Moon", "Positions", "tropical"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
