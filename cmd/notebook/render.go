package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/notebook/pkg/view"
)

const (
	halfWidth = 30
	fullWidth = halfWidth*2 + 1
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	idStyle       = lipgloss.NewStyle().Faint(true)
	overflowStyle = lipgloss.NewStyle().Italic(true).Padding(0, 1)
)

// termColor drops the alpha channel of #RRGGBBAA colors, which terminals cannot show.
func termColor(hex string) lipgloss.Color {
	if len(hex) == 9 && strings.HasPrefix(hex, "#") {
		hex = hex[:7]
	}
	return lipgloss.Color(hex)
}

func boxStyle(background, foreground string, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(termColor(background)).
		Foreground(termColor(foreground)).
		Padding(0, 1).
		Width(width)
}

func renderCard(c view.Card, width int) string {
	body := strings.Join([]string{
		lipgloss.NewStyle().Bold(true).Render(c.Title),
		c.Body,
		idStyle.Render(string(c.ID)),
	}, "\n")
	return boxStyle(c.Background, c.Foreground, width).Render(body)
}

func renderReminder(c view.ReminderCard) string {
	body := fmt.Sprintf("%s  %s\n%s", c.Date, c.Message, idStyle.Render(string(c.ID)))
	return boxStyle(c.Background, c.Foreground, fullWidth).Render(body)
}

// renderBlocks lays cards out the way the home screen does: consecutive half
// cards share a row, full cards take a row of their own.
func renderBlocks(cards []view.Card) string {
	var rows []string
	var pending string
	flush := func() {
		if pending != "" {
			rows = append(rows, pending)
			pending = ""
		}
	}
	for _, c := range cards {
		if c.Layout == view.LayoutFull {
			flush()
			rows = append(rows, renderCard(c, fullWidth))
			continue
		}
		rendered := renderCard(c, halfWidth)
		if pending == "" {
			pending = rendered
			continue
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, pending, " ", rendered))
		pending = ""
	}
	flush()
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderGrid(cards []view.Card, width int) string {
	rows := make([]string, len(cards))
	for i, c := range cards {
		rows[i] = renderCard(c, width)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderHome(h view.HomeView) string {
	parts := []string{headerStyle.Render("Reminders")}
	for _, r := range h.Reminders {
		parts = append(parts, renderReminder(r))
	}
	if h.OverflowText != "" {
		parts = append(parts, overflowStyle.Render(h.OverflowText))
	}
	parts = append(parts, "", headerStyle.Render("Notes"), renderBlocks(h.Blocks))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
