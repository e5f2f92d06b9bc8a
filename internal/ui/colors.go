package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	brandGreen = "#1DB954"
	okGreen    = "#04B575"
	errRed     = "#FF0000"
	warnOrange = "#FFA500"
	mutedGray  = "#626262"
)

var styles = NewPalette(brandGreen, okGreen, errRed, warnOrange, mutedGray)

// Palette holds the named styles used by the views.
type Palette struct {
	title     lipgloss.Style
	listTitle lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
}

// NewPalette builds a Palette from brand, success, error, warning and muted foreground colors.
func NewPalette(brand, ok, errColor, warn, muted string) *Palette {
	return &Palette{
		title:     NewBold(brand).MarginBottom(1),
		listTitle: lipgloss.NewStyle().Background(lipgloss.Color(brand)).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1),
		ok:        NewBold(ok),
		err:       NewBold(errColor),
		warn:      NewStyle(warn),
		help:      NewEm(muted),
	}
}

// Breadcrumb renders the titles of the open pages, outermost first.
func (p *Palette) Breadcrumb(titles []string) string {
	return p.help.Render(strings.Join(titles, " › "))
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
