package view

import "strings"

// Foreground colors.
const (
	LightText = "#E9EADB"
	DarkText  = "#262626"
)

// Palette holds the two fallback backgrounds of a projection. Records without
// an explicit color take Even or Odd by their index within the projection.
type Palette struct {
	Even string
	Odd  string
}

// Pick returns the fallback background for the record at index.
func (p Palette) Pick(index int) string {
	if index%2 == 0 {
		return p.Even
	}
	return p.Odd
}

// Background returns explicit when set, otherwise the positional fallback.
func (p Palette) Background(explicit string, index int) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return p.Pick(index)
}

// Palettes assigns a palette to each projection.
type Palettes struct {
	NotesGrid     Palette
	Lists         Palette
	Dates         Palette
	HomeReminders Palette
	HomeBlocks    Palette
}

// DefaultPalettes are the fallback colors of each screen.
var DefaultPalettes = Palettes{
	NotesGrid:     Palette{Even: "#82789E", Odd: "#6B98B5"},
	Lists:         Palette{Even: "#a8a8a399", Odd: "#A0A48B"},
	Dates:         Palette{Even: "#B15A6B", Odd: "#5A755A"},
	HomeReminders: Palette{Even: "#A87070", Odd: "#C07A84"},
	HomeBlocks:    Palette{Even: "#6B98B5", Odd: "#82789E"},
}

// darkBackgrounds take light text. Keys are lower case.
var darkBackgrounds = map[string]bool{
	"#b15a6b": true,
	"#5a755a": true,
	"#a87070": true,
	"#c07a84": true,
	"#6b98b5": true,
	"#82789e": true,
	"#4a6fa5": true,
	"#8c6bb1": true,
	"#4b8252": true,
	"#3f3f3f": true,
	"#262626": true,
}

// Foreground returns the text color for a background token. It is a fixed
// lookup: listed dark backgrounds get LightText, anything else DarkText.
func Foreground(background string) string {
	if darkBackgrounds[strings.ToLower(strings.TrimSpace(background))] {
		return LightText
	}
	return DarkText
}
