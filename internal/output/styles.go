package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette (256-colour codes).
const (
	ColorGreen  = "154" // success, info
	ColorYellow = "220" // warnings
	ColorRed    = "196" // errors
	ColorGray   = "245" // step numbers, debug
)

// Styles holds the lipgloss styles used for CLI and log output.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

// ColorStyles returns coloured styles rendered for out. The colour profile
// is fixed to ANSI256 because callers only ask for colour after checking
// the terminal themselves.
func ColorStyles(out io.Writer) Styles {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI256)
	return Styles{
		Success: r.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: r.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   r.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Dim:     r.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Success: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// StylesFor returns ColorStyles(out) when color is set and NoColorStyles
// otherwise.
func StylesFor(out io.Writer, color bool) Styles {
	if color {
		return ColorStyles(out)
	}
	return NoColorStyles()
}
