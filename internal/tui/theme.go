package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the process-wide UI preference. It travels explicitly through
// Config and the model; there is no package-level theme state.
type Theme struct {
	Dark bool
}

// Toggle flips between the dark and light palettes.
func (t Theme) Toggle() Theme {
	return Theme{Dark: !t.Dark}
}

type styles struct {
	Title          lipgloss.Style
	Tagline        lipgloss.Style
	SectionHeader  lipgloss.Style
	Helper         lipgloss.Style
	Error          lipgloss.Style
	CurrentLine    lipgloss.Style
	Tag            lipgloss.Style
	Badge          lipgloss.Style
	StatusBar      lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
}

// Styles renders the palette for the active theme.
func (t Theme) Styles() styles {
	if t.Dark {
		return styles{
			Title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
			Tagline:        lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("147")),
			SectionHeader:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
			Helper:         lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			CurrentLine:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
			Tag:            lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
			Badge:          lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
			StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")),
			UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
			AssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		}
	}
	return styles{
		Title:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("161")),
		Tagline:        lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("61")),
		SectionHeader:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		Helper:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:          lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("124")),
		CurrentLine:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")),
		Tag:            lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Badge:          lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		StatusBar:      lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("253")),
		UserLabel:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("26")),
		AssistantLabel: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("90")),
	}
}
