package console

import "github.com/charmbracelet/lipgloss"

// 配色
var (
	Cyan    = lipgloss.Color("#22D3EE")
	Green   = lipgloss.Color("#22C55E")
	Red     = lipgloss.Color("#EF4444")
	Amber   = lipgloss.Color("#F59E0B")
	Gray    = lipgloss.Color("#6B7280")
	DimGray = lipgloss.Color("#9CA3AF")
)

// Styles holds the styles bound to one output's renderer, so colour is only
// emitted when that output is a terminal.
type Styles struct {
	Title   lipgloss.Style
	Key     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
	Header  lipgloss.Style
	Cell    lipgloss.Style
	DimCell lipgloss.Style
	Border  lipgloss.Style
	Running lipgloss.Style
	Failed  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(Cyan),
		Key:     r.NewStyle().Bold(true).Foreground(Green),
		Success: r.NewStyle().Foreground(Green),
		Warning: r.NewStyle().Foreground(Amber),
		Error:   r.NewStyle().Bold(true).Foreground(Red),
		Dim:     r.NewStyle().Foreground(DimGray),
		Bold:    r.NewStyle().Bold(true),
		Header:  r.NewStyle().Bold(true).Padding(0, 1),
		Cell:    r.NewStyle().Padding(0, 1),
		DimCell: r.NewStyle().Padding(0, 1).Faint(true),
		Border:  r.NewStyle().Foreground(Gray),
		Running: r.NewStyle().Padding(0, 1).Foreground(Green),
		Failed:  r.NewStyle().Padding(0, 1).Foreground(Red),
	}
}
