package cmd

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	riskLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	riskMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	riskHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// riskStyle returns the severity-colored style for a sender's risk score,
// matching the thresholds the detection ensemble itself uses.
func riskStyle(score float64) lipgloss.Style {
	switch {
	case score >= 0.65:
		return riskHighStyle
	case score >= 0.45:
		return riskMedStyle
	default:
		return riskLowStyle
	}
}
