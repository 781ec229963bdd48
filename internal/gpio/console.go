package gpio

import "github.com/charmbracelet/lipgloss"

var (
	dotOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dashOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const (
	lampOn  = "●"
	lampOff = "○"
)

// ConsoleIndicators keeps LED levels in memory for rendering to a terminal.
// Used by the simulate command in place of real hardware.
type ConsoleIndicators struct {
	Dot  bool
	Dash bool
}

// NewConsoleIndicators creates ConsoleIndicators with both lamps off.
func NewConsoleIndicators() *ConsoleIndicators {
	return &ConsoleIndicators{}
}

// SetDot sets the red (dot) lamp.
func (c *ConsoleIndicators) SetDot(on bool) { c.Dot = on }

// SetDash sets the green (dash) lamp.
func (c *ConsoleIndicators) SetDash(on bool) { c.Dash = on }

// Close turns both lamps off.
func (c *ConsoleIndicators) Close() error {
	c.Dot = false
	c.Dash = false
	return nil
}

// Lamps renders the two lamps, dot first.
func (c *ConsoleIndicators) Lamps() string {
	return lamp(c.Dot, dotOnStyle) + " " + lamp(c.Dash, dashOnStyle)
}

func lamp(on bool, style lipgloss.Style) string {
	if on {
		return style.Render(lampOn)
	}
	return offStyle.Render(lampOff)
}
