package core

// Color represents a foreground color for a screen cell.
// The platform maps these onto ANSI 256-color codes.
type Color uint8

// Predefined colors for drill elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightYellow
	ColorBrightCyan
	ColorOrange
	ColorGray
)

// HeatColor returns the flame color for a normalized fire intensity.
// Mirrors the gradient of the installation: gray when out, red at full blaze.
func HeatColor(normalized float64) Color {
	switch {
	case normalized <= 0:
		return ColorGray
	case normalized > 0.66:
		return ColorBrightRed
	case normalized > 0.33:
		return ColorOrange
	default:
		return ColorYellow
	}
}
