package fire

// FlameScale maps a normalized intensity onto the sprite scale tiers used by
// the presentation layer: full size above two thirds, three quarters above one
// third, half size below that and hidden when out.
func FlameScale(normalized float64) float64 {
	switch {
	case normalized <= 0:
		return 0
	case normalized > 0.66:
		return 1
	case normalized > 0.33:
		return 0.75
	default:
		return 0.5
	}
}
