package tui

import (
	"fmt"

	"github.com/vovakirdan/firewave/internal/core"
	"github.com/vovakirdan/firewave/internal/fire"
	"github.com/vovakirdan/firewave/internal/session"
)

// Field layout constants
const (
	hudRows     = 2 // Status lines above the field
	footerRows  = 4 // Actor lines and help below the field
	nodeWidth   = 5 // Flame glyph and bar width
	fieldMargin = 2
)

// actorColors distinguishes aim markers per actor.
var actorColors = []core.Color{core.ColorBrightCyan, core.ColorGreen, core.ColorBlue, core.ColorWhite}

func actorColor(a core.ActorID) core.Color {
	if a < 1 {
		return core.ColorGray
	}
	return actorColors[(int(a)-1)%len(actorColors)]
}

// flameGlyph returns the two rows drawn for a fire at the given sprite scale.
func flameGlyph(scale float64) (top, body string) {
	switch {
	case scale >= 1:
		return " ^^^ ", "(WWW)"
	case scale >= 0.75:
		return "  ^  ", " wWw "
	case scale > 0:
		return "     ", "  w  "
	default:
		return "     ", " ___ "
	}
}

// fieldOrigin centers the layout's coordinate space on the screen.
func fieldOrigin(dst *core.Screen, nodes []session.NodeView) (int, int) {
	maxX, maxY := 0, 0
	for _, n := range nodes {
		maxX = max(maxX, n.X)
		maxY = max(maxY, n.Y)
	}
	w := maxX + nodeWidth
	h := maxY + 4
	ox := max(fieldMargin, (dst.Width()-w)/2)
	oy := hudRows + max(1, (dst.Height()-hudRows-footerRows-h)/2)
	return ox, oy
}

// DrawField draws every fire of the snapshot and the actors' aim markers.
func DrawField(dst *core.Screen, snap session.Snapshot, aims map[core.ActorID]core.NodeID) {
	ox, oy := fieldOrigin(dst, snap.Nodes)

	for _, n := range snap.Nodes {
		x, y := ox+n.X, oy+n.Y
		color := core.HeatColor(n.Normalized)
		if n.State == fire.StateIgniting.String() {
			color = core.ColorYellow
		}

		top, body := flameGlyph(n.Scale)
		dst.DrawText(x, y-1, top, color)
		dst.DrawText(x, y, body, color)
		if n.Burning() {
			dst.DrawBar(x, y+1, nodeWidth, n.Normalized, color)
		} else {
			dst.DrawHLine(x, y+1, nodeWidth, '.', core.ColorGray)
		}

		marker := 0
		for actor, target := range aims {
			if target != n.ID {
				continue
			}
			dst.DrawText(x+marker*3, y+2, actor.String(), actorColor(actor))
			marker++
		}
	}
}

// DrawHUD draws the status lines and the per-actor summary.
func DrawHUD(dst *core.Screen, snap session.Snapshot, title string) {
	dst.DrawTextCentered(0, title, core.ColorBrightYellow)

	status := fmt.Sprintf("state %s", snap.State)
	if snap.Running {
		status = fmt.Sprintf("wave %d/%d  fires %d  remaining %d  idle %.0fs",
			snap.Wave, snap.Waves, len(snap.Burning()), snap.Remaining, snap.IdleFor)
	}
	dst.DrawTextCentered(1, status, core.ColorWhite)

	y := dst.Height() - footerRows
	for i, a := range snap.Actors {
		if i >= footerRows-1 {
			break
		}
		line := fmt.Sprintf("%s %-10s %-12s eff %5.1f  cleared %2d", a.ID, a.Name, a.Level, a.Efficiency, a.FiresCleared)
		if !a.Active {
			line += "  (sitting out)"
		}
		dst.DrawText(fieldMargin, y+i, line, actorColor(a.ID))
	}
}
