package snake

import (
	"fmt"

	"github.com/vovakirdan/tui-snake/internal/core"
)

// hudHeight is the number of screen rows above the field.
const hudHeight = 2

// Theme assigns colors to the things on screen.
type Theme struct {
	Head core.Color
	Body core.Color
	Food core.Color
	Wall core.Color
	HUD  core.Color
}

// DefaultTheme returns the stock colors.
func DefaultTheme() Theme {
	return Theme{
		Head: core.ColorBrightGreen,
		Body: core.ColorGreen,
		Food: core.ColorBrightRed,
		Wall: core.ColorGray,
		HUD:  core.ColorBrightWhite,
	}
}

// tileGlyphs maps tiles to their screen runes.
var tileGlyphs = map[Tile]rune{
	TileEmpty: ' ',
	TileWall:  '#',
	TileSnake: 'o',
	TileHead:  'O',
	TileFood:  '*',
}

func (th Theme) color(t Tile) core.Color {
	switch t {
	case TileWall:
		return th.Wall
	case TileSnake:
		return th.Body
	case TileHead:
		return th.Head
	case TileFood:
		return th.Food
	default:
		return core.ColorDefault
	}
}

// MinScreenSize returns the smallest screen that fits the state's field.
func MinScreenSize(s GameState) (w, h int) {
	return s.Game.Map.Width, s.Game.Map.Height + hudHeight
}

// Render paints the state into dst: HUD, field and status overlay.
func Render(s GameState, dst *core.Screen, theme Theme) {
	dst.Clear()

	renderHUD(s, dst, theme)

	minW, minH := MinScreenSize(s)
	if dst.Width() < minW || dst.Height() < minH {
		renderOverlay(dst, theme, "Window too small", fmt.Sprintf("Need %dx%d", minW, minH))
		return
	}

	// Center the field horizontally below the HUD
	offsetX := (dst.Width() - s.Game.Map.Width) / 2
	offsetY := hudHeight
	for y, row := range s.Game.Map.Grid {
		for x, t := range row {
			if t == TileEmpty {
				continue
			}
			dst.SetColored(offsetX+x, offsetY+y, tileGlyphs[t], theme.color(t))
		}
	}

	switch {
	case s.Won:
		renderOverlay(dst, theme, "You Win!", fmt.Sprintf("Final Score: %d", s.Score))
	case s.GameOver:
		renderOverlay(dst, theme, "Game Over", "Press R to restart")
	case s.Paused:
		renderOverlay(dst, theme, "Paused", "Press P to continue")
	}
}

// renderHUD draws the top status bar.
func renderHUD(s GameState, dst *core.Screen, theme Theme) {
	name := ""
	if s.Level != nil {
		name = s.Level.Name
	}
	hud := fmt.Sprintf(" Snake — Score: %d  Length: %d  Level: %s", s.Score, len(s.Snake), name)
	dst.DrawText(0, 0, hud, theme.HUD)
	dst.DrawHLine(0, 1, dst.Width(), '─', theme.HUD)
}

// renderOverlay draws a centered two-line message box.
func renderOverlay(dst *core.Screen, theme Theme, line1, line2 string) {
	maxLen := max(len([]rune(line1)), len([]rune(line2)))
	boxW := maxLen + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawBox(boxX, boxY, boxW, boxH, theme.HUD)
	dst.DrawTextCentered(boxY+1, line1, theme.HUD)
	dst.DrawTextCentered(boxY+3, line2, theme.HUD)
}
