package snake

import "github.com/vovakirdan/tui-snake/internal/core"

// Strategy chooses the next heading for a computer-controlled snake.
type Strategy interface {
	NextDirection(s GameState) (core.Direction, bool)
}

// Autopilot is a greedy Strategy: it heads for the food along moves that
// keep enough room to fit the snake, and falls back to any move that does
// not end the game.
type Autopilot struct{}

// NextDirection returns the chosen heading, or false when every move loses.
func (Autopilot) NextDirection(s GameState) (core.Direction, bool) {
	if s.GameOver || len(s.Snake) == 0 {
		return s.Heading, false
	}

	head := s.Snake[0]
	best, found := s.Heading, false
	bestRoomy := false
	bestDist := 0

	for _, dir := range core.Directions {
		if len(s.Snake) > 1 && dir.IsOpposite(s.Direction) {
			continue
		}
		next := head.Add(dir)
		growing := s.HasFood() && next == s.Food
		if s.blocked(next, growing) {
			continue
		}

		roomy := s.reachable(next, len(s.Snake)) >= len(s.Snake)
		dist := 0
		if s.HasFood() {
			dist = next.ManhattanDistance(s.Food)
		}

		switch {
		case !found,
			roomy && !bestRoomy,
			roomy == bestRoomy && dist < bestDist:
			best, found, bestRoomy, bestDist = dir, true, roomy, dist
		}
	}

	return best, found
}

// reachable counts free cells reachable from start, stopping at limit.
// The tail is treated as free because it moves away as the snake advances.
func (s GameState) reachable(start core.Point, limit int) int {
	body := make(map[core.Point]bool, len(s.Snake))
	for _, p := range s.Snake[:len(s.Snake)-1] {
		body[p] = true
	}

	seen := map[core.Point]bool{start: true}
	queue := []core.Point{start}
	count := 0
	for len(queue) > 0 && count < limit {
		p := queue[0]
		queue = queue[1:]
		count++
		for _, dir := range core.Directions {
			n := p.Add(dir)
			if seen[n] || body[n] || s.Level.Layout.At(n) == TileWall {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return count
}
