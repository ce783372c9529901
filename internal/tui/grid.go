package tui

import (
	"math"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// Grid maps between terminal cells and view-local world coordinates.
// Each cell covers Scale x Scale world units.
type Grid struct {
	Cols  int
	Rows  int
	Scale float64
}

// ViewSize is the world area the grid shows.
func (g Grid) ViewSize() (width, height float64) {
	return float64(g.Cols) * g.Scale, float64(g.Rows) * g.Scale
}

// Cell returns the cell holding p and whether it is on the grid.
func (g Grid) Cell(p geometry.Position) (x, y int, ok bool) {
	x = int(math.Floor(p.X / g.Scale))
	y = int(math.Floor(p.Y / g.Scale))
	return x, y, x >= 0 && y >= 0 && x < g.Cols && y < g.Rows
}

// CellCenter returns the view-local position at the middle of cell (x, y).
func (g Grid) CellCenter(x, y int) geometry.Position {
	return geometry.Position{
		X: (float64(x) + 0.5) * g.Scale,
		Y: (float64(y) + 0.5) * g.Scale,
	}
}

// Disc returns the on-grid cells whose centers lie inside c. A circle too
// small to cover any cell center still occupies the cell holding its center.
func (g Grid) Disc(c geometry.Circle) [][2]int {
	r := float64(c.Radius)
	x0, y0, _ := g.Cell(geometry.Position{X: c.Center.X - r, Y: c.Center.Y - r})
	x1, y1, _ := g.Cell(geometry.Position{X: c.Center.X + r, Y: c.Center.Y + r})

	var cells [][2]int
	for y := max(y0, 0); y <= min(y1, g.Rows-1); y++ {
		for x := max(x0, 0); x <= min(x1, g.Cols-1); x++ {
			if geometry.Distance(c.Center, g.CellCenter(x, y)) <= r {
				cells = append(cells, [2]int{x, y})
			}
		}
	}
	if len(cells) == 0 {
		if x, y, ok := g.Cell(c.Center); ok {
			cells = append(cells, [2]int{x, y})
		}
	}
	return cells
}

// Steer returns the direction from the view center towards cell (x, y).
func (g Grid) Steer(x, y int) geometry.Position {
	w, h := g.ViewSize()
	return geometry.Heading(geometry.Position{X: w / 2, Y: h / 2}, g.CellCenter(x, y))
}
