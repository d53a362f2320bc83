package grid

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Line draws a line between both points, inclusive of each end, and returns
// the number of cells changed.
func (g *Grid) Line(p0, p1 Point, c Cell) int {
	n := 0
	bresenham(p0, p1, func(x, y int) {
		if g.set(x, y, c) {
			n++
		}
	})
	return n
}

// bresenham plots a line for all octants
func bresenham(p0, p1 Point, plot func(x, y int)) {
	x0, y0, x1, y1 := p0.X, p0.Y, p1.X, p1.Y

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// LinePoints returns every cell a line between both points passes through
func LinePoints(p0, p1 Point) []Point {
	var pts []Point
	bresenham(p0, p1, func(x, y int) {
		pts = append(pts, Point{x, y})
	})
	return pts
}

// Rect draws a rectangle and returns the number of cells changed. An
// unfilled rectangle is a one cell wide border along the edges of r.
func (g *Grid) Rect(r Rect, c Cell, filled bool) int {
	if r.Empty() {
		return 0
	}
	n := 0
	plot := func(x, y int) {
		if g.set(x, y, c) {
			n++
		}
	}

	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width-1, r.Y+r.Height-1

	if filled {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				plot(x, y)
			}
		}
		return n
	}

	for x := x0; x <= x1; x++ {
		plot(x, y0)
		plot(x, y1)
	}
	for y := y0 + 1; y < y1; y++ {
		plot(x0, y)
		plot(x1, y)
	}
	return n
}

// Ellipse draws the ellipse bounded by r and returns the number of cells
// changed. Points are always plotted in mirrored pairs about the centre of r
// so the result is symmetric under horizontal and vertical flips of r.
func (g *Grid) Ellipse(r Rect, c Cell, filled bool) int {
	if r.Empty() {
		return 0
	}

	n := 0
	plot := func(x, y int) {
		if r.Contains(Point{x, y}) && g.set(x, y, c) {
			n++
		}
	}

	if !filled {
		ellipse(r, plot)
		return n
	}

	// Record the horizontal extent of the outline on each row and fill it
	left := make([]int, r.Height)
	right := make([]int, r.Height)
	for i := range left {
		left[i] = r.X + r.Width
		right[i] = r.X - 1
	}
	ellipse(r, func(x, y int) {
		if !r.Contains(Point{x, y}) {
			return
		}
		i := y - r.Y
		left[i] = min(left[i], x)
		right[i] = max(right[i], x)
	})
	for i := range left {
		for x := left[i]; x <= right[i]; x++ {
			plot(x, r.Y+i)
		}
	}
	return n
}

// ellipse is the rectangle bounded midpoint ellipse from "A Rasterizing
// Algorithm for Drawing Curves" by Alois Zingl
func ellipse(r Rect, plot func(x, y int)) {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width-1, r.Y+r.Height-1

	a := int64(x1 - x0)
	b := int64(y1 - y0)
	b1 := b & 1

	dx := 4 * (1 - a) * b * b
	dy := 4 * (b1 + 1) * a * a
	err := dx + dy + b1*a*a

	y0 += int((b + 1) / 2)
	y1 = y0 - int(b1)
	a *= 8 * a
	b1 = 8 * b * b

	for {
		plot(x1, y0)
		plot(x0, y0)
		plot(x0, y1)
		plot(x1, y1)
		e2 := 2 * err
		if e2 <= dy {
			y0++
			y1--
			dy += a
			err += dy
		}
		if e2 >= dx || 2*err > dy {
			x0++
			x1--
			dx += b1
			err += dx
		}
		if x0 > x1 {
			break
		}
	}

	// Finish the tips of very flat ellipses
	for int64(y0-y1) <= b {
		plot(x0-1, y0)
		plot(x1+1, y0)
		y0++
		plot(x0-1, y1)
		plot(x1+1, y1)
		y1--
	}
}

// FloodFill recolors the 4-connected region of cells sharing the color of
// origin, stopping at the edges of clip. An empty clip means the whole
// grid. It returns the number of cells changed.
func (g *Grid) FloodFill(origin Point, c Cell, clip Rect) int {
	bounds := g.Bounds()
	if !clip.Empty() {
		bounds = bounds.Intersect(clip)
	}
	if !bounds.Contains(origin) {
		return 0
	}

	c = g.clampCell(c)
	old := g.At(origin)
	if old == c {
		return 0
	}

	n := 0
	stack := []Point{origin}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !bounds.Contains(p) || g.cells[p.Y*g.width+p.X] != old {
			continue
		}

		// Walk to the left edge of the run then fill rightwards, queueing
		// the rows above and below at the start of each span
		x := p.X
		for x > bounds.X && g.cells[p.Y*g.width+x-1] == old {
			x--
		}
		above, below := false, false
		for ; x < bounds.X+bounds.Width && g.cells[p.Y*g.width+x] == old; x++ {
			g.set(x, p.Y, c)
			n++

			if p.Y > bounds.Y {
				match := g.cells[(p.Y-1)*g.width+x] == old
				if match && !above {
					stack = append(stack, Point{x, p.Y - 1})
				}
				above = match
			}
			if p.Y < bounds.Y+bounds.Height-1 {
				match := g.cells[(p.Y+1)*g.width+x] == old
				if match && !below {
					stack = append(stack, Point{x, p.Y + 1})
				}
				below = match
			}
		}
	}
	return n
}

// EraseRegion sets every cell in r to Empty and returns the number of cells
// changed.
func (g *Grid) EraseRegion(r Rect) int {
	r = r.Intersect(g.Bounds())
	n := 0
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if g.set(x, y, Empty) {
				n++
			}
		}
	}
	return n
}

// Clear empties the whole grid
func (g *Grid) Clear() int {
	return g.EraseRegion(g.Bounds())
}
