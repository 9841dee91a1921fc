package sim

// CellSize is the occupancy grid resolution in meters. Fixed: route
// waypoints, arrival tolerances, and the rasterization below all assume it.
const CellSize = 0.5

// Cell is a grid coordinate. Row indexes Y, Col indexes X.
type Cell struct {
	Row int
	Col int
}

// Grid is a per-floor occupancy raster. A cell is either blocked (wall,
// obstacle) or free. Doors are rasterized last and force their cells free,
// so a door always punches through the wall it sits on.
type Grid struct {
	Rows int
	Cols int

	// DoorCells records the first and last cell of each rasterized door
	// segment, in the order doors were added.
	DoorCells [][2]Cell

	blocked []bool // row-major
}

// NewGrid creates an all-free grid covering width x length meters.
func NewGrid(width, length float64) *Grid {
	rows := int(length / CellSize)
	cols := int(width / CellSize)
	return &Grid{
		Rows:    rows,
		Cols:    cols,
		blocked: make([]bool, rows*cols),
	}
}

// BuildGrid rasterizes a floor into an occupancy grid: room boundary walls
// first, then obstacles, then doors last so they clear wall cells.
func BuildGrid(f *Floor) *Grid {
	g := NewGrid(f.Width, f.Length)
	for _, room := range f.Rooms {
		for i := 0; i+1 < len(room); i++ {
			g.AddWall(room[i], room[i+1])
		}
	}
	for _, obs := range f.Obstacles {
		switch obs.Kind {
		case ObstacleCircle:
			g.AddCircleObstacle(obs.Center, obs.Radius)
		case ObstacleLine:
			g.AddWall(obs.P1, obs.P2)
		}
	}
	for _, door := range f.Doors {
		g.AddDoor(door.P1, door.P2)
	}
	return g
}

// WorldToCell maps a world position to its containing cell.
func (g *Grid) WorldToCell(p Vec2) Cell {
	return Cell{Row: int(p.Y / CellSize), Col: int(p.X / CellSize)}
}

// CellToWorld maps a cell to the world position of its center.
func (g *Grid) CellToWorld(c Cell) Vec2 {
	return Vec2{
		X: float64(c.Col)*CellSize + CellSize/2,
		Y: float64(c.Row)*CellSize + CellSize/2,
	}
}

// InBounds reports whether the cell lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Blocked reports whether a cell is impassable. Out-of-bounds cells are
// blocked.
func (g *Grid) Blocked(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.blocked[c.Row*g.Cols+c.Col]
}

func (g *Grid) set(c Cell, v bool) {
	if g.InBounds(c) {
		g.blocked[c.Row*g.Cols+c.Col] = v
	}
}

// AddWall marks the cells along the segment from a to b as blocked.
func (g *Grid) AddWall(a, b Vec2) {
	g.traceLine(a, b, func(c Cell) { g.set(c, true) })
}

// AddDoor clears the cells along the segment from a to b and records the
// door's cell extent. Doors added after walls override them.
func (g *Grid) AddDoor(a, b Vec2) {
	var first, last Cell
	seen := false
	g.traceLine(a, b, func(c Cell) {
		g.set(c, false)
		if g.InBounds(c) {
			if !seen {
				first = c
				seen = true
			}
			last = c
		}
	})
	if seen {
		g.DoorCells = append(g.DoorCells, [2]Cell{first, last})
	}
}

// AddCircleObstacle blocks every cell whose cell-coordinate distance to the
// center cell is at most the radius in cells.
func (g *Grid) AddCircleObstacle(center Vec2, radius float64) {
	cc := g.WorldToCell(center)
	rc := int(radius / CellSize)
	for r := cc.Row - rc; r <= cc.Row+rc; r++ {
		for c := cc.Col - rc; c <= cc.Col+rc; c++ {
			dr, dc := r-cc.Row, c-cc.Col
			if dr*dr+dc*dc <= rc*rc {
				g.set(Cell{Row: r, Col: c}, true)
			}
		}
	}
}

// traceLine visits the cells along the world segment a->b using Bresenham's
// algorithm over cell coordinates. Out-of-bounds cells are visited too;
// callers decide what to do with them (set ignores them).
func (g *Grid) traceLine(a, b Vec2, visit func(Cell)) {
	c0 := g.WorldToCell(a)
	c1 := g.WorldToCell(b)
	dr := abs(c1.Row - c0.Row)
	dc := abs(c1.Col - c0.Col)
	sr := 1
	if c0.Row > c1.Row {
		sr = -1
	}
	sc := 1
	if c0.Col > c1.Col {
		sc = -1
	}
	err := dr - dc
	r, c := c0.Row, c0.Col
	for {
		visit(Cell{Row: r, Col: c})
		if r == c1.Row && c == c1.Col {
			return
		}
		e2 := 2 * err
		if e2 > -dc {
			err -= dc
			r += sr
		}
		if e2 < dr {
			err += dr
			c += sc
		}
	}
}

// Neighbors appends the free 8-connected neighbors of c to buf and returns
// it. Blocked and out-of-bounds cells are excluded.
func (g *Grid) Neighbors(c Cell, buf []Cell) []Cell {
	for _, d := range neighborOffsets {
		n := Cell{Row: c.Row + d[0], Col: c.Col + d[1]}
		if !g.InBounds(n) || g.Blocked(n) {
			continue
		}
		buf = append(buf, n)
	}
	return buf
}

var neighborOffsets = [8][2]int{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
