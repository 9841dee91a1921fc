package sim

import (
	"testing"
)

func TestNewGrid_Dimensions(t *testing.T) {
	// GIVEN a 50 x 40 meter floor
	g := NewGrid(50, 40)

	// THEN the raster is 100 columns by 80 rows at half-meter cells
	if g.Cols != 100 {
		t.Errorf("expected 100 cols, got %d", g.Cols)
	}
	if g.Rows != 80 {
		t.Errorf("expected 80 rows, got %d", g.Rows)
	}
}

func TestGrid_WorldCellRoundTrip(t *testing.T) {
	g := NewGrid(50, 40)
	for _, c := range []Cell{{Row: 0, Col: 0}, {Row: 5, Col: 7}, {Row: 79, Col: 99}} {
		center := g.CellToWorld(c)
		if got := g.WorldToCell(center); got != c {
			t.Errorf("round trip %v -> %v -> %v", c, center, got)
		}
	}
}

func TestGrid_Blocked_OutOfBounds(t *testing.T) {
	g := NewGrid(10, 10)

	if !g.Blocked(Cell{Row: -1, Col: 0}) {
		t.Error("expected out-of-bounds cell to be blocked")
	}
	if !g.Blocked(Cell{Row: 0, Col: 20}) {
		t.Error("expected out-of-bounds cell to be blocked")
	}
	if g.Blocked(Cell{Row: 0, Col: 0}) {
		t.Error("expected fresh in-bounds cell to be free")
	}
}

func TestGrid_AddWall_BlocksSegment(t *testing.T) {
	// GIVEN a wall across the floor at y=15
	g := NewGrid(50, 40)
	g.AddWall(Vec2{X: 0, Y: 15}, Vec2{X: 20, Y: 15})

	// THEN cells along the segment are blocked
	if !g.Blocked(Cell{Row: 30, Col: 0}) || !g.Blocked(Cell{Row: 30, Col: 20}) || !g.Blocked(Cell{Row: 30, Col: 40}) {
		t.Error("expected wall cells to be blocked")
	}
	// AND cells off the segment stay free
	if g.Blocked(Cell{Row: 29, Col: 20}) || g.Blocked(Cell{Row: 30, Col: 41}) {
		t.Error("expected cells off the wall to be free")
	}
}

func TestGrid_AddDoor_OverridesWall(t *testing.T) {
	// GIVEN a wall with a door cut through it afterwards
	g := NewGrid(50, 40)
	g.AddWall(Vec2{X: 0, Y: 15}, Vec2{X: 20, Y: 15})
	g.AddDoor(Vec2{X: 17, Y: 15}, Vec2{X: 19, Y: 15})

	// THEN the door cells are free
	for col := 34; col <= 38; col++ {
		if g.Blocked(Cell{Row: 30, Col: col}) {
			t.Errorf("expected door cell col=%d to be free", col)
		}
	}
	// AND the wall survives on both sides of the door
	if !g.Blocked(Cell{Row: 30, Col: 33}) || !g.Blocked(Cell{Row: 30, Col: 39}) {
		t.Error("expected wall cells beside the door to stay blocked")
	}
	// AND the door extent was recorded
	if len(g.DoorCells) != 1 {
		t.Fatalf("expected 1 door record, got %d", len(g.DoorCells))
	}
}

func TestBuildGrid_DoorsRasterizeLast(t *testing.T) {
	// GIVEN a floor whose door sits on a room wall
	f := NewFloor(1, 50, 40, 200)
	f.AddRoom([]Vec2{{0, 0}, {20, 0}, {20, 15}, {0, 15}, {0, 0}})
	f.AddDoor(Door{P1: Vec2{X: 17, Y: 15}, P2: Vec2{X: 19, Y: 15}})

	// WHEN the grid is built
	g := BuildGrid(f)

	// THEN the doorway is passable and the rest of the wall is not
	if g.Blocked(Cell{Row: 30, Col: 36}) {
		t.Error("expected doorway to be passable")
	}
	if !g.Blocked(Cell{Row: 30, Col: 10}) {
		t.Error("expected room wall to be blocked")
	}
}

func TestGrid_AddCircleObstacle(t *testing.T) {
	// GIVEN a circle of radius 2m at (10, 10)
	g := NewGrid(20, 20)
	g.AddCircleObstacle(Vec2{X: 10, Y: 10}, 2)

	// THEN the center and cells within the radius are blocked
	if !g.Blocked(Cell{Row: 20, Col: 20}) {
		t.Error("expected circle center cell to be blocked")
	}
	if !g.Blocked(Cell{Row: 20, Col: 24}) {
		t.Error("expected cell at radius edge to be blocked")
	}
	// AND cells beyond the radius stay free
	if g.Blocked(Cell{Row: 20, Col: 25}) {
		t.Error("expected cell past the radius to be free")
	}
	if g.Blocked(Cell{Row: 23, Col: 23}) {
		t.Error("expected diagonal cell past the radius to be free")
	}
}

func TestGrid_Neighbors(t *testing.T) {
	g := NewGrid(10, 10)

	// Interior cell has all 8 neighbors.
	var buf [8]Cell
	n := g.Neighbors(Cell{Row: 5, Col: 5}, buf[:0])
	if len(n) != 8 {
		t.Errorf("expected 8 neighbors, got %d", len(n))
	}

	// Corner cell has 3.
	n = g.Neighbors(Cell{Row: 0, Col: 0}, buf[:0])
	if len(n) != 3 {
		t.Errorf("expected 3 corner neighbors, got %d", len(n))
	}

	// Blocked cells are excluded.
	g.AddWall(Vec2{X: 3, Y: 2.5}, Vec2{X: 3, Y: 2.5})
	n = g.Neighbors(Cell{Row: 5, Col: 5}, buf[:0])
	if len(n) != 7 {
		t.Errorf("expected 7 neighbors with one blocked, got %d", len(n))
	}
}
