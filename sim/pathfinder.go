package sim

import "container/heap"

// frontier is the A* open list. Ordering is total and deterministic:
// f-score ascending, then push sequence ascending, so equal-cost candidates
// expand in insertion order regardless of heap internals.
type frontier []*frontierNode

type frontierNode struct {
	cell Cell
	f    int
	seq  int
}

func (fr frontier) Len() int { return len(fr) }

func (fr frontier) Less(i, j int) bool {
	if fr[i].f != fr[j].f {
		return fr[i].f < fr[j].f
	}
	return fr[i].seq < fr[j].seq
}

func (fr frontier) Swap(i, j int) { fr[i], fr[j] = fr[j], fr[i] }

func (fr *frontier) Push(x any) {
	*fr = append(*fr, x.(*frontierNode))
}

func (fr *frontier) Pop() any {
	old := *fr
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*fr = old[:n-1]
	return item
}

// manhattan is the A* heuristic. Paired with unit cost for all eight move
// directions it overestimates diagonal travel; route lengths below assume
// exactly this combination, so do not substitute a Euclidean-consistent
// variant without revisiting every caller.
func manhattan(a, b Cell) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// FindPath runs A* over the grid from start to goal (world coordinates) and
// returns the route as cell-center waypoints, beginning with the start cell's
// center. Every move, diagonal included, costs 1. Returns nil when the goal
// cell is unreachable.
func FindPath(start, goal Vec2, g *Grid) []Vec2 {
	startCell := g.WorldToCell(start)
	goalCell := g.WorldToCell(goal)

	open := &frontier{}
	heap.Init(open)
	seq := 0
	heap.Push(open, &frontierNode{cell: startCell, f: manhattan(startCell, goalCell), seq: seq})

	cameFrom := map[Cell]Cell{startCell: startCell}
	costSoFar := map[Cell]int{startCell: 0}

	var buf [8]Cell
	for open.Len() > 0 {
		current := heap.Pop(open).(*frontierNode).cell
		if current == goalCell {
			break
		}
		for _, next := range g.Neighbors(current, buf[:0]) {
			newCost := costSoFar[current] + 1
			if old, visited := costSoFar[next]; !visited || newCost < old {
				costSoFar[next] = newCost
				seq++
				heap.Push(open, &frontierNode{
					cell: next,
					f:    newCost + manhattan(goalCell, next),
					seq:  seq,
				})
				cameFrom[next] = current
			}
		}
	}

	if _, ok := cameFrom[goalCell]; !ok {
		return nil
	}

	var path []Vec2
	for cur := goalCell; ; cur = cameFrom[cur] {
		path = append(path, g.CellToWorld(cur))
		if cur == startCell {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
