package sim

import "math"

// Vec2 is a 2-D point or vector in floor-plan coordinates (meters).
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Len returns the Euclidean length of the vector.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between two points.
func Dist(a, b Vec2) float64 { return a.Sub(b).Len() }

// polygonArea computes the shoelace area of a polygon. The polygon may be
// given open or with the first vertex repeated at the end; both give the
// same result because the duplicate edge contributes zero.
func polygonArea(pts []Vec2) float64 {
	if len(pts) < 3 {
		return 0
	}
	sum := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// polygonCentroid returns the vertex mean of a polygon, skipping a repeated
// closing vertex so closed and open forms agree.
func polygonCentroid(pts []Vec2) Vec2 {
	n := len(pts)
	if n == 0 {
		return Vec2{}
	}
	if n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
		n--
	}
	var c Vec2
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Scale(1 / float64(n))
}

// polygonBounds returns the axis-aligned bounding box of a polygon.
func polygonBounds(pts []Vec2) (min, max Vec2) {
	if len(pts) == 0 {
		return Vec2{}, Vec2{}
	}
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// pointInPolygon reports whether p lies inside the polygon using the
// even-odd ray casting rule. Points exactly on an edge may land on either
// side; callers that care fall back to a nearest-centroid choice.
func pointInPolygon(p Vec2, poly []Vec2) bool {
	n := len(poly)
	if n > 1 && poly[0] == poly[n-1] {
		poly = poly[:n-1]
		n--
	}
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
