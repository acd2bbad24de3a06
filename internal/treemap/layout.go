package treemap

import "math"

// Rect is an axis-aligned rectangle in chart coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 {
	return r.W * r.H
}

// Contains reports whether the point lies inside r, right and bottom edges excluded.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Squarify lays weights out inside bounds, keeping every rectangle's area
// proportional to its weight and its aspect ratio close to 1.
// Weights are placed in order; non-positive weights get an empty rectangle.
func Squarify(weights []float64, bounds Rect) []Rect {
	rects := make([]Rect, len(weights))

	var (
		total   float64
		indices []int
	)

	for i, w := range weights {
		if w > 0 {
			total += w
			indices = append(indices, i)
		}
	}

	if total <= 0 || bounds.Area() <= 0 {
		return rects
	}

	scale := bounds.Area() / total

	areas := make([]float64, len(indices))
	for i, idx := range indices {
		areas[i] = weights[idx] * scale
	}

	free := bounds

	for start := 0; start < len(areas); {
		side := math.Min(free.W, free.H)

		end := start + 1
		for end < len(areas) && worst(areas[start:end+1], side) <= worst(areas[start:end], side) {
			end++
		}

		free = placeRow(areas[start:end], indices[start:end], free, rects)
		start = end
	}

	return rects
}

// worst returns the largest aspect ratio of a row of areas laid along side.
func worst(row []float64, side float64) float64 {
	var sum, maxArea float64

	minArea := math.Inf(1)

	for _, a := range row {
		sum += a
		maxArea = math.Max(maxArea, a)
		minArea = math.Min(minArea, a)
	}

	sideSq, sumSq := side*side, sum*sum

	return math.Max(sideSq*maxArea/sumSq, sumSq/(sideSq*minArea))
}

// placeRow fills the row along the shorter side of free and returns the space left over.
func placeRow(row []float64, indices []int, free Rect, rects []Rect) Rect {
	var sum float64
	for _, a := range row {
		sum += a
	}

	if free.W >= free.H {
		width := sum / free.H
		y := free.Y

		for i, a := range row {
			h := a / width
			rects[indices[i]] = Rect{X: free.X, Y: y, W: width, H: h}
			y += h
		}

		return Rect{X: free.X + width, Y: free.Y, W: free.W - width, H: free.H}
	}

	height := sum / free.W
	x := free.X

	for i, a := range row {
		w := a / height
		rects[indices[i]] = Rect{X: x, Y: free.Y, W: w, H: height}
		x += w
	}

	return Rect{X: free.X, Y: free.Y + height, W: free.W, H: free.H - height}
}
