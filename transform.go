package raidplan

import "math"

// Affine matrices are [a, b, c, d, tx, ty], mapping (x, y) to
// (a*x + c*y + tx, b*x + d*y + ty).

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// entityTransform maps shape-local, centered coordinates into scene space:
// Rotate(rotation) then Translate(position).
func entityTransform(position Vec2, rotation float64) [6]float64 {
	sin, cos := math.Sincos(rotation)
	return [6]float64{cos, sin, -sin, cos, position.X, position.Y}
}

// MultiplyAffine returns outer * inner: the matrix that applies inner first,
// then outer. Rasterizers use it to chain the view matrix onto a command's
// scene transform.
func MultiplyAffine(outer, inner [6]float64) [6]float64 {
	var m [6]float64
	m[0] = outer[0]*inner[0] + outer[2]*inner[1]
	m[1] = outer[1]*inner[0] + outer[3]*inner[1]
	m[2] = outer[0]*inner[2] + outer[2]*inner[3]
	m[3] = outer[1]*inner[2] + outer[3]*inner[3]
	m[4], m[5] = transformPoint(outer, inner[4], inner[5])
	return m
}

// InvertAffine returns the inverse of m, or the identity when m is singular.
func InvertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	a, b := m[3]/det, -m[1]/det
	c, d := -m[2]/det, m[0]/det
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformPoint applies the affine matrix m to p.
func TransformPoint(m [6]float64, p Vec2) Vec2 {
	x, y := transformPoint(m, p.X, p.Y)
	return Vec2{x, y}
}

// worldAABB returns the scene-space box enclosing a centered w x h rectangle
// placed by m. Rotated shapes get a box larger than their own size.
func worldAABB(m [6]float64, w, h float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, sx := range [2]float64{-0.5, 0.5} {
		for _, sy := range [2]float64{-0.5, 0.5} {
			x, y := transformPoint(m, sx*w, sy*h)
			minX, maxX = math.Min(minX, x), math.Max(maxX, x)
			minY, maxY = math.Min(minY, y), math.Max(maxY, y)
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
