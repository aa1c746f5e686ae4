package render

import (
	"image/color"
	"math"
)

// Corner is one vertex of a filled polygon in destination coordinates.
type Corner struct {
	X, Y float32
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// FillQuad fills the convex quadrilateral q (corners in winding order)
// with clr using two triangles.
func FillQuad(dst Image, r Renderer, q [4]Corner, clr color.Color) {
	cr, cg, cb, ca := straight(clr)
	vertices := make([]Vertex, 4)
	for i, c := range q {
		vertices[i] = Vertex{
			DstX:   c.X,
			DstY:   c.Y,
			SrcX:   0,
			SrcY:   0,
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		}
	}
	dst.DrawTriangles(vertices, quadIndices, r.WhitePixel(), &DrawTrianglesOptions{AntiAlias: true})
}

// FillRect fills an axis-aligned rectangle.
func FillRect(dst Image, r Renderer, x, y, w, h float32, clr color.Color) {
	FillQuad(dst, r, [4]Corner{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}, clr)
}

// RotatedRect returns the corners of a w x h rectangle centred on (cx, cy)
// and rotated by angle radians.
func RotatedRect(cx, cy, w, h, angle float64) [4]Corner {
	sin, cos := math.Sincos(angle)
	hw, hh := w/2, h/2
	local := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}

	var out [4]Corner
	for i, p := range local {
		out[i] = Corner{
			X: float32(cx + p[0]*cos - p[1]*sin),
			Y: float32(cy + p[0]*sin + p[1]*cos),
		}
	}
	return out
}

// straight converts clr to non-premultiplied channel scales in [0, 1].
func straight(clr color.Color) (r, g, b, a float32) {
	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	return float32(n.R) / 255, float32(n.G) / 255, float32(n.B) / 255, float32(n.A) / 255
}
