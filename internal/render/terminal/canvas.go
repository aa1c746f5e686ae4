// Package terminal is a tcell render backend. Every character cell stands
// for a CellWidth x CellHeight block of logical pixels, so hosts written
// against pixel coordinates run unchanged in a terminal.
package terminal

import (
	"image"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/confetti/internal/render"
)

// Logical pixels per character cell. Terminal cells are roughly twice as
// tall as they are wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	r, g, b float32 // background, straight alpha already applied
	painted bool
	ch      rune
	fg      color.NRGBA
}

// Canvas is a grid of cells implementing render.Image.
type Canvas struct {
	cols, rows int
	cells      []cell
}

// NewCanvas creates a canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return &Canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// Cells returns the grid dimensions.
func (c *Canvas) Cells() (cols, rows int) {
	return c.cols, c.rows
}

// Bounds returns the logical pixel bounds.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.cols*CellWidth, c.rows*CellHeight)
}

// Size returns the logical pixel size.
func (c *Canvas) Size() (width, height int) {
	return c.cols * CellWidth, c.rows * CellHeight
}

// SubImage returns the canvas itself; cells cannot be split.
func (c *Canvas) SubImage(image.Rectangle) render.Image {
	return c
}

// Fill paints every cell with clr.
func (c *Canvas) Fill(clr color.Color) {
	r, g, b, a := straight(clr)
	for i := range c.cells {
		c.cells[i].blend(r, g, b, a)
	}
}

// Clear resets every cell to the terminal default.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{}
	}
}

// Dispose is a no-op.
func (c *Canvas) Dispose() {}

// DrawTriangles fills every cell whose centre lies inside a triangle with
// the first vertex colour. If the whole call covers no cell centre, the cell
// under the vertex centroid is painted so sub-cell shapes stay visible.
func (c *Canvas) DrawTriangles(vertices []render.Vertex, indices []uint16, _ render.Image, _ *render.DrawTrianglesOptions) {
	if len(vertices) == 0 || len(indices) < 3 || len(c.cells) == 0 {
		return
	}
	v0 := vertices[0]
	covered := false
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, d := vertices[indices[t]], vertices[indices[t+1]], vertices[indices[t+2]]
		covered = c.fillTriangle(a, b, d, v0) || covered
	}
	if covered {
		return
	}
	var sx, sy float32
	for _, v := range vertices {
		sx += v.DstX
		sy += v.DstY
	}
	n := float32(len(vertices))
	c.plot(sx/n, sy/n, v0.ColorR, v0.ColorG, v0.ColorB, v0.ColorA)
}

func (c *Canvas) fillTriangle(a, b, d, shade render.Vertex) bool {
	minX := math.Min(float64(a.DstX), math.Min(float64(b.DstX), float64(d.DstX)))
	maxX := math.Max(float64(a.DstX), math.Max(float64(b.DstX), float64(d.DstX)))
	minY := math.Min(float64(a.DstY), math.Min(float64(b.DstY), float64(d.DstY)))
	maxY := math.Max(float64(a.DstY), math.Max(float64(b.DstY), float64(d.DstY)))

	c0, c1 := clampInt(int(minX/CellWidth), 0, c.cols-1), clampInt(int(maxX/CellWidth), 0, c.cols-1)
	r0, r1 := clampInt(int(minY/CellHeight), 0, c.rows-1), clampInt(int(maxY/CellHeight), 0, c.rows-1)

	hit := false
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			px := (float32(col) + 0.5) * CellWidth
			py := (float32(row) + 0.5) * CellHeight
			if inTriangle(px, py, a, b, d) {
				c.cells[row*c.cols+col].blend(shade.ColorR, shade.ColorG, shade.ColorB, shade.ColorA)
				hit = true
			}
		}
	}
	return hit
}

// FillCircle paints cells whose centres fall inside the circle, or the cell
// under the centre when the circle is smaller than a cell.
func (c *Canvas) FillCircle(x, y, radius float32, clr color.Color) {
	if len(c.cells) == 0 {
		return
	}
	r, g, b, a := straight(clr)
	c0, c1 := clampInt(int((x-radius)/CellWidth), 0, c.cols-1), clampInt(int((x+radius)/CellWidth), 0, c.cols-1)
	r0, r1 := clampInt(int((y-radius)/CellHeight), 0, c.rows-1), clampInt(int((y+radius)/CellHeight), 0, c.rows-1)

	hit := false
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			dx := (float32(col)+0.5)*CellWidth - x
			dy := (float32(row)+0.5)*CellHeight - y
			if dx*dx+dy*dy <= radius*radius {
				c.cells[row*c.cols+col].blend(r, g, b, a)
				hit = true
			}
		}
	}
	if !hit {
		c.plot(x, y, r, g, b, a)
	}
}

// DrawText writes str into the cells starting at the pixel position (x, y).
func (c *Canvas) DrawText(str string, x, y int, clr color.Color) {
	row := y / CellHeight
	if row < 0 || row >= c.rows {
		return
	}
	fg := color.NRGBAModel.Convert(clr).(color.NRGBA)
	col := x / CellWidth
	for _, ch := range str {
		if col >= 0 && col < c.cols {
			cl := &c.cells[row*c.cols+col]
			cl.ch = ch
			cl.fg = fg
		}
		col++
	}
}

// plot blends a single cell containing the pixel (x, y), if on the canvas.
func (c *Canvas) plot(x, y, r, g, b, a float32) {
	if x < 0 || y < 0 {
		return
	}
	col, row := int(x/CellWidth), int(y/CellHeight)
	if col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col].blend(r, g, b, a)
}

// At returns the background colour and rune of a cell; ok is false for
// cells nothing has been drawn into.
func (c *Canvas) At(col, row int) (bg color.NRGBA, ch rune, ok bool) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return color.NRGBA{}, 0, false
	}
	cl := c.cells[row*c.cols+col]
	bg = color.NRGBA{R: to8(cl.r), G: to8(cl.g), B: to8(cl.b), A: 255}
	return bg, cl.ch, cl.painted || cl.ch != 0
}

// present copies the canvas to screen.
func (c *Canvas) present(screen tcell.Screen) {
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			style := tcell.StyleDefault
			if cl.painted {
				style = style.Background(tcell.NewRGBColor(int32(to8(cl.r)), int32(to8(cl.g)), int32(to8(cl.b))))
			}
			ch := ' '
			if cl.ch != 0 {
				ch = cl.ch
				style = style.Foreground(tcell.NewRGBColor(int32(cl.fg.R), int32(cl.fg.G), int32(cl.fg.B)))
			}
			screen.SetContent(col, row, ch, nil, style)
		}
	}
}

func (cl *cell) blend(r, g, b, a float32) {
	if a <= 0 {
		return
	}
	if a > 1 {
		a = 1
	}
	cl.r = cl.r*(1-a) + r*a
	cl.g = cl.g*(1-a) + g*a
	cl.b = cl.b*(1-a) + b*a
	cl.painted = true
}

func inTriangle(px, py float32, a, b, c render.Vertex) bool {
	d1 := edge(px, py, a, b)
	d2 := edge(px, py, b, c)
	d3 := edge(px, py, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func edge(px, py float32, a, b render.Vertex) float32 {
	return (px-b.DstX)*(a.DstY-b.DstY) - (a.DstX-b.DstX)*(py-b.DstY)
}

func straight(clr color.Color) (r, g, b, a float32) {
	n := color.NRGBAModel.Convert(clr).(color.NRGBA)
	return float32(n.R) / 255, float32(n.G) / 255, float32(n.B) / 255, float32(n.A) / 255
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
