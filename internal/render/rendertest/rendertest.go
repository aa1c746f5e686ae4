// Package rendertest provides recording fakes of the render interfaces for
// host and overlay tests.
package rendertest

import (
	"image"
	"image/color"

	"chosenoffset.com/confetti/internal/render"
)

// Circle is one recorded FillCircle call.
type Circle struct {
	X, Y, Radius float32
	Color        color.Color
}

// Triangles is one recorded DrawTriangles call.
type Triangles struct {
	Vertices []render.Vertex
	Indices  []uint16
}

// Text is one recorded DrawText call.
type Text struct {
	Text string
	X, Y int
}

// Image records every draw issued against it.
type Image struct {
	W, H      int
	Fills     []color.Color
	Cleared   int
	Triangles []Triangles
	Circles   []Circle
	Texts     []Text
	Disposed  bool
}

// NewImage creates a recording image of the given size.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h}
}

func (i *Image) Bounds() image.Rectangle { return image.Rect(0, 0, i.W, i.H) }
func (i *Image) Size() (int, int) { return i.W, i.H }
func (i *Image) SubImage(image.Rectangle) render.Image { return i }
func (i *Image) Fill(clr color.Color) { i.Fills = append(i.Fills, clr) }
func (i *Image) Clear() { i.Cleared++ }
func (i *Image) Dispose() { i.Disposed = true }

func (i *Image) DrawTriangles(vertices []render.Vertex, indices []uint16, _ render.Image, _ *render.DrawTrianglesOptions) {
	v := make([]render.Vertex, len(vertices))
	copy(v, vertices)
	idx := make([]uint16, len(indices))
	copy(idx, indices)
	i.Triangles = append(i.Triangles, Triangles{Vertices: v, Indices: idx})
}

// Renderer draws into recording images. Text is measured as 6x13 per rune.
type Renderer struct {
	white *Image
}

// NewRenderer creates a recording renderer.
func NewRenderer() *Renderer {
	return &Renderer{white: NewImage(1, 1)}
}

func (r *Renderer) NewImage(w, h int) render.Image { return NewImage(w, h) }
func (r *Renderer) WhitePixel() render.Image { return r.white }

func (r *Renderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	img := dst.(*Image)
	img.Circles = append(img.Circles, Circle{X: x, Y: y, Radius: radius, Color: clr})
}

func (r *Renderer) DrawText(dst render.Image, text string, x, y int, _ color.Color, _ float64) {
	img := dst.(*Image)
	img.Texts = append(img.Texts, Text{Text: text, X: x, Y: y})
}

func (r *Renderer) MeasureText(text string, scale float64) (int, int) {
	return int(float64(len([]rune(text))) * 6 * scale), int(13 * scale)
}

// Input is a scriptable InputManager. Just-pressed state is whatever the
// test puts in the maps; call Reset between simulated frames.
type Input struct {
	Pressed     map[render.Key]bool
	JustPressed map[render.Key]bool
	Mouse       map[render.MouseButton]bool
	MouseJust   map[render.MouseButton]bool
	CursorX     int
	CursorY     int
}

// NewInput creates an Input with nothing pressed.
func NewInput() *Input {
	in := &Input{}
	in.Reset()
	return in
}

// Reset releases every key and button.
func (in *Input) Reset() {
	in.Pressed = map[render.Key]bool{}
	in.JustPressed = map[render.Key]bool{}
	in.Mouse = map[render.MouseButton]bool{}
	in.MouseJust = map[render.MouseButton]bool{}
}

// Tap marks key as pressed this frame.
func (in *Input) Tap(key render.Key) {
	in.Pressed[key] = true
	in.JustPressed[key] = true
}

// Click marks the left button as pressed this frame at (x, y).
func (in *Input) Click(x, y int) {
	in.CursorX, in.CursorY = x, y
	in.Mouse[render.MouseButtonLeft] = true
	in.MouseJust[render.MouseButtonLeft] = true
}

func (in *Input) IsKeyPressed(key render.Key) bool { return in.Pressed[key] }
func (in *Input) IsKeyJustPressed(key render.Key) bool { return in.JustPressed[key] }
func (in *Input) GetCursorPosition() (int, int) { return in.CursorX, in.CursorY }
func (in *Input) IsMouseButtonPressed(b render.MouseButton) bool {
	return in.Mouse[b]
}
func (in *Input) IsMouseButtonJustPressed(b render.MouseButton) bool {
	return in.MouseJust[b]
}
