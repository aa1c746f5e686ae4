package terminal

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"chosenoffset.com/confetti/internal/render"
)

// TerminalRenderer implements render.Renderer on cell canvases.
type TerminalRenderer struct {
	white *Canvas
}

// NewRenderer creates a new terminal renderer.
func NewRenderer() render.Renderer {
	return &TerminalRenderer{white: NewCanvas(1, 1)}
}

// NewImage creates a canvas large enough to hold width x height logical pixels.
func (r *TerminalRenderer) NewImage(width, height int) render.Image {
	return NewCanvas((width+CellWidth-1)/CellWidth, (height+CellHeight-1)/CellHeight)
}

// WhitePixel returns a placeholder source; canvases shade from vertex colours.
func (r *TerminalRenderer) WhitePixel() render.Image {
	return r.white
}

// FillCircle draws a filled circle on the destination canvas.
func (r *TerminalRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	dst.(*Canvas).FillCircle(x, y, radius, clr)
}

// DrawText writes text into cells. Scale is ignored.
func (r *TerminalRenderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	dst.(*Canvas).DrawText(str, x, y, clr)
}

// MeasureText returns one cell per rune.
func (r *TerminalRenderer) MeasureText(str string, scale float64) (width, height int) {
	return len([]rune(str)) * CellWidth, CellHeight
}

// InputManager turns tcell events into per-frame key and button state.
// Terminals report key presses but not releases, so a key counts as held
// only during the frame its press arrived in.
type InputManager struct {
	pendingKeys  map[render.Key]bool
	keys         map[render.Key]bool
	pendingClick bool
	click        bool
	buttonDown   bool
	cursorX      int
	cursorY      int
}

// NewInputManager creates an input manager with nothing pressed.
func NewInputManager() *InputManager {
	return &InputManager{
		pendingKeys: make(map[render.Key]bool),
		keys:        make(map[render.Key]bool),
	}
}

// HandleEvent records a tcell event for the next frame.
func (m *InputManager) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if key, ok := translateKey(ev); ok {
			m.pendingKeys[key] = true
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		m.cursorX = x*CellWidth + CellWidth/2
		m.cursorY = y*CellHeight + CellHeight/2
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !m.buttonDown {
			m.pendingClick = true
		}
		m.buttonDown = down
	}
}

// BeginFrame publishes events gathered since the previous frame.
func (m *InputManager) BeginFrame() {
	m.keys, m.pendingKeys = m.pendingKeys, m.keys
	for k := range m.pendingKeys {
		delete(m.pendingKeys, k)
	}
	m.click, m.pendingClick = m.pendingClick, false
}

// IsKeyPressed reports a key pressed during the previous frame.
func (m *InputManager) IsKeyPressed(key render.Key) bool {
	return m.keys[key]
}

// IsKeyJustPressed is identical to IsKeyPressed in a terminal.
func (m *InputManager) IsKeyJustPressed(key render.Key) bool {
	return m.keys[key]
}

// GetCursorPosition returns the centre of the last cell the mouse reported.
func (m *InputManager) GetCursorPosition() (x, y int) {
	return m.cursorX, m.cursorY
}

// IsMouseButtonPressed reports whether the left button is held.
func (m *InputManager) IsMouseButtonPressed(button render.MouseButton) bool {
	return button == render.MouseButtonLeft && m.buttonDown
}

// IsMouseButtonJustPressed reports a left click that began this frame.
func (m *InputManager) IsMouseButtonJustPressed(button render.MouseButton) bool {
	return button == render.MouseButtonLeft && m.click
}

func translateKey(ev *tcell.EventKey) (render.Key, bool) {
	switch ev.Key() {
	case tcell.KeyEscape:
		return render.KeyEscape, true
	case tcell.KeyEnter:
		return render.KeyEnter, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			return render.KeySpace, true
		case 'c', 'C':
			return render.KeyC, true
		case 'h', 'H':
			return render.KeyH, true
		case 'q', 'Q':
			return render.KeyEscape, true
		}
	}
	return 0, false
}

// Engine runs a render.Game on a tcell screen.
type Engine struct {
	screen        tcell.Screen
	input         *InputManager
	frameInterval time.Duration
}

// NewEngine creates an engine on the process terminal.
func NewEngine(input *InputManager) *Engine {
	return &Engine{input: input, frameInterval: 16 * time.Millisecond}
}

// NewEngineWithScreen creates an engine on an existing screen, such as a
// tcell simulation screen.
func NewEngineWithScreen(screen tcell.Screen, input *InputManager, frameInterval time.Duration) *Engine {
	return &Engine{screen: screen, input: input, frameInterval: frameInterval}
}

// SetWindowSize is a no-op; the terminal decides its size.
func (e *Engine) SetWindowSize(width, height int) {}

// SetWindowTitle is a no-op.
func (e *Engine) SetWindowTitle(title string) {}

// SetWindowResizable is a no-op; terminals are always resizable.
func (e *Engine) SetWindowResizable(resizable bool) {}

// RunGame drives game from a ticker until it returns an error, the user
// presses Ctrl-C, or the screen closes.
func (e *Engine) RunGame(game render.Game) error {
	screen := e.screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create terminal screen: %w", err)
		}
		screen = s
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()

	var canvas *Canvas
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyCtrlC {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
			e.input.HandleEvent(ev)

		case <-ticker.C:
			cols, rows := screen.Size()
			game.Layout(cols*CellWidth, rows*CellHeight)
			if canvas == nil || canvas.cols != cols || canvas.rows != rows {
				canvas = NewCanvas(cols, rows)
			}

			e.input.BeginFrame()
			if err := game.Update(); err != nil {
				if errors.Is(err, render.ErrTerminated) {
					return nil
				}
				return err
			}

			canvas.Clear()
			game.Draw(canvas)
			canvas.present(screen)
			screen.Show()
		}
	}
}
