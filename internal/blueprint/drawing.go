// Package blueprint holds annotation drawings over blueprint files. A drawing
// is an ordered command list; pixels are only produced when it is rendered, so
// the same drawing renders at any resolution.
package blueprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Kind names a drawing command
type Kind string

const (
	KindStroke      Kind = "stroke"
	KindEraser      Kind = "eraser"
	KindLine        Kind = "line"
	KindArrow       Kind = "arrow"
	KindDoubleArrow Kind = "double_arrow"
	KindRect        Kind = "rect"
	KindEllipse     Kind = "ellipse"
	KindText        Kind = "text"
	KindClear       Kind = "clear"
)

// formatVersion is bumped when the persisted layout changes
const formatVersion = 1

// Validation errors
var (
	ErrUnknownKind   = errors.New("unknown drawing command")
	ErrInvalidColor  = errors.New("invalid color")
	ErrInvalidWidth  = errors.New("line width must be positive")
	ErrInvalidPoints = errors.New("wrong number of points for command")
	ErrEmptyText     = errors.New("text command needs text")
	ErrInvalidCanvas = errors.New("canvas size cannot be negative")
	ErrVersion       = errors.New("unsupported drawing format")
)

// Point is a position in canvas units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Command is one drawing operation. Strokes carry their whole path; shapes
// carry a start and an end point; text carries its top-left anchor.
type Command struct {
	Kind   Kind    `json:"kind"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Points []Point `json:"points,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Validate checks that the command can be replayed
func (c Command) Validate() error {
	switch c.Kind {
	case KindClear:
		return nil
	case KindStroke, KindEraser:
		if len(c.Points) == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidPoints, c.Kind)
		}
	case KindLine, KindArrow, KindDoubleArrow, KindRect, KindEllipse:
		if len(c.Points) != 2 {
			return fmt.Errorf("%w: %s", ErrInvalidPoints, c.Kind)
		}
	case KindText:
		if len(c.Points) != 1 {
			return fmt.Errorf("%w: %s", ErrInvalidPoints, c.Kind)
		}
		if strings.TrimSpace(c.Text) == "" {
			return ErrEmptyText
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}

	if c.Kind != KindText && c.Width <= 0 {
		return ErrInvalidWidth
	}
	if c.Kind != KindEraser {
		if _, err := ParseColor(c.Color); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor reads #RGB or #RRGGBB into an opaque color
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Drawing is an editable command list with undo history. The zero value is an
// empty drawing without a canvas size, which renders at scale 1.
type Drawing struct {
	Width  float64
	Height float64
	Grid   bool

	commands []Command
	redo     []Command
}

// New creates an empty drawing on a canvas of the given size
func New(width, height float64) (*Drawing, error) {
	if width < 0 || height < 0 {
		return nil, ErrInvalidCanvas
	}
	return &Drawing{Width: width, Height: height}, nil
}

// Push appends a command and drops the redo history
func (d *Drawing) Push(c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Points = append([]Point(nil), c.Points...)
	d.commands = append(d.commands, c)
	d.redo = nil
	return nil
}

// Undo removes the latest command; it reports false when there is nothing to undo
func (d *Drawing) Undo() bool {
	if len(d.commands) == 0 {
		return false
	}
	last := d.commands[len(d.commands)-1]
	d.commands = d.commands[:len(d.commands)-1]
	d.redo = append(d.redo, last)
	return true
}

// Redo reapplies the latest undone command
func (d *Drawing) Redo() bool {
	if len(d.redo) == 0 {
		return false
	}
	last := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	d.commands = append(d.commands, last)
	return true
}

// Clear wipes the visible annotations. It is recorded as a command so Undo
// brings them back. Clearing an already empty picture does nothing.
func (d *Drawing) Clear() {
	if len(d.Visible()) == 0 {
		return
	}
	d.commands = append(d.commands, Command{Kind: KindClear})
	d.redo = nil
}

// CanUndo reports whether Undo would change the drawing
func (d *Drawing) CanUndo() bool { return len(d.commands) > 0 }

// CanRedo reports whether Redo would change the drawing
func (d *Drawing) CanRedo() bool { return len(d.redo) > 0 }

// Commands returns a copy of the full command history
func (d *Drawing) Commands() []Command {
	return append([]Command(nil), d.commands...)
}

// Visible returns the commands drawn since the last clear
func (d *Drawing) Visible() []Command {
	for i := len(d.commands) - 1; i >= 0; i-- {
		if d.commands[i].Kind == KindClear {
			return append([]Command(nil), d.commands[i+1:]...)
		}
	}
	return d.Commands()
}

type document struct {
	Version  int       `json:"version"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Grid     bool      `json:"grid,omitempty"`
	Commands []Command `json:"commands"`
}

// MarshalJSON persists the canvas and the command history; redo history is not kept
func (d *Drawing) MarshalJSON() ([]byte, error) {
	cmds := d.commands
	if cmds == nil {
		cmds = []Command{}
	}
	return json.Marshal(document{
		Version:  formatVersion,
		Width:    d.Width,
		Height:   d.Height,
		Grid:     d.Grid,
		Commands: cmds,
	})
}

// UnmarshalJSON restores a drawing, validating every command
func (d *Drawing) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Version != formatVersion {
		return fmt.Errorf("%w: version %d", ErrVersion, doc.Version)
	}
	if doc.Width < 0 || doc.Height < 0 {
		return ErrInvalidCanvas
	}
	for i, c := range doc.Commands {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	}
	*d = Drawing{Width: doc.Width, Height: doc.Height, Grid: doc.Grid, commands: doc.Commands}
	return nil
}
