package blueprint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

// Rendering limits
const (
	DefaultRenderWidth = 1600
	MaxRenderWidth     = 8000
)

// ErrNotBlueprint is returned for files outside the blueprint category
var ErrNotBlueprint = errors.New("file is not a blueprint")

// ErrInvalidRenderWidth is returned for render widths outside (0, MaxRenderWidth]
var ErrInvalidRenderWidth = fmt.Errorf("render width must be between 1 and %d", MaxRenderWidth)

// Files is the part of the file service drawings are stored through
type Files interface {
	Get(ctx context.Context, orgID, clientID, id int) (*models.ProjectFile, error)
	Open(ctx context.Context, orgID, clientID, id int) (io.ReadCloser, *models.ProjectFile, error)
	SaveAnnotations(ctx context.Context, orgID, clientID, id int, data []byte) error
}

var _ Files = storage.Service(nil)

// Service loads, saves and renders the drawing attached to a blueprint file
type Service struct {
	files Files
}

// NewService creates a blueprint service over the file service
func NewService(files Files) *Service {
	return &Service{files: files}
}

// Load returns the saved drawing, or an empty one when none was saved
func (s *Service) Load(ctx context.Context, orgID, clientID, fileID int) (*Drawing, error) {
	f, err := s.blueprint(ctx, orgID, clientID, fileID)
	if err != nil {
		return nil, err
	}
	d := &Drawing{}
	if len(f.Annotations) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(f.Annotations, d); err != nil {
		return nil, fmt.Errorf("failed to decode drawing of file %d: %w", fileID, err)
	}
	return d, nil
}

// Save persists the drawing's command history on the file record
func (s *Service) Save(ctx context.Context, orgID, clientID, fileID int, d *Drawing) error {
	if _, err := s.blueprint(ctx, orgID, clientID, fileID); err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode drawing: %w", err)
	}
	return s.files.SaveAnnotations(ctx, orgID, clientID, fileID, data)
}

// Export renders the drawing over the blueprint image as PNG. The output height
// follows the image aspect ratio; files that are not decodable images (PDF
// plans) render on blank paper using the canvas aspect ratio.
func (s *Service) Export(ctx context.Context, orgID, clientID, fileID, width int, w io.Writer) error {
	if width == 0 {
		width = DefaultRenderWidth
	}
	if width < 0 || width > MaxRenderWidth {
		return ErrInvalidRenderWidth
	}
	d, err := s.Load(ctx, orgID, clientID, fileID)
	if err != nil {
		return err
	}

	rc, _, err := s.files.Open(ctx, orgID, clientID, fileID)
	if err != nil {
		return err
	}
	background, _, decodeErr := image.Decode(rc)
	rc.Close()
	if decodeErr != nil {
		background = nil
	}

	height := width
	switch {
	case background != nil && background.Bounds().Dx() > 0:
		b := background.Bounds()
		height = width * b.Dy() / b.Dx()
	case d.Width > 0 && d.Height > 0:
		height = int(float64(width) * d.Height / d.Width)
	}
	return EncodePNG(w, d.Render(width, max(height, 1), background))
}

func (s *Service) blueprint(ctx context.Context, orgID, clientID, fileID int) (*models.ProjectFile, error) {
	f, err := s.files.Get(ctx, orgID, clientID, fileID)
	if err != nil {
		return nil, err
	}
	if f.Category != models.CategoryBlueprint {
		return nil, ErrNotBlueprint
	}
	return f, nil
}
