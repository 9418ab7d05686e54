package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/thenoetrevino/sitebook/internal/database"
	"github.com/thenoetrevino/sitebook/internal/events"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/services/organization"
	"go.uber.org/zap"
)

// DefaultMaxUploadSize bounds a single upload
const DefaultMaxUploadSize int64 = 25 << 20

// Service defines file operations on a client's project
type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*models.ProjectFile, error)
	List(ctx context.Context, orgID, clientID int, category models.FileCategory) ([]*models.ProjectFile, error)
	Get(ctx context.Context, orgID, clientID, id int) (*models.ProjectFile, error)
	Open(ctx context.Context, orgID, clientID, id int) (io.ReadCloser, *models.ProjectFile, error)
	SaveAnnotations(ctx context.Context, orgID, clientID, id int, data []byte) error
	Delete(ctx context.Context, orgID, clientID, id int) error

	UploadBranding(ctx context.Context, req BrandingUpload) (*models.OrganizationSettings, error)
}

// BrandingUpload replaces the logo or the letterhead of an organization
type BrandingUpload struct {
	OrganizationID int
	Image          models.BrandingImage
	Name           string
	ContentType    string
	Body           io.Reader
}

// UploadRequest carries a new file. ContentType is guessed from the name when empty.
type UploadRequest struct {
	OrganizationID int
	ClientID       int
	Category       models.FileCategory
	Name           string
	ContentType    string
	Body           io.Reader
}

// Option configures the service
type Option func(*service)

// WithMaxUploadSize overrides DefaultMaxUploadSize
func WithMaxUploadSize(n int64) Option {
	return func(s *service) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithLogger sets the logger used for cleanup failures
func WithLogger(l *zap.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

type service struct {
	store       *database.Store
	bucket      Bucket
	eventClient events.EventPublisher
	maxSize     int64
	logger      *zap.Logger
}

// NewService creates a new file service over bucket
func NewService(store *database.Store, bucket Bucket, eventClient events.EventPublisher, opts ...Option) Service {
	s := &service{
		store:       store,
		bucket:      bucket,
		eventClient: eventClient,
		maxSize:     DefaultMaxUploadSize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ObjectKey builds the key clients/<id>/<category>/<uuid><ext>
func ObjectKey(clientID int, category models.FileCategory, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("clients/%d/%s/%s%s", clientID, category, uuid.NewString(), ext)
}

// BrandingKey builds the key organizations/<id>/<image>/<uuid><ext>
func BrandingKey(orgID int, image models.BrandingImage, name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	return fmt.Sprintf("organizations/%d/%s/%s%s", orgID, image, uuid.NewString(), ext)
}

// Upload stores the blob and then its record. The blob is removed again when
// the record cannot be written.
func (s *service) Upload(ctx context.Context, req UploadRequest) (*models.ProjectFile, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, req.Category)
	}
	if req.Body == nil {
		return nil, errors.New("upload body cannot be nil")
	}
	if err := s.requireClient(ctx, req.OrganizationID, req.ClientID); err != nil {
		return nil, err
	}

	key := ObjectKey(req.ClientID, req.Category, name)
	size, err := s.bucket.Put(ctx, key, io.LimitReader(req.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if size > s.maxSize {
		s.discard(ctx, key)
		return nil, ErrTooLarge
	}

	f, err := s.store.Files.Create(ctx, &models.ProjectFile{
		ClientID:    req.ClientID,
		Category:    req.Category,
		Name:        name,
		ObjectKey:   key,
		URL:         s.bucket.URL(key),
		ContentType: detectType(name, req.ContentType),
		Size:        size,
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	s.publish(req.OrganizationID, f.ID)
	return f, nil
}

// UploadBranding stores an image and points the organization's settings at
// it. The image it replaces is removed from the bucket.
func (s *service) UploadBranding(ctx context.Context, req BrandingUpload) (*models.OrganizationSettings, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	if !req.Image.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBranding, req.Image)
	}
	if !strings.HasPrefix(detectType(name, req.ContentType), "image/") {
		return nil, ErrNotImage
	}
	if req.Body == nil {
		return nil, errors.New("upload body cannot be nil")
	}
	if req.OrganizationID <= 0 {
		return nil, organization.ErrInvalidOrgID
	}
	if _, err := s.store.Organizations.GetByID(ctx, req.OrganizationID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, organization.ErrOrgNotFound
		}
		return nil, err
	}

	key := BrandingKey(req.OrganizationID, req.Image, name)
	size, err := s.bucket.Put(ctx, key, io.LimitReader(req.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if size > s.maxSize {
		s.discard(ctx, key)
		return nil, ErrTooLarge
	}

	var saved *models.OrganizationSettings
	var previous string
	err = s.store.InTx(ctx, func(tx *database.Store) error {
		current, err := organization.LoadSettings(ctx, tx, req.OrganizationID)
		if err != nil {
			return err
		}
		previous, _ = current.Image(req.Image)
		current.SetImage(req.Image, key, s.bucket.URL(key))
		saved, err = tx.Settings.Upsert(ctx, current)
		return err
	})
	if err != nil {
		s.discard(ctx, key)
		return nil, err
	}
	if previous != "" {
		s.discard(ctx, previous)
	}

	events.Publish(s.eventClient, s.logger, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: req.OrganizationID,
		Entity:         "settings",
		EntityID:       req.OrganizationID,
	})
	return saved, nil
}

// List returns a client's files, newest first. An empty category lists all.
func (s *service) List(ctx context.Context, orgID, clientID int, category models.FileCategory) ([]*models.ProjectFile, error) {
	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	return s.store.Files.ListByClient(ctx, clientID, category)
}

func (s *service) Get(ctx context.Context, orgID, clientID, id int) (*models.ProjectFile, error) {
	if id <= 0 {
		return nil, ErrInvalidFileID
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	f, err := s.store.Files.GetByID(ctx, clientID, id)
	if err != nil {
		return nil, lookupError(err)
	}
	return f, nil
}

// Open returns the blob of a file with its record; the caller closes the reader
func (s *service) Open(ctx context.Context, orgID, clientID, id int) (io.ReadCloser, *models.ProjectFile, error) {
	f, err := s.Get(ctx, orgID, clientID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.bucket.Open(ctx, f.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return rc, f, nil
}

// SaveAnnotations stores serialized drawing commands on a file record
func (s *service) SaveAnnotations(ctx context.Context, orgID, clientID, id int, data []byte) error {
	if id <= 0 {
		return ErrInvalidFileID
	}
	if err := s.requireClient(ctx, orgID, clientID); err != nil {
		return err
	}
	if err := s.store.Files.SetAnnotations(ctx, clientID, id, data); err != nil {
		return lookupError(err)
	}
	s.publish(orgID, id)
	return nil
}

// Delete removes the record, then the blob. A blob that cannot be removed is
// logged and left behind.
func (s *service) Delete(ctx context.Context, orgID, clientID, id int) error {
	f, err := s.Get(ctx, orgID, clientID, id)
	if err != nil {
		return err
	}
	if err := s.store.Files.Delete(ctx, clientID, id); err != nil {
		return lookupError(err)
	}
	s.discard(ctx, f.ObjectKey)
	s.publish(orgID, id)
	return nil
}

// cleanName keeps the base name of an uploaded file
func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(filepath.Base(strings.ReplaceAll(raw, "\\", "/")))
	if name == "" || name == "." || name == "/" {
		return "", ErrEmptyName
	}
	return name, nil
}

// detectType falls back to the extension of name when no content type was sent
func detectType(name, contentType string) string {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return contentType
}

func (s *service) discard(ctx context.Context, key string) {
	if err := s.bucket.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to remove blob", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) requireClient(ctx context.Context, orgID, clientID int) error {
	if clientID <= 0 {
		return ErrInvalidClientID
	}
	if _, err := s.store.Clients.GetByID(ctx, orgID, clientID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	return nil
}

func lookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return ErrFileNotFound
	}
	return err
}

func (s *service) publish(orgID, id int) {
	events.Publish(s.eventClient, s.logger, events.Event{
		Type:           events.EventDatabaseChanged,
		OrganizationID: orgID,
		Entity:         "file",
		EntityID:       id,
	})
}
