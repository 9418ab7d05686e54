package httpapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/apperr"
	"github.com/thenoetrevino/sitebook/internal/blueprint"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

func clientAndFile(c echo.Context) (int, int, error) {
	clientID, err := pathID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	fileID, err := pathID(c, "fileID")
	if err != nil {
		return 0, 0, err
	}
	return clientID, fileID, nil
}

func (s *Server) handleListFiles(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	files, err := s.app.Files.List(c.Request().Context(), orgID(c), clientID, models.FileCategory(c.QueryParam("category")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, files)
}

// upload is an opened multipart "file" field
type upload struct {
	multipart.File
	name        string
	contentType string
}

func formFile(c echo.Context) (*upload, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: multipart field \"file\" is required", apperr.ErrInvalidInput)
	}
	body, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	// browsers send octet-stream for unknown types; let the name decide
	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == echo.MIMEOctetStream {
		contentType = ""
	}
	return &upload{File: body, name: header.Filename, contentType: contentType}, nil
}

// handleUploadFile stores the multipart "file" field under the "category" field
func (s *Server) handleUploadFile(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	body, err := formFile(c)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := s.app.Files.Upload(c.Request().Context(), storage.UploadRequest{
		OrganizationID: orgID(c),
		ClientID:       clientID,
		Category:       models.FileCategory(c.FormValue("category")),
		Name:           body.name,
		ContentType:    body.contentType,
		Body:           body,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) handleDownloadFile(c echo.Context) error {
	clientID, fileID, err := clientAndFile(c)
	if err != nil {
		return err
	}
	rc, f, err := s.app.Files.Open(c.Request().Context(), orgID(c), clientID, fileID)
	if err != nil {
		return err
	}
	defer rc.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", f.Name))
	res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(f.Size, 10))
	res.Header().Set(echo.HeaderContentType, f.ContentType)
	res.WriteHeader(http.StatusOK)
	_, err = io.Copy(res, rc)
	return err
}

func (s *Server) handleDeleteFile(c echo.Context) error {
	clientID, fileID, err := clientAndFile(c)
	if err != nil {
		return err
	}
	if err := s.app.Files.Delete(c.Request().Context(), orgID(c), clientID, fileID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleGetDrawing(c echo.Context) error {
	clientID, fileID, err := clientAndFile(c)
	if err != nil {
		return err
	}
	d, err := s.app.Blueprints.Load(c.Request().Context(), orgID(c), clientID, fileID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleSaveDrawing(c echo.Context) error {
	clientID, fileID, err := clientAndFile(c)
	if err != nil {
		return err
	}
	d := &blueprint.Drawing{}
	if err := c.Bind(d); err != nil {
		// decoding validates every command, report why it failed
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if err := s.app.Blueprints.Save(c.Request().Context(), orgID(c), clientID, fileID, d); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// handleRenderDrawing returns the blueprint with its drawing as PNG
func (s *Server) handleRenderDrawing(c echo.Context) error {
	clientID, fileID, err := clientAndFile(c)
	if err != nil {
		return err
	}
	width := 0
	if raw := c.QueryParam("width"); raw != "" {
		width, err = strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: width must be an integer", apperr.ErrInvalidInput)
		}
	}
	var buf bytes.Buffer
	if err := s.app.Blueprints.Export(c.Request().Context(), orgID(c), clientID, fileID, width, &buf); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
