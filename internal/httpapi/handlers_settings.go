package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thenoetrevino/sitebook/internal/models"
	"github.com/thenoetrevino/sitebook/internal/storage"
)

// OrganizationResponse is the body of GET /organization
type OrganizationResponse struct {
	*models.Organization
	Settings *models.OrganizationSettings `json:"settings"`
	Weekend  []string                     `json:"weekend"`
	Timezone string                       `json:"timezone"`
}

type profileBody struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

func (s *Server) handleOrganization(c echo.Context) error {
	ctx := c.Request().Context()
	org, err := s.app.Organizations.Get(ctx, orgID(c))
	if err != nil {
		return err
	}
	settings, err := s.app.Organizations.Settings(ctx, org.ID)
	if err != nil {
		return err
	}
	weekend := make([]string, 0, 2)
	for _, d := range s.app.Calendar.Weekend() {
		weekend = append(weekend, d.String())
	}
	return c.JSON(http.StatusOK, OrganizationResponse{
		Organization: org,
		Settings:     settings,
		Weekend:      weekend,
		Timezone:     s.app.Calendar.Location().String(),
	})
}

func (s *Server) handleGetSettings(c echo.Context) error {
	settings, err := s.app.Organizations.Settings(c.Request().Context(), orgID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// handleSavePadding upserts the page margins of printed contracts
func (s *Server) handleSavePadding(c echo.Context) error {
	var body models.Padding
	if err := bind(c, &body); err != nil {
		return err
	}
	settings, err := s.app.Organizations.SavePadding(c.Request().Context(), orgID(c), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// handleUploadBranding replaces the logo or letterhead with the multipart "file" field
func (s *Server) handleUploadBranding(c echo.Context) error {
	upload, err := formFile(c)
	if err != nil {
		return err
	}
	defer upload.Close()

	settings, err := s.app.Files.UploadBranding(c.Request().Context(), storage.BrandingUpload{
		OrganizationID: orgID(c),
		Image:          models.BrandingImage(c.Param("image")),
		Name:           upload.name,
		ContentType:    upload.contentType,
		Body:           upload,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// handleUpdateProfile lets the signed in member change their own name and avatar
func (s *Server) handleUpdateProfile(c echo.Context) error {
	var body profileBody
	if err := bind(c, &body); err != nil {
		return err
	}
	sess := currentSession(c)
	m, err := s.app.Team.UpdateProfile(c.Request().Context(), sess.OrganizationID, sess.MemberID, body.FullName, body.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// handleContractDocument serves the printable contract page
func (s *Server) handleContractDocument(c echo.Context) error {
	clientID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	doc, err := s.app.Contracts.Document(c.Request().Context(), orgID(c), clientID)
	if err != nil {
		return err
	}
	page, err := doc.HTML()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextHTMLCharsetUTF8, page)
}
