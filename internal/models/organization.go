package models

import "time"

// Organization is the tenant boundary scoping every record to one business
type Organization struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GetID returns the organization id
func (o *Organization) GetID() int { return o.ID }

// Page margins of a printed contract, in CSS pixels
const (
	DefaultPaddingTop    = 150
	DefaultPaddingBottom = 100
	DefaultPaddingSide   = 40
	MaxPadding           = 1000
)

// BrandingImage names one of the images an organization prints on its documents
type BrandingImage string

const (
	BrandingLogo       BrandingImage = "logo"
	BrandingLetterhead BrandingImage = "letterhead"
)

// Valid reports whether b is a known branding image
func (b BrandingImage) Valid() bool {
	return b == BrandingLogo || b == BrandingLetterhead
}

// Padding is the space kept clear of the letterhead around a printed contract
type Padding struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Right  int `json:"right"`
	Left   int `json:"left"`
}

// DefaultPadding returns the margins used until an organization saves its own
func DefaultPadding() Padding {
	return Padding{
		Top:    DefaultPaddingTop,
		Bottom: DefaultPaddingBottom,
		Right:  DefaultPaddingSide,
		Left:   DefaultPaddingSide,
	}
}

// OrganizationSettings is the branding of an organization's documents. The
// object keys locate the uploaded images in the bucket.
type OrganizationSettings struct {
	OrganizationID int       `json:"organization_id"`
	LogoURL        string    `json:"logo_url"`
	LogoKey        string    `json:"-"`
	LetterheadURL  string    `json:"letterhead_url"`
	LetterheadKey  string    `json:"-"`
	Padding        Padding   `json:"padding"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings of an organization that never saved any
func DefaultSettings(orgID int) *OrganizationSettings {
	return &OrganizationSettings{OrganizationID: orgID, Padding: DefaultPadding()}
}

// Image returns the key and URL of one branding image
func (s *OrganizationSettings) Image(b BrandingImage) (key, url string) {
	if b == BrandingLetterhead {
		return s.LetterheadKey, s.LetterheadURL
	}
	return s.LogoKey, s.LogoURL
}

// SetImage points one branding image at an uploaded object
func (s *OrganizationSettings) SetImage(b BrandingImage, key, url string) {
	if b == BrandingLetterhead {
		s.LetterheadKey, s.LetterheadURL = key, url
		return
	}
	s.LogoKey, s.LogoURL = key, url
}

// Role is a member's permission level inside an organization
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleWorker
}

// CanManage reports whether the role may change team and organization settings
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Member is a team member profile. OrganizationID is 0 for a profile that was
// never attached to an organization.
type Member struct {
	ID             int       `json:"id"`
	OrganizationID int       `json:"organization_id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           Role      `json:"role"`
	Color          string    `json:"color"`
	AvatarURL      string    `json:"avatar_url"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// GetID returns the member id
func (m *Member) GetID() int { return m.ID }

// Invite lets an email address join an organization with a role on sign up
type Invite struct {
	ID             int       `json:"id"`
	OrganizationID int       `json:"organization_id"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}
