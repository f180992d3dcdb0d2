package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Content is implemented by every publishable document type.
type Content interface {
	DocumentID() bson.ObjectID
	ImageRef() string
	Owner() string
}

// Program types accepted on create. "all" is only meaningful as a list filter.
const (
	ProgramTypeAll          = "all"
	ProgramTypeHumanLibrary = "human_library"
	ProgramTypeWorkshop     = "workshop"
	ProgramTypeSosialisasi  = "sosialisasi"
)

// Program is an event or activity run by the organization.
type Program struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	ProgramType string        `bson:"program_type" json:"program_type"`
	Image       string        `bson:"image" json:"image"`
	StartDate   time.Time     `bson:"start_date" json:"start_date"`
	EndDate     time.Time     `bson:"end_date" json:"end_date"`
	Author      string        `bson:"author" json:"author"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}

// DocumentID returns the program's ObjectID.
func (p Program) DocumentID() bson.ObjectID { return p.ID }

// ImageRef returns the program image reference.
func (p Program) ImageRef() string { return p.Image }

// Owner returns the author's email.
func (p Program) Owner() string { return p.Author }

// ProgramInput holds the form fields for creating a program.
type ProgramInput struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"required"`
	ProgramType string    `json:"program_type" validate:"required,oneof=human_library workshop sosialisasi"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}

// Blog is an article published on the site.
type Blog struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	Title     string        `bson:"title" json:"title"`
	Content   string        `bson:"content" json:"content"`
	Image     string        `bson:"image" json:"image"`
	Author    string        `bson:"author" json:"author"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// DocumentID returns the post's ObjectID.
func (b Blog) DocumentID() bson.ObjectID { return b.ID }

// ImageRef returns the post image reference.
func (b Blog) ImageRef() string { return b.Image }

// Owner returns the author's email.
func (b Blog) Owner() string { return b.Author }

// BlogInput holds the form fields for creating a blog post.
type BlogInput struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required"`
}

// GalleryPhoto is a single photo in the gallery.
type GalleryPhoto struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Image       string        `bson:"image" json:"image"`
	Author      string        `bson:"author" json:"author"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}

// DocumentID returns the photo's ObjectID.
func (g GalleryPhoto) DocumentID() bson.ObjectID { return g.ID }

// ImageRef returns the photo reference.
func (g GalleryPhoto) ImageRef() string { return g.Image }

// Owner returns the uploader's email.
func (g GalleryPhoto) Owner() string { return g.Author }

// GalleryInput holds the form fields for adding a gallery photo.
type GalleryInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// Partner is a partner organization shown with its logo.
type Partner struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	WebsiteURL  string        `bson:"website_url" json:"website_url"`
	Logo        string        `bson:"logo" json:"logo"`
	Author      string        `bson:"author" json:"author"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}

// DocumentID returns the partner's ObjectID.
func (p Partner) DocumentID() bson.ObjectID { return p.ID }

// ImageRef returns the logo reference.
func (p Partner) ImageRef() string { return p.Logo }

// Owner returns the email of the user who added the partner.
func (p Partner) Owner() string { return p.Author }

// PartnerInput holds the form fields for adding a partner. The logo
// travels as a separate file part.
type PartnerInput struct {
	Name        string `json:"name" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"omitempty,min=10"`
	WebsiteURL  string `json:"website_url" validate:"required,url"`
}

// Envelope wraps content responses.
type Envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}
