package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/amaralkaff/lsa-backend/internal/model"
	"github.com/amaralkaff/lsa-backend/internal/repository"
	"github.com/amaralkaff/lsa-backend/internal/upload"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrForbidden          = errors.New("not allowed to modify this item")
	ErrInvalidProgramType = errors.New("invalid program type")
	ErrImageRequired      = errors.New("image is required")
)

// ContentStore is the persistence a content type needs.
type ContentStore[T model.Content] interface {
	Insert(ctx context.Context, doc T) error
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context, filter repository.Filter) ([]T, error)
	Delete(ctx context.Context, id string) error
}

// ContentService implements list, get, create and delete for one content
// type. Each document owns one uploaded image.
type ContentService[T model.Content] struct {
	store    ContentStore[T]
	uploads  upload.Store
	validate *validator.Validate
	now      func() time.Time

	// authorOnlyDelete restricts Delete to the author or an administrator.
	authorOnlyDelete bool
}

func newContentService[T model.Content](store ContentStore[T], uploads upload.Store, authorOnlyDelete bool) *ContentService[T] {
	return &ContentService[T]{
		store:            store,
		uploads:          uploads,
		validate:         newValidator(),
		now:              time.Now,
		authorOnlyDelete: authorOnlyDelete,
	}
}

// Get returns one document by its hex id.
func (s *ContentService[T]) Get(ctx context.Context, id string) (T, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		var zero T
		return zero, mapStoreError(err)
	}
	return *doc, nil
}

func (s *ContentService[T]) list(ctx context.Context, filter repository.Filter) ([]T, error) {
	docs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return docs, nil
}

// create validates input, stores the image and inserts the document built
// by build. The image is removed again if the insert fails.
func (s *ContentService[T]) create(ctx context.Context, input any, image upload.File, build func(id bson.ObjectID, imageRef string, now time.Time) T) (T, error) {
	var zero T
	if err := validateStruct(s.validate, input); err != nil {
		return zero, err
	}
	if image.Reader == nil {
		return zero, ErrImageRequired
	}

	ref, err := s.uploads.Save(ctx, image)
	if err != nil {
		return zero, err
	}

	doc := build(bson.NewObjectID(), ref, s.now().UTC())
	if err := s.store.Insert(ctx, doc); err != nil {
		s.removeImage(ctx, ref)
		return zero, mapStoreError(err)
	}
	return doc, nil
}

// Delete removes a document and its image.
func (s *ContentService[T]) Delete(ctx context.Context, user *model.User, id string) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}

	if s.authorOnlyDelete && (*doc).Owner() != user.Email && !user.IsAdmin {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}
	s.removeImage(ctx, (*doc).ImageRef())
	return nil
}

func (s *ContentService[T]) removeImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.uploads.Remove(ctx, ref); err != nil {
		slog.Warn("failed to remove uploaded image", "ref", ref, "error", err)
	}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidID):
		return ErrInvalidID
	}
	return err
}

// ProgramService manages programs.
type ProgramService struct {
	*ContentService[model.Program]
}

// NewProgramService creates a ProgramService.
func NewProgramService(store ContentStore[model.Program], uploads upload.Store) *ProgramService {
	return &ProgramService{newContentService(store, uploads, false)}
}

// List returns programs of the given type. Empty or "all" returns every program.
func (s *ProgramService) List(ctx context.Context, programType string) ([]model.Program, error) {
	switch programType {
	case "", model.ProgramTypeAll:
		return s.list(ctx, nil)
	case model.ProgramTypeHumanLibrary, model.ProgramTypeWorkshop, model.ProgramTypeSosialisasi:
		return s.list(ctx, repository.Filter{"program_type": programType})
	}
	return nil, ErrInvalidProgramType
}

// Create validates the input, stores the image and inserts the program.
func (s *ProgramService) Create(ctx context.Context, author *model.User, in model.ProgramInput, image upload.File) (model.Program, error) {
	return s.create(ctx, in, image, func(id bson.ObjectID, ref string, now time.Time) model.Program {
		return model.Program{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			ProgramType: in.ProgramType,
			Image:       ref,
			StartDate:   in.StartDate.UTC(),
			EndDate:     in.EndDate.UTC(),
			Author:      author.Email,
			CreatedAt:   now,
		}
	})
}

// BlogService manages blog posts. Only the author or an admin may delete a post.
type BlogService struct {
	*ContentService[model.Blog]
}

// NewBlogService creates a BlogService.
func NewBlogService(store ContentStore[model.Blog], uploads upload.Store) *BlogService {
	return &BlogService{newContentService(store, uploads, true)}
}

// List returns every post, newest first.
func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	return s.list(ctx, nil)
}

// Create validates the input, stores the image and inserts the post.
func (s *BlogService) Create(ctx context.Context, author *model.User, in model.BlogInput, image upload.File) (model.Blog, error) {
	return s.create(ctx, in, image, func(id bson.ObjectID, ref string, now time.Time) model.Blog {
		return model.Blog{
			ID:        id,
			Title:     in.Title,
			Content:   in.Content,
			Image:     ref,
			Author:    author.Email,
			CreatedAt: now,
		}
	})
}

// GalleryService manages gallery photos.
type GalleryService struct {
	*ContentService[model.GalleryPhoto]
}

// NewGalleryService creates a GalleryService.
func NewGalleryService(store ContentStore[model.GalleryPhoto], uploads upload.Store) *GalleryService {
	return &GalleryService{newContentService(store, uploads, false)}
}

// List returns every photo, newest first.
func (s *GalleryService) List(ctx context.Context) ([]model.GalleryPhoto, error) {
	return s.list(ctx, nil)
}

// Create validates the input, stores the photo and inserts the record.
func (s *GalleryService) Create(ctx context.Context, author *model.User, in model.GalleryInput, image upload.File) (model.GalleryPhoto, error) {
	return s.create(ctx, in, image, func(id bson.ObjectID, ref string, now time.Time) model.GalleryPhoto {
		return model.GalleryPhoto{
			ID:          id,
			Title:       in.Title,
			Description: in.Description,
			Image:       ref,
			Author:      author.Email,
			CreatedAt:   now,
		}
	})
}

// PartnerService manages partner organizations.
type PartnerService struct {
	*ContentService[model.Partner]
}

// NewPartnerService creates a PartnerService.
func NewPartnerService(store ContentStore[model.Partner], uploads upload.Store) *PartnerService {
	return &PartnerService{newContentService(store, uploads, false)}
}

// List returns every partner, newest first.
func (s *PartnerService) List(ctx context.Context) ([]model.Partner, error) {
	return s.list(ctx, nil)
}

// Create checks the website URL, stores the logo and inserts the partner.
func (s *PartnerService) Create(ctx context.Context, author *model.User, in model.PartnerInput, logo upload.File) (model.Partner, error) {
	if in.WebsiteURL != "" {
		if err := checkWebsiteURL(in.WebsiteURL); err != nil {
			return model.Partner{}, err
		}
	}
	return s.create(ctx, in, logo, func(id bson.ObjectID, ref string, now time.Time) model.Partner {
		return model.Partner{
			ID:          id,
			Name:        in.Name,
			Description: in.Description,
			WebsiteURL:  in.WebsiteURL,
			Logo:        ref,
			Author:      author.Email,
			CreatedAt:   now,
		}
	})
}

// checkWebsiteURL accepts absolute http and https URLs with a host.
func checkWebsiteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ValidationError{Field: "website_url", Message: fmt.Sprintf("must be an http or https URL, got %q", raw)}
	}
	return nil
}
