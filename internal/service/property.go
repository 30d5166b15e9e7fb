package service

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/bienesraices/boutique/internal/model"
	"github.com/bienesraices/boutique/internal/repository"
	"github.com/bienesraices/boutique/internal/storage"
	"github.com/bienesraices/boutique/internal/validation"
)

const featuredCount = 3

var ErrPropertyNotFound = repository.ErrPropertyNotFound

// PropertyInput is the validated form payload for create and edit.
type PropertyInput struct {
	Name        string
	Description string
	Location    string
	Price       float64
}

// PropertyService handles listing CRUD and the image files attached to
// a listing. Database rows are the source of truth; file operations on
// delete are best-effort.
type PropertyService struct {
	properties repository.PropertyRepository
	storage    storage.Storage

	now func() time.Time
}

func NewPropertyService(properties repository.PropertyRepository, st storage.Storage) *PropertyService {
	return &PropertyService{
		properties: properties,
		storage:    st,
		now:        time.Now,
	}
}

func (s *PropertyService) ByID(id int64) (*model.Property, error) {
	return s.properties.ByID(id)
}

func (s *PropertyService) All() ([]*model.Property, error) {
	return s.properties.All()
}

// Featured returns the listings shown on the landing page, newest
// first.
func (s *PropertyService) Featured() ([]*model.Property, error) {
	return s.properties.Latest(featuredCount)
}

// Create stores a new listing with its uploaded images. The main image
// is optional; repertory uploads are appended in form order.
func (s *PropertyService) Create(input PropertyInput, mainImage *multipart.FileHeader, repertory []*multipart.FileHeader) (*model.Property, error) {
	now := s.now()
	property := &model.Property{
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		Price:       input.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.attachImages(property, mainImage, repertory)
	if err != nil {
		return nil, err
	}

	err = s.properties.Create(property)
	if err != nil {
		return nil, err
	}

	slog.Info("property created", "property_id", property.ID, "name", property.Name)
	return property, nil
}

// Update edits the listing fields and appends any newly uploaded
// images. A new main image replaces the old reference; existing
// repertory images are kept and new ones appended after them.
func (s *PropertyService) Update(id int64, input PropertyInput, mainImage *multipart.FileHeader, repertory []*multipart.FileHeader) (*model.Property, error) {
	property, err := s.properties.ByID(id)
	if err != nil {
		return nil, err
	}

	property.Name = input.Name
	property.Description = input.Description
	property.Location = input.Location
	property.Price = input.Price
	property.UpdatedAt = s.now()

	err = s.attachImages(property, mainImage, repertory)
	if err != nil {
		return nil, err
	}

	err = s.properties.Update(property)
	if err != nil {
		return nil, err
	}

	slog.Info("property updated", "property_id", property.ID)
	return property, nil
}

// Delete removes the listing row, then its files. File removal failures
// are logged, not returned; a dangling file is harmless next to a
// dangling database reference.
func (s *PropertyService) Delete(id int64) error {
	property, err := s.properties.ByID(id)
	if err != nil {
		return err
	}

	err = s.properties.Delete(id)
	if err != nil {
		return err
	}

	if property.MainImage != nil && *property.MainImage != "" {
		s.deleteFile(*property.MainImage)
	}
	for _, ref := range property.RepertoryImages {
		s.deleteFile(ref)
	}

	slog.Info("property deleted", "property_id", id)
	return nil
}

// RemoveRepertoryImage deletes one repertory image by its stored path.
// The listing is found by substring match on the stored list; exactly
// one occurrence is removed from it. Returns false when no listing
// carries the image.
func (s *PropertyService) RemoveRepertoryImage(path string) (bool, error) {
	if path == "" {
		return false, nil
	}

	property, err := s.properties.ByRepertoryImage(path)
	if errors.Is(err, repository.ErrPropertyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	updated, removed := property.RepertoryImages.Remove(path)
	if !removed {
		// The LIKE match was a false positive (path is a substring of
		// another entry); nothing to remove.
		return false, nil
	}

	property.RepertoryImages = updated
	property.UpdatedAt = s.now()
	err = s.properties.Update(property)
	if err != nil {
		return false, err
	}

	s.deleteFile(path)
	slog.Info("repertory image removed", "property_id", property.ID, "image", path)
	return true, nil
}

func (s *PropertyService) attachImages(property *model.Property, mainImage *multipart.FileHeader, repertory []*multipart.FileHeader) error {
	if mainImage != nil {
		ref, err := s.saveUpload(mainImage)
		if err != nil {
			return err
		}
		property.MainImage = &ref
	}

	refs := make([]string, 0, len(repertory))
	for _, header := range repertory {
		if header == nil || header.Filename == "" {
			continue
		}
		ref, err := s.saveUpload(header)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}
	if len(refs) > 0 {
		updated, err := property.RepertoryImages.Append(refs...)
		if err != nil {
			return err
		}
		property.RepertoryImages = updated
	}
	return nil
}

// saveUpload validates the upload and writes it under a sanitized
// filename. Same-named uploads overwrite each other; the name is kept
// recognizable on purpose.
func (s *PropertyService) saveUpload(header *multipart.FileHeader) (string, error) {
	err := validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		return "", err
	}

	filename := storage.SanitizeFilename(header.Filename)
	if filename == "" {
		return "", fmt.Errorf("invalid upload filename %q", header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	return s.storage.Save(filename, file)
}

func (s *PropertyService) deleteFile(ref string) {
	err := s.storage.Delete(ref)
	if err != nil {
		slog.Warn("failed to delete image file", "ref", ref, "error", err)
	}
}
