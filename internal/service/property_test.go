package service

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bienesraices/boutique/internal/model"
	"github.com/bienesraices/boutique/internal/repository"
	"github.com/bienesraices/boutique/internal/storage"
)

type mockPropertyRepo struct {
	properties map[int64]*model.Property
	nextID     int64
}

func newMockPropertyRepo() *mockPropertyRepo {
	return &mockPropertyRepo{properties: map[int64]*model.Property{}, nextID: 1}
}

func (m *mockPropertyRepo) Create(p *model.Property) error {
	p.ID = m.nextID
	m.nextID++
	cp := *p
	m.properties[p.ID] = &cp
	return nil
}

func (m *mockPropertyRepo) ByID(id int64) (*model.Property, error) {
	p, ok := m.properties[id]
	if !ok {
		return nil, repository.ErrPropertyNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPropertyRepo) All() ([]*model.Property, error) {
	var out []*model.Property
	for id := int64(1); id < m.nextID; id++ {
		if p, ok := m.properties[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPropertyRepo) Latest(n int) ([]*model.Property, error) {
	all, _ := m.All()
	var out []*model.Property
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *mockPropertyRepo) ByRepertoryImage(path string) (*model.Property, error) {
	for id := int64(1); id < m.nextID; id++ {
		p, ok := m.properties[id]
		if !ok {
			continue
		}
		joined := strings.Join(p.RepertoryImages, ",")
		if strings.Contains(joined, path) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrPropertyNotFound
}

func (m *mockPropertyRepo) Update(p *model.Property) error {
	if _, ok := m.properties[p.ID]; !ok {
		return repository.ErrPropertyNotFound
	}
	cp := *p
	m.properties[p.ID] = &cp
	return nil
}

func (m *mockPropertyRepo) Delete(id int64) error {
	if _, ok := m.properties[id]; !ok {
		return repository.ErrPropertyNotFound
	}
	delete(m.properties, id)
	return nil
}

// pngHeader is a minimal valid PNG signature so content sniffing
// accepts the upload.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

// uploadFile builds a real multipart.FileHeader the way a browser form
// submission would.
func uploadFile(t *testing.T, field, filename string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, err = fw.Write(pngHeader)
	if err != nil {
		t.Fatalf("write upload: %v", err)
	}
	err = w.Close()
	if err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	err = req.ParseMultipartForm(1 << 20)
	if err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	headers := req.MultipartForm.File[field]
	if len(headers) != 1 {
		t.Fatalf("got %d file headers, want 1", len(headers))
	}
	return headers[0]
}

func newTestPropertyService(t *testing.T) (*PropertyService, *mockPropertyRepo, string) {
	t.Helper()
	dir := t.TempDir()
	local, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	repo := newMockPropertyRepo()
	svc := NewPropertyService(repo, local)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, dir
}

func sampleInput() PropertyInput {
	return PropertyInput{
		Name:        "Casa del Bosque",
		Description: "Tres recámaras con jardín.",
		Location:    "Valle de Bravo",
		Price:       3250000,
	}
}

func TestCreatePropertyWithImages(t *testing.T) {
	svc, repo, dir := newTestPropertyService(t)

	main := uploadFile(t, "main_image", "fachada principal.png")
	gallery := []*multipart.FileHeader{
		uploadFile(t, "repertory_images", "sala.png"),
		uploadFile(t, "repertory_images", "jardín.png"),
	}

	property, err := svc.Create(sampleInput(), main, gallery)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if property.ID == 0 {
		t.Fatal("property id not assigned")
	}
	if property.MainImage == nil || !strings.HasSuffix(*property.MainImage, "fachada_principal.png") {
		t.Fatalf("main image = %v, want sanitized filename", property.MainImage)
	}
	if len(property.RepertoryImages) != 2 {
		t.Fatalf("repertory images = %v, want 2 entries", property.RepertoryImages)
	}
	// Diacritics stripped, order preserved.
	if !strings.HasSuffix(property.RepertoryImages[0], "sala.png") ||
		!strings.HasSuffix(property.RepertoryImages[1], "jardin.png") {
		t.Fatalf("repertory images = %v", property.RepertoryImages)
	}

	for _, name := range []string{"fachada_principal.png", "sala.png", "jardin.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("uploaded file %s missing: %v", name, err)
		}
	}

	stored, err := repo.ByID(property.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if stored.Name != "Casa del Bosque" {
		t.Fatalf("stored name = %q", stored.Name)
	}
}

func TestUpdateAppendsRepertoryImages(t *testing.T) {
	svc, _, _ := newTestPropertyService(t)

	property, err := svc.Create(sampleInput(), nil, []*multipart.FileHeader{
		uploadFile(t, "repertory_images", "uno.png"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	input := sampleInput()
	input.Price = 2999999
	updated, err := svc.Update(property.ID, input, nil, []*multipart.FileHeader{
		uploadFile(t, "repertory_images", "dos.png"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Price != 2999999 {
		t.Fatalf("price = %v", updated.Price)
	}
	if len(updated.RepertoryImages) != 2 {
		t.Fatalf("repertory images = %v, want existing + appended", updated.RepertoryImages)
	}
	if !strings.HasSuffix(updated.RepertoryImages[0], "uno.png") ||
		!strings.HasSuffix(updated.RepertoryImages[1], "dos.png") {
		t.Fatalf("append order wrong: %v", updated.RepertoryImages)
	}
}

func TestRemoveRepertoryImage(t *testing.T) {
	svc, repo, dir := newTestPropertyService(t)

	property, err := svc.Create(sampleInput(), nil, []*multipart.FileHeader{
		uploadFile(t, "repertory_images", "sala.png"),
		uploadFile(t, "repertory_images", "cocina.png"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	target := property.RepertoryImages[0]
	removed, err := svc.RemoveRepertoryImage(target)
	if err != nil {
		t.Fatalf("RemoveRepertoryImage: %v", err)
	}
	if !removed {
		t.Fatal("removed = false")
	}

	stored, _ := repo.ByID(property.ID)
	if len(stored.RepertoryImages) != 1 || !strings.HasSuffix(stored.RepertoryImages[0], "cocina.png") {
		t.Fatalf("repertory images after remove = %v", stored.RepertoryImages)
	}

	_, err = os.Stat(filepath.Join(dir, "sala.png"))
	if !os.IsNotExist(err) {
		t.Fatalf("removed file still on disk: %v", err)
	}

	// Unknown image reports false, no error.
	removed, err = svc.RemoveRepertoryImage("static/images/imagesProperty/nada.png")
	if err != nil {
		t.Fatalf("RemoveRepertoryImage: %v", err)
	}
	if removed {
		t.Fatal("removed = true for unknown image")
	}

	removed, err = svc.RemoveRepertoryImage("")
	if err != nil || removed {
		t.Fatalf("empty path: removed=%v err=%v", removed, err)
	}
}

func TestDeletePropertyRemovesFiles(t *testing.T) {
	svc, repo, dir := newTestPropertyService(t)

	main := uploadFile(t, "main_image", "fachada.png")
	property, err := svc.Create(sampleInput(), main, []*multipart.FileHeader{
		uploadFile(t, "repertory_images", "sala.png"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = svc.Delete(property.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err = repo.ByID(property.ID)
	if !errors.Is(err, repository.ErrPropertyNotFound) {
		t.Fatalf("ByID after delete: %v", err)
	}
	for _, name := range []string{"fachada.png", "sala.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		if !os.IsNotExist(err) {
			t.Fatalf("file %s still on disk after delete", name)
		}
	}
}

func TestCreateRejectsNonImageUpload(t *testing.T) {
	svc, _, _ := newTestPropertyService(t)

	// A .png name with non-image bytes must fail content sniffing.
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, _ := w.CreateFormFile("main_image", "evil.png")
	_, _ = fw.Write([]byte("#!/bin/sh\necho pwned\n"))
	_ = w.Close()
	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_ = req.ParseMultipartForm(1 << 20)
	header := req.MultipartForm.File["main_image"][0]

	_, err := svc.Create(sampleInput(), header, nil)
	if err == nil {
		t.Fatal("Create accepted a non-image upload")
	}
}

func TestFeaturedReturnsNewestThree(t *testing.T) {
	svc, _, _ := newTestPropertyService(t)

	names := []string{"Uno", "Dos", "Tres", "Cuatro"}
	for _, name := range names {
		input := sampleInput()
		input.Name = name
		_, err := svc.Create(input, nil, nil)
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	featured, err := svc.Featured()
	if err != nil {
		t.Fatalf("Featured: %v", err)
	}
	if len(featured) != 3 {
		t.Fatalf("featured = %d listings, want 3", len(featured))
	}
	if featured[0].Name != "Cuatro" || featured[2].Name != "Dos" {
		t.Fatalf("featured order: %s, %s, %s", featured[0].Name, featured[1].Name, featured[2].Name)
	}
}
