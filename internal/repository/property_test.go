package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/bienesraices/boutique/internal/model"
)

func newProperty(name string) *model.Property {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Property{
		Name:        name,
		Description: "Descripción de prueba",
		Location:    "Valle de Bravo",
		Price:       1250000.50,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPropertyRepositoryCRUD(t *testing.T) {
	repo := NewPropertyRepository(testDB(t))

	property := newProperty("Casa del Bosque")
	main := "static/images/imagesProperty/fachada.jpg"
	property.MainImage = &main
	property.RepertoryImages = model.ImageList{"sala.jpg", "cocina.jpg"}

	err := repo.Create(property)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if property.ID == 0 {
		t.Fatal("id not assigned from insert")
	}

	got, err := repo.ByID(property.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.Name != "Casa del Bosque" || got.Price != 1250000.50 {
		t.Fatalf("got %q / %v", got.Name, got.Price)
	}
	if got.MainImage == nil || *got.MainImage != main {
		t.Fatalf("main image = %v", got.MainImage)
	}
	if len(got.RepertoryImages) != 2 || got.RepertoryImages[0] != "sala.jpg" {
		t.Fatalf("repertory images = %v", got.RepertoryImages)
	}

	got.Price = 999999
	got.RepertoryImages, _ = got.RepertoryImages.Append("jardin.jpg")
	err = repo.Update(got)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	updated, err := repo.ByID(property.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if updated.Price != 999999 || len(updated.RepertoryImages) != 3 {
		t.Fatalf("update not persisted: %v %v", updated.Price, updated.RepertoryImages)
	}

	err = repo.Delete(property.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = repo.ByID(property.ID)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("ByID after delete: %v", err)
	}
	err = repo.Delete(property.ID)
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

// An empty image list stores as NULL and scans back empty.
func TestPropertyRepositoryEmptyImageList(t *testing.T) {
	repo := NewPropertyRepository(testDB(t))

	property := newProperty("Sin galería")
	err := repo.Create(property)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ByID(property.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if len(got.RepertoryImages) != 0 {
		t.Fatalf("repertory images = %v, want empty", got.RepertoryImages)
	}
	if got.MainImage != nil {
		t.Fatalf("main image = %v, want nil", got.MainImage)
	}
}

func TestPropertyRepositoryAllAndLatest(t *testing.T) {
	repo := NewPropertyRepository(testDB(t))

	for _, name := range []string{"Uno", "Dos", "Tres", "Cuatro"} {
		err := repo.Create(newProperty(name))
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 4 || all[0].Name != "Uno" || all[3].Name != "Cuatro" {
		t.Fatalf("All order wrong: %d entries", len(all))
	}

	latest, err := repo.Latest(3)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(latest) != 3 || latest[0].Name != "Cuatro" || latest[2].Name != "Dos" {
		t.Fatalf("Latest order wrong")
	}
}

func TestPropertyRepositoryByRepertoryImage(t *testing.T) {
	repo := NewPropertyRepository(testDB(t))

	first := newProperty("Con galería")
	first.RepertoryImages = model.ImageList{"static/images/imagesProperty/sala.jpg"}
	err := repo.Create(first)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := newProperty("Sin galería")
	err = repo.Create(second)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ByRepertoryImage("static/images/imagesProperty/sala.jpg")
	if err != nil {
		t.Fatalf("ByRepertoryImage: %v", err)
	}
	if got.ID != first.ID {
		t.Fatal("matched wrong property")
	}

	_, err = repo.ByRepertoryImage("static/images/imagesProperty/nada.jpg")
	if !errors.Is(err, ErrPropertyNotFound) {
		t.Fatalf("missing image: %v", err)
	}
}
