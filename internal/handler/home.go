package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bienesraices/boutique/internal/service"
	"github.com/bienesraices/boutique/internal/ui"
)

// HomeHandler serves the public catalog pages.
type HomeHandler struct {
	properties *service.PropertyService
	renderer   *ui.Renderer
}

func NewHomeHandler(properties *service.PropertyService, renderer *ui.Renderer) *HomeHandler {
	return &HomeHandler{properties: properties, renderer: renderer}
}

// Home shows the landing page with the latest listings.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	featured, err := h.properties.Featured()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, "home", "Inicio", featured)
}

// Catalog lists every published property.
func (h *HomeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.All()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, "catalogo", "Catálogo", properties)
}

// PropertyDetail shows one listing with its image gallery.
func (h *HomeHandler) PropertyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	property, err := h.properties.ByID(id)
	if errors.Is(err, service.ErrPropertyNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, "property_detail", property.Name, property)
}
