package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bienesraices/boutique/internal/flash"
	"github.com/bienesraices/boutique/internal/form"
	"github.com/bienesraices/boutique/internal/model"
	"github.com/bienesraices/boutique/internal/service"
	"github.com/bienesraices/boutique/internal/ui"
)

// 32 MB covers a main image plus a handful of gallery uploads.
const maxUploadMemory = 32 << 20

// propertyFormData backs the add/edit listing template.
type propertyFormData struct {
	Values   map[string]string
	Errors   form.Errors
	Property *model.Property
	Action   string
}

// AdminHandler serves the protected listing management pages.
type AdminHandler struct {
	properties *service.PropertyService
	renderer   *ui.Renderer
}

func NewAdminHandler(properties *service.PropertyService, renderer *ui.Renderer) *AdminHandler {
	return &AdminHandler{properties: properties, renderer: renderer}
}

// Dashboard lists every property with edit and delete actions.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	properties, err := h.properties.All()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.renderer.Render(w, r, "adminis", "Administración", properties)
}

func (h *AdminHandler) AddPropertyPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "property_form", "Agregar propiedad", &propertyFormData{
		Values: map[string]string{},
		Action: "/add_property",
	})
}

func (h *AdminHandler) AddProperty(w http.ResponseWriter, r *http.Request) {
	input, mainImage, repertory, data, ok := h.parsePropertyForm(w, r, "/add_property", nil)
	if !ok {
		return
	}
	if data != nil {
		h.renderer.Render(w, r, "property_form", "Agregar propiedad", data)
		return
	}

	_, err := h.properties.Create(*input, mainImage, repertory)
	if err != nil {
		slog.Error("failed to create property", "error", err)
		flash.Set(w, r, flash.Error, "No se pudo guardar la propiedad: "+err.Error())
		http.Redirect(w, r, "/add_property", http.StatusSeeOther)
		return
	}

	flash.Set(w, r, flash.Success, "Propiedad agregada correctamente.")
	http.Redirect(w, r, "/adminis", http.StatusSeeOther)
}

func (h *AdminHandler) EditPropertyPage(w http.ResponseWriter, r *http.Request) {
	property, ok := h.propertyFromPath(w, r)
	if !ok {
		return
	}

	h.renderer.Render(w, r, "property_form", "Editar propiedad", &propertyFormData{
		Values: map[string]string{
			"name":        property.Name,
			"description": property.Description,
			"location":    property.Location,
			"price":       strconv.FormatFloat(property.Price, 'f', 2, 64),
		},
		Property: property,
		Action:   fmt.Sprintf("/edit_property/%d", property.ID),
	})
}

func (h *AdminHandler) EditProperty(w http.ResponseWriter, r *http.Request) {
	property, ok := h.propertyFromPath(w, r)
	if !ok {
		return
	}

	action := fmt.Sprintf("/edit_property/%d", property.ID)
	input, mainImage, repertory, data, ok := h.parsePropertyForm(w, r, action, property)
	if !ok {
		return
	}
	if data != nil {
		h.renderer.Render(w, r, "property_form", "Editar propiedad", data)
		return
	}

	_, err := h.properties.Update(property.ID, *input, mainImage, repertory)
	if err != nil {
		slog.Error("failed to update property", "property_id", property.ID, "error", err)
		flash.Set(w, r, flash.Error, "No se pudo actualizar la propiedad: "+err.Error())
		http.Redirect(w, r, action, http.StatusSeeOther)
		return
	}

	flash.Set(w, r, flash.Success, "Propiedad actualizada correctamente.")
	http.Redirect(w, r, "/adminis", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	property, ok := h.propertyFromPath(w, r)
	if !ok {
		return
	}

	err := h.properties.Delete(property.ID)
	if err != nil {
		slog.Error("failed to delete property", "property_id", property.ID, "error", err)
		flash.Set(w, r, flash.Error, "No se pudo eliminar la propiedad.")
	} else {
		flash.Set(w, r, flash.Success, "Propiedad eliminada.")
	}
	http.Redirect(w, r, "/adminis", http.StatusSeeOther)
}

// RemoveRepertoryImage is the JSON endpoint behind the "Quitar" buttons
// in the edit form's gallery.
func (h *AdminHandler) RemoveRepertoryImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false})
		return
	}

	removed, err := h.properties.RemoveRepertoryImage(req.Image)
	if err != nil {
		slog.Error("failed to remove repertory image", "image", req.Image, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": removed})
}

// parsePropertyForm validates the multipart listing form. On validation
// failure it returns the repopulated form data for re-rendering; ok is
// false only when the request itself was malformed.
func (h *AdminHandler) parsePropertyForm(w http.ResponseWriter, r *http.Request, action string, property *model.Property) (*service.PropertyInput, *multipart.FileHeader, []*multipart.FileHeader, *propertyFormData, bool) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return nil, nil, nil, nil, false
	}

	schema := form.Property()
	values, errs := schema.Validate(r.PostForm)
	if errs.Any() {
		return nil, nil, nil, &propertyFormData{
			Values:   values,
			Errors:   errs,
			Property: property,
			Action:   action,
		}, true
	}

	price, err := strconv.ParseFloat(values["price"], 64)
	if err != nil {
		errs.Add("price", "Precio inválido.")
		return nil, nil, nil, &propertyFormData{
			Values:   values,
			Errors:   errs,
			Property: property,
			Action:   action,
		}, true
	}

	input := &service.PropertyInput{
		Name:        values["name"],
		Description: values["description"],
		Location:    values["location"],
		Price:       price,
	}

	var mainImage *multipart.FileHeader
	if files := r.MultipartForm.File["main_image"]; len(files) > 0 && files[0].Filename != "" {
		mainImage = files[0]
	}
	repertory := r.MultipartForm.File["repertory_images"]

	return input, mainImage, repertory, nil, true
}

func (h *AdminHandler) propertyFromPath(w http.ResponseWriter, r *http.Request) (*model.Property, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	property, err := h.properties.ByID(id)
	if errors.Is(err, service.ErrPropertyNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return property, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
