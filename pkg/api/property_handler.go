package api

import (
	"net/http"
	"strconv"

	"github.com/Sternrassler/property-listings/pkg/properties"
)

type propertyHandler struct {
	svc *properties.Service
}

// propertyInput is the writable subset of a property.
type propertyInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Location    string `json:"location"`
}

func (in propertyInput) property(id int64) *properties.Property {
	return &properties.Property{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Location:    in.Location,
	}
}

func (h *propertyHandler) list(w http.ResponseWriter, r *http.Request) {
	props, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, props)
}

func (h *propertyHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *propertyHandler) create(w http.ResponseWriter, r *http.Request) {
	var in propertyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p := in.property(0)
	if err := h.svc.Create(r.Context(), p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, p)
}

func (h *propertyHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in propertyInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p := in.property(id)
	if err := h.svc.Update(r.Context(), p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

func (h *propertyHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses the {id} path segment, writing a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid property id")
		return 0, false
	}
	return id, true
}
