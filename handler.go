package motors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/jimiolaniyan/gomotors/session"
	"github.com/jimiolaniyan/gomotors/validation"
	"github.com/jimiolaniyan/gomotors/web"
)

const (
	managementPath = "/inv"

	defaultImage     = "/images/vehicles/no-image.png"
	defaultThumbnail = "/images/vehicles/no-image-tn.png"

	msgNoVehicles             = "Sorry, no matching vehicles could be found."
	msgNoMatches              = "No vehicles matched your search."
	msgClassificationNotSaved = "Sorry, the classification could not be added."
)

// VehicleGrid is the content of the listing pages.
type VehicleGrid struct {
	Vehicles []Vehicle
	// Empty is shown when Vehicles is empty.
	Empty string
	// Searched is set once a search has run.
	Searched bool
}

type Handler struct {
	svc   Service
	views web.Renderer
}

func NewHandler(svc Service, views web.Renderer) *Handler {
	return &Handler{svc: svc, views: views}
}

func (h *Handler) Home() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "home", web.Page{Title: "Home"})
	})
}

func (h *Handler) AllVehicles() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vehicles, err := h.svc.AllVehicles(r.Context())
		if err != nil {
			h.views.Error(w, r, err)
			return
		}

		h.views.Render(w, r, http.StatusOK, "inventory/grid", web.Page{
			Title:   "All Vehicles",
			Content: VehicleGrid{Vehicles: vehicles, Empty: msgNoVehicles},
		})
	})
}

func (h *Handler) ByClassification() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(httprouter.ParamsFromContext(r.Context()).ByName("classificationId"))
		if err != nil {
			h.views.NotFound(w, r)
			return
		}

		c, vehicles, err := h.svc.VehiclesByClassification(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotFound):
			h.views.NotFound(w, r)
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		h.views.Render(w, r, http.StatusOK, "inventory/grid", web.Page{
			Title:   c.Name + " vehicles",
			Content: VehicleGrid{Vehicles: vehicles, Empty: msgNoVehicles},
		})
	})
}

func (h *Handler) Detail() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(httprouter.ParamsFromContext(r.Context()).ByName("invId"))
		if err != nil {
			h.views.NotFound(w, r)
			return
		}

		v, err := h.svc.Vehicle(r.Context(), id)
		switch {
		case errors.Is(err, ErrNotFound):
			h.views.NotFound(w, r)
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		h.views.Render(w, r, http.StatusOK, "inventory/detail", web.Page{
			Title:   v.Make + " " + v.Model,
			Content: v,
		})
	})
}

func (h *Handler) SearchForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "inventory/search", web.Page{Title: "Search Inventory"})
	})
}

func (h *Handler) Search() http.Handler {
	search := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		term := r.PostForm.Get(fieldTerm)
		vehicles, err := h.svc.Search(r.Context(), term)
		if err != nil {
			h.views.Error(w, r, err)
			return
		}

		h.views.Render(w, r, http.StatusOK, "inventory/search", web.Page{
			Title:   fmt.Sprintf("Search Results for %q", term),
			Form:    map[string]string{fieldTerm: term},
			Content: VehicleGrid{Vehicles: vehicles, Empty: msgNoMatches, Searched: true},
		})
	})

	return SearchValidator().Guard(search, func(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
		h.views.Render(w, r, http.StatusBadRequest, "inventory/search", web.Page{
			Title:  "Search Inventory",
			Errors: out,
		})
	}, h.views.Error)
}

func (h *Handler) Management() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "inventory/management", web.Page{Title: "Vehicle Management"})
	})
}

func (h *Handler) AddClassificationForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.views.Render(w, r, http.StatusOK, "inventory/add-classification", web.Page{Title: "Add New Classification"})
	})
}

func (h *Handler) AddClassification() http.Handler {
	add := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := h.svc.AddClassification(r.Context(), r.PostForm.Get(fieldClassificationName))
		switch {
		case errors.Is(err, ErrExistingClassification):
			h.views.Render(w, r, http.StatusBadRequest, "inventory/add-classification", web.Page{
				Title:   "Add New Classification",
				Message: msgClassificationNotSaved,
				Form:    validation.Echo(r.PostForm),
			})
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		session.Flash(r.Context(), fmt.Sprintf("Successfully added classification %s.", c.Name))
		http.Redirect(w, r, managementPath, http.StatusSeeOther)
	})

	return ClassificationValidator().Guard(add, func(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
		h.views.Render(w, r, http.StatusBadRequest, "inventory/add-classification", web.Page{
			Title:  "Add New Classification",
			Errors: out,
			Form:   validation.Echo(r.PostForm),
		})
	}, h.views.Error)
}

func (h *Handler) AddVehicleForm() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.renderAddVehicle(w, r, http.StatusOK, nil, map[string]string{
			fieldImage:     defaultImage,
			fieldThumbnail: defaultThumbnail,
		})
	})
}

func (h *Handler) AddVehicle() http.Handler {
	add := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, out := decodeAddVehicleRequest(r)
		if !out.Valid() {
			h.addVehicleFailed(w, r, out)
			return
		}

		v, err := h.svc.AddVehicle(r.Context(), req)
		switch {
		case errors.Is(err, ErrUnknownClassification):
			h.addVehicleFailed(w, r, validation.Outcome{{Field: fieldClassificationID, Message: msgChooseClassification}})
			return
		case err != nil:
			h.views.Error(w, r, err)
			return
		}

		session.Flash(r.Context(), fmt.Sprintf("Successfully added %s.", v.Title()))
		http.Redirect(w, r, managementPath, http.StatusSeeOther)
	})

	return VehicleValidator().Guard(add, h.addVehicleFailed, h.views.Error)
}

func (h *Handler) addVehicleFailed(w http.ResponseWriter, r *http.Request, out validation.Outcome) {
	h.renderAddVehicle(w, r, http.StatusBadRequest, out, validation.Echo(r.PostForm))
}

// renderAddVehicle shows the add vehicle form with the classification list.
func (h *Handler) renderAddVehicle(w http.ResponseWriter, r *http.Request, status int, out validation.Outcome, form map[string]string) {
	classifications, err := h.svc.Classifications(r.Context())
	if err != nil {
		h.views.Error(w, r, err)
		return
	}

	h.views.Render(w, r, status, "inventory/add-vehicle", web.Page{
		Title:   "Add New Vehicle",
		Errors:  out,
		Form:    form,
		Content: classifications,
	})
}

// decodeAddVehicleRequest converts a validated submission. A value that does
// not convert is reported against its field.
func decodeAddVehicleRequest(r *http.Request) (addVehicleRequest, validation.Outcome) {
	f := r.PostForm
	var out validation.Outcome

	id, err := strconv.Atoi(f.Get(fieldClassificationID))
	if err != nil {
		out = append(out, validation.FieldError{Field: fieldClassificationID, Message: msgChooseClassification})
	}
	price, err := strconv.ParseFloat(f.Get(fieldPrice), 64)
	if err != nil || price <= 0 || price >= priceLimit {
		out = append(out, validation.FieldError{Field: fieldPrice, Message: msgPrice})
	}
	miles, err := strconv.ParseInt(f.Get(fieldMiles), 10, 32)
	if err != nil || miles < 0 {
		out = append(out, validation.FieldError{Field: fieldMiles, Message: msgMiles})
	}

	return addVehicleRequest{
		ClassificationID: id,
		Make:             f.Get(fieldMake),
		Model:            f.Get(fieldModel),
		Year:             f.Get(fieldYear),
		Description:      f.Get(fieldDescription),
		Image:            f.Get(fieldImage),
		Thumbnail:        f.Get(fieldThumbnail),
		Price:            price,
		Miles:            int(miles),
		Color:            f.Get(fieldColor),
	}, out
}
