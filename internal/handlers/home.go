package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"visionlab/internal/viewmodel"
	"visionlab/internal/views"
)

type HomeHandler struct{}

func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, views.HomePage(viewmodel.HomePage{Title: "visionlab"}))
}
