package handler

import (
	"net/http"

	"quizclash/internal/quiz"
)

// CatalogHandler serves the static question bank so clients can load it once
// at startup and derive sequences locally.
type CatalogHandler struct {
	catalog *quiz.Catalog
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(catalog *quiz.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Subjects handles GET /v1/subjects
func (h *CatalogHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Subjects())
}
