package main

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Simplici0/plantecon/internal/catalog"
	"github.com/Simplici0/plantecon/internal/econ"
)

type factorsViewData struct {
	baseViewData
	Catalog catalog.Document
}

func (s *server) handleAdminFactorsForm(w http.ResponseWriter, r *http.Request) {
	cat, err := s.loadCatalog(r.Context())
	if err != nil {
		log.Printf("admin factors: %v", err)
		http.Error(w, "failed to load factor catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_factors.html", factorsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Catalog: cat.Document(),
	})
}

func (s *server) handleAdminFactorsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectWithError(w, r, "name is required")
		return
	}
	value, err := parseNumber(strings.TrimSpace(r.FormValue("value")))
	if err != nil {
		redirectWithError(w, r, "value must be numeric")
		return
	}

	var success string
	switch r.FormValue("kind") {
	case "lang":
		err = s.store.SetLangFactor(r.Context(), name, value)
		success = "Lang factor updated."
	case "exponent":
		err = s.store.SetScalingExponent(r.Context(), name, value)
		success = "Scaling exponent updated."
	default:
		http.Error(w, "unknown factor kind", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, econ.ErrDomain):
		redirectWithError(w, r, err.Error())
		return
	case err != nil:
		log.Printf("admin factors: %v", err)
		http.Error(w, "failed to update factor", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/factors?success="+url.QueryEscape(success), http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/admin/factors?error="+url.QueryEscape(msg), http.StatusSeeOther)
}
