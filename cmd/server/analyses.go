package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/narrative"
)

var errAnalysisNotFound = errors.New("analysis not found")

type analysisListItem struct {
	Ref       string
	Kind      string
	Title     string
	CreatedAt string
}

type analysesViewData struct {
	baseViewData
	Query    string
	Analyses []analysisListItem
}

// analysisDetail is a stored snapshot. Results are shown as stored and never recalculated.
type analysisDetail struct {
	analysisListItem
	Inputs      econ.Inputs
	Results     map[string]string
	ResultsJSON string

	raw json.RawMessage
}

type analysisViewData struct {
	baseViewData
	Analysis analysisDetail
}

func (s *server) saveAnalysis(ctx context.Context, kind, title string, inputs econ.Inputs, result any) (string, error) {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return "", fmt.Errorf("encode analysis inputs: %w", err)
	}
	resultsJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode analysis results: %w", err)
	}

	ref := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (ref, kind, title, inputs_json, results_json)
		VALUES (?, ?, ?, ?, ?)
	`, ref, kind, title, string(inputsJSON), string(resultsJSON))
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	return ref, nil
}

func (s *server) listAnalyses(query string) ([]analysisListItem, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT ref, kind, title, created_at
		FROM analyses
		WHERE (? = '' OR title LIKE ? OR kind LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	analyses := make([]analysisListItem, 0)
	for rows.Next() {
		var item analysisListItem
		if err := rows.Scan(&item.Ref, &item.Kind, &item.Title, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		analyses = append(analyses, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return analyses, nil
}

func (s *server) getAnalysis(ref string) (analysisDetail, error) {
	if _, err := uuid.Parse(ref); err != nil {
		return analysisDetail{}, errAnalysisNotFound
	}

	var d analysisDetail
	var inputsJSON, resultsJSON string
	err := s.db.QueryRow(`
		SELECT ref, kind, title, created_at, inputs_json, results_json
		FROM analyses
		WHERE ref = ?
	`, ref).Scan(&d.Ref, &d.Kind, &d.Title, &d.CreatedAt, &inputsJSON, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return analysisDetail{}, errAnalysisNotFound
	}
	if err != nil {
		return analysisDetail{}, fmt.Errorf("query analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(inputsJSON), &d.Inputs); err != nil {
		return analysisDetail{}, fmt.Errorf("decode analysis inputs: %w", err)
	}
	d.raw = json.RawMessage(resultsJSON)
	if d.Results, err = narrative.Flatten(d.raw); err != nil {
		return analysisDetail{}, fmt.Errorf("decode analysis results: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(resultsJSON), "", "  "); err != nil {
		return analysisDetail{}, fmt.Errorf("format analysis results: %w", err)
	}
	d.ResultsJSON = pretty.String()
	return d, nil
}

func (s *server) handleAnalysesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	analyses, err := s.listAnalyses(query)
	if err != nil {
		log.Printf("analyses: %v", err)
		http.Error(w, "failed to load analyses", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "analyses.html", analysesViewData{
		Query:    query,
		Analyses: analyses,
	})
}

func (s *server) handleAnalysisDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.getAnalysis(chi.URLParam(r, "ref"))
	if errors.Is(err, errAnalysisNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("analysis detail: %v", err)
		http.Error(w, "failed to load analysis", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("download") == "xlsx" {
		s.writeWorkbook(w, detail.Kind, detail.Inputs, detail.raw)
		return
	}

	s.renderTemplate(w, http.StatusOK, "analysis.html", analysisViewData{Analysis: detail})
}
