package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/plantecon/internal/catalog"
	"github.com/Simplici0/plantecon/internal/config"
	"github.com/Simplici0/plantecon/internal/db"
	"github.com/Simplici0/plantecon/internal/econ"
	"github.com/Simplici0/plantecon/internal/export"
	"github.com/Simplici0/plantecon/internal/migrations"
	"github.com/Simplici0/plantecon/internal/narrative"
	"github.com/Simplici0/plantecon/internal/seed"
	"github.com/Simplici0/plantecon/web"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type server struct {
	auth     *authService
	db       *sql.DB
	store    *catalog.Store
	narrator *narrative.Service

	// defaultRate (percent) and defaultLife prefill empty forms.
	defaultRate float64
	defaultLife int
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type loginViewData struct {
	baseViewData
}

type homeViewData struct {
	baseViewData
	Calculators []calculator
	Provider    string
}

type calcViewData struct {
	baseViewData
	Calc    calculator
	Form    url.Values
	Choices catalogChoices
	Inputs  econ.Inputs
	Outcome *calcOutcome
	// SavedRef is set once the submission was stored as an analysis.
	SavedRef string
}

type explanationViewData struct {
	baseViewData
	Explanation narrative.Explanation
	HTML        template.HTML
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			log.Fatalf("failed to load factor catalog: %v", err)
		}
	}
	stats, err := seed.Run(database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Catalog:       cat,
	})
	if err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}
	log.Printf("seed complete: %d rows inserted", stats.Inserts)

	srv := &server{
		auth:        newAuthService(database, cfg.SessionSecret),
		db:          database,
		store:       catalog.NewStore(database),
		narrator:    newNarrator(cfg),
		defaultRate: cfg.DefaultInterestRate,
		defaultLife: cfg.DefaultProjectLife,
	}
	log.Printf("explanations provided by %s", srv.narrator.ProviderName())

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// newNarrator picks the Gemini provider when a key is configured and a Redis
// cache when an address is configured, falling back to built-in text and an
// in-process cache.
func newNarrator(cfg config.Config) *narrative.Service {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var provider narrative.Provider
	if cfg.GeminiAPIKey != "" {
		gemini, err := narrative.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("warning: gemini unavailable, using built-in explanations: %v", err)
		} else {
			provider = gemini
		}
	}

	var cache narrative.Cache = narrative.NewMemoryCache()
	if cfg.RedisAddr != "" {
		redis := narrative.NewRedisCache(cfg.RedisAddr)
		if err := redis.Ping(ctx); err != nil {
			log.Printf("warning: redis at %s unreachable, caching in memory: %v", cfg.RedisAddr, err)
			_ = redis.Close()
		} else {
			cache = redis
		}
	}

	return narrative.NewService(provider, cache, cfg.NarrativeCacheTTL)
}

func (s *server) routes() http.Handler {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		log.Fatalf("failed to open static assets: %v", err)
	}

	r := chi.NewRouter()
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/", s.handleHome)
	r.Get("/calc/{calculator}", s.handleCalcForm)
	r.Post("/calc/{calculator}", s.handleCalcSubmit)
	r.Post("/api/{calculator}", s.handleAPI)
	r.Post("/explain/{topic}", s.handleExplain)
	r.Get("/analyses", s.handleAnalysesList)
	r.Get("/analyses/{ref}", s.handleAnalysisDetail)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)
	r.Group(func(r chi.Router) {
		r.Use(s.auth.requireSession)
		r.Get("/admin/factors", s.handleAdminFactorsForm)
		r.Post("/admin/factors", s.handleAdminFactorsSubmit)
	})
	return r
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", homeViewData{
		Calculators: calculators,
		Provider:    s.narrator.ProviderName(),
	})
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.auth.isAuthenticated(r) {
		http.Redirect(w, r, "/admin/factors", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, http.StatusOK, "login.html", loginViewData{})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	valid, err := s.auth.validateCredentials(email, r.FormValue("password"))
	if err != nil {
		log.Printf("login: %v", err)
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.renderTemplate(w, http.StatusUnauthorized, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Try again."},
		})
		return
	}

	s.auth.setSessionCookie(w, email)
	http.Redirect(w, r, "/admin/factors", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	return s.store.Load(ctx)
}

func (s *server) newCalcView(ctx context.Context, calc calculator, form url.Values) (calcViewData, error) {
	view := calcViewData{Calc: calc, Form: form}
	if calc.Catalog {
		cat, err := s.loadCatalog(ctx)
		if err != nil {
			return view, err
		}
		view.Choices = choicesFrom(cat)
	}
	return view, nil
}

func (s *server) handleCalcForm(w http.ResponseWriter, r *http.Request) {
	calc, ok := lookupCalculator(chi.URLParam(r, "calculator"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	view, err := s.newCalcView(r.Context(), calc, calc.Defaults(s))
	if err != nil {
		log.Printf("calc %s: %v", calc.Name, err)
		http.Error(w, "failed to load factor catalog", http.StatusInternalServerError)
		return
	}
	s.renderTemplate(w, http.StatusOK, "calc_"+calc.Name+".html", view)
}

func (s *server) handleCalcSubmit(w http.ResponseWriter, r *http.Request) {
	calc, ok := lookupCalculator(chi.URLParam(r, "calculator"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	view, err := s.newCalcView(r.Context(), calc, r.PostForm)
	if err != nil {
		log.Printf("calc %s: %v", calc.Name, err)
		http.Error(w, "failed to load factor catalog", http.StatusInternalServerError)
		return
	}
	page := "calc_" + calc.Name + ".html"

	out, inputs, err := s.runCalculator(calc, r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("calc %s: %v", calc.Name, err)
			http.Error(w, "calculation failed", status)
			return
		}
		view.ErrorMessage = err.Error()
		s.renderTemplate(w, status, page, view)
		return
	}

	if r.FormValue("download") == "xlsx" {
		s.writeWorkbook(w, out.Kind, inputs, out.Result, out.Sheets...)
		return
	}

	view.Inputs, view.Outcome = inputs, &out
	if r.FormValue("save") == "1" {
		ref, err := s.saveAnalysis(r.Context(), out.Kind, out.Title, inputs, out.Result)
		if err != nil {
			log.Printf("save analysis: %v", err)
			http.Error(w, "failed to save analysis", http.StatusInternalServerError)
			return
		}
		view.SavedRef = ref
		view.SuccessMessage = "Analysis saved."
	}
	s.renderTemplate(w, http.StatusOK, page, view)
}

type apiResponse struct {
	Kind   string      `json:"kind"`
	Inputs econ.Inputs `json:"inputs"`
	Result any         `json:"result"`
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *server) handleAPI(w http.ResponseWriter, r *http.Request) {
	calc, ok := lookupCalculator(chi.URLParam(r, "calculator"))
	if !ok {
		writeJSON(w, http.StatusNotFound, apiError{Error: "unknown calculator"})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid form"})
		return
	}

	out, inputs, err := s.runCalculator(calc, r)
	if err != nil {
		status := statusFor(err)
		body := apiError{Error: err.Error()}
		var domainErr *econ.DomainError
		if errors.As(err, &domainErr) {
			body.Field = domainErr.Field
		}
		if status == http.StatusInternalServerError {
			log.Printf("api %s: %v", calc.Name, err)
			body.Error = "calculation failed"
		}
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{Kind: out.Kind, Inputs: inputs, Result: out.Result})
}

func (s *server) handleExplain(w http.ResponseWriter, r *http.Request) {
	topic, err := narrative.ParseTopic(chi.URLParam(r, "topic"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	calc, ok := calculatorForTopic(topic)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	out, inputs, err := s.runCalculator(calc, r)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("explain %s: %v", topic, err)
			http.Error(w, "calculation failed", status)
			return
		}
		s.renderFragment(w, status, "explanation.html", explanationViewData{
			baseViewData: baseViewData{ErrorMessage: err.Error()},
		})
		return
	}

	exp, err := s.narrator.Explain(r.Context(), narrative.Request{Topic: topic, Inputs: inputs, Results: out.Result})
	if err != nil {
		log.Printf("explain %s: %v", topic, err)
		http.Error(w, "failed to build explanation", http.StatusInternalServerError)
		return
	}
	html, err := narrative.RenderHTML(exp.Markdown)
	if err != nil {
		log.Printf("explain %s: %v", topic, err)
		http.Error(w, "failed to render explanation", http.StatusInternalServerError)
		return
	}
	s.renderFragment(w, http.StatusOK, "explanation.html", explanationViewData{Explanation: exp, HTML: html})
}

// writeWorkbook sends a workbook made of a summary sheet followed by sheets.
func (s *server) writeWorkbook(w http.ResponseWriter, kind string, inputs econ.Inputs, result any, sheets ...export.Sheet) {
	flat, err := narrative.Flatten(result)
	if err != nil {
		log.Printf("export %s: %v", kind, err)
		http.Error(w, "failed to export", http.StatusInternalServerError)
		return
	}

	all := append([]export.Sheet{export.SummarySheet("Summary", inputs, flat)}, sheets...)
	var buf bytes.Buffer
	if err := export.Write(&buf, all...); err != nil {
		log.Printf("export %s: %v", kind, err)
		http.Error(w, "failed to export", http.StatusInternalServerError)
		return
	}

	filename := strings.ReplaceAll(kind, "/", "-") + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(web.Templates,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		log.Printf("parse template %s: %v", page, err)
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}
	s.execute(w, status, templates, "layout.html", data)
}

func (s *server) renderFragment(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New(page).Funcs(templateFuncs).ParseFS(web.Templates, "templates/"+page)
	if err != nil {
		log.Printf("parse template %s: %v", page, err)
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}
	s.execute(w, status, templates, page, data)
}

func (s *server) execute(w http.ResponseWriter, status int, templates *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("render template %s: %v", name, err)
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
