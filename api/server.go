package main

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/peachstatelabs/gabills/internal/annotations"
	"github.com/peachstatelabs/gabills/internal/classify"
	"github.com/peachstatelabs/gabills/internal/config"
	"github.com/peachstatelabs/gabills/internal/dataset"
	"github.com/peachstatelabs/gabills/internal/export"
	"github.com/peachstatelabs/gabills/internal/memo"
	"github.com/peachstatelabs/gabills/internal/models"
	"github.com/peachstatelabs/gabills/internal/pipeline"
	"github.com/peachstatelabs/gabills/internal/similar"
)

// profileHeader identifies the caller's annotation profile. Absent or
// blank falls back to the shared default profile.
const profileHeader = "X-Profile-ID"

// featuredPool is how many of the most recently acted-on bills the daily
// pick rotates through.
const featuredPool = 20

type server struct {
	log     *slog.Logger
	cfg     *config.API
	bills   []models.Bill
	byDoc   map[string]models.Bill
	store   *annotations.Store
	related *memo.Cache
	now     func() time.Time
}

func newServer(log *slog.Logger, cfg *config.API, bills []models.Bill, store *annotations.Store) *server {
	return &server{
		log:     log,
		cfg:     cfg,
		bills:   bills,
		byDoc:   dataset.ByDocNumber(bills),
		store:   store,
		related: memo.NewCache(cfg.CacheCapacity, cfg.CacheTTL),
		now:     time.Now,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/bills", func(r chi.Router) {
		r.Get("/", s.handleListBills)
		r.Get("/stats", s.handleStats)
		r.Get("/issues", s.handleIssues)
		r.Get("/export", s.handleExportFiltered)
		r.Get("/compare", s.handleCompare)
		r.Get("/featured", s.handleFeatured)
		r.Post("/featured/dismiss", s.handleDismissFeatured)
		r.Get("/{docNumber}", s.handleGetBill)
		r.Get("/{docNumber}/related", s.handleRelated)
		r.Get("/{docNumber}/export.json", s.handleExportBillJSON)
		r.Get("/{docNumber}/export.csv", s.handleExportBillCSV)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites/{docNumber}", s.handleAddFavorite)
		r.Delete("/favorites/{docNumber}", s.handleRemoveFavorite)
		r.Get("/favorites/export", s.handleExportFavorites)
		r.Get("/reads", s.handleReads)
		r.Post("/reads/{docNumber}", s.handleMarkRead)
		r.Delete("/reads/{docNumber}", s.handleMarkUnread)
		r.Get("/preferences", s.handlePreferences)
		r.Put("/preferences", s.handleSetPreferences)
		r.Get("/searches", s.handleSavedSearches)
		r.Post("/searches", s.handleSaveSearch)
		r.Delete("/searches/{id}", s.handleDeleteSearch)
	})

	return r
}

func (s *server) profile(r *http.Request) string {
	p := strings.TrimSpace(r.Header.Get(profileHeader))
	if p == "" {
		return annotations.DefaultProfile
	}
	return p
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "bills": len(s.bills)})
}

type listResponse struct {
	Bills      []export.BillView `json:"bills"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Query      string            `json:"query"`
}

// filtered runs the full pipeline for the request's query string and
// returns the matching bills before pagination.
func (s *server) filtered(r *http.Request) ([]models.Bill, pipeline.FilterState) {
	state := pipeline.Decode(r.URL.Query())
	matched := pipeline.Apply(s.bills, state)
	pipeline.Sort(matched, state.SortBy)
	return matched, state
}

func (s *server) handleListBills(w http.ResponseWriter, r *http.Request) {
	matched, state := s.filtered(r)

	size := clampInt(r.URL.Query().Get("pageSize"), s.cfg.PageSize, s.cfg.MaxPageSize)
	page := pipeline.Paginate(matched, state.Page, size)

	writeJSON(w, http.StatusOK, listResponse{
		Bills:      export.Views(page),
		Total:      len(matched),
		Page:       state.Page,
		PageSize:   size,
		TotalPages: pipeline.TotalPages(len(matched), size),
		Query:      state.Encode().Encode(),
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataset.Summarize(s.bills))
}

func (s *server) handleIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"issues": classify.Issues()})
}

func (s *server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.View(bill))
}

type relatedResponse struct {
	DocNumber string         `json:"doc_number"`
	Related   []relatedEntry `json:"related"`
}

type relatedEntry struct {
	Bill    export.BillView `json:"bill"`
	Score   int             `json:"score"`
	Reasons []string        `json:"reasons"`
}

func (s *server) handleRelated(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, relatedResponse{
		DocNumber: bill.DocNumber,
		Related:   s.relatedEntries(bill, s.cfg.RelatedLimit),
	})
}

// relatedEntries memoizes similarity scans per bill; the dataset is
// immutable for the life of the process so entries never go stale.
func (s *server) relatedEntries(bill models.Bill, limit int) []relatedEntry {
	matches, ok := s.related.Get(bill.DocNumber)
	if !ok {
		matches = similar.Related(bill, s.bills, max(similar.DefaultLimit, s.cfg.RelatedLimit))
		s.related.Put(bill.DocNumber, matches)
	}
	if limit < len(matches) {
		matches = matches[:limit]
	}
	entries := make([]relatedEntry, len(matches))
	for i, m := range matches {
		entries[i] = relatedEntry{Bill: export.View(m.Bill), Score: m.Score, Reasons: m.Reasons}
	}
	return entries
}

type compareResponse struct {
	Bills []compareEntry `json:"bills"`
}

type compareEntry struct {
	Bill    export.BillView `json:"bill"`
	Related []relatedEntry  `json:"related"`
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ids := parseCSV(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ids query parameter is required"})
		return
	}
	if len(ids) > similar.CompareLimit {
		ids = ids[:similar.CompareLimit]
	}

	entries := make([]compareEntry, 0, len(ids))
	for _, id := range ids {
		bill, ok := s.byDoc[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "bill not found: " + id})
			return
		}
		entries = append(entries, compareEntry{
			Bill:    export.View(bill),
			Related: s.relatedEntries(bill, similar.CompareLimit),
		})
	}
	writeJSON(w, http.StatusOK, compareResponse{Bills: entries})
}

type featuredResponse struct {
	Date      string           `json:"date"`
	Dismissed bool             `json:"dismissed"`
	Bill      *export.BillView `json:"bill,omitempty"`
}

// handleFeatured picks a bill of the day: one of the featuredPool most
// recently acted-on bills, chosen deterministically from the calendar
// date so every client sees the same pick. The choice is cached so it
// survives dataset reordering within the day.
func (s *server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	date := s.now().UTC().Format("2006-01-02")
	resp := featuredResponse{Date: date}

	dismissed, err := s.store.FeaturedDismissed(r.Context(), s.profile(r), date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	resp.Dismissed = dismissed

	doc, err := s.store.FeaturedBill(r.Context(), date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if doc == "" {
		doc = s.pickFeatured(date)
		if doc != "" {
			if err := s.store.SetFeaturedBill(r.Context(), date, doc); err != nil {
				s.log.Warn("cache featured bill", slog.Any("err", err))
			}
		}
	}

	if bill, ok := s.byDoc[doc]; ok {
		view := export.View(bill)
		resp.Bill = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) pickFeatured(date string) string {
	if len(s.bills) == 0 {
		return ""
	}
	recent := append([]models.Bill(nil), s.bills...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].LastActionDate().After(recent[j].LastActionDate())
	})
	if len(recent) > featuredPool {
		recent = recent[:featuredPool]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(date))
	return recent[int(h.Sum32())%len(recent)].DocNumber
}

func (s *server) handleDismissFeatured(w http.ResponseWriter, r *http.Request) {
	date := s.now().UTC().Format("2006-01-02")
	if err := s.store.DismissFeatured(r.Context(), s.profile(r), date); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed", "date": date})
}

func (s *server) handleExportFiltered(w http.ResponseWriter, r *http.Request) {
	matched, _ := s.filtered(r)
	s.writeDownload(w, "ga_bills_export.json", export.NewCollection(matched, s.now()))
}

func (s *server) handleExportBillJSON(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeDownload(w, export.Filename(bill.DocNumber, "json"), export.View(bill))
}

func (s *server) handleExportBillCSV(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	raw, err := export.CSV(bill)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(bill.DocNumber, "csv")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.store.Favorites(r.Context(), s.profile(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"favorites": favs})
}

func (s *server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.store.AddFavorite(r.Context(), s.profile(r), bill.DocNumber); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "docNumber")
	if err := s.store.RemoveFavorite(r.Context(), s.profile(r), doc); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *server) handleExportFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.store.Favorites(r.Context(), s.profile(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	bills := make([]models.Bill, 0, len(favs))
	for _, doc := range favs {
		if bill, ok := s.byDoc[doc]; ok {
			bills = append(bills, bill)
		}
	}
	s.writeDownload(w, "ga_bills_favorites.json", export.NewCollection(bills, s.now()))
}

func (s *server) handleReads(w http.ResponseWriter, r *http.Request) {
	reads, err := s.store.ReadMarks(r.Context(), s.profile(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"reads": reads})
}

func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.store.MarkRead(r.Context(), s.profile(r), bill.DocNumber); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (s *server) handleMarkUnread(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "docNumber")
	if err := s.store.MarkUnread(r.Context(), s.profile(r), doc); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unread"})
}

func (s *server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.store.Preferences(r.Context(), s.profile(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var prefs annotations.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid preferences body"})
		return
	}
	if prefs.Language == "" {
		prefs.Language = "en"
	}
	if err := s.store.SetPreferences(r.Context(), s.profile(r), prefs); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *server) handleSavedSearches(w http.ResponseWriter, r *http.Request) {
	searches, err := s.store.SavedSearches(r.Context(), s.profile(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]annotations.SavedSearch{"searches": searches})
}

type saveSearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

func (s *server) handleSaveSearch(w http.ResponseWriter, r *http.Request) {
	var req saveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid search body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "search name is required"})
		return
	}
	search, err := s.store.SaveSearch(r.Context(), s.profile(r), req.Name, req.Query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, search)
}

func (s *server) handleDeleteSearch(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSearch(r.Context(), s.profile(r), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// lookup resolves the docNumber path parameter, writing a 404 itself
// when the bill is unknown.
func (s *server) lookup(w http.ResponseWriter, r *http.Request) (models.Bill, bool) {
	doc := chi.URLParam(r, "docNumber")
	bill, ok := s.byDoc[doc]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "bill not found: " + doc})
		return models.Bill{}, false
	}
	return bill, true
}

func (s *server) writeDownload(w http.ResponseWriter, filename string, payload any) {
	raw, err := export.JSON(payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
