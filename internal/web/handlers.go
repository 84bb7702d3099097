package web

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/JonMunkholm/unitconv/internal/logging"
	"github.com/JonMunkholm/unitconv/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// defaultValue pre-fills the value field.
const defaultValue = "0"

// categoriesResponse is the body of GET /api/categories.
type categoriesResponse struct {
	Categories         []core.CategoryInfo `json:"categories" msgpack:"categories"`
	GeneralTemperature bool                `json:"general_temperature" msgpack:"general_temperature"`
}

// batchRequest is the body of POST /api/convert/batch.
type batchRequest struct {
	Conversions []core.Request `json:"conversions" msgpack:"conversions"`
}

// batchResponse is the reply to POST /api/convert/batch.
type batchResponse struct {
	Results []core.BatchResult `json:"results" msgpack:"results"`
	Failed  int                `json:"failed" msgpack:"failed"`
}

type healthResponse struct {
	Status     string             `json:"status" msgpack:"status"`
	Categories int                `json:"categories" msgpack:"categories"`
	Batches    core.LimiterStatus `json:"batches" msgpack:"batches"`
}

// ----------------------------------------------------------------------------
// Pages
// ----------------------------------------------------------------------------

// handleIndex renders the converter page. The category, from, to and value
// query parameters preselect the form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := s.pageData(q.Get("category"), q.Get("from"), q.Get("to"), q.Get("value"))
	s.renderPage(w, r, http.StatusOK, data)
}

// handleConvertForm handles the converter form's Convert and Reset buttons.
func (s *Server) handleConvertForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err), http.StatusBadRequest)
		return
	}

	form := r.PostForm
	category := form.Get("category")

	if form.Get("action") == "reset" {
		http.Redirect(w, r, "/?category="+url.QueryEscape(category), http.StatusSeeOther)
		return
	}

	req := core.Request{
		Category: category,
		From:     form.Get("from"),
		To:       form.Get("to"),
		Input:    form.Get("value"),
	}
	data := s.pageData(req.Category, req.From, req.To, req.Input)

	status := http.StatusOK
	res, err := s.service.Convert(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		status = statusFor(err)
		msg := core.MapError(err)
		data.Error = &msg
		logging.FromContext(r.Context()).Debug("form conversion rejected", "error", err, "code", msg.Code)
	} else {
		data.Result = &res
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ResultPanel(data.Result, data.Error).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render result", "error", err)
		}
		return
	}
	s.renderPage(w, r, status, data)
}

// pageData resolves the form state. Unknown categories fall back to the
// first one and unknown units to the category's defaults.
func (s *Server) pageData(category, from, to, value string) templates.PageData {
	categories := s.service.Categories()
	if !slices.Contains(categories, category) {
		category = categories[0]
	}

	// category is known here, so Describe cannot fail.
	info, _ := s.service.Describe(category)

	if !slices.Contains(info.SourceUnits, from) {
		from = info.SourceUnits[0]
	}
	if !slices.Contains(info.Units, to) {
		to = info.Units[0]
	}
	if value == "" {
		value = defaultValue
	}

	data := templates.PageData{
		Categories:  categories,
		Category:    category,
		Units:       info.Units,
		SourceUnits: info.SourceUnits,
		From:        from,
		To:          to,
		Value:       value,
	}
	if len(info.SourceUnits) < len(info.Units) {
		data.Note = fmt.Sprintf("%s converts from %s only.", category, joinUnits(info.SourceUnits))
	}
	return data
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data templates.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func joinUnits(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	out := names[0]
	for _, n := range names[1 : len(names)-1] {
		out += ", " + n
	}
	return out + " and " + names[len(names)-1]
}

// ----------------------------------------------------------------------------
// API
// ----------------------------------------------------------------------------

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, healthResponse{
		Status:     "ok",
		Categories: len(s.service.Categories()),
		Batches:    s.service.BatchStatus(),
	})
}

// handleListCategories returns every category with its units.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, categoriesResponse{
		Categories:         s.service.DescribeAll(),
		GeneralTemperature: s.service.GeneralTemperature(),
	})
}

// handleListUnits returns the units of one category.
func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}

	info, err := s.service.Describe(category)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	writeData(w, r, http.StatusOK, info)
}

// handleConvert converts one value. GET reads the category, from, to and
// value query parameters; POST reads a core.Request body.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req core.Request
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req = core.Request{
			Category: q.Get("category"),
			From:     q.Get("from"),
			To:       q.Get("to"),
			Input:    q.Get("value"),
		}
	} else if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.Convert(WithRequestMetadata(r.Context(), r), req)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeData(w, r, http.StatusOK, res)
}

// handleConvertBatch converts a list of requests. Individual failures are
// reported per entry with a 200; only an oversized or malformed batch fails
// the whole request.
func (s *Server) handleConvertBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	results, err := s.service.ConvertBatch(WithRequestMetadata(r.Context(), r), body.Conversions)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := batchResponse{Results: results}
	for _, res := range results {
		if res.Error != nil {
			resp.Failed++
		}
	}
	writeData(w, r, http.StatusOK, resp)
}
