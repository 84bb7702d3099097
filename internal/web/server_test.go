package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/unitconv/internal/config"
	"github.com/JonMunkholm/unitconv/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Rate.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	reg := prometheus.NewRegistry()
	svc, err := core.NewService(cfg, reg)
	require.NoError(t, err)

	srv := NewServer(svc, cfg, reg)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", contentTypeJSON)
	return serve(srv, req)
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func ptr(v float64) *float64 { return &v }

// ----------------------------------------------------------------------------
// API
// ----------------------------------------------------------------------------

func TestAPI_ListCategories(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeJSON, rec.Header().Get("Content-Type"))

	resp := decodeJSON[categoriesResponse](t, rec)
	require.Len(t, resp.Categories, 11)
	assert.False(t, resp.GeneralTemperature)
	assert.Equal(t, "Length", resp.Categories[0].Name)
	assert.Equal(t, "Temperature", resp.Categories[3].Name)
	assert.Equal(t, []string{"Celsius"}, resp.Categories[3].SourceUnits)
}

func TestAPI_ListUnits(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/categories/Data%20Storage/units", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	info := decodeJSON[core.CategoryInfo](t, rec)
	assert.Equal(t, "Data Storage", info.Name)
	assert.Equal(t, "bytes", info.Units[0])
	assert.Equal(t, "petabytes", info.Units[len(info.Units)-1])
}

func TestAPI_ListUnitsUnknownCategory(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/categories/Distance/units", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CONV001", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestAPI_ConvertGet(t *testing.T) {
	srv := newTestServer(t, nil)

	q := url.Values{
		"category": {"Temperature"},
		"from":     {"Celsius"},
		"to":       {"Fahrenheit"},
		"value":    {"100"},
	}
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/convert?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeJSON[core.Result](t, rec)
	assert.Equal(t, 212.0, res.Result)
	assert.Equal(t, "100 Celsius = 212 Fahrenheit", res.Display)
	assert.NotEmpty(t, res.ID)
}

func TestAPI_ConvertPost(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/convert", core.Request{
		Category: "Length", From: "meters", To: "kilometers", Value: ptr(0),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decodeJSON[core.Result](t, rec).Result)
}

func TestAPI_ConvertErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "temperature from fahrenheit",
			body:       `{"category":"Temperature","from":"Fahrenheit","to":"Celsius","value":32}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "CONV003",
		},
		{
			name:       "unknown unit",
			body:       `{"category":"Length","from":"furlongs","to":"meters","value":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONV002",
		},
		{
			name:       "unknown category",
			body:       `{"category":"Distance","from":"meters","to":"feet","value":1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONV001",
		},
		{
			name:       "bad input text",
			body:       `{"category":"Length","from":"meters","to":"feet","input":"lots"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL001",
		},
		{
			name:       "lone formula prefix",
			body:       `{"category":"Length","from":"meters","to":"feet","input":"=\""}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL003",
		},
		{
			name:       "missing value",
			body:       `{"category":"Length","from":"meters","to":"feet"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL003",
		},
		{
			name:       "malformed json",
			body:       `{"category":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ003",
		},
		{
			name:       "unknown field",
			body:       `{"category":"Length","unit":"meters"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ003",
		},
		{
			name:       "empty body",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   "REQ003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", contentTypeJSON)
			rec := serve(srv, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decodeJSON[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestAPI_ConvertMsgpack(t *testing.T) {
	srv := newTestServer(t, nil)

	body, err := msgpack.Marshal(core.Request{
		Category: "Temperature", From: "Celsius", To: "Kelvin", Value: ptr(0),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", bytes.NewReader(body))
	req.Header.Set("Content-Type", contentTypeMsgpack)
	req.Header.Set("Accept", "application/x-msgpack")
	rec := serve(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeMsgpack, rec.Header().Get("Content-Type"))

	var res core.Result
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 273.15, res.Result)
	assert.Equal(t, "0 Celsius = 273.15 Kelvin", res.Display)
}

func TestAPI_ErrorMsgpack(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/convert?category=Temperature&from=Kelvin&to=Celsius&value=1", nil)
	req.Header.Set("Accept", contentTypeMsgpack)
	rec := serve(srv, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONV003", resp.Code)
}

func TestAPI_ConvertBatch(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postJSON(t, srv, "/api/convert/batch", batchRequest{Conversions: []core.Request{
		{Category: "Speed", From: "m/s", To: "km/h", Value: ptr(10)},
		{Category: "Temperature", From: "Kelvin", To: "Celsius", Value: ptr(0)},
	}})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[batchResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Failed)
	require.NotNil(t, resp.Results[0].Result)
	assert.InDelta(t, 36.0, resp.Results[0].Result.Result, 1e-9)
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, "CONV003", resp.Results[1].Error.Code)
}

func TestAPI_ConvertBatchTooLarge(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Convert.MaxBatch = 1 })

	rec := postJSON(t, srv, "/api/convert/batch", batchRequest{Conversions: make([]core.Request, 2)})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "VAL004", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestAPI_RequiresKey(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, serve(srv, req).Code)

	// The page is not behind the key.
	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestAPI_RateLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 1
	})

	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

// ----------------------------------------------------------------------------
// Pages
// ----------------------------------------------------------------------------

func TestPage_Index(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Unit Converter</h1>")
	assert.Contains(t, body, `<option value="Length" selected>Length</option>`)
	assert.Contains(t, body, `<option value="nautical miles">nautical miles</option>`)
	assert.Contains(t, body, `value="0"`)
}

func TestPage_TemperatureSources(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?category=Temperature&from=Kelvin", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	from := body[strings.Index(body, `name="from"`):strings.Index(body, `name="to"`)]
	assert.Contains(t, from, `<option value="Celsius" selected>`)
	assert.NotContains(t, from, "Kelvin")
	assert.Contains(t, body, "Temperature converts from Celsius only.")
}

func TestPage_UnknownCategoryFallsBack(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/?category=Nope", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="Length" selected>Length</option>`)
}

func postForm(srv *Server, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return serve(srv, req)
}

func TestPage_ConvertForm(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postForm(srv, url.Values{
		"category": {"Temperature"},
		"from":     {"Celsius"},
		"to":       {"Fahrenheit"},
		"value":    {"100"},
		"action":   {"convert"},
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Converted Value: 212 Fahrenheit")
	assert.Contains(t, body, "100 Celsius = 212 Fahrenheit")
	assert.Contains(t, body, `<option value="Fahrenheit" selected>`)
}

func TestPage_ConvertFormError(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postForm(srv, url.Values{
		"category": {"Length"},
		"from":     {"meters"},
		"to":       {"feet"},
		"value":    {"twelve"},
	}, false)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "The value is not a valid number")
	assert.Contains(t, body, "Code: VAL001")
	assert.Contains(t, body, `value="twelve"`)
	assert.NotContains(t, body, "Conversion Result")
}

func TestPage_ConvertFormHTMX(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postForm(srv, url.Values{
		"category": {"Weight"},
		"from":     {"kilograms"},
		"to":       {"grams"},
		"value":    {"2"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Converted Value: 2000 grams")
	assert.NotContains(t, body, "<html")
}

func TestPage_Reset(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postForm(srv, url.Values{
		"category": {"Data Storage"},
		"value":    {"5"},
		"action":   {"reset"},
	}, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?category=Data+Storage", rec.Header().Get("Location"))
}

// ----------------------------------------------------------------------------
// Infrastructure routes
// ----------------------------------------------------------------------------

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decodeJSON[healthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 11, health.Categories)
	assert.Equal(t, config.Default().Convert.MaxConcurrentBatches, health.Batches.Available)

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/convert?category=Time&from=hours&to=minutes&value=1", nil))

	rec = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `unitconv_conversions_total{category="Time",outcome="ok"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "(REQ004)")
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("csp enabled", func(t *testing.T) {
		srv := newTestServer(t, nil)
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, contentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
	})

	t.Run("csp disabled", func(t *testing.T) {
		srv := newTestServer(t, func(c *config.Config) { c.Security.EnableCSP = false })
		rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(context.Canceled))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyBatches))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
