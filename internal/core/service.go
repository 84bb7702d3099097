package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/unitconv/internal/config"
	"github.com/JonMunkholm/unitconv/internal/logging"
	"github.com/JonMunkholm/unitconv/internal/units"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrBatchTooLarge is returned when a batch exceeds Convert.MaxBatch.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrInvalidRequest is returned by front ends for undecodable requests.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned for unknown routes.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited is returned when a client exceeds its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrMissingAPIKey and ErrInvalidAPIKey are returned by API key auth.
	ErrMissingAPIKey = errors.New("missing API key")
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Request is a single conversion request. Value takes precedence over Input;
// Input is raw user text parsed with ParseValue.
type Request struct {
	Category string   `json:"category" msgpack:"category"`
	From     string   `json:"from" msgpack:"from"`
	To       string   `json:"to" msgpack:"to"`
	Value    *float64 `json:"value,omitempty" msgpack:"value,omitempty"`
	Input    string   `json:"input,omitempty" msgpack:"input,omitempty"`
}

// Result is a completed conversion.
type Result struct {
	ID       string  `json:"id" msgpack:"id"`
	Category string  `json:"category" msgpack:"category"`
	From     string  `json:"from" msgpack:"from"`
	To       string  `json:"to" msgpack:"to"`
	Value    float64 `json:"value" msgpack:"value"`
	Result   float64 `json:"result" msgpack:"result"`

	// Formatted is Result rendered with the configured precision.
	Formatted string `json:"formatted" msgpack:"formatted"`

	// Display reads "<value> <from> = <result> <to>".
	Display string `json:"display" msgpack:"display"`
}

// BatchResult is the outcome of one entry of a batch. Exactly one of
// Result and Error is set.
type BatchResult struct {
	Index  int          `json:"index" msgpack:"index"`
	Result *Result      `json:"result,omitempty" msgpack:"result,omitempty"`
	Error  *UserMessage `json:"error,omitempty" msgpack:"error,omitempty"`
}

// CategoryInfo describes a category and its units in table order.
type CategoryInfo struct {
	Name        string   `json:"name" msgpack:"name"`
	Kind        string   `json:"kind" msgpack:"kind"`
	Units       []string `json:"units" msgpack:"units"`
	SourceUnits []string `json:"source_units" msgpack:"source_units"`
}

// Service is the entry point for all conversion front ends.
// It is safe for concurrent use.
type Service struct {
	converter *units.Converter
	metrics   *Metrics
	batches   *BatchLimiter
	precision int
	maxBatch  int
}

// NewService creates a Service over the standard table using cfg.
// Metrics are registered with reg; pass nil to skip registration.
func NewService(cfg *config.Config, reg prometheus.Registerer) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var opts []units.Option
	if cfg.Convert.GeneralTemperature {
		opts = append(opts, units.WithGeneralTemperature())
	}

	metrics, err := NewMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	return &Service{
		converter: units.New(units.Standard(), opts...),
		metrics:   metrics,
		batches:   NewBatchLimiter(cfg.Convert.MaxConcurrentBatches, cfg.Convert.BatchWait),
		precision: cfg.Convert.Precision,
		maxBatch:  cfg.Convert.MaxBatch,
	}, nil
}

// Categories returns category names in display order.
func (s *Service) Categories() []string {
	return s.converter.Categories()
}

// Units returns the unit names of a category in display order.
func (s *Service) Units(category string) ([]string, error) {
	return s.converter.Units(category)
}

// Describe returns the category with its units. SourceUnits lists the units
// accepted as a conversion source, which for temperature may be only Celsius.
func (s *Service) Describe(category string) (CategoryInfo, error) {
	table := s.converter.Table()
	names, err := table.Units(category)
	if err != nil {
		return CategoryInfo{}, err
	}
	kind, err := table.Kind(category)
	if err != nil {
		return CategoryInfo{}, err
	}

	info := CategoryInfo{Name: category, Kind: kind.String(), Units: names}
	for _, name := range names {
		if kind == units.KindTemperature && name != units.Celsius {
			u, err := table.Unit(category, name)
			if err != nil {
				return CategoryInfo{}, err
			}
			if !s.converter.GeneralTemperature() || !u.Invertible() {
				continue
			}
		}
		info.SourceUnits = append(info.SourceUnits, name)
	}
	return info, nil
}

// DescribeAll returns every category in display order.
func (s *Service) DescribeAll() []CategoryInfo {
	names := s.Categories()
	out := make([]CategoryInfo, 0, len(names))
	for _, name := range names {
		if info, err := s.Describe(name); err == nil {
			out = append(out, info)
		}
	}
	return out
}

// GeneralTemperature reports whether any temperature unit may be a source.
func (s *Service) GeneralTemperature() bool {
	return s.converter.GeneralTemperature()
}

// Format renders v with the configured precision.
func (s *Service) Format(v float64) string {
	return FormatValue(v, s.precision)
}

// Convert performs a single conversion. Failures are returned as
// *UserError, which still unwraps to the underlying error kind.
func (s *Service) Convert(ctx context.Context, req Request) (Result, error) {
	logger := logging.WithFields(ctx,
		"category", req.Category,
		"from", req.From,
		"to", req.To,
	)
	known := s.converter.Table().HasCategory(req.Category)

	if err := ctx.Err(); err != nil {
		s.metrics.observe(req.Category, known, err)
		return Result{}, NewUserError(err)
	}

	value, err := req.value()
	if err != nil {
		logger.Debug("conversion input rejected", "input", req.Input, "error", err)
		s.metrics.observe(req.Category, known, err)
		return Result{}, NewUserError(err)
	}

	out, err := s.converter.Convert(value, req.From, req.To, req.Category)
	if err != nil {
		ue := NewUserError(err)
		logger.Debug("conversion rejected", "value", value, "error", err, "code", ue.User.Code)
		s.metrics.observe(req.Category, known, err)
		return Result{}, ue
	}

	res := Result{
		ID:        uuid.New().String(),
		Category:  req.Category,
		From:      req.From,
		To:        req.To,
		Value:     value,
		Result:    out,
		Formatted: s.Format(out),
	}
	res.Display = fmt.Sprintf("%s %s = %s %s", s.Format(value), req.From, res.Formatted, req.To)

	s.metrics.observe(req.Category, known, nil)
	logger.Debug("conversion completed",
		"conversion_id", res.ID,
		"value", value,
		"result", out,
		"client_ip", ClientIPFromContext(ctx),
	)
	return res, nil
}

// ConvertBatch converts each request independently. A failing entry does
// not stop the batch; its BatchResult carries the user message instead.
// The whole call fails only if the batch is too large, no batch slot frees
// up in time, or ctx is done.
func (s *Service) ConvertBatch(ctx context.Context, reqs []Request) ([]BatchResult, error) {
	if len(reqs) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d conversions, limit is %d", ErrBatchTooLarge, len(reqs), s.maxBatch)
	}
	if err := s.batches.Acquire(ctx); err != nil {
		logging.FromContext(ctx).Warn("batch rejected", "size", len(reqs), "error", err)
		return nil, err
	}
	defer s.batches.Release()
	s.metrics.observeBatch(len(reqs))

	results := make([]BatchResult, len(reqs))
	failed := 0
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i].Index = i
		res, err := s.Convert(ctx, req)
		if err != nil {
			var ue *UserError
			if !errors.As(err, &ue) {
				ue = NewUserError(err)
			}
			results[i].Error = &ue.User
			failed++
			continue
		}
		results[i].Result = &res
	}

	logging.FromContext(ctx).Debug("batch converted", "size", len(reqs), "failed", failed)
	return results, nil
}

// BatchStatus reports batch concurrency for health checks.
func (s *Service) BatchStatus() LimiterStatus {
	return s.batches.Status()
}

// WaitForBatches blocks until running batches finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.batches.WaitForDrain(ctx)
}

func (r Request) value() (float64, error) {
	if r.Value != nil {
		return *r.Value, nil
	}
	return ParseValue(r.Input)
}
