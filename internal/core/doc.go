// Package core provides the application layer between the conversion engine
// and its front ends.
//
// The package is independent of any UI or transport. The web server, the
// CLI and the terminal menu all go through [Service] so that value parsing,
// result formatting, error codes, logging and metrics behave the same
// everywhere.
//
// # Service
//
// [Service] wraps a [units.Converter] built from configuration:
//
//	svc, err := core.NewService(cfg, prometheus.DefaultRegisterer)
//	res, err := svc.Convert(ctx, core.Request{
//	    Category: "Temperature",
//	    From:     "Celsius",
//	    To:       "Fahrenheit",
//	    Input:    "100",
//	})
//	// res.Display == "100 Celsius = 212 Fahrenheit"
//
// A [Request] carries either a numeric Value or raw Input text. Raw text is
// parsed with [ParseValue], which accepts thousands separators, accounting
// negatives "(12.5)" and spreadsheet artifacts like ="42".
//
// # Error Handling
//
// Engine and parsing errors are mapped to user-friendly messages using
// [MapError]. Each error kind has a stable code for support reference:
//
//   - CONV001-CONV003: conversion errors (category, unit, unsupported)
//   - VAL001-VAL004: input validation errors
//   - REQ001-REQ004: cancelled, timed out, malformed or misrouted requests
//   - RATE001-RATE002: rate limiting and batch back-pressure
//   - AUTH001-AUTH002: API key problems
//
// # Batches
//
// [Service.ConvertBatch] converts entries independently and reports each
// failure in place. A [BatchLimiter] caps how many batches run at once.
//
// # Metrics
//
// Every conversion increments unitconv_conversions_total with the category
// and outcome (ok or the error code). Batch sizes feed unitconv_batch_size.
package core
