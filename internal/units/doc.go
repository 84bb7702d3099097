// Package units provides the conversion engine: a fixed table of measurement
// categories and a pure conversion function over it.
//
// The package has no UI, logging or transport dependencies. Front ends (the
// web server, the CLI and the terminal menu) go through [core.Service], which
// wraps a [Converter].
//
// # Table
//
// A [Table] maps category names to ordered units. Each [Unit] is one of two
// variants:
//
//   - Linear: a factor relative to the category base unit, where
//     "1 base unit = factor units". The base unit has factor 1.
//   - Temperature: a function from Celsius to the unit, plus an optional
//     inverse used only when general temperature conversion is enabled.
//
// The standard table ([Standard]) is built once at package init from the
// catalog and is never mutated.
//
// # Conversion
//
// Linear conversions use the ratio form
//
//	result = value * (factor[to] / factor[from])
//
// Temperature conversions only accept Celsius as the source unless the
// converter was built with [WithGeneralTemperature], in which case any source
// goes through Celsius first.
//
// # Errors
//
// Every failure is an [*Error] wrapping one of the sentinel kinds, so callers
// can use errors.Is:
//
//   - [ErrUnknownCategory]: category not in the table
//   - [ErrUnknownUnit]: from or to unit not in the category
//   - [ErrUnsupportedConversion]: temperature source other than Celsius
//   - [ErrInvalidValue]: NaN or infinite input
package units
