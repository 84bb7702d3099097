package units

import (
	"fmt"
	"math"
)

// Converter performs conversions against a Table. It holds no mutable
// state and is safe for concurrent use.
type Converter struct {
	table              *Table
	generalTemperature bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithGeneralTemperature lets any invertible temperature unit be a source,
// converting through Celsius. Without it only Celsius is accepted as a
// temperature source.
func WithGeneralTemperature() Option {
	return func(c *Converter) {
		c.generalTemperature = true
	}
}

// New returns a Converter over table. A nil table means Standard().
func New(table *Table, opts ...Option) *Converter {
	if table == nil {
		table = Standard()
	}
	c := &Converter{table: table}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the converter's table.
func (c *Converter) Table() *Table {
	return c.table
}

// GeneralTemperature reports whether non-Celsius temperature sources are allowed.
func (c *Converter) GeneralTemperature() bool {
	return c.generalTemperature
}

// Categories returns the category names in table order.
func (c *Converter) Categories() []string {
	return c.table.Categories()
}

// Units returns the unit names of a category in table order.
func (c *Converter) Units(category string) ([]string, error) {
	return c.table.Units(category)
}

// Convert converts value from one unit to another within category.
//
// Linear units use value * (factor[to] / factor[from]). Temperature units
// apply the target's rule to a Celsius source; other sources fail with
// ErrUnsupportedConversion unless general temperature conversion is on.
func (c *Converter) Convert(value float64, from, to, category string) (float64, error) {
	cat, ok := c.table.categories[category]
	if !ok {
		return 0, &Error{Op: "convert", Category: category, Err: ErrUnknownCategory}
	}
	src, ok := cat.units[from]
	if !ok {
		return 0, &Error{Op: "convert", Category: category, Unit: from, Err: ErrUnknownUnit}
	}
	dst, ok := cat.units[to]
	if !ok {
		return 0, &Error{Op: "convert", Category: category, Unit: to, Err: ErrUnknownUnit}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &Error{Op: "convert", Category: category, Detail: fmt.Sprintf("%v is not finite", value), Err: ErrInvalidValue}
	}

	switch cat.kind {
	case KindTemperature:
		return c.convertTemperature(value, src, dst, category)
	default:
		if src.Name == dst.Name {
			return value, nil
		}
		return value * (dst.Factor / src.Factor), nil
	}
}

func (c *Converter) convertTemperature(value float64, src, dst Unit, category string) (float64, error) {
	celsius := value
	if src.Name != Celsius {
		if !c.generalTemperature {
			return 0, &Error{
				Op:       "convert",
				Category: category,
				Unit:     src.Name,
				Detail:   "temperature conversions must start from " + Celsius,
				Err:      ErrUnsupportedConversion,
			}
		}
		if src.Name == dst.Name {
			return value, nil
		}
		v, ok := src.ToCelsius(value)
		if !ok {
			return 0, &Error{
				Op:       "convert",
				Category: category,
				Unit:     src.Name,
				Detail:   "unit has no inverse temperature rule",
				Err:      ErrUnsupportedConversion,
			}
		}
		celsius = v
	}

	out, _ := dst.FromCelsius(celsius)
	return out, nil
}

var defaultConverter = New(nil)

// Categories returns the standard category names in order.
func Categories() []string {
	return defaultConverter.Categories()
}

// Units returns the standard units of a category in order.
func Units(category string) ([]string, error) {
	return defaultConverter.Units(category)
}

// Convert converts value using the standard table and Celsius-only
// temperature sources.
func Convert(value float64, from, to, category string) (float64, error) {
	return defaultConverter.Convert(value, from, to, category)
}
