package units

import (
	"fmt"
	"math"
	"strings"
)

// Celsius is the reference unit of temperature rules. Every temperature
// unit is defined as a function of a Celsius value.
const Celsius = "Celsius"

// Category is a named, ordered group of mutually convertible units.
type Category struct {
	Name  string
	Units []Unit
}

// Table is an immutable Category -> Unit mapping. It is safe for concurrent
// use; nothing mutates it after NewTable returns.
type Table struct {
	order      []string
	categories map[string]*category
}

type category struct {
	name  string
	kind  Kind
	order []string
	units map[string]Unit
}

// NewTable validates the categories and builds a table from them.
// Category and unit order is preserved.
func NewTable(categories ...Category) (*Table, error) {
	t := &Table{
		order:      make([]string, 0, len(categories)),
		categories: make(map[string]*category, len(categories)),
	}

	var errs []string
	for _, c := range categories {
		cat, problems := buildCategory(c)
		if _, dup := t.categories[c.Name]; dup {
			problems = append(problems, "duplicate category")
		}
		if len(problems) > 0 {
			for _, p := range problems {
				errs = append(errs, fmt.Sprintf("%q: %s", c.Name, p))
			}
			continue
		}
		t.order = append(t.order, c.Name)
		t.categories[c.Name] = cat
	}

	if len(errs) > 0 {
		return nil, &Error{
			Op:     "table",
			Err:    ErrInvalidTable,
			Detail: strings.Join(errs, "; "),
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
// Use it only for tables declared at init time.
func MustTable(categories ...Category) *Table {
	t, err := NewTable(categories...)
	if err != nil {
		panic(err)
	}
	return t
}

func buildCategory(c Category) (*category, []string) {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "empty category name")
	}
	if len(c.Units) == 0 {
		problems = append(problems, "no units")
		return nil, problems
	}

	cat := &category{
		name:  c.Name,
		kind:  c.Units[0].Kind,
		order: make([]string, 0, len(c.Units)),
		units: make(map[string]Unit, len(c.Units)),
	}

	for _, u := range c.Units {
		switch {
		case strings.TrimSpace(u.Name) == "":
			problems = append(problems, "empty unit name")
			continue
		case u.Kind != cat.kind:
			problems = append(problems, fmt.Sprintf("unit %q mixes %s and %s units", u.Name, u.Kind, cat.kind))
			continue
		}
		if _, dup := cat.units[u.Name]; dup {
			problems = append(problems, fmt.Sprintf("duplicate unit %q", u.Name))
			continue
		}

		switch u.Kind {
		case KindLinear:
			if u.Factor <= 0 || math.IsInf(u.Factor, 0) || math.IsNaN(u.Factor) {
				problems = append(problems, fmt.Sprintf("unit %q has non-positive or non-finite factor %v", u.Name, u.Factor))
				continue
			}
		case KindTemperature:
			if u.fromCelsius == nil {
				problems = append(problems, fmt.Sprintf("unit %q has no temperature rule", u.Name))
				continue
			}
		default:
			problems = append(problems, fmt.Sprintf("unit %q has unknown kind %d", u.Name, u.Kind))
			continue
		}

		cat.order = append(cat.order, u.Name)
		cat.units[u.Name] = u
	}

	if cat.kind == KindTemperature {
		if _, ok := cat.units[Celsius]; !ok {
			problems = append(problems, "temperature category has no "+Celsius+" unit")
		}
	}

	return cat, problems
}

// Categories returns category names in table order.
func (t *Table) Categories() []string {
	return append([]string(nil), t.order...)
}

// Units returns the unit names of a category in table order.
func (t *Table) Units(categoryName string) ([]string, error) {
	cat, ok := t.categories[categoryName]
	if !ok {
		return nil, &Error{Op: "units", Category: categoryName, Err: ErrUnknownCategory}
	}
	return append([]string(nil), cat.order...), nil
}

// Unit looks up a single unit.
func (t *Table) Unit(categoryName, unitName string) (Unit, error) {
	cat, ok := t.categories[categoryName]
	if !ok {
		return Unit{}, &Error{Op: "unit", Category: categoryName, Err: ErrUnknownCategory}
	}
	u, ok := cat.units[unitName]
	if !ok {
		return Unit{}, &Error{Op: "unit", Category: categoryName, Unit: unitName, Err: ErrUnknownUnit}
	}
	return u, nil
}

// Kind returns the variant shared by all units of a category.
func (t *Table) Kind(categoryName string) (Kind, error) {
	cat, ok := t.categories[categoryName]
	if !ok {
		return 0, &Error{Op: "kind", Category: categoryName, Err: ErrUnknownCategory}
	}
	return cat.kind, nil
}

// HasCategory reports whether the table knows the category.
func (t *Table) HasCategory(categoryName string) bool {
	_, ok := t.categories[categoryName]
	return ok
}
