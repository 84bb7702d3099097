package units

// Kind tags the Unit variant.
type Kind int

const (
	// KindLinear units convert through a factor relative to the base unit.
	KindLinear Kind = iota
	// KindTemperature units convert through functions of Celsius.
	KindTemperature
)

func (k Kind) String() string {
	switch k {
	case KindLinear:
		return "linear"
	case KindTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}

// Unit is a named unit within a category. Build one with Linear or
// Temperature; the zero value is not usable.
type Unit struct {
	Name string
	Kind Kind

	// Factor expresses "1 base unit = Factor units". Only set for KindLinear.
	Factor float64

	fromCelsius func(float64) float64
	toCelsius   func(float64) float64
}

// Linear returns a unit defined by a factor relative to the category base.
func Linear(name string, factor float64) Unit {
	return Unit{Name: name, Kind: KindLinear, Factor: factor}
}

// Temperature returns a unit defined as a function of Celsius.
// toCelsius is the inverse and may be nil; without it the unit cannot be
// a conversion source even when general temperature conversion is enabled.
func Temperature(name string, fromCelsius, toCelsius func(float64) float64) Unit {
	return Unit{
		Name:        name,
		Kind:        KindTemperature,
		fromCelsius: fromCelsius,
		toCelsius:   toCelsius,
	}
}

// FromCelsius applies the unit's temperature rule to a Celsius value.
// It returns false for linear units.
func (u Unit) FromCelsius(c float64) (float64, bool) {
	if u.Kind != KindTemperature || u.fromCelsius == nil {
		return 0, false
	}
	return u.fromCelsius(c), true
}

// ToCelsius applies the inverse temperature rule. It returns false for linear
// units and for temperature units without an inverse.
func (u Unit) ToCelsius(v float64) (float64, bool) {
	if u.Kind != KindTemperature || u.toCelsius == nil {
		return 0, false
	}
	return u.toCelsius(v), true
}

// Invertible reports whether the unit can be used as a temperature source
// under general temperature conversion.
func (u Unit) Invertible() bool {
	return u.Kind == KindTemperature && u.toCelsius != nil
}
