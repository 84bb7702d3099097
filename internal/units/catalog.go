package units

// Category names of the standard table.
const (
	Length      = "Length"
	Weight      = "Weight"
	Volume      = "Volume"
	Temp        = "Temperature"
	Energy      = "Energy"
	Pressure    = "Pressure"
	Speed       = "Speed"
	Time        = "Time"
	Power       = "Power"
	DataStorage = "Data Storage"
	Area        = "Area"
)

// Factors read "1 base unit = factor units"; the first unit of each linear
// category is its base.
var catalog = []Category{
	{Name: Length, Units: []Unit{
		Linear("meters", 1),
		Linear("kilometers", 0.001),
		Linear("centimeters", 100),
		Linear("millimeters", 1000),
		Linear("miles", 0.000621371),
		Linear("yards", 1.09361),
		Linear("feet", 3.28084),
		Linear("inches", 39.3701),
		Linear("nautical miles", 0.000539957),
	}},
	{Name: Weight, Units: []Unit{
		Linear("grams", 1),
		Linear("kilograms", 0.001),
		Linear("milligrams", 1000),
		Linear("pounds", 0.00220462),
		Linear("ounces", 0.035274),
		Linear("tons", 0.00000110231),
		Linear("carats", 5),
		Linear("stones", 0.000157473),
	}},
	{Name: Volume, Units: []Unit{
		Linear("liters", 1),
		Linear("milliliters", 1000),
		Linear("cubic meters", 0.001),
		Linear("cubic centimeters", 1000),
		Linear("gallons", 0.264172),
		Linear("quarts", 1.05669),
		Linear("pints", 2.11338),
		Linear("cups", 4.22675),
		Linear("fluid ounces", 33.814),
		Linear("barrels", 0.00628981),
	}},
	{Name: Temp, Units: []Unit{
		Temperature(Celsius,
			func(c float64) float64 { return c },
			func(c float64) float64 { return c }),
		Temperature("Fahrenheit",
			func(c float64) float64 { return c*9/5 + 32 },
			func(f float64) float64 { return (f - 32) * 5 / 9 }),
		Temperature("Kelvin",
			func(c float64) float64 { return c + 273.15 },
			func(k float64) float64 { return k - 273.15 }),
	}},
	{Name: Energy, Units: []Unit{
		Linear("joules", 1),
		Linear("kilojoules", 0.001),
		Linear("calories", 0.239006),
		Linear("kilocalories", 0.000239006),
		Linear("BTU", 0.000947817),
		Linear("electronvolts", 6.242e+18),
		Linear("ergs", 1e+7),
	}},
	{Name: Pressure, Units: []Unit{
		Linear("pascals", 1),
		Linear("kilopascals", 0.001),
		Linear("bar", 0.00001),
		Linear("atm", 0.00000986923),
		Linear("psi", 0.000145038),
		Linear("torr", 0.00750062),
		Linear("mmHg", 0.00750062),
	}},
	{Name: Speed, Units: []Unit{
		Linear("m/s", 1),
		Linear("km/h", 3.6),
		Linear("mph", 2.23694),
		Linear("knots", 1.94384),
		Linear("ft/s", 3.28084),
		Linear("mach", 0.00293858),
	}},
	{Name: Time, Units: []Unit{
		Linear("seconds", 1),
		Linear("minutes", 0.0166667),
		Linear("hours", 0.000277778),
		Linear("days", 0.0000115741),
		Linear("weeks", 0.00000165344),
		Linear("months", 0.000000380257),
		Linear("years", 0.0000000316881),
		Linear("decades", 0.00000000316881),
		Linear("centuries", 0.000000000316881),
	}},
	{Name: Power, Units: []Unit{
		Linear("watts", 1),
		Linear("kilowatts", 0.001),
		Linear("horsepower", 0.00134102),
		Linear("BTU/hr", 3.41214),
		Linear("ergs/sec", 1e+7),
	}},
	{Name: DataStorage, Units: []Unit{
		Linear("bytes", 1),
		Linear("kilobytes", 0.001),
		Linear("megabytes", 0.000001),
		Linear("gigabytes", 0.000000001),
		Linear("terabytes", 0.000000000001),
		Linear("bits", 8),
		Linear("kilobits", 0.008),
		Linear("megabits", 0.000008),
		Linear("gigabits", 0.000000008),
		Linear("petabytes", 0.000000000000001),
	}},
	{Name: Area, Units: []Unit{
		Linear("square meters", 1),
		Linear("square kilometers", 0.000001),
		Linear("square miles", 0.000000386102),
		Linear("square feet", 10.7639),
		Linear("square inches", 1550),
		Linear("hectares", 0.0001),
		Linear("acres", 0.000247105),
	}},
}

var standard = MustTable(catalog...)

// Standard returns the built-in table of the eleven standard categories.
func Standard() *Table {
	return standard
}
