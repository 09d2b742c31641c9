package link

import "strings"

// regionalIndicatorA is U+1F1E6, the regional indicator for 'A'
const regionalIndicatorA = 0x1F1E6

// CountryTable maps ISO 3166-1 alpha-2 codes to country names.
// It is read-only once built.
type CountryTable struct {
	names map[string]string
}

// NewCountryTable builds a table from code -> name pairs. Codes are upper-cased.
func NewCountryTable(entries map[string]string) CountryTable {
	names := make(map[string]string, len(entries))
	for code, name := range entries {
		code = strings.ToUpper(strings.TrimSpace(code))
		if len(code) != 2 || !isUpperLetter(code[0]) || !isUpperLetter(code[1]) {
			continue
		}
		names[code] = name
	}
	return CountryTable{names: names}
}

// DefaultCountryTable returns the built-in table of common proxy locations.
func DefaultCountryTable() CountryTable {
	return NewCountryTable(map[string]string{
		"AE": "United Arab Emirates",
		"AR": "Argentina",
		"AT": "Austria",
		"AU": "Australia",
		"BE": "Belgium",
		"BG": "Bulgaria",
		"BR": "Brazil",
		"CA": "Canada",
		"CH": "Switzerland",
		"CL": "Chile",
		"CN": "China",
		"CZ": "Czechia",
		"DE": "Germany",
		"DK": "Denmark",
		"EE": "Estonia",
		"ES": "Spain",
		"FI": "Finland",
		"FR": "France",
		"GB": "United Kingdom",
		"HK": "Hong Kong",
		"HU": "Hungary",
		"ID": "Indonesia",
		"IE": "Ireland",
		"IL": "Israel",
		"IN": "India",
		"IR": "Iran",
		"IS": "Iceland",
		"IT": "Italy",
		"JP": "Japan",
		"KR": "South Korea",
		"KZ": "Kazakhstan",
		"LT": "Lithuania",
		"LU": "Luxembourg",
		"LV": "Latvia",
		"MD": "Moldova",
		"MX": "Mexico",
		"MY": "Malaysia",
		"NL": "Netherlands",
		"NO": "Norway",
		"NZ": "New Zealand",
		"PH": "Philippines",
		"PL": "Poland",
		"PT": "Portugal",
		"RO": "Romania",
		"RS": "Serbia",
		"RU": "Russia",
		"SE": "Sweden",
		"SG": "Singapore",
		"TH": "Thailand",
		"TR": "Turkey",
		"TW": "Taiwan",
		"UA": "Ukraine",
		"US": "United States",
		"VN": "Vietnam",
		"ZA": "South Africa",
	})
}

// Has reports whether code is in the table
func (t CountryTable) Has(code string) bool {
	_, ok := t.names[strings.ToUpper(code)]
	return ok
}

// Name returns the country name for code
func (t CountryTable) Name(code string) (string, bool) {
	name, ok := t.names[strings.ToUpper(code)]
	return name, ok
}

// Len returns the number of entries
func (t CountryTable) Len() int {
	return len(t.names)
}

// Flag returns the flag emoji for a two-letter code in the table, or "".
func (t CountryTable) Flag(code string) string {
	code = strings.ToUpper(code)
	if !t.Has(code) {
		return ""
	}
	return string([]rune{
		rune(regionalIndicatorA + int(code[0]-'A')),
		rune(regionalIndicatorA + int(code[1]-'A')),
	})
}

// codeFromFlag reverses Flag for a pair of regional indicator runes.
func codeFromFlag(first, second rune) (string, bool) {
	if !isRegionalIndicator(first) || !isRegionalIndicator(second) {
		return "", false
	}
	return string([]byte{
		byte('A' + (first - regionalIndicatorA)),
		byte('A' + (second - regionalIndicatorA)),
	}), true
}

func isUpperLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isRegionalIndicator(r rune) bool {
	return r >= regionalIndicatorA && r <= regionalIndicatorA+25
}
