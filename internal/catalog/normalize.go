package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// vehicleSynonyms maps the booking service's French labels onto the stable
// identifiers exposed by the API. Order matters: "camionnette" must be
// substituted before "camion", and "remorque" before the trailer size splits.
var vehicleSynonyms = []struct{ from, to string }{
	{"voiture", "car"},
	{"tracteur", "tractor"},
	{"camionnette", "van"},
	{"camion", "truck"},
	{"remorque", "trailer"},
	{"autobus / autocar", "bus"},
	{"trailer < 3,5 t", "small_trailer"},
	{"trailer > 3,5 t", "large_trailer"},
}

// NormalizeSiteName turns an upstream site label into a stable identifier:
// "Esch/Alzette" becomes "esch_sur_alzette".
func NormalizeSiteName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "/", " sur ")
	name = strings.ReplaceAll(name, " ", "_")
	return foldASCII(name)
}

// NormalizeVehicleType turns an upstream vehicle-type label into a stable
// identifier: "Voiture" becomes "car", "Remorque < 3,5 t" becomes
// "small_trailer".
func NormalizeVehicleType(name string) string {
	name = strings.ToLower(name)
	for _, syn := range vehicleSynonyms {
		name = strings.ReplaceAll(name, syn.from, syn.to)
	}
	name = strings.ReplaceAll(name, " ", "_")
	return foldASCII(name)
}

var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldASCII strips diacritics and drops any rune that still is not ASCII.
func foldASCII(s string) string {
	folded, _, err := transform.String(deaccent, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
}
