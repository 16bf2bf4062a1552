package ceca

import (
	"sort"
	"strings"
)

// ISO 4217 alpha code -> numeric code accepted by the gateway
var currencies = map[string]string{
	"EUR": "978",
	"USD": "840",
	"GBP": "826",
	"AUD": "036",
	"CHF": "756",
	"JPY": "392",
	"DKK": "208",
	"SEK": "752",
	"NOK": "578",
}

// Site locale -> gateway language code
var languages = map[string]string{
	"en_AU": "6",
	"en_IN": "6",
	"en_GB": "6",
	"en_US": "6",
	"en_CA": "6",
	"en_NZ": "6",
	"fr_CA": "7",
	"fr_FR": "7",
	"fr_XC": "7",
	"de_DE": "8",
	"it_IT": "10",
	"no_NO": "15",
	"pt_BR": "9",
	"pt_PT": "9",
	"ru_RU": "14",
	"ru_UA": "14",
	"es_ES": "1",
	"es_XC": "1",
}

var languageNames = map[string]string{
	"6":  "English",
	"7":  "French",
	"8":  "German",
	"10": "Italian",
	"15": "Norwegian",
	"9":  "Portuguese",
	"14": "Russian",
	"1":  "Spanish",
}

// CurrencyCode maps an ISO alpha code, in any case, to its numeric code
func CurrencyCode(iso string) (string, bool) {
	code, ok := currencies[strings.ToUpper(strings.TrimSpace(iso))]
	return code, ok
}

// LanguageCode maps a locale such as es_ES or es-ES to a gateway language code
func LanguageCode(locale string) (string, bool) {
	code, ok := languages[strings.ReplaceAll(strings.TrimSpace(locale), "-", "_")]
	return code, ok
}

// LanguageName returns the display name of a gateway language code
func LanguageName(code string) (string, bool) {
	name, ok := languageNames[code]
	return name, ok
}

// CurrencyCodes returns the supported numeric currency codes, sorted
func CurrencyCodes() []string {
	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// LanguageCodes returns the supported gateway language codes, sorted
func LanguageCodes() []string {
	codes := make([]string, 0, len(languageNames))
	for c := range languageNames {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
