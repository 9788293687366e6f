package language

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// displayNames maps ISO 639-1 codes to the names reported in TEXT_LANGUAGE.
// A detector code missing here ends the ranking walk.
var displayNames = map[string]string{
	"af": "Afrikaans",
	"am": "Amharic",
	"an": "Aragonese",
	"ar": "Arabic",
	"as": "Assamese",
	"az": "Azerbaijani",
	"be": "Belarusian",
	"bg": "Bulgarian",
	"bn": "Bengali",
	"br": "Breton",
	"bs": "Bosnian",
	"ca": "Catalan",
	"cs": "Czech",
	"cy": "Welsh",
	"da": "Danish",
	"de": "German",
	"el": "Greek",
	"en": "English",
	"eo": "Esperanto",
	"es": "Spanish",
	"et": "Estonian",
	"eu": "Basque",
	"fa": "Persian",
	"fi": "Finnish",
	"fr": "French",
	"ga": "Irish",
	"gl": "Galician",
	"gu": "Gujarati",
	"he": "Hebrew",
	"hi": "Hindi",
	"hr": "Croatian",
	"ht": "Haitian",
	"hu": "Hungarian",
	"hy": "Armenian",
	"id": "Indonesian",
	"is": "Icelandic",
	"it": "Italian",
	"ja": "Japanese",
	"jv": "Javanese",
	"ka": "Georgian",
	"kk": "Kazakh",
	"km": "Khmer",
	"kn": "Kannada",
	"ko": "Korean",
	"la": "Latin",
	"lg": "Ganda",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"mi": "Maori",
	"mk": "Macedonian",
	"ml": "Malayalam",
	"mn": "Mongolian",
	"mr": "Marathi",
	"ms": "Malay",
	"mt": "Maltese",
	"my": "Burmese",
	"nb": "Norwegian Bokmal",
	"ne": "Nepali",
	"nl": "Dutch",
	"nn": "Norwegian Nynorsk",
	"no": "Norwegian",
	"oc": "Occitan",
	"or": "Oriya",
	"pa": "Punjabi",
	"pl": "Polish",
	"pt": "Portuguese",
	"ro": "Romanian",
	"ru": "Russian",
	"si": "Sinhala",
	"sk": "Slovak",
	"sl": "Slovenian",
	"sn": "Shona",
	"so": "Somali",
	"sq": "Albanian",
	"sr": "Serbian",
	"st": "Sotho",
	"sv": "Swedish",
	"sw": "Swahili",
	"ta": "Tamil",
	"te": "Telugu",
	"th": "Thai",
	"tl": "Tagalog",
	"tn": "Tswana",
	"tr": "Turkish",
	"ts": "Tsonga",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"uz": "Uzbek",
	"vi": "Vietnamese",
	"wa": "Walloon",
	"xh": "Xhosa",
	"yi": "Yiddish",
	"yo": "Yoruba",
	"zh": "Chinese",
	"zu": "Zulu",
}

// isoCodes is derived from displayNames on first use.
var isoCodes = sync.OnceValue(func() map[string]string {
	out := make(map[string]string, len(displayNames))
	for code := range displayNames {
		out[code] = strings.ToUpper(iso3(code))
	}
	return out
})

func iso3(code string) string {
	base, err := language.ParseBase(code)
	if err != nil {
		return code
	}
	return base.ISO3()
}

// DisplayName returns the reported name for a detector code.
func DisplayName(code string) (string, bool) {
	name, ok := displayNames[normalizeCode(code)]
	return name, ok
}

// ISO returns the upper-case ISO 639-3 identifier for a detector code.
func ISO(code string) (string, bool) {
	iso, ok := isoCodes()[normalizeCode(code)]
	return iso, ok
}

// FromISO3 converts a three-letter code to its two-letter form when one exists.
func FromISO3(code string) string {
	base, err := language.ParseBase(code)
	if err != nil {
		return ""
	}
	return base.String()
}
