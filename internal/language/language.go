package language

import "strings"

// Undetermined is the code applied to renditions that carry no language tag.
const Undetermined = "und"

type entry struct {
	code2   string // ISO 639-1
	code3   string // ISO 639-2 primary
	alt3    string // ISO 639-2 alternate ("fre" vs "fra")
	display string
}

var languages = []entry{
	{"en", "eng", "", "English"},
	{"es", "spa", "", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "", "Italian"},
	{"pt", "por", "", "Portuguese"},
	{"ja", "jpn", "", "Japanese"},
	{"ko", "kor", "", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "", "Russian"},
	{"ar", "ara", "", "Arabic"},
	{"hi", "hin", "", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "", "Polish"},
	{"sv", "swe", "", "Swedish"},
	{"da", "dan", "", "Danish"},
	{"no", "nor", "", "Norwegian"},
	{"fi", "fin", "", "Finnish"},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	return nil
}

// Base strips a BCP-47 tag down to its primary subtag: "en-US" becomes "en",
// "pt_BR" becomes "pt". Empty input returns Undetermined.
func Base(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return Undetermined
	}
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// ToISO2 converts a recognized code or tag to ISO 639-1. Unrecognized
// two-letter codes pass through; anything else returns empty.
func ToISO2(code string) string {
	base := Base(code)
	if base == Undetermined {
		return ""
	}
	if e := lookup(base); e != nil {
		return e.code2
	}
	if len(base) == 2 {
		return base
	}
	return ""
}

// ToISO3 converts a recognized code or tag to ISO 639-2. Unrecognized input
// returns Undetermined, except three-letter codes which pass through.
func ToISO3(code string) string {
	base := Base(code)
	if base == Undetermined {
		return Undetermined
	}
	if e := lookup(base); e != nil {
		return e.code3
	}
	if len(base) == 3 {
		return base
	}
	return Undetermined
}

// Matches reports whether a rendition's language tag satisfies the preferred
// code. Comparison happens on the primary subtag, so a preference of "en"
// matches renditions tagged "en", "en-US", or "eng".
func Matches(preferred, tag string) bool {
	p := ToISO2(preferred)
	if p == "" {
		return false
	}
	t := ToISO2(tag)
	return t != "" && t == p
}

// DisplayName returns a readable name for a code, or the uppercased code
// when it is not in the table.
func DisplayName(code string) string {
	base := Base(code)
	if base == Undetermined {
		return "Unknown"
	}
	if e := lookup(base); e != nil {
		return e.display
	}
	return strings.ToUpper(base)
}
