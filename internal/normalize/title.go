package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Event prefixes venues prepend to the film title ("Preview: ...",
// "NT Live: ...", "Dog-Friendly Screening - ...").
var prefixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(Preview|Premiere|UK Premiere|Staff Pick|Member's Request|Members' Preview|Relaxed Screening|Family Screening|In Focus)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(Babykino|Carers & Babies|Toddler Club|Dog-Friendly(?: Screening)?|Sensory Friendly|Autism Friendly|HOH|Caption)[:\s–-]+`),
	regexp.MustCompile(`(?i)^(Mystery Movie|Secret Movie|Surprise Movie|Throwback|Classics)[:\s–-]+`),
	regexp.MustCompile(`(?i)^An Evening with[^:]+[:\s–-]+`),
}

// Rating, edition and access suffixes that are not part of the title.
var suffixPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)4K Restor.*`),
	regexp.MustCompile(`(?i)4K Digital Remaster.*`),
	regexp.MustCompile(`(?i)Director's Cut`),
	regexp.MustCompile(`(?i)Extended Edition`),
	regexp.MustCompile(`(?i)Anniversary Edition`),
	regexp.MustCompile(`(?i)Special Edition`),
	regexp.MustCompile(`(?i)Remastered`),
	regexp.MustCompile(`(?i)\d+th Anniversary.*`),
	regexp.MustCompile(`(?i)Double (Bill|Feature).*`),
	regexp.MustCompile(`\(\s*(U|PG|12A|12|15|15\*|18|R)\s*\)`),
	regexp.MustCompile(`\(\s*\d{4}\s*\)$`),
	regexp.MustCompile(`(?i)\(.*?version\)`),
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`(?i)\s+Encore\s*$`),
	regexp.MustCompile(`(?i)\s+\d{4}-\d{2,4}\s+Season\s*$`),
	regexp.MustCompile(`(?i)\s+Sing[- ]?A?[- ]?Long!?\s*$`),
	regexp.MustCompile(`(?i)\b(parent and baby|carer|hard of hearing|captioned|subtitled|relaxed|autism|dementia|HOH)(\s+screening)?\s*$`),
	regexp.MustCompile(`(?i)\s+UK PREMIERE\s*$`),
	regexp.MustCompile(`(?i)\s(\+|–|-)\s+(intro|discussion|q\s*&\s*a|qa|panel|talk|shorts|live score|live music|director|presented by|hosted by|with|screening|recorded|cast).*$`),
	regexp.MustCompile(`(?i)\s(2D|3D)$`),
}

var (
	spaceRE    = regexp.MustCompile(`\s+`)
	nonAlnumRE = regexp.MustCompile(`[^a-z0-9\s]`)
)

// CleanTitle strips venue decorations, bracketed annotations and trailing
// edition markers from a listing title. Case is preserved. Cleaning an
// already-clean title returns it unchanged; if stripping would remove
// everything the original title is returned instead.
func CleanTitle(title string) string {
	cleaned := title
	for _, re := range prefixPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	for _, re := range suffixPatterns {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	cleaned = spaceRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.Trim(cleaned, " .,:;–-")

	if cleaned == "" {
		return strings.TrimSpace(title)
	}
	return cleaned
}

// Fold removes diacritic marks so "Amélie" and "Amelie" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// MatchKey reduces a title to its lookup form: cleaned, diacritics folded,
// lower-cased, punctuation collapsed to spaces. Equivalent titles from
// different venues collapse to the same key.
func MatchKey(title string) string {
	s := strings.ToLower(Fold(CleanTitle(title)))
	s = nonAlnumRE.ReplaceAllString(s, " ")
	s = spaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
