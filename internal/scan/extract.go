package scan

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction is the result of the label-text heuristics. Every field is
// optional; nil means the pass found nothing rather than an empty value.
type Extraction struct {
	ArticleNumber *string  `json:"articleNumber"`
	Name          *string  `json:"name"`
	Manufacturer  *string  `json:"manufacturer"`
	Price         *float64 `json:"price"`
	Category      *string  `json:"category"`
}

var (
	// Part numbers on labels are 5 to 15 alphanumeric characters with
	// optional dashes, starting with a letter or digit.
	articleRE = regexp.MustCompile(`(?i)\b[A-Z0-9][A-Z0-9-]{4,14}\b`)

	// A price with an explicit currency token wins over a bare amount.
	pricedRE = regexp.MustCompile(`(?i)(\d+(?:[.,]\d{2})?)\s?(грн|₴|uah|eur|€|usd|\$)`)
	amountRE = regexp.MustCompile(`\d+[.,]\d{2}\b`)

	// Brand names print in capitals on most labels. Matched per token
	// because \b only understands ASCII word characters.
	brandRE = regexp.MustCompile(`^[A-ZА-ЯІЇЄҐ][A-ZА-ЯІЇЄҐ-]{2,}$`)
)

// categoryVocabulary is the closed category set the extractor can
// recognize in free text.
var categoryVocabulary = []string{
	"двигун", "трансмісія", "гальма", "підвіска",
	"кузов", "електрика", "освітлення", "інтер'єр",
}

// Extract runs the heuristic passes over recognized label text. It is
// pure and never fails; unrecognized fields stay nil.
func Extract(text string) Extraction {
	var out Extraction
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}
	lines := splitLines(text)

	article := findArticle(text)
	if article != "" {
		out.ArticleNumber = &article
	}
	if name := findName(lines, article); name != "" {
		out.Name = &name
	}
	if brand := findManufacturer(lines, article); brand != "" {
		out.Manufacturer = &brand
	}
	if price, ok := findPrice(text); ok {
		out.Price = &price
	}
	if category := findCategory(text); category != "" {
		out.Category = &category
	}
	return out
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func findArticle(text string) string {
	for _, candidate := range articleRE.FindAllString(text, -1) {
		// A token without any digit is a word, not a part number.
		if strings.ContainsAny(candidate, "0123456789") {
			return strings.ToUpper(candidate)
		}
	}
	return ""
}

// findName takes the first line that reads like a description: more
// than one word and not the line carrying the part number.
func findName(lines []string, article string) string {
	for _, line := range lines {
		if article != "" && strings.Contains(strings.ToUpper(line), article) {
			continue
		}
		if len(strings.Fields(line)) >= 2 {
			return line
		}
	}
	return ""
}

// findManufacturer looks for an all-caps brand token on a line that
// does not carry the part number, so the article itself never doubles
// as the brand.
func findManufacturer(lines []string, article string) string {
	for _, line := range lines {
		if article != "" && strings.Contains(strings.ToUpper(line), article) {
			continue
		}
		for _, token := range strings.Fields(line) {
			token = strings.Trim(token, ".,:;()\"'")
			if brandRE.MatchString(token) {
				return token
			}
		}
	}
	return ""
}

func findPrice(text string) (float64, bool) {
	if match := pricedRE.FindStringSubmatch(text); match != nil {
		return parseAmount(match[1])
	}
	if match := amountRE.FindString(text); match != "" {
		return parseAmount(match)
	}
	return 0, false
}

func parseAmount(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func findCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, category := range categoryVocabulary {
		if strings.Contains(lowered, category) {
			return category
		}
	}
	return ""
}
