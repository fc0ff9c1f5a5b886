package lineclass

import "regexp"

var addressPatterns = []*regexp.Regexp{
	// City, ST 12345 or a bare trailing zip remnant.
	regexp.MustCompile(`\b[A-Z][A-Za-z.]+,?\s+[A-Z]{2}\s+\d{5}(-\d{4})?$`),
	regexp.MustCompile(`^[A-Z]{2}\s+\d{5}(-\d{4})?$`),
	regexp.MustCompile(`^\d{5}(-\d{4})?$`),
	regexp.MustCompile(`(?i)\bP\.?\s?O\.?\s+Box\s+\d+`),
	regexp.MustCompile(`(?i)^\d{1,6}\s+(\w+\s+){1,4}(street|st\.?|avenue|ave\.?|road|rd\.?|boulevard|blvd\.?|drive|dr\.?|lane|ln\.?|way|court|ct\.?|place|pl\.?|parkway|pkwy\.?)(\s|,|$)`),
	regexp.MustCompile(`(?i)^(suite|ste\.?|floor|fl\.?)\s+\d+`),
}

// IsAddress reports whether text looks like a postal address fragment
func IsAddress(text string) bool {
	for _, p := range addressPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
