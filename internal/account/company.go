package account

import (
	"strings"
	"unicode"
)

// companyKeywords lower-cases name, drops everything but letters, digits and
// spaces, and keeps the words longer than two characters.
func companyKeywords(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, name)

	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// emailMatchesCompany reports whether some company keyword appears in the
// local part or anywhere in the domain of email.
func emailMatchesCompany(email, company string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])
	for _, kw := range companyKeywords(company) {
		if strings.Contains(local, kw) || strings.Contains(domain, kw) {
			return true
		}
	}
	return false
}
