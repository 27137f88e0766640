package mcp

import (
	"regexp"
	"sort"
	"strings"
)

const snippetLimit = 200

var (
	separatorPattern = regexp.MustCompile(`[_\.\-\s]+`)
	camelPattern     = regexp.MustCompile(`([a-z])([A-Z])`)
	letterDigit      = regexp.MustCompile(`([a-zA-Z])(\d)`)
	digitLetter      = regexp.MustCompile(`(\d)([a-zA-Z])`)
)

// tokenize splits a query into lowercase search tokens, breaking
// camelCase, snake_case, dotted names, and number boundaries the way
// identifiers appear in documentation. Single-rune fragments are
// dropped; they match everywhere.
func tokenize(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	seen := make(map[string]bool)
	add := func(tok string) {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if len([]rune(tok)) > 1 {
			seen[tok] = true
		}
	}

	// The whole query matches phrases verbatim.
	add(query)

	for _, part := range separatorPattern.Split(query, -1) {
		add(part)
	}

	camel := camelPattern.ReplaceAllString(query, "$1 $2")
	for _, part := range strings.Fields(camel) {
		add(part)
	}

	numbers := letterDigit.ReplaceAllString(query, "$1 $2")
	numbers = digitLetter.ReplaceAllString(numbers, "$1 $2")
	for _, part := range strings.Fields(numbers) {
		add(part)
	}

	tokens := make([]string, 0, len(seen))
	for tok := range seen {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// countHits totals token occurrences across the document.
func countHits(content string, tokens []string) int {
	lower := strings.ToLower(content)
	total := 0
	for _, tok := range tokens {
		total += strings.Count(lower, tok)
	}
	return total
}

// snippetFor returns the first line containing any token, truncated.
func snippetFor(content string, tokens []string) string {
	for _, line := range strings.Split(content, "\n") {
		lower := strings.ToLower(line)
		for _, tok := range tokens {
			if strings.Contains(lower, tok) {
				line = strings.TrimSpace(line)
				if len(line) > snippetLimit {
					line = line[:snippetLimit] + "..."
				}
				return line
			}
		}
	}
	return ""
}
