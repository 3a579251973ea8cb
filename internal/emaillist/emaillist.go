// Package emaillist deduplicates, searches and counts lists of email-like strings.
//
// Comparison is case-insensitive using full Unicode case folding. Entries without
// an "@" are skipped by every operation. Inputs are never modified.
package emaillist

import (
	"cmp"
	"slices"

	"github.com/dgellow/mailfold/internal/emailutil"
)

// DomainCount is the number of entries sharing a case-folded domain
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Dedupe returns the first occurrence of each case-folded address, in input
// order and with its original casing.
func Dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	result := make([]string, 0, len(emails))
	for _, e := range emails {
		if !emailutil.IsValid(e) {
			continue
		}
		key := emailutil.Fold(e)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, e)
	}
	return result
}

// FirstWithDomain returns the index into emails of the first entry whose domain
// matches domain, ignoring case. It returns -1, false when there is no match.
func FirstWithDomain(emails []string, domain string) (int, bool) {
	want := emailutil.Fold(domain)
	for i, e := range emails {
		d, ok := emailutil.ExtractDomain(e)
		if !ok {
			continue
		}
		if emailutil.Fold(d) == want {
			return i, true
		}
	}
	return -1, false
}

// DomainCounts counts entries per case-folded domain, sorted by domain.
func DomainCounts(emails []string) []DomainCount {
	counts := make(map[string]int)
	for _, e := range emails {
		d, ok := emailutil.ExtractDomain(e)
		if !ok {
			continue
		}
		counts[emailutil.Fold(d)]++
	}

	result := make([]DomainCount, 0, len(counts))
	for domain, n := range counts {
		result = append(result, DomainCount{Domain: domain, Count: n})
	}
	slices.SortFunc(result, func(a, b DomainCount) int {
		return cmp.Compare(a.Domain, b.Domain)
	})
	return result
}

// CountValid returns how many entries contain the separator
func CountValid(emails []string) int {
	n := 0
	for _, e := range emails {
		if emailutil.IsValid(e) {
			n++
		}
	}
	return n
}
