// Package analyzer turns raw search results into impostor candidates.
package analyzer

import (
	"brandguard/internal/classifier"
	"brandguard/internal/domain"
	"brandguard/internal/domainname"
)

// Classifier is the verdict source used for each unique domain.
type Classifier interface {
	Classify(candidate, brandDomain, brandName string) classifier.Verdict
}

type Analyzer struct {
	classifier Classifier
}

func New(c Classifier) *Analyzer {
	if c == nil {
		c = classifier.New()
	}
	return &Analyzer{classifier: c}
}

// Analyze deduplicates results by registrable domain and keeps the ones
// classified as impostors. The first occurrence of a domain wins and output
// follows the order of results, which is search-rank order.
func (a *Analyzer) Analyze(results []domain.OrganicResult, brandDomain, brandName string) []domain.Candidate {
	seen := make(map[string]struct{}, len(results))
	var out []domain.Candidate
	for _, r := range results {
		d := domainname.Normalize(r.URL)
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}

		v := a.classifier.Classify(d, brandDomain, brandName)
		if !v.Impostor {
			continue
		}
		out = append(out, domain.Candidate{
			Domain:        d,
			FullURL:       r.URL,
			PageTitle:     r.Name,
			Description:   r.Description,
			SearchRank:    r.Rank,
			DetectionRule: v.Rule,
		})
	}
	return out
}
