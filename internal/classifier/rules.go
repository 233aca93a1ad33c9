package classifier

import (
	"strings"
	"unicode"
)

// Decision is the outcome of a single rule.
type Decision int

const (
	Undecided Decision = iota
	Legitimate
	Impostor
)

// Input is the precomputed view of one classification request.
type Input struct {
	Candidate     string // normalized candidate domain
	Brand         string // normalized brand domain
	CandidateBase string
	BrandBase     string
	BrandName     string
	Signals       []string // brand tokens searched for in the candidate
}

// Rule is one step of the ordered decision list. The first rule returning
// anything but Undecided settles the verdict.
type Rule interface {
	Name() string
	Evaluate(in Input) Decision
}

type funcRule struct {
	name string
	fn   func(in Input) Decision
}

func (r funcRule) Name() string               { return r.name }
func (r funcRule) Evaluate(in Input) Decision { return r.fn(in) }

// NewRule wraps fn as a named Rule.
func NewRule(name string, fn func(in Input) Decision) Rule {
	return funcRule{name: name, fn: fn}
}

// Rule names, also persisted on detected imposters.
const (
	RuleIdentity        = "identity"
	RuleAllowList       = "allow-list"
	RuleBrandSignal     = "brand-signal"
	RuleDifferentSuffix = "different-suffix"
	RuleHyphenation     = "hyphenation"
	RulePluralization   = "pluralization"
	RuleDigitInsertion  = "digit-insertion"
	RuleNearMiss        = "near-miss"
	RuleFallback        = "brand-reference"
)

const nearMissThreshold = 0.75

func identityRule() Rule {
	return NewRule(RuleIdentity, func(in Input) Decision {
		if strings.EqualFold(in.Candidate, in.Brand) {
			return Legitimate
		}
		return Undecided
	})
}

func allowListRule(allowed map[string]struct{}) Rule {
	return NewRule(RuleAllowList, func(in Input) Decision {
		if allowListed(in.Candidate, allowed) {
			return Legitimate
		}
		return Undecided
	})
}

func allowListed(domain string, allowed map[string]struct{}) bool {
	for d := domain; d != ""; {
		if _, ok := allowed[d]; ok {
			return true
		}
		i := strings.IndexByte(d, '.')
		if i < 0 {
			break
		}
		d = d[i+1:]
	}
	return false
}

func brandSignalRule() Rule {
	return NewRule(RuleBrandSignal, func(in Input) Decision {
		compact := stripHyphens(in.Candidate)
		for _, s := range in.Signals {
			if strings.Contains(in.Candidate, s) || strings.Contains(compact, s) {
				return Undecided
			}
		}
		return Legitimate
	})
}

func differentSuffixRule() Rule {
	return NewRule(RuleDifferentSuffix, func(in Input) Decision {
		if in.CandidateBase == in.BrandBase && in.Candidate != in.Brand {
			return Impostor
		}
		return Undecided
	})
}

func hyphenationRule() Rule {
	return NewRule(RuleHyphenation, func(in Input) Decision {
		if in.Candidate != in.Brand && stripHyphens(in.Candidate) == stripHyphens(in.Brand) {
			return Impostor
		}
		if in.CandidateBase != in.BrandBase && stripHyphens(in.CandidateBase) == in.BrandBase {
			return Impostor
		}
		return Undecided
	})
}

func pluralizationRule() Rule {
	return NewRule(RulePluralization, func(in Input) Decision {
		if in.CandidateBase == in.BrandBase+"s" || in.BrandBase == in.CandidateBase+"s" {
			return Impostor
		}
		return Undecided
	})
}

func digitInsertionRule() Rule {
	return NewRule(RuleDigitInsertion, func(in Input) Decision {
		if in.CandidateBase == in.BrandBase {
			return Undecided
		}
		stripped := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return -1
			}
			return r
		}, in.CandidateBase)
		if stripped == in.BrandBase {
			return Impostor
		}
		return Undecided
	})
}

func nearMissRule() Rule {
	return NewRule(RuleNearMiss, func(in Input) Decision {
		a, b := in.CandidateBase, in.BrandBase
		diff := len(a) - len(b)
		if diff < -2 || diff > 2 || in.Candidate == in.Brand {
			return Undecided
		}
		if positionalOverlap(a, b) >= nearMissThreshold {
			return Impostor
		}
		return Undecided
	})
}

// fallbackRule flags anything that survived the brand-signal gate.
func fallbackRule() Rule {
	return NewRule(RuleFallback, func(in Input) Decision {
		if in.Candidate != in.Brand {
			return Impostor
		}
		return Legitimate
	})
}

// positionalOverlap counts bytes equal at the same index, over the longer length.
func positionalOverlap(a, b string) float64 {
	longer := max(len(a), len(b))
	if longer == 0 {
		return 0
	}
	matches := 0
	for i := 0; i < min(len(a), len(b)); i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(longer)
}

func stripHyphens(s string) string { return strings.ReplaceAll(s, "-", "") }
