// Package classifier decides whether a domain found in search results is a
// plausible impersonation of a brand.
//
// Classification runs an ordered list of pure rules; the first rule with an
// opinion wins. Once the brand-signal gate has established that a candidate
// references the brand, the list leans towards flagging: a human reviews every
// SUSPECTED entry before anything public happens.
package classifier

import (
	"strings"
	"unicode"

	"brandguard/internal/domainname"
)

// minSignalLen keeps very short brand tokens from matching everything.
const minSignalLen = 3

// Verdict is the classifier's answer plus the rule that produced it.
type Verdict struct {
	Impostor bool
	Rule     string
}

type Classifier struct {
	rules   []Rule
	generic map[string]struct{}
}

type Option func(*options)

type options struct {
	allow   []string
	generic []string
}

// WithAllowList adds domains that are never reported.
func WithAllowList(domains ...string) Option {
	return func(o *options) { o.allow = append(o.allow, domains...) }
}

// WithGenericWords adds vertical terms stripped from brand names.
func WithGenericWords(words ...string) Option {
	return func(o *options) { o.generic = append(o.generic, words...) }
}

func New(opts ...Option) *Classifier {
	o := options{
		allow:   append([]string(nil), defaultAllowList...),
		generic: append([]string(nil), defaultGenericWords...),
	}
	for _, opt := range opts {
		opt(&o)
	}
	allowed := make(map[string]struct{}, len(o.allow))
	for _, d := range o.allow {
		allowed[domainname.Normalize(d)] = struct{}{}
	}
	generic := make(map[string]struct{}, len(o.generic))
	for _, w := range o.generic {
		generic[strings.ToLower(w)] = struct{}{}
	}
	return &Classifier{
		generic: generic,
		rules: []Rule{
			identityRule(),
			allowListRule(allowed),
			brandSignalRule(),
			differentSuffixRule(),
			hyphenationRule(),
			pluralizationRule(),
			digitInsertionRule(),
			nearMissRule(),
			fallbackRule(),
		},
	}
}

// Rules exposes the evaluation order.
func (c *Classifier) Rules() []Rule { return c.rules }

// IsLikelyImpostor reports whether candidate plausibly impersonates the brand.
func (c *Classifier) IsLikelyImpostor(candidate, brandDomain, brandName string) bool {
	return c.Classify(candidate, brandDomain, brandName).Impostor
}

func (c *Classifier) Classify(candidate, brandDomain, brandName string) Verdict {
	in := c.input(candidate, brandDomain, brandName)
	for _, r := range c.rules {
		switch r.Evaluate(in) {
		case Impostor:
			return Verdict{Impostor: true, Rule: r.Name()}
		case Legitimate:
			return Verdict{Impostor: false, Rule: r.Name()}
		}
	}
	return Verdict{}
}

func (c *Classifier) input(candidate, brandDomain, brandName string) Input {
	cand := domainname.Normalize(candidate)
	brand := domainname.Normalize(brandDomain)
	in := Input{
		Candidate:     cand,
		Brand:         brand,
		CandidateBase: domainname.Base(cand),
		BrandBase:     domainname.Base(brand),
		BrandName:     brandName,
	}
	in.Signals = c.signals(brandName, in.BrandBase)
	return in
}

// signals are the brand tokens the candidate must contain to be considered
// brand-related: the distinctive part of the name, the whole name, and the
// brand domain's base label.
func (c *Classifier) signals(brandName, brandBase string) []string {
	words := strings.FieldsFunc(strings.ToLower(brandName), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var distinctive []string
	for _, w := range words {
		if _, ok := c.generic[w]; !ok {
			distinctive = append(distinctive, w)
		}
	}
	var out []string
	for _, s := range []string{strings.Join(distinctive, ""), strings.Join(words, ""), brandBase} {
		if len(s) >= minSignalLen {
			out = append(out, s)
		}
	}
	return out
}

var defaultClassifier = New()

// IsLikelyImpostor classifies with the default allow-list and generic words.
func IsLikelyImpostor(candidate, brandDomain, brandName string) bool {
	return defaultClassifier.IsLikelyImpostor(candidate, brandDomain, brandName)
}
