// Package validator encodes the acceptance and rejection rules for candidate
// billing codes. It is a pure predicate library consumed only by the
// extractor; it is the sole enforcement point keeping invented codes out of
// the output, so every rule here errs toward rejection.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"billscan/internal/domain"
)

var (
	cptShape   = regexp.MustCompile(`^\d{5}$`)
	hcpcsShape = regexp.MustCompile(`^[A-Z]\d{4}$`)
	upperLead  = regexp.MustCompile(`^[A-Z]`)
)

// MatchesCPTShape reports whether s has the lexical shape of a CPT code.
// Shape alone never promotes a candidate; the full rule set must pass.
func MatchesCPTShape(s string) bool { return cptShape.MatchString(s) }

// MatchesHCPCSShape reports whether s has the lexical shape of a HCPCS code.
func MatchesHCPCSShape(s string) bool { return hcpcsShape.MatchString(s) }

// CodeContext carries everything the rules need to judge one candidate.
type CodeContext struct {
	Candidate    string // the candidate code text
	Following    string // the word immediately after the candidate
	Preceding    string // the natural-language span before the candidate
	RowHasAmount bool   // a monetary amount co-occurs in the same row/segment
}

// Decision is the outcome of running a candidate through a rule chain.
type Decision struct {
	Accepted   bool
	System     domain.CodeSystem
	FailedRule string
	Message    string
}

// RuleSet holds the compiled rejection list and exposes the code acceptance
// predicates. Construct once at startup; safe for concurrent use.
type RuleSet struct {
	rejections []rejectionEntry
}

// NewRuleSet compiles a rule set from raw rejection phrases. A malformed
// entry is a fatal configuration error, surfaced here rather than per
// document.
func NewRuleSet(phrases []string) (*RuleSet, error) {
	entries, err := compileRejectionList(phrases)
	if err != nil {
		return nil, fmt.Errorf("compiling rejection list: %w", err)
	}
	return &RuleSet{rejections: entries}, nil
}

// NewDefaultRuleSet builds a rule set from the seed blocklist.
func NewDefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(DefaultRejectionPhrases)
	if err != nil {
		// The seed list is compiled-in and must always be valid.
		panic(err)
	}
	return rs
}

// RejectsPhrase reports whether s matches the generic-phrase blocklist.
func (r *RuleSet) RejectsPhrase(s string) bool {
	for i := range r.rejections {
		if r.rejections[i].matches(s) {
			return true
		}
	}
	return false
}

// codeRule is one named predicate in an acceptance chain. Rules run in
// order; the first failure rejects the candidate.
type codeRule struct {
	key   string
	check func(*RuleSet, CodeContext) (bool, string)
}

// cptRules is the full condition set for a 5-digit numeric candidate. All
// must hold.
var cptRules = []codeRule{
	{
		key: "cpt_shape",
		check: func(_ *RuleSet, cc CodeContext) (bool, string) {
			if !cptShape.MatchString(cc.Candidate) {
				return false, "candidate is not exactly five digits"
			}
			return true, ""
		},
	},
	{
		key: "cpt_leads_description",
		check: func(_ *RuleSet, cc CodeContext) (bool, string) {
			// A real code-prefixed description reads "85025 COMPLETE BLOOD
			// COUNT"; a bare price or date has no uppercase-leading word
			// after it.
			if cc.Following == "" || !upperLead.MatchString(cc.Following) {
				return false, "candidate is not followed by an uppercase-leading word"
			}
			return true, ""
		},
	},
	{
		key: "cpt_row_has_amount",
		check: func(_ *RuleSet, cc CodeContext) (bool, string) {
			if !cc.RowHasAmount {
				return false, "no monetary amount in the candidate's row"
			}
			return true, ""
		},
	},
	{
		key: "cpt_generic_phrase",
		check: func(r *RuleSet, cc CodeContext) (bool, string) {
			if strings.TrimSpace(cc.Preceding) != "" && r.RejectsPhrase(cc.Preceding) {
				return false, "preceding text matches the generic-phrase rejection list"
			}
			return true, ""
		},
	},
}

// hcpcsRules is the looser chain for alphanumeric candidates. HCPCS-shaped
// strings are rare in generic prose, so row presence of an amount suffices.
var hcpcsRules = []codeRule{
	{
		key: "hcpcs_shape",
		check: func(_ *RuleSet, cc CodeContext) (bool, string) {
			if !hcpcsShape.MatchString(cc.Candidate) {
				return false, "candidate is not one uppercase letter plus four digits"
			}
			return true, ""
		},
	},
	{
		key: "hcpcs_row_has_amount",
		check: func(_ *RuleSet, cc CodeContext) (bool, string) {
			if !cc.RowHasAmount {
				return false, "no monetary amount in the candidate's row"
			}
			return true, ""
		},
	},
}

func (r *RuleSet) run(rules []codeRule, system domain.CodeSystem, cc CodeContext) Decision {
	for i := range rules {
		ok, reason := rules[i].check(r, cc)
		if !ok {
			return Decision{
				FailedRule: rules[i].key,
				Message:    reason,
			}
		}
	}
	return Decision{Accepted: true, System: system}
}

// ValidateNumeric runs a 5-digit candidate through the CPT chain.
func (r *RuleSet) ValidateNumeric(cc CodeContext) Decision {
	return r.run(cptRules, domain.CodeSystemCPT, cc)
}

// ValidateAlphanumeric runs a letter+digits candidate through the HCPCS
// chain.
func (r *RuleSet) ValidateAlphanumeric(cc CodeContext) Decision {
	return r.run(hcpcsRules, domain.CodeSystemHCPCS, cc)
}

// Validate dispatches on candidate shape. Candidates matching neither shape
// are rejected outright; there is no best-effort branch.
func (r *RuleSet) Validate(cc CodeContext) Decision {
	switch {
	case cptShape.MatchString(cc.Candidate):
		return r.ValidateNumeric(cc)
	case hcpcsShape.MatchString(cc.Candidate):
		return r.ValidateAlphanumeric(cc)
	default:
		return Decision{FailedRule: "code_shape", Message: "candidate matches no known code shape"}
	}
}
