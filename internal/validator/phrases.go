package validator

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// DefaultRejectionPhrases seeds the generic-phrase rejection list. These are
// encounter descriptions that real bills print without a standalone numeric
// code next to them; a candidate code preceded by one of these is the classic
// hallucination trigger. The list is a blocklist, not an allowlist, and is
// externally extensible via LoadRejectionList so operators can patch new
// failure modes without a code change.
var DefaultRejectionPhrases = []string{
	"office visit",
	"consultation",
	"consult",
	"follow-up",
	"follow up",
	"new patient",
	"established patient",
	"clinic visit",
	"telehealth visit",
	"er visit",
	"emergency visit",
	"urgent care visit",
	"room charge",
	"room and board",
	"room & board",
	"semi-priv",
	"semi-private",
	"private room",
	"observation",
}

// rejectionEntry is a single compiled blocklist entry. Plain entries match by
// case-insensitive substring; entries with the "re:" prefix match by regex.
type rejectionEntry struct {
	raw string
	re  *regexp.Regexp
}

func (e *rejectionEntry) matches(s string) bool {
	if e.re != nil {
		return e.re.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), e.raw)
}

// compileRejectionList compiles raw phrase entries. A malformed regex entry
// is an error: the rule set must refuse to load rather than silently drop a
// defense.
func compileRejectionList(phrases []string) ([]rejectionEntry, error) {
	entries := make([]rejectionEntry, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(p, "re:"); ok {
			rest = strings.TrimSpace(rest)
			if rest == "" {
				return nil, fmt.Errorf("rejection list entry %q: empty regex", p)
			}
			re, err := regexp.Compile("(?i)" + rest)
			if err != nil {
				return nil, fmt.Errorf("rejection list entry %q: %w", p, err)
			}
			entries = append(entries, rejectionEntry{raw: p, re: re})
			continue
		}
		entries = append(entries, rejectionEntry{raw: strings.ToLower(p)})
	}
	return entries, nil
}

// LoadRejectionList reads a rejection list file: one entry per line, blank
// lines and #-comments ignored. The returned slice feeds NewRuleSet.
func LoadRejectionList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rejection list: %w", err)
	}
	defer f.Close()

	var phrases []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		phrases = append(phrases, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading rejection list: %w", err)
	}
	return phrases, nil
}
