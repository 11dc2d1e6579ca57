package aggregate

import (
	"regexp"
	"strings"

	"github.com/runnerr0/viewtally/internal/youtube"
)

// Matcher tests text for the query as a whole word, ignoring case.
// "HARIBOW radio" and "[haribow]" match "HARIBOW"; "haribowl" does not.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles a matcher for token. Regexp metacharacters in the
// token are matched literally.
func NewMatcher(token string) *Matcher {
	pattern := `(?i)(?:^|\W)` + regexp.QuoteMeta(strings.TrimSpace(token)) + `(?:$|\W)`
	return &Matcher{re: regexp.MustCompile(pattern)}
}

// Match reports whether s contains the token as a whole word.
func (m *Matcher) Match(s string) bool {
	return m.re.MatchString(s)
}

// MatchVideo checks the title first, then the description.
func (m *Matcher) MatchVideo(v youtube.Video) bool {
	return m.Match(v.Title) || m.Match(v.Description)
}
