package extractor

import "regexp"

// Pattern recognizes one export line format. The regexp must capture the
// sender in group 1 and the message body in group 2.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

// NewPattern compiles a pattern. It panics on an invalid expression, like
// regexp.MustCompile, since patterns are declared at package init.
func NewPattern(name, expr string) Pattern {
	re := regexp.MustCompile(expr)
	if re.NumSubexp() < 2 {
		panic("extractor: pattern " + name + " needs sender and body groups")
	}
	return Pattern{Name: name, re: re}
}

// Match tests a single line.
func (p Pattern) Match(line string) (sender, body string, ok bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

var (
	// PatternIOS matches "[1/1/24, 10:00:00 AM] Alice: hey there".
	PatternIOS = NewPattern("ios", `^\[.*?\] ([^:]+): (.*)`)

	// PatternAndroid matches "1/1/24, 10:00 - Bob: omw".
	PatternAndroid = NewPattern("android", `^.*? - ([^:]+): (.*)`)
)

// DefaultPatterns is tried in order; the first match wins. Support for a new
// export style goes at the end of this list.
var DefaultPatterns = []Pattern{PatternIOS, PatternAndroid}
