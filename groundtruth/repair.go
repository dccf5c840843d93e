package groundtruth

import "regexp"

// Tags the annotation writes as bare openers although they never get a
// closing element. Group 1 is the tag body, group 2 its closer.
var malformedTag = regexp.MustCompile(
	`<(contraction e_form="(?:[\p{L}\p{N}_]|\[|\]|=>|')*"|fragment|e_unclear|b_unclear)(/?>)`,
)

// Repair rewrites the known malformed tags into self-closing elements.
// Tags already closed with "/>" are left as they are, so Repair(Repair(s))
// equals Repair(s).
func Repair(doc string) string {
	return malformedTag.ReplaceAllStringFunc(doc, func(m string) string {
		sub := malformedTag.FindStringSubmatch(m)
		if sub[2] != ">" {
			return m
		}
		return "<" + sub[1] + "/>"
	})
}
