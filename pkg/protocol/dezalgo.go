package protocol

import (
	"fmt"
	"regexp"
)

// dezalgoPattern compiles the combining-character filter. Runs of
// combining marks at least tolerance long are collapsed, which strips
// "zalgo" text while leaving accented languages alone.
func dezalgoPattern(tolerance int) *regexp.Regexp {
	if tolerance < 1 {
		tolerance = 1
	}
	ranges := "̀-ͯ" +
		"᪰-᫿" +
		"᷀-᷿" +
		"⃐-⃿" +
		"︠-︯" +
		"ᅟᅠㅤ"
	return regexp.MustCompile(fmt.Sprintf("[%s]{%d,}", ranges, tolerance))
}

// dezalgo removes excessive combining-mark runs from client text.
func (e *Engine) dezalgo(s string) string {
	return e.dezalgoRe.ReplaceAllString(s, "")
}
