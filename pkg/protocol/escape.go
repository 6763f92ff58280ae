package protocol

import "strings"

// The wire format reserves these characters, so any client-controlled
// text placed into an outgoing frame must be escaped first.
var fieldEscaper = strings.NewReplacer(
	"#", "<num>",
	"&", "<and>",
	"%", "<percent>",
	"$", "<dollar>",
)

// EscapeField substitutes the reserved wire characters in a field.
func EscapeField(s string) string {
	return fieldEscaper.Replace(s)
}

// JoinCommand assembles one outgoing frame: the command name and its
// fields joined by '#' and closed with the '#%' terminator. Fields are
// sent as given; callers escape client-controlled text themselves.
func JoinCommand(name string, args ...string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteByte('#')
		b.WriteString(a)
	}
	b.WriteString("#%")
	return b.String()
}
