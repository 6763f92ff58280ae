package protocol

import "strconv"

// ArgType constrains one positional field of an incoming command.
type ArgType int

const (
	// ArgStr is any non-empty string.
	ArgStr ArgType = iota
	// ArgStrOrEmpty is any string.
	ArgStrOrEmpty
	// ArgInt must parse as a decimal integer.
	ArgInt
	// ArgIntOrStr is any non-empty string; integer-looking values stay
	// strings until the handler parses them.
	ArgIntOrStr
)

// validate checks an argument list against a shape: exact length and a
// per-position type. needsChar additionally requires the connection to
// have a character selected, which screens out spectators.
func (c *Conn) validate(args []string, needsChar bool, shape ...ArgType) bool {
	if needsChar && c.client.CharID() == -1 {
		return false
	}
	if len(args) != len(shape) {
		return false
	}
	for i, t := range shape {
		switch t {
		case ArgStr, ArgIntOrStr:
			if args[i] == "" {
				return false
			}
		case ArgInt:
			if _, err := strconv.Atoi(args[i]); err != nil {
				return false
			}
		}
	}
	return true
}

// atoi converts a field already vetted by validate.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func itoa(n int) string { return strconv.Itoa(n) }
