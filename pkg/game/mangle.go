package game

import (
	"math/rand"
	"strings"
)

// ShakeMessage scrambles the interior letters of each word. Words of
// three or fewer runes pass through unchanged.
func ShakeMessage(msg string) string {
	words := strings.Split(msg, " ")
	for i, w := range words {
		runes := []rune(w)
		if len(runes) <= 3 {
			continue
		}
		interior := runes[1 : len(runes)-1]
		rand.Shuffle(len(interior), func(a, b int) {
			interior[a], interior[b] = interior[b], interior[a]
		})
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// DisemvowelMessage strips vowels from a message.
func DisemvowelMessage(msg string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			return -1
		}
		return r
	}, msg)
}
