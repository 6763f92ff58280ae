package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Fantacrypt is the hex-pair stream cipher AO1 clients apply to the
// command name of their first frames. Both sides start from the same
// fixed key, so the server advertises key 34 after connect and then
// treats the cipher as a fixed transformation.
const (
	fantaKey   = 5
	fantaMul   = 53761
	fantaAdd   = 32618
	DecryptKey = "34"
)

// FantaDecrypt decodes a fantacrypt-encrypted hex string. Input that is
// not valid hex is returned unchanged so a malformed legacy header
// degrades to an unknown command instead of killing the connection.
func FantaDecrypt(data string) string {
	raw, err := hex.DecodeString(strings.ToLower(data))
	if err != nil {
		return data
	}
	key := uint64(fantaKey)
	var b strings.Builder
	b.Grow(len(raw))
	for _, cb := range raw {
		b.WriteByte(cb ^ byte((key&0xffff)>>8))
		key = (uint64(cb) + key) * fantaMul + fantaAdd
	}
	return b.String()
}

// FantaEncrypt encodes a string into uppercase fantacrypt hex pairs.
func FantaEncrypt(data string) string {
	key := uint64(fantaKey)
	var b strings.Builder
	b.Grow(len(data) * 2)
	for i := 0; i < len(data); i++ {
		val := data[i] ^ byte((key&0xffff)>>8)
		b.WriteString(fmt.Sprintf("%02X", val))
		key = (uint64(val) + key) * fantaMul + fantaAdd
	}
	return b.String()
}
