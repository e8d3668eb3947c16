package transport

import "crypto/rand"

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5
)

// NewRoomCode generates a 5-character uppercase alphanumeric room
// code via crypto/rand. The code doubles as the invite code and the
// room's network identifier; a clash with another live room surfaces
// as a dial failure, not a retry here.
func NewRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	out := make([]byte, codeLength)
	for i := range out {
		out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(out)
}
