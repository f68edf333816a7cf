// Package contentid generates short identifiers for review sessions and
// debug artifacts.
//
// ID format: <kind:2>-<base62_ts:4><base62_rand:4> (11 chars including the dash).
//
// Kinds:
//   - ms = minutes review session
//   - sg = aligned segment artifact
//   - tr = transcription artifact
//
// The timestamp part wraps every ~171 days; the random part keeps ids
// generated in the same instant apart.
package contentid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"
)

// Kind is the two-letter prefix of an id.
type Kind string

const (
	KindSession       Kind = "ms"
	KindSegments      Kind = "sg"
	KindTranscription Kind = "tr"
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// base62Max is 62^4.
const base62Max = 62 * 62 * 62 * 62

const idLength = 11

var validKinds = map[Kind]bool{
	KindSession:       true,
	KindSegments:      true,
	KindTranscription: true,
}

var (
	ErrInvalidFormat = errors.New("invalid id format")
	ErrInvalidKind   = errors.New("invalid id kind")
)

// New generates an id of the given kind. It panics on an unknown kind.
func New(kind Kind) string {
	if !validKinds[kind] {
		panic(fmt.Sprintf("contentid: invalid kind: %q", kind))
	}
	ts := encodeBase62(uint64(time.Now().UnixNano()/1000) % base62Max)
	return fmt.Sprintf("%s-%s%s", kind, ts, randomBase62(4))
}

// Parse validates id and returns its kind.
func Parse(id string) (Kind, error) {
	if len(id) != idLength {
		return "", fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidFormat, idLength, len(id))
	}
	if id[2] != '-' {
		return "", fmt.Errorf("%w: missing dash at position 2", ErrInvalidFormat)
	}
	kind := Kind(id[:2])
	if !validKinds[kind] {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidKind, kind)
	}
	if !isValidBase62(id[3:]) {
		return "", fmt.Errorf("%w: suffix contains invalid characters", ErrInvalidFormat)
	}
	return kind, nil
}

// IsValid reports whether id parses and is of the wanted kind.
func IsValid(id string, want Kind) bool {
	kind, err := Parse(id)
	return err == nil && kind == want
}

func encodeBase62(n uint64) string {
	result := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		result[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(result)
}

// randomBase62 uses rejection sampling to avoid modulo bias.
func randomBase62(length int) string {
	const maxUnbiased = 248 // 4*62

	result := make([]byte, length)
	for i := 0; i < length; {
		var b [1]byte
		if _, err := rand.Read(b[:]); err != nil {
			result[i] = base62Alphabet[0]
			i++
			continue
		}
		if b[0] < maxUnbiased {
			result[i] = base62Alphabet[b[0]%62]
			i++
		}
	}
	return string(result)
}

func isValidBase62(s string) bool {
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLower := c >= 'a' && c <= 'z'
		isUpper := c >= 'A' && c <= 'Z'
		if !isDigit && !isLower && !isUpper {
			return false
		}
	}
	return true
}
