package depotdownloader

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // Steam Guard codes are defined over HMAC-SHA1
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	guardAlphabet = "23456789BCDFGHJKMNPQRTVWXY"
	guardLength   = 5
	guardPeriod   = 30
)

var hexSecret = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// GuardCode derives the Steam Guard mobile code for secret at instant t.
// The secret is the base64 (or 40-char hex) shared secret of the account.
// Codes change every 30 seconds.
func GuardCode(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(t.Unix()/guardPeriod))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	full := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	var b strings.Builder
	for range guardLength {
		b.WriteByte(guardAlphabet[full%uint32(len(guardAlphabet))])
		full /= uint32(len(guardAlphabet))
	}
	return b.String(), nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("totp secret is empty")
	}
	if hexSecret.MatchString(secret) {
		return hex.DecodeString(secret)
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode totp secret: %w", err)
	}
	return key, nil
}
