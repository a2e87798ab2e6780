package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
)

const (
	EnvTest = "test"
	EnvLive = "live"
)

const (
	apiKeyPrefix = "mm"
	apiKeyLength = 32
	base62Chars  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// HashedKeyPrefix marks an API_KEY value that holds a digest instead of the key
	HashedKeyPrefix = "sha256:"
)

var ErrInvalidKeyEnvironment = errors.New("invalid environment: must be 'test' or 'live'")

// GeneratedKey is a freshly minted API key. Only Hashed needs to be stored
// server side; Plain is handed to the client once.
type GeneratedKey struct {
	Plain  string
	Hashed string
	// Display is a short non-secret prefix for logs, e.g. mm_live_A1b2C3
	Display string
}

// GenerateAPIKey returns a key shaped mm_<env>_<32 base62 chars>
func GenerateAPIKey(env string) (GeneratedKey, error) {
	if env != EnvTest && env != EnvLive {
		return GeneratedKey{}, ErrInvalidKeyEnvironment
	}

	randomPart, err := randomBase62(apiKeyLength)
	if err != nil {
		return GeneratedKey{}, err
	}

	plain := apiKeyPrefix + "_" + env + "_" + randomPart

	return GeneratedKey{
		Plain:   plain,
		Hashed:  HashedKeyPrefix + HashAPIKey(plain),
		Display: plain[:len(apiKeyPrefix)+len(env)+8],
	}, nil
}

// HashAPIKey returns the hex SHA-256 of key
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// APIKeyMatches compares a presented key with the configured one in constant
// time. configured is either the key itself or HashedKeyPrefix + hex digest.
func APIKeyMatches(presented, configured string) bool {
	want, hashed := strings.CutPrefix(configured, HashedKeyPrefix)
	if !hashed {
		want = HashAPIKey(configured)
	}
	got := HashAPIKey(presented)
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(want))) == 1
}

// IsValidFormat reports whether key looks like a generated key
func IsValidFormat(key string) bool {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] != apiKeyPrefix {
		return false
	}
	if parts[1] != EnvTest && parts[1] != EnvLive {
		return false
	}
	if len(parts[2]) != apiKeyLength {
		return false
	}
	return strings.Trim(parts[2], base62Chars) == ""
}

func randomBase62(length int) (string, error) {
	out := make([]byte, length)
	limit := big.NewInt(int64(len(base62Chars)))

	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = base62Chars[n.Int64()]
	}

	return string(out), nil
}
