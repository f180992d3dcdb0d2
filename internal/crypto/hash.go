package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes bounds the input to a single hash computation.
const MaxPasswordBytes = 256

// Upper bounds accepted when decoding a stored hash. A corrupted record must
// not be able to make a single verification arbitrarily expensive. Hashing
// never produces parameters outside them.
const (
	MaxMemoryKiB  = 1 << 20
	MaxIterations = 16
)

const (
	minKeyLength  = 16
	maxKeyLength  = 128
	minSaltLength = 8
	maxSaltLength = 64
)

var (
	ErrInvalidHashFormat   = errors.New("invalid encoded hash format")
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	ErrPasswordTooLong     = errors.New("password exceeds maximum length")
)

// HashParams configures the Argon2id hashing parameters.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultHashParams returns recommended Argon2id parameters for password hashing.
func DefaultHashParams() HashParams {
	return HashParams{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// PasswordHasher computes and verifies salted one-way password hashes.
type PasswordHasher struct {
	params HashParams

	dummyOnce sync.Once
	dummy     string
}

// NewPasswordHasher creates a hasher using the given cost parameters.
// Zero fields fall back to DefaultHashParams. Values outside the range that
// Verify accepts are clamped to it.
func NewPasswordHasher(params HashParams) *PasswordHasher {
	def := DefaultHashParams()
	if params.Memory == 0 {
		params.Memory = def.Memory
	}
	if params.Iterations == 0 {
		params.Iterations = def.Iterations
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}

	params.Iterations = min(params.Iterations, MaxIterations)
	params.Memory = min(max(params.Memory, 8*uint32(params.Parallelism)), MaxMemoryKiB)
	params.SaltLength = min(max(params.SaltLength, minSaltLength), maxSaltLength)
	params.KeyLength = min(max(params.KeyLength, minKeyLength), maxKeyLength)
	return &PasswordHasher{params: params}
}

// Hash hashes a password using Argon2id and returns it in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-key>
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash. Argon2id PHC strings
// and legacy bcrypt hashes are accepted; anything unparseable is a mismatch.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}

	if isBcryptHash(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	params, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// DummyHash returns a valid hash of a random value, computed once. Verifying
// against it costs the same as verifying a real record.
func (h *PasswordHasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		h.dummy, _ = h.Hash(base64.RawStdEncoding.EncodeToString(buf))
	})
	return h.dummy
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// decodeHash parses a PHC-formatted Argon2id hash string.
func decodeHash(encodedHash string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, ErrIncompatibleVersion
	}

	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Iterations, &params.Parallelism); err != nil {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	if params.Parallelism == 0 || params.Iterations == 0 || params.Iterations > MaxIterations ||
		params.Memory < 8*uint32(params.Parallelism) || params.Memory > MaxMemoryKiB {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLength || len(salt) > maxSaltLength {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.SaltLength = uint32(len(salt))

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLength || len(key) > maxKeyLength {
		return HashParams{}, nil, nil, ErrInvalidHashFormat
	}
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
