package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	uppercaseChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijkmnopqrstuvwxyz"
	digitChars     = "23456789"
	symbolChars    = "!@#%^*-_=+"

	// MinGeneratedLength is the shortest password GeneratePassword produces.
	MinGeneratedLength = 12
)

// ErrGeneratedTooShort is returned for lengths below MinGeneratedLength.
var ErrGeneratedTooShort = errors.New("generated password length must be at least 12")

// GeneratePassword returns a random password of the given length containing
// at least one character from each class. Visually ambiguous characters are
// left out because the result is meant to be read from a log line once.
func GeneratePassword(length int) (string, error) {
	if length < MinGeneratedLength {
		return "", ErrGeneratedTooShort
	}
	if length > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	classes := []string{uppercaseChars, lowercaseChars, digitChars, symbolChars}
	pool := uppercaseChars + lowercaseChars + digitChars + symbolChars

	out := make([]byte, length)
	for i := range out {
		charset := pool
		if i < len(classes) {
			charset = classes[i]
		}
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}

	if err := secureShuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

// secureShuffle performs a Fisher-Yates shuffle using crypto/rand.
func secureShuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		data[i], data[j.Int64()] = data[j.Int64()], data[i]
	}
	return nil
}
