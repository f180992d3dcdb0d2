package crypto

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHasher() *PasswordHasher {
	return NewPasswordHasher(HashParams{Memory: 1024, Iterations: 1, Parallelism: 1})
}

func TestHash_DefaultParamsFormat(t *testing.T) {
	hash, err := NewPasswordHasher(HashParams{}).Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<key>
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("Hash() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[2] != "v=19" {
		t.Errorf("Hash() version = %q, want %q", parts[2], "v=19")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("Hash() params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
}

func TestVerify_Correct(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	if !h.Verify("secret123", hash) {
		t.Error("Verify() returned false for correct password")
	}
}

func TestVerify_Wrong(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	if h.Verify("wrong-password", hash) {
		t.Error("Verify() returned true for wrong password")
	}
}

func TestHash_SaltDiffers(t *testing.T) {
	h := testHasher()

	hash1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	hash2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for same password")
	}
	if strings.Contains(hash1, "same-password") {
		t.Error("Hash() output contains the plaintext")
	}
}

func TestHash_TooLong(t *testing.T) {
	_, err := testHasher().Hash(strings.Repeat("a", MaxPasswordBytes+1))
	if err != ErrPasswordTooLong {
		t.Errorf("Hash() error = %v, want %v", err, ErrPasswordTooLong)
	}
}

func TestVerify_MalformedHashes(t *testing.T) {
	h := testHasher()
	valid, err := h.Hash("password")
	if err != nil {
		t.Fatalf("Hash() unexpected error: %v", err)
	}
	parts := strings.Split(valid, "$")

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"garbage", "invalid-hash-format"},
		{"wrong algorithm", "$argon2i$v=19$m=1024,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"wrong version", "$argon2id$v=16$m=1024,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"zero parallelism", "$argon2id$v=19$m=1024,t=1,p=0$" + parts[4] + "$" + parts[5]},
		{"absurd memory", "$argon2id$v=19$m=4294967295,t=1,p=1$" + parts[4] + "$" + parts[5]},
		{"bad salt encoding", "$argon2id$v=19$m=1024,t=1,p=1$!!!$" + parts[5]},
		{"truncated key", "$argon2id$v=19$m=1024,t=1,p=1$" + parts[4] + "$AAAA"},
		{"missing segment", "$argon2id$v=19$m=1024,t=1,p=1$" + parts[4]},
		{"corrupt bcrypt", "$2b$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if h.Verify("password", tt.hash) {
				t.Errorf("Verify() returned true for %q", tt.hash)
			}
		})
	}
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("amangly123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword() unexpected error: %v", err)
	}

	h := testHasher()
	if !h.Verify("amangly123", string(legacy)) {
		t.Error("Verify() returned false for matching bcrypt hash")
	}
	if h.Verify("amangly124", string(legacy)) {
		t.Error("Verify() returned true for wrong password against bcrypt hash")
	}
}

func TestDummyHash(t *testing.T) {
	h := testHasher()
	d1 := h.DummyHash()
	if d1 == "" {
		t.Fatal("DummyHash() returned empty string")
	}
	if d1 != h.DummyHash() {
		t.Error("DummyHash() should be stable across calls")
	}
	if h.Verify("", d1) {
		t.Error("Verify() matched empty password against dummy hash")
	}
}

func TestNewPasswordHasher_ClampsToVerifiableRange(t *testing.T) {
	tests := []struct {
		name   string
		params HashParams
		want   string
	}{
		{"iterations above bound", HashParams{Memory: 1024, Iterations: MaxIterations + 1, Parallelism: 1}, "m=1024,t=16,p=1"},
		{"memory below parallelism floor", HashParams{Memory: 8, Iterations: 1, Parallelism: 4}, "m=32,t=1,p=4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPasswordHasher(tt.params)
			hash, err := h.Hash("secret123")
			if err != nil {
				t.Fatalf("Hash() unexpected error: %v", err)
			}
			if got := strings.Split(hash, "$")[3]; got != tt.want {
				t.Errorf("Hash() params = %q, want %q", got, tt.want)
			}
			if !h.Verify("secret123", hash) {
				t.Error("Verify() rejected a hash produced by the same hasher")
			}
		})
	}
}
