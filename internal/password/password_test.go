package password

import (
	"strings"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	t.Parallel()

	digest, err := Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "pw123456" {
		t.Fatal("digest equals plaintext")
	}

	if !Compare("pw123456", digest) {
		t.Fatal("Compare rejected the original password")
	}
	if Compare("pw123457", digest) {
		t.Fatal("Compare accepted a different password")
	}
}

func TestHashLongBearerToken(t *testing.T) {
	t.Parallel()

	// Refresh tokens are JWTs far beyond bcrypt's 72-byte input limit; the
	// hasher must accept them and still distinguish near-identical values.
	tok := strings.Repeat("eyJhbGciOiJIUzI1NiJ9.", 12)

	digest, err := Hash(tok)
	if err != nil {
		t.Fatalf("Hash long input: %v", err)
	}
	if !Compare(tok, digest) {
		t.Fatal("Compare rejected the original token")
	}
	if Compare(tok+"x", digest) {
		t.Fatal("Compare accepted a tampered token")
	}
}

func TestDigestsAreSalted(t *testing.T) {
	t.Parallel()

	a, err := Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash("pw123456")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same input are identical")
	}
}
