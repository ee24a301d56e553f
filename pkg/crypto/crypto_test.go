package crypto

import "testing"

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("s3cret-pass", hash) {
		t.Fatal("expected password to match")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestGeneratedTokensAreDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("invite code: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate invite code %q", code)
		}
		seen[code] = true
	}

	handle, err := GeneratePendingHandle()
	if err != nil {
		t.Fatalf("pending handle: %v", err)
	}
	if len(handle) != 43 {
		t.Fatalf("handle length = %d, want 43", len(handle))
	}
}
