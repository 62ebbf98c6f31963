package auth

import "testing"

func TestTokenHasher_Deterministic(t *testing.T) {
	h := NewTokenHasher()

	a := h.Hash("some-refresh-token")
	b := h.Hash("some-refresh-token")
	if a != b {
		t.Error("expected deterministic digests")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a == h.Hash("other-token") {
		t.Error("expected distinct tokens to hash differently")
	}
}

func TestTokenHasher_Equals(t *testing.T) {
	h := NewTokenHasher()
	stored := h.Hash("token-1")

	if !h.Equals("token-1", stored) {
		t.Error("expected matching token to compare equal")
	}
	if h.Equals("token-2", stored) {
		t.Error("expected different token to compare unequal")
	}
	if h.Equals("token-1", "") {
		t.Error("expected empty stored hash to compare unequal")
	}
	if h.Equals("token-1", stored[:len(stored)-1]+"0") {
		t.Error("expected near-miss hash to compare unequal")
	}
}
