package auth

import (
	"strings"
	"testing"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("expected PHC argon2id encoding, got %s", hash)
	}
	if strings.Contains(hash, "Passw0rd!") {
		t.Error("hash must not contain the raw password")
	}

	if !svc.Verify(hash, "Passw0rd!") {
		t.Error("expected correct password to verify")
	}
	if svc.Verify(hash, "passw0rd!") {
		t.Error("expected case-different password to fail")
	}
	if svc.Verify(hash, "") {
		t.Error("expected empty password to fail")
	}
}

func TestPasswordService_SaltedHashesDiffer(t *testing.T) {
	svc := NewPasswordService()

	a, err := svc.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := svc.Hash("Passw0rd!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Error("expected per-hash salts to produce distinct encodings")
	}
	if !svc.Verify(a, "Passw0rd!") || !svc.Verify(b, "Passw0rd!") {
		t.Error("both encodings must verify the same password")
	}
}

func TestPasswordService_MalformedHash(t *testing.T) {
	svc := NewPasswordService()

	for _, hash := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		if svc.Verify(hash, "Passw0rd!") {
			t.Errorf("expected malformed hash %q to fail verification", hash)
		}
	}
}
