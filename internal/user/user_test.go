package user

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		ok        bool
		wantErrs  int
		errSubstr string
	}{
		{"all valid", "Alice", "alice@example.com", "secret1", true, 0, ""},
		{"empty name", "", "alice@example.com", "secret1", false, 1, "name"},
		{"bad email no at", "Alice", "alice.example.com", "secret1", false, 1, "email"},
		{"bad email no tld", "Alice", "alice@example", "secret1", false, 1, "email"},
		{"email with space", "Alice", "alice @example.com", "secret1", false, 1, "email"},
		{"short password", "Alice", "alice@example.com", "12345", false, 1, "6 characters"},
		{"everything wrong", "", "nope", "123", false, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.userName, tt.email, tt.password)
			if v.OK != tt.ok {
				t.Errorf("expected ok=%v, got %v (errors: %v)", tt.ok, v.OK, v.Errors)
			}
			if len(v.Errors) != tt.wantErrs {
				t.Errorf("expected %d errors, got %d: %v", tt.wantErrs, len(v.Errors), v.Errors)
			}
			if tt.errSubstr != "" {
				found := false
				for _, e := range v.Errors {
					if strings.Contains(e, tt.errSubstr) {
						found = true
					}
				}
				if !found {
					t.Errorf("expected an error containing %q, got %v", tt.errSubstr, v.Errors)
				}
			}
		})
	}
}

func TestValidatePasswordBoundary(t *testing.T) {
	// Exactly six characters is valid; anything shorter is not.
	if v := Validate("Alice", "a@x.com", "123456"); !v.OK {
		t.Errorf("6-char password should pass, got %v", v.Errors)
	}
	for _, pw := range []string{"", "1", "12345"} {
		v := Validate("Alice", "a@x.com", pw)
		if v.OK {
			t.Errorf("password %q should fail validation", pw)
		}
	}
}

func TestNewHashesPassword(t *testing.T) {
	u, err := New("Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if u.ID == "" {
		t.Error("expected generated ID")
	}
	if u.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if u.Password == "secret1" {
		t.Fatal("plaintext password must never be stored")
	}
	if !strings.HasPrefix(u.Password, "$argon2id$") {
		t.Errorf("expected argon2id PHC string, got %q", u.Password)
	}
}

func TestCheckPassword(t *testing.T) {
	u, err := New("Alice", "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if !u.CheckPassword("secret1") {
		t.Error("correct password should verify")
	}
	if u.CheckPassword("secret2") {
		t.Error("wrong password should not verify")
	}
	if u.CheckPassword("") {
		t.Error("empty password should not verify")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if h1 == h2 {
		t.Error("expected different salts to produce different hashes")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"random text", "not-a-hash"},
		{"too few parts", "$argon2id$v=19$m=65536"},
		{"corrupted salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if verifyPassword("password", tt.hash) {
				t.Error("malformed hash must fail verification")
			}
		})
	}
}
