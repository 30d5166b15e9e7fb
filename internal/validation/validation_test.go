package validation

import "testing"

func TestValidateGmail(t *testing.T) {
	valid := []string{"alice@gmail.com", "a.b-c_d@gmail.com"}
	for _, addr := range valid {
		if err := ValidateGmail(addr); err != nil {
			t.Errorf("ValidateGmail(%q) = %v, want nil", addr, err)
		}
	}

	invalid := []string{
		"",
		"alice@example.com",
		"alice@googlemail.com",
		"not-an-email",
		"alice@gmail.com extra",
	}
	for _, addr := range invalid {
		if err := ValidateGmail(addr); err == nil {
			t.Errorf("ValidateGmail(%q) = nil, want error", addr)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("hunter2hunter2", 8); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short", 8); err == nil {
		t.Fatal("short password accepted")
	}
	// bcrypt ceiling
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidatePassword(string(long), 8); err == nil {
		t.Fatal("over-72-byte password accepted")
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "a.b-c_d", "user123"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"", "ab", "con espacios", "ñandú", "user!"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) = nil, want error", u)
		}
	}
}

func TestSanitizeUsername(t *testing.T) {
	cases := []struct {
		source   string
		fallback string
		want     string
	}{
		{"Alice.Dev", "fb", "alice.dev"},
		{"josé lópez", "fb", "jslpez"},
		{"!!!", "user1a2b", "user1a2b"},
		{"a_b-c.d", "fb", "a_b-c.d"},
	}
	for _, tc := range cases {
		got := SanitizeUsername(tc.source, tc.fallback)
		if got != tc.want {
			t.Errorf("SanitizeUsername(%q, %q) = %q, want %q", tc.source, tc.fallback, got, tc.want)
		}
	}
}

func TestNextFreeUsername(t *testing.T) {
	taken := map[string]bool{}

	if got := NextFreeUsername("alice", taken); got != "alice" {
		t.Fatalf("first = %q, want alice", got)
	}
	if got := NextFreeUsername("alice", taken); got != "alice1" {
		t.Fatalf("second = %q, want alice1", got)
	}
	if got := NextFreeUsername("alice", taken); got != "alice2" {
		t.Fatalf("third = %q, want alice2", got)
	}
	// The chosen names were recorded.
	if !taken["alice"] || !taken["alice1"] || !taken["alice2"] {
		t.Fatalf("taken map incomplete: %v", taken)
	}
}
