package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"  User@Example.Com  ", "user@example.com"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Email(tt.input)
			if got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jane Doe", "Jane Doe"},
		{"  Jane   Doe  ", "Jane Doe"},
		{"", ""},
		{"UPPERCASE NAME", "UPPERCASE NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Name(tt.input)
			if got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"pir", "pir"},
		{"  Coach  ", "coach"},
		{"ADMIN", "admin"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Role(tt.input)
			if got != tt.want {
				t.Errorf("Role(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimeZone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"America/Chicago", "America/Chicago"},
		{"  UTC ", "UTC"},
		{"Mars/Olympus", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := TimeZone(tt.input)
			if got != tt.want {
				t.Errorf("TimeZone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRating(t *testing.T) {
	if got := Rating(-3, 10); got != 0 {
		t.Errorf("Rating(-3) = %d, want 0", got)
	}
	if got := Rating(7, 10); got != 7 {
		t.Errorf("Rating(7) = %d, want 7", got)
	}
	if got := Rating(42, 10); got != 10 {
		t.Errorf("Rating(42) = %d, want 10", got)
	}
}
