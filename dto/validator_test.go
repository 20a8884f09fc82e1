package dto

import "testing"

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"meets all rules", "RahasiaKu123", true},
		{"too short", "Ab1", false},
		{"no uppercase", "rahasiaku123", false},
		{"no lowercase", "RAHASIAKU123", false},
		{"no number", "RahasiaKuSaja", false},
		{"exactly eight chars", "Abcdef12", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := RegisterRequest{
				Email:    "user@example.com",
				Username: "budi123",
				Password: tt.password,
			}
			err := req.Validate()
			if tt.valid && err != nil {
				t.Errorf("password %q rejected: %v", tt.password, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("password %q accepted", tt.password)
			}
		})
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		valid bool
	}{
		{"valid", RegisterRequest{Email: "a@b.com", Username: "budi123", Password: "RahasiaKu123"}, true},
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "budi123", Password: "RahasiaKu123"}, false},
		{"username too short", RegisterRequest{Email: "a@b.com", Username: "ab", Password: "RahasiaKu123"}, false},
		{"username not alphanumeric", RegisterRequest{Email: "a@b.com", Username: "budi 123", Password: "RahasiaKu123"}, false},
		{"missing password", RegisterRequest{Email: "a@b.com", Username: "budi123"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	req := RegisterRequest{Email: "bad", Username: "x", Password: "weak"}
	err := req.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 3 {
		t.Fatalf("got %d errors, want 3: %+v", len(formatted), formatted)
	}
	for _, fe := range formatted {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("incomplete error entry: %+v", fe)
		}
	}
}
