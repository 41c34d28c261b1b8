package auth

import "testing"

func TestPasswordHashing(t *testing.T) {
	tests := []struct {
		name     string
		password string
		attempt  string
		want     bool
	}{
		{"Correct password", "s3cret-password", "s3cret-password", true},
		{"Wrong password", "s3cret-password", "not-the-password", false},
		{"Empty attempt", "s3cret-password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}
			if hash == tt.password {
				t.Error("HashPassword() returned the plaintext password")
			}
			if got := ComparePassword(hash, tt.attempt); got != tt.want {
				t.Errorf("ComparePassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
