package util

import (
	"strings"
	"testing"
)

func TestGenerateNChar(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"Generate 5 characters", 5, false},
		{"Generate 12 characters", 12, false},
		{"Generate negative characters", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateNChar(tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("GenerateNChar() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(got) != tt.n {
				t.Errorf("GenerateNChar() got = %v, want length %v", got, tt.n)
			}
		})
	}
}

func TestAddUniquePrefixToFileName(t *testing.T) {
	got := AddUniquePrefixToFileName("study.dcm")
	if !strings.HasSuffix(got, "-study.dcm") {
		t.Errorf("AddUniquePrefixToFileName() = %v, want suffix -study.dcm", got)
	}

	other := AddUniquePrefixToFileName("study.dcm")
	if got == other {
		t.Errorf("AddUniquePrefixToFileName() produced the same name twice: %v", got)
	}
}
