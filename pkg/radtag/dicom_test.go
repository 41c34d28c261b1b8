package radtag

import "testing"

func TestIsDicomFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"dcm extension", "study.dcm", true},
		{"dicom extension", "study.dicom", true},
		{"uppercase extension", "STUDY.DCM", true},
		{"png", "study.png", false},
		{"no extension", "study", false},
		{"extension inside name", "study.dcm.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDicomFilename(tt.filename); got != tt.want {
				t.Errorf("IsDicomFilename(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSniffDicom(t *testing.T) {
	withPreamble := make([]byte, dicomPreambleSize+8)
	copy(withPreamble[dicomPreambleSize:], dicomMagic)

	noPreamble := append([]byte("DICM"), 0x02, 0x00)

	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{"Part 10 preamble", withPreamble, true},
		{"Missing preamble", noPreamble, true},
		{"PNG header", []byte("\x89PNG\r\n\x1a\n"), false},
		{"Too short", make([]byte, 64), false},
		{"Empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SniffDicom(tt.head); got != tt.want {
				t.Errorf("SniffDicom() = %v, want %v", got, tt.want)
			}
		})
	}
}
