package radtag

import (
	"bytes"
	"strings"
)

// dicomPreambleSize is the fixed preamble before the "DICM" magic in a Part
// 10 file.
const dicomPreambleSize = 128

var dicomMagic = []byte("DICM")

// IsDicomFilename accepts the upload extensions the API allows.
func IsDicomFilename(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".dcm") || strings.HasSuffix(lower, ".dicom")
}

// SniffDicom checks for the Part 10 magic bytes. Some exporters omit the
// preamble entirely, so a leading "DICM" is accepted too.
func SniffDicom(head []byte) bool {
	if bytes.HasPrefix(head, dicomMagic) {
		return true
	}
	if len(head) < dicomPreambleSize+len(dicomMagic) {
		return false
	}
	return bytes.Equal(head[dicomPreambleSize:dicomPreambleSize+len(dicomMagic)], dicomMagic)
}
