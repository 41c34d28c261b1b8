package radtag

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
)

// segSOPClassUID is the Segmentation Storage SOP class.
const segSOPClassUID = "1.2.840.10008.5.1.4.1.1.66.4"

// ExportSeg emits a structurally minimal DICOM-SEG style file: Part 10
// preamble and magic, a SOP Class UID element, and the annotation payload in
// a private element as JSON. It is NOT a conformant segmentation object and
// is only meant as an interchange stub for PACS-adjacent tooling.
func ExportSeg(bundle ExportBundle) ([]byte, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(make([]byte, dicomPreambleSize))
	buf.Write(dicomMagic)

	writeElement(&buf, 0x0008, 0x0016, "UI", []byte(segSOPClassUID))
	writeElement(&buf, 0x7FE1, 0x0010, "OB", payload)

	return buf.Bytes(), nil
}

// writeElement emits a single explicit-VR little-endian data element, padding
// the value to even length as the encoding requires.
func writeElement(buf *bytes.Buffer, group, element uint16, vr string, value []byte) {
	if len(value)%2 != 0 {
		value = append(value, 0x00)
	}

	binary.Write(buf, binary.LittleEndian, group)
	binary.Write(buf, binary.LittleEndian, element)
	buf.WriteString(vr)

	if vr == "OB" {
		// Long-form VR carries two reserved bytes and a 32-bit length.
		buf.Write([]byte{0x00, 0x00})
		binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	} else {
		binary.Write(buf, binary.LittleEndian, uint16(len(value)))
	}

	buf.Write(value)
}
