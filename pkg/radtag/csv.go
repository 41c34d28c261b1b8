package radtag

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
)

var csvHeader = []string{
	"annotation_id", "image_id", "orthanc_id", "filename", "author",
	"version", "review_status", "x", "y", "width", "height", "label", "tags",
}

// ExportCSV renders one row per bounding box. Annotations without boxes
// still yield a single row with empty geometry so tag-only work is not lost.
func ExportCSV(annotations []ExportAnnotation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, a := range annotations {
		base := []string{
			strconv.FormatUint(uint64(a.AnnotationID), 10),
			strconv.FormatUint(uint64(a.ImageID), 10),
			a.OrthancID,
			a.Filename,
			a.Author,
			strconv.Itoa(a.Version),
			a.ReviewStatus,
		}
		tags := strings.Join(a.Tags, ";")

		if len(a.BoundingBoxes) == 0 {
			row := append(append([]string{}, base...), "", "", "", "", "", tags)
			if err := w.Write(row); err != nil {
				return nil, err
			}
			continue
		}

		for _, box := range a.BoundingBoxes {
			row := append(append([]string{}, base...),
				strconv.FormatFloat(box.X, 'f', -1, 64),
				strconv.FormatFloat(box.Y, 'f', -1, 64),
				strconv.FormatFloat(box.Width, 'f', -1, 64),
				strconv.FormatFloat(box.Height, 'f', -1, 64),
				box.Label,
				tags,
			)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
