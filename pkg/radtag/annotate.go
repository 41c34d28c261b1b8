// Package radtag holds the domain helpers shared by the API and its export
// pipeline: annotation shapes, DICOM sniffing, thumbnail rendering and the
// export formatters.
package radtag

import (
	"encoding/json"
	"fmt"
)

// BoundingBox is the canonical annotation shape. Coordinates are pixels in
// the source image, origin top-left.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

// ParseBoundingBoxes decodes and validates the stored jsonb blob.
func ParseBoundingBoxes(data []byte) ([]BoundingBox, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var boxes []BoundingBox
	if err := json.Unmarshal(data, &boxes); err != nil {
		return nil, fmt.Errorf("invalid bounding boxes: %w", err)
	}

	for i, b := range boxes {
		if b.Width <= 0 || b.Height <= 0 {
			return nil, fmt.Errorf("bounding box %d has non-positive size", i)
		}
	}

	return boxes, nil
}

// ParseTags decodes the stored tag list.
func ParseTags(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("invalid tags: %w", err)
	}

	return tags, nil
}
