package radtag

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// ExportAnnotation is one annotation flattened for export, detached from the
// storage layer.
type ExportAnnotation struct {
	AnnotationID  uint          `json:"annotationId"`
	ImageID       uint          `json:"imageId"`
	OrthancID     string        `json:"orthancId"`
	Filename      string        `json:"filename"`
	Author        string        `json:"author"`
	Version       int           `json:"version"`
	ReviewStatus  string        `json:"reviewStatus"`
	BoundingBoxes []BoundingBox `json:"boundingBoxes"`
	Tags          []string      `json:"tags"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ExportBundle is the top-level document of the JSON export and the
// summary.json of the ZIP export.
type ExportBundle struct {
	ProjectID       uint               `json:"projectId"`
	ProjectName     string             `json:"projectName"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	ImageCount      int                `json:"imageCount"`
	AnnotationCount int                `json:"annotationCount"`
	Annotations     []ExportAnnotation `json:"annotations"`
}

func NewExportBundle(projectID uint, projectName string, annotations []ExportAnnotation) ExportBundle {
	images := map[uint]struct{}{}
	for _, a := range annotations {
		images[a.ImageID] = struct{}{}
	}

	return ExportBundle{
		ProjectID:       projectID,
		ProjectName:     projectName,
		GeneratedAt:     time.Now().UTC(),
		ImageCount:      len(images),
		AnnotationCount: len(annotations),
		Annotations:     annotations,
	}
}

// ExportJSON renders the bundle as an indented document.
func ExportJSON(bundle ExportBundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

// groupByImage keeps the input order of first appearance.
func groupByImage(annotations []ExportAnnotation) ([]uint, map[uint][]ExportAnnotation) {
	var order []uint
	grouped := map[uint][]ExportAnnotation{}
	for _, a := range annotations {
		if _, ok := grouped[a.ImageID]; !ok {
			order = append(order, a.ImageID)
		}
		grouped[a.ImageID] = append(grouped[a.ImageID], a)
	}
	return order, grouped
}

// WriteExportBundle lays an export out on disk so the caller can zip the
// directory: one JSON file per image, a summary.json, and optionally the raw
// DICOM binaries pulled through fetchImage. The directory must exist.
func WriteExportBundle(dir string, bundle ExportBundle, fetchImage func(orthancID string) (io.ReadCloser, error)) error {
	summary, err := ExportJSON(bundle)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), summary, 0o644); err != nil {
		return err
	}

	order, grouped := groupByImage(bundle.Annotations)
	for _, imageID := range order {
		group := grouped[imageID]

		data, err := json.MarshalIndent(group, "", "  ")
		if err != nil {
			return err
		}
		name := fmt.Sprintf("image_%d.json", imageID)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return err
		}

		if fetchImage == nil {
			continue
		}

		rc, err := fetchImage(group[0].OrthancID)
		if err != nil {
			return fmt.Errorf("fetch image %d: %w", imageID, err)
		}

		dst, err := os.Create(filepath.Join(dir, fmt.Sprintf("image_%d.dcm", imageID)))
		if err != nil {
			rc.Close()
			return err
		}

		_, err = io.Copy(dst, rc)
		rc.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}
