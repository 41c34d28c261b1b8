package pacs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/util"
	"go.uber.org/zap"
)

// ErrUploadFailed marks upload-time failures so handlers can surface them as
// a distinct "failed to upload to DICOM server" condition instead of a
// generic internal error.
var ErrUploadFailed = errors.New("failed to upload to DICOM server")

// Client is the contract the handlers depend on. The external PACS server
// (Orthanc) stores all DICOM binaries; the database only keeps opaque ids.
type Client interface {
	Upload(ctx context.Context, filename string, data io.Reader) (string, error)
	Download(ctx context.Context, orthancID string) (io.ReadCloser, error)
	FetchMetadata(ctx context.Context, orthancID string) (json.RawMessage, error)
	Preview(ctx context.Context, orthancID string) ([]byte, error)
	Delete(ctx context.Context, orthancID string) error
}

type Orthanc struct {
	url      string
	username string
	password string
	client   *http.Client
	logger   *zap.SugaredLogger
}

var _ Client = (*Orthanc)(nil)

func NewOrthanc(cfg config.OrthancConfig, logger *zap.SugaredLogger) *Orthanc {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return &Orthanc{
		url:      cfg.URL,
		username: cfg.USERNAME,
		password: cfg.PASSWORD,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

func (o Orthanc) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, o.url+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(o.username, o.password)
	return req, nil
}

// Upload proxies a DICOM file to the Orthanc /instances endpoint and returns
// the instance id assigned by the server.
func (o Orthanc) Upload(ctx context.Context, filename string, data io.Reader) (string, error) {
	o.logger.Debugf("Upload DICOM file to Orthanc: %s", filename)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(part, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	req, err := o.newRequest(ctx, http.MethodPost, "/instances", &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Errorf("Error uploading to Orthanc: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.logger.Errorf("Orthanc upload returned status %d", resp.StatusCode)
		return "", fmt.Errorf("%w: unexpected status %d", ErrUploadFailed, resp.StatusCode)
	}

	var result struct {
		ID string `json:"ID"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: invalid response from Orthanc server", ErrUploadFailed)
	}
	if result.ID == "" {
		return "", fmt.Errorf("%w: invalid response from Orthanc server", ErrUploadFailed)
	}

	o.logger.Debugf("Successfully uploaded to Orthanc with ID: %s", result.ID)
	return result.ID, nil
}

// Download streams the raw DICOM file. The caller must close the reader.
func (o Orthanc) Download(ctx context.Context, orthancID string) (io.ReadCloser, error) {
	req, err := o.newRequest(ctx, http.MethodGet, "/instances/"+orthancID+"/file", nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Errorf("Error downloading from Orthanc: %v", err)
		return nil, fmt.Errorf("failed to download from DICOM server: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download from DICOM server: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// FetchMetadata returns the simplified DICOM tags for an instance, or nil if
// the server cannot provide them. Failures here are never fatal.
func (o Orthanc) FetchMetadata(ctx context.Context, orthancID string) (json.RawMessage, error) {
	req, err := o.newRequest(ctx, http.MethodGet, "/instances/"+orthancID+"/tags?simplify", nil)
	if err != nil {
		return nil, err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Debugf("Error fetching metadata from Orthanc: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.logger.Debugf("Orthanc metadata returned status %d", resp.StatusCode)
		return nil, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		o.logger.Debugf("Invalid metadata response from Orthanc: %v", err)
		return nil, nil
	}

	if !json.Valid(data) {
		o.logger.Debugf("Invalid metadata response from Orthanc")
		return nil, nil
	}

	return data, nil
}

// Preview fetches the rendered PNG preview of an instance, used as the source
// for thumbnails.
func (o Orthanc) Preview(ctx context.Context, orthancID string) ([]byte, error) {
	req, err := o.newRequest(ctx, http.MethodGet, "/instances/"+orthancID+"/preview", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/png")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch preview from DICOM server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch preview from DICOM server: unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Delete removes an instance from Orthanc. Callers treat failures as
// best-effort: the local row stays authoritative.
func (o Orthanc) Delete(ctx context.Context, orthancID string) error {
	req, err := o.newRequest(ctx, http.MethodDelete, "/instances/"+orthancID, nil)
	if err != nil {
		return err
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete from DICOM server: %w", err)
	}
	defer resp.Body.Close()

	if (resp.StatusCode < 200 || resp.StatusCode > 299) && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete from DICOM server: unexpected status %d", resp.StatusCode)
	}

	return nil
}
