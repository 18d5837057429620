// Package upload posts assembled report files to the collection service.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultEndpoint is the collection service reports are posted to.
const DefaultEndpoint = "https://collect.bootlab.dev/cgi-bin/upload-boot-data.cgi"

// successMarker is what the receiving CGI prints into the response body
// on a successful upload. The HTTP status from this service is not
// reliable, so classification works on the body text.
const successMarker = "uploaded successfully"

// ResponseClassifier decides whether an upload response body indicates
// success. It exists so the body-text heuristic can be replaced when the
// receiving service grows a structured API.
type ResponseClassifier interface {
	Success(body []byte) bool
}

// SubstringClassifier matches a fixed marker anywhere in the body.
type SubstringClassifier struct {
	Marker string
}

func (c SubstringClassifier) Success(body []byte) bool {
	return bytes.Contains(body, []byte(c.Marker))
}

// FailedError reports an upload the service did not acknowledge. The
// response body is retained at ResponsePath for manual inspection.
type FailedError struct {
	ResponsePath string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("upload was not acknowledged by the collection service; response kept at %s", e.ResponsePath)
}

// Uploader posts report files as a multipart form.
type Uploader struct {
	Endpoint   string
	Classifier ResponseClassifier
	Client     *http.Client

	// ResponseDir is where the transient response file is created.
	// Empty selects the system temp directory.
	ResponseDir string
}

// New returns an Uploader against the default endpoint with the
// substring classifier. The transfer carries a timeout so a hung upload
// cannot block the run forever.
func New() *Uploader {
	return &Uploader{
		Endpoint:   DefaultEndpoint,
		Classifier: SubstringClassifier{Marker: successMarker},
		Client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Upload posts the file at path. The response body is saved to a
// transient file: removed when the service acknowledged the upload,
// retained (its path carried in the returned FailedError) when it did
// not. The uploaded file itself is never removed.
func (u *Uploader) Upload(path string) error {
	req, err := u.newRequest(path)
	if err != nil {
		return err
	}

	slog.Debug("uploading", "file", path, "endpoint", u.Endpoint)

	resp, err := u.Client.Do(req)
	if err != nil {
		return fmt.Errorf("upload transfer failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read upload response: %w", err)
	}

	respPath, err := u.saveResponse(body)
	if err != nil {
		return err
	}

	if !u.Classifier.Success(body) {
		return &FailedError{ResponsePath: respPath}
	}

	if err := os.Remove(respPath); err != nil {
		slog.Warn("failed to remove response file", "path", respPath, "error", err)
	}

	slog.Debug("upload accepted", "file", path)
	return nil
}

func (u *Uploader) saveResponse(body []byte) (string, error) {
	tmp, err := os.CreateTemp(u.ResponseDir, "bootdata-response-*.html")
	if err != nil {
		return "", fmt.Errorf("failed to create response file: %w", err)
	}

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to save upload response to %s: %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save upload response to %s: %w", tmp.Name(), err)
	}

	return tmp.Name(), nil
}

func (u *Uploader) newRequest(path string) (*http.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("submit_button", "Upload"); err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}

	part, err := w.CreateFormFile("file_1", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// file_2 and file_3 are reserved by the service for future
	// multi-file submissions and must be present but empty.
	for _, field := range []string{"file_2", "file_3"} {
		if err := w.WriteField(field, ""); err != nil {
			return nil, fmt.Errorf("failed to encode upload form: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode upload form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, u.Endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return req, nil
}
