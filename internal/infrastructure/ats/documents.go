package ats

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	MaxDocumentBytes  = 10 << 20
	DefaultResumeName = "resume.pdf"
)

var recognizedDocumentExt = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".txt":  {},
	".rtf":  {},
}

// ValidateDocument checks an upload before anything is sent. It returns the
// file name to use and whether its extension is one the ATS is known to parse.
func ValidateDocument(externalID string, content []byte, fileName string) (string, bool, error) {
	if strings.TrimSpace(externalID) == "" {
		return "", false, &ValidationError{Field: "candidate id", Reason: "empty"}
	}
	if len(content) == 0 {
		return "", false, &ValidationError{Field: "file", Reason: "empty"}
	}
	if len(content) > MaxDocumentBytes {
		return "", false, &ValidationError{Field: "file", Reason: "larger than 10MB"}
	}

	name := strings.TrimSpace(filepath.Base(fileName))
	if name == "" || name == "." || name == "/" {
		name = DefaultResumeName
	}
	_, known := recognizedDocumentExt[strings.ToLower(filepath.Ext(name))]
	return name, known, nil
}

// UploadDocument posts a document for a candidate as multipart/form-data
// using the upload client with its longer timeout.
func (c *Client) UploadDocument(ctx context.Context, externalID, fileName string, content []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("filename", fileName); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	_, err = c.do(ctx, request{
		op:          "uploadDocument",
		method:      http.MethodPost,
		path:        "/candidates/" + url.PathEscape(externalID) + "/documents",
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
		upload:      true,
	})
	return err
}
