package web

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// MaxUploadBytes caps request bodies carrying attachments.
const MaxUploadBytes = 32 << 20

var validate = validator.New()

// ParseForm parses a url-encoded or multipart body.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	err := r.ParseMultipartForm(MaxUploadBytes)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return errors.Wrap(err, "failed to parse form")
}

// Validate runs the struct's `validate` tags.
func Validate(v interface{}) error {
	return validate.Struct(v)
}

// Files returns the uploaded files under field, skipping empty inputs.
func Files(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Filename != "" {
			out = append(out, fh)
		}
	}
	return out
}

// Upload is a file read fully into memory.
type Upload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReadUpload opens and reads fh.
func ReadUpload(fh *multipart.FileHeader) (*Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", fh.Filename)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", fh.Filename)
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Upload{Filename: fh.Filename, ContentType: ct, Body: body}, nil
}
