package client

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/errors"
)

// Face images must cover exactly this many pixels.
const (
	ImageWidth  = 200
	ImageHeight = 144
)

// imageField is the multipart field the server reads the upload from.
const imageField = "imgfile"

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// ValidateImage checks the file extension and that the image holds
// exactly 200x144 pixels.
func ValidateImage(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	known := false
	for _, e := range imageExtensions {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		return errors.New(errors.ErrImage,
			fmt.Sprintf("%s is not a supported image", filepath.Base(path)),
			"Use a file ending in "+strings.Join(imageExtensions, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrImage,
			fmt.Sprintf("Can't open image %s", path),
			"Check the file exists and is readable")
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrImage,
			fmt.Sprintf("Can't read image %s", path),
			"The file may be corrupt or not really a PNG/JPEG")
	}

	if cfg.Width*cfg.Height != ImageWidth*ImageHeight {
		return errors.New(errors.ErrImage,
			fmt.Sprintf("%s is %dx%d pixels", filepath.Base(path), cfg.Width, cfg.Height),
			fmt.Sprintf("Dial images must be exactly %dx%d pixels", ImageWidth, ImageHeight))
	}
	return nil
}

// DefaultImagePath returns where the stock image for role lives under dir.
func DefaultImagePath(dir string, role dial.Role) string {
	return filepath.Join(dir, dial.DefaultImage(role))
}

// imageForm is a ready-to-send multipart body. It is built once so retries
// resend identical bytes.
type imageForm struct {
	body        []byte
	contentType string
}

func newImageForm(path string) (*imageForm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrImage,
			fmt.Sprintf("Can't read image %s", path),
			"Check the file exists and is readable")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(imageField, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return &imageForm{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}
