// Package qrscan reads QR codes from images. It stands in for a camera
// when sessions run in a terminal.
package qrscan

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/petrijr/sessionflow/pkg/api"
)

// ErrNoCode is returned when an image holds no readable QR code.
var ErrNoCode = errors.New("no QR code found")

// Decode returns the text of the QR code in img.
func Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("prepare image: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoCode, err)
	}
	return res.GetText(), nil
}

// DecodeFile decodes the QR code in the PNG or JPEG image at path.
func DecodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return Decode(img)
}

// PathFunc supplies the image to scan. An empty path means the user gave
// up.
type PathFunc func(ctx context.Context) (string, error)

// FixedPath always scans path.
func FixedPath(path string) PathFunc {
	return func(context.Context) (string, error) { return path, nil }
}

// FileScanner is an api.QRScanner that decodes image files.
type FileScanner struct {
	path PathFunc
}

var _ api.QRScanner = (*FileScanner)(nil)

// NewFileScanner returns a scanner that asks path for the image each time
// it scans.
func NewFileScanner(path PathFunc) *FileScanner {
	return &FileScanner{path: path}
}

// Scan asks for an image path and decodes it.
func (s *FileScanner) Scan(ctx context.Context) (string, error) {
	if s.path == nil {
		return "", &api.PreconditionUnavailableError{What: "QR scanner"}
	}
	p, err := s.path(ctx)
	if err != nil {
		return "", err
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "", api.ErrUserCancelled
	}
	if err := ctx.Err(); err != nil {
		return "", api.NewCancelledError(err)
	}
	return DecodeFile(p)
}
