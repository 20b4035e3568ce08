// Package upload stores images under the static media directory and returns
// references the file controller can serve back.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// Result is the outcome of a best-effort photo upload. When storing fails,
// Ref still carries a usable fallback (the payload inlined as a data URI) so
// the record write is never blocked; Stored tells the caller which one it
// got, and Err carries the reason for the fallback.
type Result struct {
	Ref    string
	Stored bool
	Err    error
}

const thumbWidth = 320

type Service struct {
	baseDir string
}

func NewService(baseDir string) *Service {
	// References are compared against this path; it must be in the same
	// cleaned form filepath.Join produces.
	return &Service{baseDir: filepath.Clean(baseDir)}
}

// UploadPhoto writes jpeg photo evidence for an attempt, plus a thumbnail
// for list views. It never fails: see Result.
func (s *Service) UploadPhoto(ctx context.Context, runID string, photo []byte) Result {
	name := fmt.Sprintf("%s-%s.jpg", time.Now().Format("20060102T150405"), runID)

	ref, err := s.write("evidence", name, photo)
	if err != nil {
		return Result{
			Ref: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(photo),
			Err: err,
		}
	}

	// Thumbnails are a convenience; their failure is not worth reporting
	// beyond the Result error slot staying empty.
	if thumb, err := thumbnail(photo); err == nil {
		_, _ = s.write("evidence/thumbs", name, thumb)
	}

	return Result{Ref: ref, Stored: true}
}

// UploadMultipart stores an uploaded form file (reference images, the company
// logo) and returns its reference.
func (s *Service) UploadMultipart(file *multipart.FileHeader, folder string) (string, error) {
	if file == nil {
		return "", nil
	}

	contentType := file.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		return "", errors.Errorf("invalid file type, expected image/jpeg or image/png, got %s", contentType)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.Wrap(err, "opening uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return "", errors.Wrap(err, "reading uploaded file")
	}

	name := time.Now().Format(time.RFC3339) + "-" + file.Filename
	return s.write(folder, name, data)
}

// LoadImage reads a stored image back by the reference UploadPhoto or
// UploadMultipart returned.
func (s *Service) LoadImage(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		idx := strings.Index(ref, ",")
		if idx < 0 {
			return nil, errors.New("malformed data uri")
		}
		return base64.StdEncoding.DecodeString(ref[idx+1:])
	}

	clean := filepath.Clean(ref)
	rel, err := filepath.Rel(s.baseDir, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, errors.Errorf("reference %q is outside the media directory", ref)
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrap(err, "reading image")
	}
	return data, nil
}

func (s *Service) write(folder, name string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "creating media directory")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "writing image")
	}

	return path, nil
}

func thumbnail(photo []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(photo))
	if err != nil {
		return nil, errors.Wrap(err, "decoding photo")
	}

	bounds := src.Bounds()
	if bounds.Dx() <= thumbWidth {
		return photo, nil
	}

	height := bounds.Dy() * thumbWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, errors.Wrap(err, "encoding thumbnail")
	}
	return buf.Bytes(), nil
}
