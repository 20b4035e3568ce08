package upload

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadImageReadsBackWrittenReference(t *testing.T) {
	// The configured media dir commonly carries a "./" prefix while the
	// references the service hands out are cleaned by filepath.Join.
	base := t.TempDir() + string(filepath.Separator) + "." + string(filepath.Separator) + "statics"
	svc := NewService(base)

	want := []byte("reference-bytes")
	ref, err := svc.write("reference", "ana.jpg", want)
	require.NoError(t, err)

	got, err := svc.LoadImage(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadImageRejectsPathsOutsideMediaDir(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(filepath.Join(dir, "statics"))

	for _, ref := range []string{
		filepath.Join(dir, "statics", "..", "secret.jpg"),
		filepath.Join(dir, "elsewhere", "photo.jpg"),
		"..",
	} {
		_, err := svc.LoadImage(context.Background(), ref)
		assert.Error(t, err, ref)
	}
}

func TestLoadImageDecodesDataURI(t *testing.T) {
	svc := NewService("./statics")

	got, err := svc.LoadImage(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = svc.LoadImage(context.Background(), "data:image/jpeg;base64")
	assert.Error(t, err)
}
