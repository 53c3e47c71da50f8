package imagehost

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Upload(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)

	url, err := l.Upload(context.Background(), "Countach.PNG", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestLocal_UploadFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	require.NoError(t, err)

	r := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("connection reset")))
	_, err = l.Upload(context.Background(), "broken.jpg", r)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
