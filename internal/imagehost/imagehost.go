// Package imagehost stores product images and returns their public URL.
package imagehost

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// Folder groups the catalog images on the hosted service.
const Folder = "collect-and-cruise"

type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Cloudinary uploads to a Cloudinary account configured by CLOUDINARY_URL.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: c.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", filename, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", filename, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Local writes images into Dir and serves them under URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (l *Local) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dst := filepath.Join(l.Dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}
	return path.Join(l.URLPrefix, name), nil
}
