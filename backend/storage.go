package backend

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
)

var knownBuckets = map[string]bool{
	BucketPassportUploads: true,
	BucketCompanyUploads:  true,
	BucketSolePropUploads: true,
	BucketUploads:         true,
}

// diskStorage keeps uploaded files on the local filesystem, one directory
// per bucket, served read-only under publicBase.
type diskStorage struct {
	root       string
	publicBase string
}

func newDiskStorage(root, publicBase string) *diskStorage {
	return &diskStorage{root: root, publicBase: strings.TrimRight(publicBase, "/")}
}

// upload stores the contents of r under bucket/name. Unknown buckets fall
// back to the generic uploads bucket. Image files are resized and
// re-encoded as JPEG on the way in; everything else is stored verbatim.
func (s *diskStorage) upload(ctx context.Context, bucket, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !knownBuckets[bucket] {
		bucket = BucketUploads
	}
	name = path.Base(path.Clean(name))
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("storage: invalid file name %q", name)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("storage: read upload: %w", err)
	}
	if len(data) > maxUploadSize {
		return "", fmt.Errorf("storage: upload exceeds %d bytes", maxUploadSize)
	}

	if isImageName(name) {
		data, err = reencodeImage(data)
		if err != nil {
			return "", err
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}

	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}

// publicURL resolves a stored path to the URL the static route serves it at.
func (s *diskStorage) publicURL(bucket, name string) string {
	if name == "" {
		return ""
	}
	if !knownBuckets[bucket] {
		bucket = BucketUploads
	}
	return s.publicBase + "/" + bucket + "/" + name
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}

// reencodeImage decodes an uploaded image, scales it down to maxImageWidth
// when wider, and encodes it as JPEG.
func reencodeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("storage: decode image: %w", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("storage: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
