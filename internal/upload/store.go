// Package upload stores request bodies gzip-compressed on local disk.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/klauspost/compress/gzip"

	"promanage/backend/internal/platform/apperr"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ErrTooLarge is returned when the body exceeds the configured cap.
var ErrTooLarge = apperr.Invalid("Upload exceeds the maximum allowed size")

// Result describes a stored upload.
type Result struct {
	Filename         string `json:"filename"`
	OriginalSize     int64  `json:"originalSize"`
	CompressedSize   int64  `json:"compressedSize"`
	CompressionRatio string `json:"compressionRatio"`
}

// Store writes compressed uploads under Dir.
type Store struct {
	Dir      string
	MaxBytes int64
	now      func() time.Time
}

// NewStore creates dir if needed.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create %s: %w", dir, err)
	}
	return &Store{Dir: dir, MaxBytes: maxBytes, now: time.Now}, nil
}

// SafeName replaces every character outside [a-zA-Z0-9._-] with an underscore.
// An empty name becomes upload-<unix millis>.
func (s *Store) SafeName(name string) string {
	if name == "" {
		return fmt.Sprintf("upload-%d", s.now().UnixMilli())
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// Save streams body through gzip into Dir/<safe name>.gz. The body is never
// buffered whole. A partial file is removed on failure.
func (s *Store) Save(ctx context.Context, name string, body io.Reader) (*Result, error) {
	filename := s.SafeName(name) + ".gz"
	path := filepath.Join(s.Dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	res, err := s.write(ctx, f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	res.Filename = filename
	return res, nil
}

func (s *Store) write(ctx context.Context, f *os.File, body io.Reader) (*Result, error) {
	src := &countingReader{r: body}
	var limited io.Reader = src
	if s.MaxBytes > 0 {
		limited = io.LimitReader(src, s.MaxBytes+1)
	}
	zw := gzip.NewWriter(f)
	if _, err := io.Copy(zw, &ctxReader{ctx: ctx, r: limited}); err != nil {
		return nil, err
	}
	if s.MaxBytes > 0 && src.n > s.MaxBytes {
		return nil, ErrTooLarge
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &Result{
		OriginalSize:     src.n,
		CompressedSize:   info.Size(),
		CompressionRatio: ratio(src.n, info.Size()),
	}, nil
}

func ratio(original, compressed int64) string {
	if original == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", (1-float64(compressed)/float64(original))*100)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ctxReader stops reading once ctx is done, e.g. when the client disconnects.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
