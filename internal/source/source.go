// Package source resolves upload locations to CSV text. Locations are local
// paths, file:// URLs, s3://bucket/key objects and http(s):// URLs.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/dev-shimada/regscan/internal/csv"
	internalhttp "github.com/dev-shimada/regscan/internal/http"
)

const DefaultMaxBytes = 10 << 20

var (
	ErrUnsupportedScheme = errors.New("unsupported location scheme")
	ErrNotCSV            = errors.New("not a .csv file")
	ErrTooLarge          = errors.New("file too large")
	ErrStatus            = internalhttp.ErrStatus
	ErrInvalidLocation   = errors.New("invalid location")
)

// Upload is the text of one fetched file.
type Upload struct {
	Name string
	Text string
}

// Getter fetches remote bodies over HTTP.
type Getter interface {
	Get(ctx context.Context, url string, limit int64) ([]byte, error)
}

type Options struct {
	// MaxBytes caps the size of a single upload. Zero or less disables the cap.
	MaxBytes int64
	// AnyExtension accepts files regardless of their extension.
	AnyExtension bool
	// Timeout bounds remote HTTP fetches.
	Timeout time.Duration
}

type Fetcher struct {
	opts Options
	http Getter

	s3Once     sync.Once
	s3         s3manageriface.DownloaderAPI
	s3Err      error
	downloader func() (s3manageriface.DownloaderAPI, error)
}

func NewFetcher(opts Options) *Fetcher {
	return &Fetcher{
		opts:       opts,
		http:       internalhttp.NewClient(opts.Timeout),
		downloader: newS3Downloader,
	}
}

// WithHTTP replaces the HTTP getter.
func (f *Fetcher) WithHTTP(g Getter) *Fetcher {
	f.http = g
	return f
}

// WithS3 replaces the S3 downloader.
func (f *Fetcher) WithS3(d s3manageriface.DownloaderAPI) *Fetcher {
	f.downloader = func() (s3manageriface.DownloaderAPI, error) { return d, nil }
	return f
}

func newS3Downloader() (s3manageriface.DownloaderAPI, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return s3manager.NewDownloader(sess), nil
}

// Fetch reads the file at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) (Upload, error) {
	var (
		name string
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(location, "s3://"):
		name, data, err = f.fetchS3(ctx, location)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		name, data, err = f.fetchHTTP(ctx, location)
	case strings.HasPrefix(location, "file://"):
		u, perr := url.Parse(location)
		if perr != nil {
			return Upload{}, fmt.Errorf("%w: %v", ErrInvalidLocation, perr)
		}
		name, data, err = f.fetchFile(filepath.FromSlash(u.Path))
	case strings.Contains(location, "://"):
		return Upload{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, location)
	default:
		name, data, err = f.fetchFile(location)
	}
	if err != nil {
		return Upload{}, err
	}

	text, err := csv.Read(bytes.NewReader(data))
	if err != nil {
		return Upload{}, err
	}
	slog.Debug("fetched upload", "location", location, "name", name, "bytes", len(data))
	return Upload{Name: name, Text: text}, nil
}

func (f *Fetcher) checkName(name string) error {
	if f.opts.AnyExtension {
		return nil
	}
	if !strings.EqualFold(path.Ext(name), ".csv") {
		return fmt.Errorf("%w: %s", ErrNotCSV, name)
	}
	return nil
}

func (f *Fetcher) checkSize(name string, size int64) error {
	if f.opts.MaxBytes > 0 && size > f.opts.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, name, size, f.opts.MaxBytes)
	}
	return nil
}

func (f *Fetcher) fetchFile(p string) (string, []byte, error) {
	name := filepath.Base(p)
	if err := f.checkName(name); err != nil {
		return "", nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("%w: %s is a directory", ErrInvalidLocation, p)
	}
	if err := f.checkSize(name, info.Size()); err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	return name, data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) (string, []byte, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = u.Host
	}
	if err := f.checkName(name); err != nil {
		return "", nil, err
	}
	data, err := f.http.Get(ctx, location, f.opts.MaxBytes)
	if errors.Is(err, internalhttp.ErrTooLarge) {
		return "", nil, fmt.Errorf("%w: %s", ErrTooLarge, name)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to download %s: %w", location, err)
	}
	return name, data, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, location string) (string, []byte, error) {
	splitedPath := strings.Split(strings.TrimPrefix(location, "s3://"), "/")
	if len(splitedPath) < 2 || splitedPath[0] == "" || splitedPath[len(splitedPath)-1] == "" {
		return "", nil, fmt.Errorf("%w: %s needs s3://bucket/key", ErrInvalidLocation, location)
	}
	bucket := splitedPath[0]
	key := strings.Join(splitedPath[1:], "/")
	name := splitedPath[len(splitedPath)-1]
	if err := f.checkName(name); err != nil {
		return "", nil, err
	}

	f.s3Once.Do(func() {
		f.s3, f.s3Err = f.downloader()
	})
	if f.s3Err != nil {
		return "", nil, fmt.Errorf("failed to create s3 session: %w", f.s3Err)
	}

	w := &limitedWriterAt{buf: aws.NewWriteAtBuffer(nil), limit: f.opts.MaxBytes}
	n, err := f.s3.DownloadWithContext(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if w.exceeded {
		return "", nil, fmt.Errorf("%w: %s, limit %d", ErrTooLarge, name, f.opts.MaxBytes)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to download file from S3: %w", err)
	}
	slog.Debug("file downloaded", "bucket", bucket, "key", key, "bytes", n)
	return name, w.buf.Bytes(), nil
}

// limitedWriterAt refuses writes past limit bytes.
type limitedWriterAt struct {
	mu       sync.Mutex
	buf      *aws.WriteAtBuffer
	limit    int64
	exceeded bool
}

func (w *limitedWriterAt) WriteAt(p []byte, off int64) (int, error) {
	if w.limit > 0 && off+int64(len(p)) > w.limit {
		w.mu.Lock()
		w.exceeded = true
		w.mu.Unlock()
		return 0, ErrTooLarge
	}
	return w.buf.WriteAt(p, off)
}
