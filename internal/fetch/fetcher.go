// Package fetch downloads artifacts from an ordered list of mirrors into a
// shared directory, skipping files that are already present.
package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/fsutil"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// Request describes one artifact to materialize
type Request struct {
	Dest    string   // Absolute destination path
	Sources []string // Candidate URLs, tried in order
	Size    int64    // Expected size in bytes (0 if unknown)
	SHA1    string   // Expected hex SHA-1 (empty to skip verification)
}

// Result contains the outcome of a fetch
type Result struct {
	Path     string // Final file path
	Size     int64  // File size on disk
	Source   string // URL the file came from (empty when skipped)
	Skipped  bool   // True if an existing file was reused
	Checksum string // Hex SHA-1 of downloaded content (empty when skipped)
}

// Fetcher handles artifact downloads with mirror fallback and retries
type Fetcher struct {
	httpClient  *http.Client
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithMaxAttempts sets how often one URL is tried on transient errors
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the base delay between attempts on the same URL
func WithRetryDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.retryDelay = d }
}

// WithTimeout bounds a whole Fetch call (all mirrors). Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Fetcher with the given HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func New(httpClient *http.Client, opts ...Option) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	f := &Fetcher{
		httpClient:  httpClient,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "fetch")
	return f
}

// Fetch materializes req.Dest from the first source that succeeds.
// Concurrent calls for the same destination are serialized, and a file
// that already exists with the expected size is reused without a request.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*Result, error) {
	if req.Dest == "" {
		return nil, errors.New("fetch: destination path is required")
	}

	unlock := fsutil.LockPath(req.Dest)
	defer unlock()

	if size, ok := fsutil.FileSize(req.Dest); ok && (req.Size <= 0 || size == req.Size) {
		f.logger.Debug("artifact already present", "path", req.Dest)
		return &Result{Path: req.Dest, Size: size, Skipped: true}, nil
	}

	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("%w: %s: no candidate sources", domain.ErrArtifactUnreachable, filepath.Base(req.Dest))
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var errs []error
	for _, src := range req.Sources {
		result, err := f.fetchWithRetry(ctx, src, req)
		if err == nil {
			return result, nil
		}
		f.logger.Debug("source failed", "url", src, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", src, err))

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", domain.ErrArtifactUnreachable, filepath.Base(req.Dest), errors.Join(errs...))
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, url string, req Request) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		result, err := f.download(ctx, url, req)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isTransient(err) || attempt == f.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.retryDelay * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

// statusError is an HTTP response with a non-200 status
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s", e.code, e.status)
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var ve *verifyError
	if errors.As(err, &ve) {
		return false
	}
	// Network-level failures
	return true
}

// verifyError reports downloaded content that does not match expectations
type verifyError struct {
	msg string
}

func (e *verifyError) Error() string {
	return e.msg
}

func (f *Fetcher) download(ctx context.Context, url string, req Request) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, status: http.StatusText(resp.StatusCode)}
	}

	dir := filepath.Dir(req.Dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	// Unique temp name: other processes may share the library root
	file, err := os.CreateTemp(dir, "."+filepath.Base(req.Dest)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	tempPath := file.Name()
	defer func() {
		file.Close()
		os.Remove(tempPath)
	}()

	hasher := sha1.New()
	written, err := io.Copy(file, io.TeeReader(resp.Body, hasher))
	if err != nil {
		return nil, fmt.Errorf("downloading file: %w", err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("closing file: %w", err)
	}

	if req.Size > 0 && written != req.Size {
		return nil, &verifyError{msg: fmt.Sprintf("size mismatch: got %d bytes, want %d", written, req.Size)}
	}
	checksum := hex.EncodeToString(hasher.Sum(nil))
	if req.SHA1 != "" && checksum != req.SHA1 {
		return nil, &verifyError{msg: fmt.Sprintf("checksum mismatch: got %s, want %s", checksum, req.SHA1)}
	}

	if err := os.Rename(tempPath, req.Dest); err != nil {
		return nil, fmt.Errorf("renaming file: %w", err)
	}

	f.logger.Debug("artifact downloaded", "url", url, "path", req.Dest, "bytes", written)

	return &Result{
		Path:     req.Dest,
		Size:     written,
		Source:   url,
		Checksum: checksum,
	}, nil
}
