package export

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
)

// TempFileSource is a read-once stream over a temp file. Closing the
// stream runs the callback and then deletes the file.
type TempFileSource struct {
	path    string
	onClose func()

	mu     sync.Mutex
	opened bool
}

// NewTempFileSource binds a stream source to path. onClose may be nil.
func NewTempFileSource(path string, onClose func()) *TempFileSource {
	return &TempFileSource{path: path, onClose: onClose}
}

// Path returns the backing file path.
func (s *TempFileSource) Path() string { return s.path }

// Open opens the file. It can be called once.
func (s *TempFileSource) Open() (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil, NewError(KindValidation, "temp file stream already opened", nil)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewError(KindInternal, "open temp file", err)
	}
	s.opened = true
	return &deletingFile{File: f, path: s.path, onClose: s.onClose}, nil
}

// Discard removes the file of a stream that was never opened.
func (s *TempFileSource) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opened {
		return nil
	}
	s.opened = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

type deletingFile struct {
	*os.File
	path    string
	onClose func()

	once sync.Once
	err  error
}

func (d *deletingFile) Close() error {
	d.once.Do(func() {
		if d.onClose != nil {
			d.onClose()
		}
		closeErr := d.File.Close()
		removeErr := os.Remove(d.path)
		if closeErr != nil {
			d.err = closeErr
		} else if removeErr != nil && !os.IsNotExist(removeErr) {
			d.err = removeErr
		}
	})
	return d.err
}

// DownloadResource is a named, content-typed export ready to be served.
type DownloadResource struct {
	FileName    string
	ContentType string
	ExportID    string
	Source      *TempFileSource
}

// Headers returns the response headers for an attachment download with
// caching disabled.
func (d *DownloadResource) Headers() http.Header {
	h := http.Header{}
	contentType := d.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", SanitizeFileName(d.FileName, "")))
	h.Set("Cache-Control", "private, no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
	if d.ExportID != "" {
		h.Set("X-Export-Id", d.ExportID)
	}
	return h
}

// WriteTo streams the file into w and closes the stream, deleting the file.
func (d *DownloadResource) WriteTo(w io.Writer) (int64, error) {
	if d == nil || d.Source == nil {
		return 0, NewError(KindInternal, "download has no source", nil)
	}
	rc, err := d.Source.Open()
	if err != nil {
		return 0, err
	}
	n, copyErr := io.Copy(w, rc)
	closeErr := rc.Close()
	if copyErr != nil {
		return n, copyErr
	}
	return n, closeErr
}

// ServeHTTP writes the download headers and body.
func (d *DownloadResource) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	for key, values := range d.Headers() {
		for _, v := range values {
			w.Header().Set(key, v)
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = d.WriteTo(w)
}

// writeTempFile writes wt into exactly one new temp file. A failed write
// leaves no file behind.
func writeTempFile(wt io.WriterTo, format Format, logger Logger) (string, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	f, err := os.CreateTemp("", "tableexport-*."+string(format))
	if err != nil {
		logger.Errorf("create temp file: %v", err)
		return "", NewError(KindInternal, "create temp file", err)
	}
	path := f.Name()
	if _, err := wt.WriteTo(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		logger.Errorf("write temp file %s: %v", path, err)
		if KindFromError(err) != KindInternal {
			return "", err
		}
		return "", NewError(KindInternal, "write temp file", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		logger.Errorf("close temp file %s: %v", path, err)
		return "", NewError(KindInternal, "close temp file", err)
	}
	logger.Debugf("export written to %s", path)
	return path, nil
}

func newDownload(wt io.WriterTo, cfg Config, logger Logger, onClose []func(path string)) (*DownloadResource, error) {
	format := cfg.Format
	path, err := writeTempFile(wt, format, logger)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	return &DownloadResource{
		FileName:    EnsureExtension(SanitizeFileName(cfg.FileName, format), format),
		ContentType: cfg.ContentType(),
		ExportID:    id,
		Source: NewTempFileSource(path, func() {
			for _, fn := range onClose {
				if fn != nil {
					fn(path)
				}
			}
			logger.Debugf("export %s stream closed", id)
		}),
	}, nil
}
