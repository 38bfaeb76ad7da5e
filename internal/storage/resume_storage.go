package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const pdfMIME = "application/pdf"

var (
	// ErrNotPDF is returned when the upload is not a PDF by extension or content.
	ErrNotPDF = errors.New("only PDF files are allowed")
	// ErrTooLarge is returned when the upload exceeds the configured size.
	ErrTooLarge = errors.New("file exceeds maximum size")
	// ErrInvalidName is returned for stored names that could escape the upload directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNotExist is returned when a stored file cannot be found.
	ErrNotExist = errors.New("file not found")
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ResumeStore persists uploaded resumes flat under a single directory.
type ResumeStore struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewResumeStore ensures dir exists and returns a store rooted there.
func NewResumeStore(dir string, maxBytes int64, logger *zap.Logger) (*ResumeStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("resume storage ready", zap.String("dir", dir), zap.Int64("max_bytes", maxBytes))
	return &ResumeStore{dir: dir, maxBytes: maxBytes, logger: logger, now: time.Now}, nil
}

// MaxBytes returns the largest accepted upload.
func (s *ResumeStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates the uploaded file and writes it to disk, returning the stored filename.
func (s *ResumeStore) Save(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", ErrNotExist
	}
	if header.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return "", ErrNotPDF
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.write(header.Filename, src)
}

func (s *ResumeStore) write(original string, src io.Reader) (string, error) {
	// mimetype reads at most its detection window; keep those bytes to prepend.
	head := make([]byte, 3072)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if !mimetype.Detect(head).Is(pdfMIME) {
		return "", ErrNotPDF
	}

	dst, name, err := s.create(original)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)

	limited := io.LimitReader(io.MultiReader(bytes.NewReader(head), src), s.maxBytes+1)
	written, err := io.Copy(dst, limited)
	closeErr := dst.Close()
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write upload: %w", err)
	}

	s.logger.Info("resume stored", zap.String("original", original), zap.String("stored_as", name), zap.Int64("bytes", written))
	return name, nil
}

// create opens a new file exclusively, adding a random suffix if the timestamped name is taken.
func (s *ResumeStore) create(original string) (*os.File, string, error) {
	base := sanitizeName(original)
	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), base)
	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, name, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("create upload file: %w", err)
		}
		name = fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], base)
	}
	return nil, "", fmt.Errorf("create upload file: %w", os.ErrExist)
}

// Open returns the stored file for reading.
func (s *ResumeStore) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return f, err
}

// Path resolves a stored name to its location on disk.
func (s *ResumeStore) Path(name string) (string, error) {
	if !ValidName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *ResumeStore) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

// ValidName reports whether name is a bare file name that stays inside the store.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func sanitizeName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" || strings.EqualFold(base, "pdf") {
		return "resume.pdf"
	}
	if !strings.EqualFold(filepath.Ext(base), ".pdf") {
		base += ".pdf"
	}
	return base
}
