package durable

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxBytes is the size cap applied when Options.MaxBytes is zero.
const DefaultMaxBytes int64 = 256 * 1024

const (
	tempSuffix   = ".tmp"
	backupSuffix = ".bak"
)

// Options configure a Store.
type Options struct {
	Dir       string            // directory holding every document
	Documents map[string]string // logical name -> file name inside Dir
	MaxBytes  int64             // zero uses DefaultMaxBytes
	FS        FS                // nil uses OSFS
	Logger    *zap.Logger
}

type document struct {
	name       string
	path       string
	tempPath   string
	backupPath string
}

// Store persists small opaque documents with atomic replacement.
type Store struct {
	dir      string
	docs     map[string]document
	maxBytes int64
	fs       FS
	logger   *zap.Logger
	writer   *writer
}

// New validates opts and returns a Store. No I/O happens until the first save.
func New(opts Options) (*Store, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, fmt.Errorf("durable store requires a directory")
	}
	if len(opts.Documents) == 0 {
		return nil, fmt.Errorf("durable store requires at least one document")
	}
	if opts.MaxBytes < 0 {
		return nil, fmt.Errorf("max bytes must not be negative: %d", opts.MaxBytes)
	}

	s := &Store{
		dir:      filepath.Clean(dir),
		docs:     make(map[string]document, len(opts.Documents)),
		maxBytes: opts.MaxBytes,
		fs:       opts.FS,
		logger:   opts.Logger,
	}
	if s.maxBytes == 0 {
		s.maxBytes = DefaultMaxBytes
	}
	if s.fs == nil {
		s.fs = OSFS{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	for name, file := range opts.Documents {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("document name is empty")
		}
		if file == "" || file == "." || file == ".." || filepath.Base(file) != file {
			return nil, fmt.Errorf("document %q: file name %q must be a plain name", name, file)
		}
		path := filepath.Join(s.dir, file)
		s.docs[name] = document{
			name:       name,
			path:       path,
			tempPath:   path + tempSuffix,
			backupPath: path + backupSuffix,
		}
	}

	s.writer = newWriter(s)
	return s, nil
}

// MaxBytes returns the size cap enforced by Save and SaveAsync.
func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Names returns the registered document names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the final file location of a document.
func (s *Store) Path(name string) (string, error) {
	doc, err := s.document(name)
	if err != nil {
		return "", err
	}
	return doc.path, nil
}

// Save writes data synchronously. The previous version stays intact unless
// the new one is fully in place.
func (s *Store) Save(name string, data []byte) error {
	doc, err := s.document(name)
	if err != nil {
		return err
	}
	if err := s.checkSize(doc, data, "save"); err != nil {
		return err
	}
	return s.write(doc, data)
}

// SaveAsync validates data and hands it to the background writer. It returns
// once the write is queued. A newer call for the same document that lands
// before the writer drains replaces the queued data.
func (s *Store) SaveAsync(name string, data []byte) error {
	doc, err := s.document(name)
	if err != nil {
		return err
	}
	if err := s.checkSize(doc, data, "queue"); err != nil {
		return err
	}
	return s.writer.enqueue(doc.name, data)
}

// Load returns the document content when it exists, is non-empty, fits the
// size cap, and reads back in full. Anything else reports false.
func (s *Store) Load(name string) ([]byte, bool) {
	doc, err := s.document(name)
	if err != nil {
		s.logger.Warn("load of unregistered document", zap.String("document", name))
		return nil, false
	}

	info, err := s.fs.Stat(doc.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("stat document", zap.String("document", name), zap.String("path", doc.path), zap.Error(err))
		}
		return nil, false
	}
	if !info.Mode().IsRegular() {
		s.logger.Warn("document is not a regular file", zap.String("document", name), zap.String("path", doc.path))
		return nil, false
	}
	size := info.Size()
	if size == 0 {
		return nil, false
	}
	if size > s.maxBytes {
		s.logger.Warn("document too large, ignoring",
			zap.String("document", name),
			zap.String("path", doc.path),
			zap.Int64("bytes", size),
			zap.Int64("limit", s.maxBytes))
		return nil, false
	}

	file, err := s.fs.Open(doc.path)
	if err != nil {
		s.logger.Warn("open document", zap.String("document", name), zap.String("path", doc.path), zap.Error(err))
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		s.logger.Warn("read document", zap.String("document", name), zap.String("path", doc.path), zap.Error(err))
		return nil, false
	}
	if int64(len(data)) != size {
		s.logger.Warn("incomplete document read",
			zap.String("document", name),
			zap.String("path", doc.path),
			zap.Int64("expected", size),
			zap.Int("got", len(data)))
		return nil, false
	}
	return data, true
}

// Close stops the background writer after it has drained every queued
// write. Save and Load keep working afterwards.
func (s *Store) Close() error {
	s.writer.shutdown()
	return nil
}

func (s *Store) document(name string) (document, error) {
	doc, ok := s.docs[name]
	if !ok {
		return document{}, fmt.Errorf("%w: %q", ErrUnknownDocument, name)
	}
	return doc, nil
}

func (s *Store) checkSize(doc document, data []byte, verb string) error {
	if int64(len(data)) <= s.maxBytes {
		return nil
	}
	s.logger.Warn("refusing to "+verb+" oversized document",
		zap.String("document", doc.name),
		zap.Int("bytes", len(data)),
		zap.Int64("limit", s.maxBytes))
	return fmt.Errorf("%s %q: %w (%d > %d bytes)", verb, doc.name, ErrTooLarge, len(data), s.maxBytes)
}

func (s *Store) write(doc document, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Warn("create document directory", zap.String("path", s.dir), zap.Error(err))
		return &Error{Op: "mkdir", Path: s.dir, Err: err}
	}
	if err := s.writeTemp(doc, data); err != nil {
		return err
	}
	if err := s.replace(doc); err != nil {
		return err
	}
	s.logger.Info("document saved",
		zap.String("document", doc.name),
		zap.String("path", doc.path),
		zap.Int("bytes", len(data)))
	return nil
}

// writeTemp leaves the temp file behind on failure so it can be inspected.
func (s *Store) writeTemp(doc document, data []byte) error {
	file, err := s.fs.Create(doc.tempPath)
	if err != nil {
		s.logger.Warn("open temp document for write", zap.String("path", doc.tempPath), zap.Error(err))
		return &Error{Op: "create", Path: doc.tempPath, Err: err}
	}

	n, err := file.Write(data)
	if err == nil && n != len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = file.Close()
		s.logger.Warn("write temp document",
			zap.String("path", doc.tempPath),
			zap.Int("expected", len(data)),
			zap.Int("written", n),
			zap.Error(err))
		return &Error{Op: "write", Path: doc.tempPath, Err: err}
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		s.logger.Warn("flush temp document", zap.String("path", doc.tempPath), zap.Error(err))
		return &Error{Op: "sync", Path: doc.tempPath, Err: err}
	}
	if err := file.Close(); err != nil {
		s.logger.Warn("close temp document", zap.String("path", doc.tempPath), zap.Error(err))
		return &Error{Op: "close", Path: doc.tempPath, Err: err}
	}
	return nil
}
