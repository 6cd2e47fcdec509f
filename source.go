package clausewitz

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultExtensions are the file extensions recognized as script files.
var DefaultExtensions = []string{".txt"}

// Source lists and opens script files.
type Source interface {
	// ListFiles returns the paths of all script files known to this
	// source, in a stable order.
	ListFiles() ([]string, error)

	// Open opens a path returned by ListFiles.
	// Returns fs.ErrNotExist for paths the source does not own.
	Open(path string) (io.ReadCloser, error)
}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions []string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		extensions: DefaultExtensions,
	}
}

// WithExtensions sets the file extensions to recognize for this source.
// Empty string matches files with no extension.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

func applySourceOptions(opts []SourceOption) sourceConfig {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return nil
}

// --- Dir Source (single directory) ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a Source over the files of a single directory (no recursion).
func Dir(path string, opts ...SourceOption) (Source, error) {
	if err := requireDir(path); err != nil {
		return nil, err
	}
	return &dirSource{path: path, config: applySourceOptions(opts)}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string, opts ...SourceOption) Source {
	src, err := Dir(path, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) ListFiles() ([]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	var files []string

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.path, entry.Name())
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
	}
	return files, nil
}

func (s *dirSource) Open(path string) (io.ReadCloser, error) {
	return openOwned(s.path, path)
}

// --- DirTree Source (recursive directory) ---

type treeSource struct {
	root  string
	files []string
}

// DirTree creates a Source over a directory tree. The tree is walked once
// at construction; unreadable subdirectories are skipped.
func DirTree(root string, opts ...SourceOption) (Source, error) {
	if err := requireDir(root); err != nil {
		return nil, err
	}
	cfg := applySourceOptions(opts)
	extSet := makeExtensionSet(cfg.extensions)

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &treeSource{root: root, files: files}, nil
}

// MustDirTree is like DirTree but panics on error.
func MustDirTree(root string, opts ...SourceOption) Source {
	src, err := DirTree(root, opts...)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *treeSource) ListFiles() ([]string, error) {
	return append([]string(nil), s.files...), nil
}

func (s *treeSource) Open(path string) (io.ReadCloser, error) {
	return openOwned(s.root, path)
}

// openOwned opens path if it lies under root.
func openOwned(root, path string) (io.ReadCloser, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fs.ErrNotExist
	}
	return os.Open(path)
}

// --- FS Source (for embed.FS, testing, archives) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig

	once  sync.Once
	files []string
	err   error
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS).
// Paths are reported as name:path. The filesystem is walked lazily on
// the first ListFiles call.
func FS(name string, fsys fs.FS, opts ...SourceOption) Source {
	return &fsSource{
		name:   name,
		fsys:   fsys,
		config: applySourceOptions(opts),
	}
}

func (s *fsSource) ListFiles() ([]string, error) {
	s.once.Do(func() {
		s.files, s.err = s.walk()
	})
	if s.err != nil {
		return nil, s.err
	}
	files := make([]string, len(s.files))
	for i, path := range s.files {
		files[i] = s.name + ":" + path
	}
	return files, nil
}

func (s *fsSource) Open(path string) (io.ReadCloser, error) {
	rel, ok := strings.CutPrefix(path, s.name+":")
	if !ok {
		return nil, fs.ErrNotExist
	}
	return s.fsys.Open(rel)
}

func (s *fsSource) walk() ([]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	var files []string
	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasValidExtension(path, extSet) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// --- Files Source (explicit paths) ---

type fileList struct {
	paths []string
}

// Files creates a Source over an explicit list of files. No extension
// filtering is applied.
func Files(paths ...string) Source {
	return &fileList{paths: paths}
}

func (s *fileList) ListFiles() ([]string, error) {
	return append([]string(nil), s.paths...), nil
}

func (s *fileList) Open(path string) (io.ReadCloser, error) {
	for _, p := range s.paths {
		if p == path {
			return os.Open(path)
		}
	}
	return nil, fs.ErrNotExist
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one. Files are listed source by
// source; Open asks each source in order.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) ListFiles() ([]string, error) {
	var files []string
	for _, src := range s.sources {
		f, err := src.ListFiles()
		if err != nil {
			return nil, err
		}
		files = append(files, f...)
	}
	return files, nil
}

func (s *multiSource) Open(path string) (io.ReadCloser, error) {
	for _, src := range s.sources {
		r, err := src.Open(path)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fs.ErrNotExist
}

// --- Helpers ---

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}
