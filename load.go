package clausewitz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// FileResult is the outcome of parsing one file of a batch.
type FileResult struct {
	Path string `json:"path" yaml:"path"`
	// Hash is the hex SHA-256 of the raw file content, empty when the
	// file could not be read.
	Hash     string           `json:"hash,omitempty" yaml:"hash,omitempty"`
	Document *script.Document `json:"document,omitempty" yaml:"document,omitempty"`
	// Err is a read error or a *script.SyntaxError. Document is nil
	// when Err is set.
	Err error `json:"-" yaml:"-"`
}

// Batch holds the results of Load in source order.
type Batch struct {
	Files []FileResult
}

// Documents returns the successfully parsed documents.
func (b *Batch) Documents() []*script.Document {
	var docs []*script.Document
	for _, f := range b.Files {
		if f.Document != nil {
			docs = append(docs, f.Document)
		}
	}
	return docs
}

// Failed returns the files that could not be read or parsed.
func (b *Batch) Failed() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// Diagnostics returns every diagnostic of the batch, including one fatal
// diagnostic per syntax error.
func (b *Batch) Diagnostics() []script.Diagnostic {
	var out []script.Diagnostic
	for _, f := range b.Files {
		if f.Document != nil {
			out = append(out, f.Document.Diagnostics...)
		}
		var se *script.SyntaxError
		if errors.As(f.Err, &se) {
			out = append(out, se.Diagnostic())
		}
	}
	return out
}

// Load parses every file of source in parallel. A file that cannot be
// read or parsed is recorded on its FileResult and never stops the other
// files. Load itself fails only when the source cannot be listed or ctx
// is cancelled.
func Load(ctx context.Context, source Source, opts ...Option) (*Batch, error) {
	if source == nil {
		return nil, ErrNoSources
	}
	cfg := newConfig(opts)
	log := types.Logger{L: types.Component(cfg.logger, "load")}

	files, err := source.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	log.Log(slog.LevelInfo, "parallel loading",
		slog.Int("files", len(files)),
		slog.Int("workers", cfg.concurrency))

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = loadFile(source, path, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{Files: results}
	log.Log(slog.LevelInfo, "parallel loading complete",
		slog.Int("files", len(files)),
		slog.Int("failed", len(batch.Failed())))
	return batch, nil
}

func loadFile(source Source, path string, cfg config) FileResult {
	res := FileResult{Path: path}
	log := types.Logger{L: types.Component(cfg.logger, "load")}

	r, err := source.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("open %s: %w", path, err)
		return res
	}
	data, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	sum := sha256.Sum256(data)
	res.Hash = hex.EncodeToString(sum[:])

	doc, err := parse(data, path, cfg)
	if err != nil {
		log.Log(slog.LevelWarn, "file skipped", slog.String("file", path), slog.Any("error", err))
		res.Err = err
		return res
	}
	res.Document = doc
	log.Trace("file parsed", slog.String("file", path), slog.Int("entries", len(doc.Entries)))
	return res
}
