// Package pipeline turns resume files into structured data, calling the model at most
// once per unique document content.
package pipeline

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/cache"
	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/resume"
)

// Document is the outcome of processing one file.
type Document struct {
	Path      string
	Digest    string
	Resume    *resume.Resume
	FromCache bool
}

// Processor composes text extraction, the content-addressed cache and the model extractor.
type Processor struct {
	store     cache.Store
	extractor ai.Extractor
	logger    *zap.Logger

	readText func(path string, log *zap.Logger) string
	group    singleflight.Group
}

func New(store cache.Store, extractor ai.Extractor, log *zap.Logger) (*Processor, error) {
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}

	return &Processor{
		store:     store,
		extractor: extractor,
		logger:    logger.WithFields(log),
		readText:  extract.Text,
	}, nil
}

// Process returns the structured resume for the file at path.
// The returned resume may be shared with concurrent callers and must not be modified.
func (p *Processor) Process(ctx context.Context, path string) (*resume.Resume, error) {
	doc, err := p.ProcessDocument(ctx, path)
	if err != nil {
		return nil, err
	}
	return doc.Resume, nil
}

// ProcessDocument is Process with the digest and cache status of the document.
// Concurrent calls for the same content share a single extraction. The shared work is not
// bound to any single caller's cancellation; a cancelled caller stops waiting and gets ctx.Err().
func (p *Processor) ProcessDocument(ctx context.Context, path string) (*Document, error) {
	digest, err := cache.Key(path)
	if err != nil {
		p.logger.Warn("could not hash document", zap.String(logger.FieldPath, path), zap.Error(err))
		return nil, ai.Extraction(path, err)
	}

	log := p.logger.With(logger.DocumentFields(path, digest)...)

	detached := context.WithoutCancel(ctx)
	ch := p.group.DoChan(digest, func() (any, error) {
		return p.process(detached, path, digest, log)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	doc := *res.Val.(*Document)
	doc.Path = path
	if res.Shared {
		log.Debug("joined an in-flight extraction")
	}

	return &doc, nil
}

func (p *Processor) process(ctx context.Context, path, digest string, log *zap.Logger) (*Document, error) {
	cached, found, err := p.store.Get(ctx, digest)
	switch {
	case errors.Is(err, cache.ErrCorruptEntry):
		log.Warn("cache entry is corrupt, it will be replaced", zap.Error(err))
	case err != nil:
		log.Warn("cache lookup failed, extracting again", zap.Error(err))
	}
	if found {
		log.Debug("cache hit")
		return &Document{Digest: digest, Resume: cached, FromCache: true}, nil
	}

	text := p.readText(path, log)
	if strings.TrimSpace(text) == "" {
		return nil, ai.Extraction(path, nil)
	}

	parsed, err := p.extractor.Extract(ctx, text)
	if err != nil {
		log.Warn("resume extraction failed", zap.Error(err))
		return nil, err
	}

	if err := p.store.Put(ctx, digest, parsed); err != nil {
		log.Warn("could not store extraction result", zap.Error(err))
	} else {
		log.Debug("extraction result cached")
	}

	return &Document{Digest: digest, Resume: parsed}, nil
}
