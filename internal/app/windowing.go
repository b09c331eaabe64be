package app

import (
	"fmt"

	"doc-windows/internal/chunker"
	"doc-windows/internal/config"
	"doc-windows/internal/ingest"
	"doc-windows/internal/sections"
	"doc-windows/internal/segment"
	"doc-windows/internal/tokens"
)

// BuildBuilder assembles the window builder from the configured segmenter,
// tokenizer and budget.
func BuildBuilder(cfg config.Config) (*chunker.Builder, error) {
	seg, err := segment.NewEnglish()
	if err != nil {
		return nil, err
	}
	counter, err := buildCounter(cfg)
	if err != nil {
		return nil, err
	}
	return chunker.NewBuilder(
		segment.NewBounded(seg, cfg.SegmenterMaxSpan),
		counter,
		chunker.Options{WindowSize: cfg.WindowSize, Stride: cfg.WindowStride},
	)
}

func buildCounter(cfg config.Config) (tokens.Counter, error) {
	switch cfg.Tokenizer {
	case "tiktoken":
		return tokens.NewTiktoken(cfg.TokenEncoding)
	case "words":
		return tokens.Words{}, nil
	default:
		return nil, fmt.Errorf("invalid TOKENIZER: %s (valid options: tiktoken, words)", cfg.Tokenizer)
	}
}

// BuildRunner wires the ingestion runner over the shared dependencies.
func BuildRunner(deps Deps) (*ingest.Runner, error) {
	b, err := BuildBuilder(deps.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize window builder: %w", err)
	}
	var titler sections.Titler
	if deps.Config.SectionTitles {
		titler = deps.LLM
	}
	return &ingest.Runner{
		Blob:            deps.Blob,
		Store:           deps.Store,
		Builder:         b,
		Progress:        deps.Progress,
		Titler:          titler,
		MinSectionBytes: deps.Config.MinSectionBytes,
		WriteManifest:   deps.Config.WriteManifest,
		Log:             deps.Log,
	}, nil
}
