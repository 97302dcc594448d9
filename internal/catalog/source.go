package catalog

import (
	"context"
	"fmt"
	"os"
)

// Source lists the catalog read model.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// FileSource serves the catalog from a YAML menu file. The file is re-read on
// every call so edits show up on the next cache refill.
type FileSource struct {
	path      string
	parser    *Parser
	validator *Validator
}

func NewFileSource(path string) *FileSource {
	return &FileSource{
		path:      path,
		parser:    NewParser(),
		validator: NewValidator(),
	}
}

func (s *FileSource) ListProducts(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	menu, err := s.parser.Parse(content)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(menu); err != nil {
		return nil, fmt.Errorf("invalid menu file: %w", err)
	}

	return menu.Products, nil
}
