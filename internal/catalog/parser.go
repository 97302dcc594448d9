// Package catalog holds the restaurant product read model: menu file parsing,
// validation, variant resolution and display pricing.
package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MenuFile is the on-disk menu used when the catalog is served without a backend.
type MenuFile struct {
	Products []Product `yaml:"products"`
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(content []byte) (*MenuFile, error) {
	var menu MenuFile
	if err := yaml.Unmarshal(content, &menu); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range menu.Products {
		if menu.Products[i].Status == "" {
			menu.Products[i].Status = StatusAvailable
		}
	}

	return &menu, nil
}

func (p *Parser) ParseFromString(content string) (*MenuFile, error) {
	return p.Parse([]byte(content))
}
