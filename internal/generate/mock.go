package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rvielma/cultivar/pkg/domain"
)

// Mock is the dry-run generator: deterministic synthetic variants, no
// network. The same prompt always yields the same output.
type Mock struct{}

// NewMock creates a mock generator.
func NewMock() *Mock {
	return &Mock{}
}

// Generate implements ports.Generator.
func (m *Mock) Generate(_ context.Context, prompt *domain.GenerationPrompt) (*domain.GenerationResult, error) {
	n := prompt.Variants
	if n <= 0 {
		n = 1
	}
	variants := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		variants = append(variants, fmt.Sprintf("[mock %s v%d]", prompt.TargetKey, i))
	}

	raw, _ := json.Marshal(map[string]any{"variants": variants, "mock": true})
	req, _ := json.Marshal(map[string]any{"target": prompt.TargetKey, "variants": n, "mock": true})
	return &domain.GenerationResult{
		Variants: variants,
		Raw:      raw,
		Request:  req,
		Provider: "mock",
		Model:    "mock",
	}, nil
}
