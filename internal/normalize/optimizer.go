package normalize

import (
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

// Optimizer rewrites raw vector markup into a smaller equivalent.
type Optimizer interface {
	Optimize(raw []byte) ([]byte, error)
}

// OptimizerFunc adapts a function to Optimizer.
type OptimizerFunc func(raw []byte) ([]byte, error)

// Optimize calls f(raw).
func (f OptimizerFunc) Optimize(raw []byte) ([]byte, error) { return f(raw) }

// Identity returns markup unchanged.
var Identity Optimizer = OptimizerFunc(func(raw []byte) ([]byte, error) { return raw, nil })

// MinifyOptimizer minifies SVG with tdewolff/minify.
type MinifyOptimizer struct {
	m *minify.M
}

// NewMinifyOptimizer creates the default optimizer.
func NewMinifyOptimizer() *MinifyOptimizer {
	m := minify.New()
	m.AddFunc(svgMediaType, svg.Minify)
	return &MinifyOptimizer{m: m}
}

// Optimize minifies raw. The minifier repairs broken markup silently, so raw
// must pass CheckWellFormed first.
func (o *MinifyOptimizer) Optimize(raw []byte) ([]byte, error) {
	if err := CheckWellFormed(raw); err != nil {
		return nil, err
	}
	return o.m.Bytes(svgMediaType, raw)
}
