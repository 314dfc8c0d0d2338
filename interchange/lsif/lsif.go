// Package lsif reads and writes the L-System Interchange Format, a YAML
// rendition of a derivation and, optionally, the segment tree a turtle built
// from it. A stream holds one document per derivation.
package lsif

import (
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	lsystem "github.com/lakinwecker/ll-cool-tree"
	"github.com/lakinwecker/ll-cool-tree/turtle"
)

type Format struct {
	Name       string         `yaml:"name,omitempty"`
	Iterations uint           `yaml:"iterations"`
	Seed       int64          `yaml:"seed"`
	Models     map[string]int `yaml:"models,omitempty"`
	Derivation []Module       `yaml:"derivation"`
	Tree       *Segment       `yaml:"tree,omitempty"`
}

type Module struct {
	Symbol     string    `yaml:"symbol"`
	Parameters []float64 `yaml:"parameters,flow,omitempty"`
}

// Segment is a node of the turtle tree. Orientation is a quaternion in
// (w, x, y, z) order.
type Segment struct {
	Position    [3]float64 `yaml:"position,flow"`
	Orientation [4]float64 `yaml:"orientation,flow"`
	Width       float64    `yaml:"width"`
	Length      float64    `yaml:"length"`
	Children    []*Segment `yaml:"children,omitempty"`
}

// New describes a derivation of params drawn with seed.
func New(name string, params *lsystem.Parameters, seed int64, derivation []lsystem.Module) *Format {
	f := &Format{
		Name:       name,
		Seed:       seed,
		Derivation: make([]Module, len(derivation)),
	}
	if params != nil {
		f.Iterations = params.Iterations
		if len(params.Models) > 0 {
			f.Models = make(map[string]int, len(params.Models))
			for sym, idx := range params.Models {
				f.Models[sym.String()] = idx
			}
		}
	}
	for i, m := range derivation {
		f.Derivation[i] = Module{
			Symbol:     m.Symbol.String(),
			Parameters: m.Parameters,
		}
	}
	return f
}

// SetTree attaches the tree rooted at root.
func (f *Format) SetTree(root *turtle.State) {
	f.Tree = segment(root)
}

func segment(s *turtle.State) *Segment {
	if s == nil {
		return nil
	}
	seg := &Segment{
		Position:    [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
		Orientation: [4]float64{s.Rest.W, s.Rest.X, s.Rest.Y, s.Rest.Z},
		Width:       s.Width,
		Length:      s.Length,
	}
	if len(s.Children) > 0 {
		seg.Children = make([]*Segment, len(s.Children))
		for i, c := range s.Children {
			seg.Children[i] = segment(c)
		}
	}
	return seg
}

// Import returns the derivation as modules.
func (f *Format) Import() ([]lsystem.Module, error) {
	out := make([]lsystem.Module, len(f.Derivation))
	for i, m := range f.Derivation {
		r, size := utf8.DecodeRuneInString(m.Symbol)
		if r == utf8.RuneError || size != len(m.Symbol) {
			return nil, errors.Errorf("derivation[%d]: symbol %q is not a single character", i, m.Symbol)
		}
		out[i] = lsystem.Module{
			Symbol:     lsystem.Symbol(r),
			Parameters: append([]float64(nil), m.Parameters...),
		}
	}
	return out, nil
}

type Encoder struct {
	yamlEncoder *yaml.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &Encoder{yamlEncoder: enc}
}

// Encode writes f as the next document of the stream.
func (enc *Encoder) Encode(f *Format) error {
	return errors.Wrap(enc.yamlEncoder.Encode(f), "encoding lsif")
}

// Close flushes the stream.
func (enc *Encoder) Close() error {
	return enc.yamlEncoder.Close()
}

type Decoder struct {
	yamlDecoder *yaml.Decoder
}

func NewDecoder(in io.Reader) *Decoder {
	return &Decoder{
		yamlDecoder: yaml.NewDecoder(in),
	}
}

// Decode reads the next document. It returns io.EOF once the stream is done.
func (dec *Decoder) Decode() (*Format, error) {
	format := &Format{}
	if err := dec.yamlDecoder.Decode(format); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, errors.Wrap(err, "decoding lsif")
	}
	return format, nil
}
