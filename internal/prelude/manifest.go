// Package prelude installs the standard types, coercions and overloads
// into a fresh session from a YAML manifest.
package prelude

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zsakowitz/rewrites-sub000/internal/diagnostics"
)

//go:embed prelude.yaml
var defaultManifest []byte

// DefaultManifestPath names the embedded manifest in diagnostics.
const DefaultManifestPath = "<prelude>"

// Manifest is the decoded prelude file.
type Manifest struct {
	Types     []TypeSpec     `yaml:"types,omitempty"`
	Coercions []CoercionSpec `yaml:"coercions,omitempty"`
	Functions []FunctionSpec `yaml:"functions,omitempty"`
}

// TypeSpec declares an extension type. Ctors map a Sym tag to the payload
// type that tag carries.
type TypeSpec struct {
	Name     string               `yaml:"name"`
	Generics []GenericSpec        `yaml:"generics,omitempty"`
	Ctors    map[string]TypeExpr  `yaml:"ctors,omitempty"`
	Pos      diagnostics.Position `yaml:"-"`
}

// GenericSpec declares a generic parameter. The short form is just the
// name: "T". Const parameters name their type: {name: N, const: int}.
type GenericSpec struct {
	Name     string `yaml:"name"`
	Variance string `yaml:"variance,omitempty"`
	Const    string `yaml:"const,omitempty"`
}

func (g *GenericSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		g.Name = value.Value
		return nil
	}
	type plain GenericSpec
	return value.Decode((*plain)(g))
}

type CoercionSpec struct {
	From TypeExpr `yaml:"from"`
	Into TypeExpr `yaml:"into"`
	Impl string   `yaml:"impl"`
}

type FunctionSpec struct {
	Name     string           `yaml:"name"`
	Generics []GenericSpec    `yaml:"generics,omitempty"`
	Args     []TypeExpr       `yaml:"args"`
	Ret      TypeExpr         `yaml:"ret"`
	Where    []ConstraintSpec `yaml:"where,omitempty"`
	Impl     string           `yaml:"impl"`
}

type ConstraintSpec struct {
	Name string     `yaml:"name"`
	Args []TypeExpr `yaml:"args"`
	Ret  TypeExpr   `yaml:"ret"`
}

// TypeExpr is a type written in the manifest, e.g. "[T; N]" or "?int". It
// remembers where it was written so errors can point at it.
type TypeExpr struct {
	Src    string
	Line   int
	Column int
}

func (t *TypeExpr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: type must be a string", value.Line)
	}
	t.Src = value.Value
	t.Line = value.Line
	t.Column = value.Column
	return nil
}

// ParseManifest decodes a manifest. The path is used only for error
// messages.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrP001, diagnostics.Position{File: path}, err.Error())
	}
	var m Manifest
	if err := root.Decode(&m); err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrP001, diagnostics.Position{File: path}, err.Error())
	}
	recordTypePositions(&root, &m, path)
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prelude %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// DefaultManifest decodes the embedded prelude.
func DefaultManifest() (*Manifest, error) {
	return ParseManifest(defaultManifest, DefaultManifestPath)
}

// recordTypePositions copies the line of each "types" entry from the node
// tree, which struct decoding drops.
func recordTypePositions(root *yaml.Node, m *Manifest, path string) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return
	}
	doc := root.Content[0]
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "types" {
			continue
		}
		for j, item := range doc.Content[i+1].Content {
			if j < len(m.Types) {
				m.Types[j].Pos = diagnostics.Position{File: path, Line: item.Line, Column: item.Column}
			}
		}
	}
}

func (m *Manifest) validate(path string) error {
	bad := func(format string, args ...any) error {
		return diagnostics.Errorf(diagnostics.ErrP001, diagnostics.Position{File: path}, format, args...)
	}
	for _, t := range m.Types {
		if t.Name == "" {
			return bad("type without a name")
		}
		for _, g := range t.Generics {
			if err := g.validate(); err != nil {
				return bad("type %s: %v", t.Name, err)
			}
		}
	}
	for _, c := range m.Coercions {
		if c.Impl == "" {
			return bad("coercion %s -> %s has no impl", c.From.Src, c.Into.Src)
		}
	}
	for _, f := range m.Functions {
		if f.Name == "" {
			return bad("function without a name")
		}
		if f.Ret.Src == "" {
			return bad("function %s has no return type", f.Name)
		}
		for _, g := range f.Generics {
			if err := g.validate(); err != nil {
				return bad("function %s: %v", f.Name, err)
			}
		}
	}
	return nil
}

func (g GenericSpec) validate() error {
	if g.Name == "" {
		return fmt.Errorf("generic parameter without a name")
	}
	switch g.Variance {
	case "", "invariant", "coercible":
	default:
		return fmt.Errorf("%s: variance must be invariant or coercible, got %q", g.Name, g.Variance)
	}
	return nil
}
