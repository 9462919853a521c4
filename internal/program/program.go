// Package program reads scalar expressions from YAML files and builds them
// into computation graphs.
//
// A program lists named nodes in evaluation order. A node is either a leaf
// with a value or an operation over earlier nodes:
//
//	root: k
//	nodes:
//	  - {name: x, value: 3}
//	  - {name: y, value: 2}
//	  - {name: k, op: mul, args: [x, y]}
//	  - {name: m, op: pow, args: [x], exponent: 2}
package program

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Errors reported by Parse.
var (
	ErrInvalidProgram = errors.New("invalid program")
	ErrUnknownName    = errors.New("unknown node name")
	ErrDuplicateName  = errors.New("duplicate node name")
)

// Program is a parsed YAML graph program.
type Program struct {
	Root  string      `yaml:"root" validate:"required,ident"`
	Nodes []Statement `yaml:"nodes" validate:"required,min=1,dive"`
}

// Statement defines one named node.
type Statement struct {
	Name     string   `yaml:"name" validate:"required,ident"`
	Value    *float64 `yaml:"value,omitempty"`
	Op       string   `yaml:"op,omitempty" validate:"omitempty,oneof=add mul pow relu"`
	Args     []string `yaml:"args,omitempty" validate:"max=2,dive,required"`
	Exponent *float64 `yaml:"exponent,omitempty"`
}

var (
	validate  *validator.Validate
	identExpr = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return identExpr.MatchString(fl.Field().String())
	})
}

// Parse decodes and validates a program. Unknown YAML fields and any document
// after the first are rejected.
func Parse(r io.Reader) (*Program, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Program
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidProgram)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: one document per program", ErrInvalidProgram)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseFile reads and parses the program at path.
func ParseFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate checks field constraints, then the semantic rules: each name is
// defined once, arguments refer to earlier names, arity and exponent match
// the op, and the root exists. All semantic violations are reported.
func (p *Program) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}

	var errs error
	defined := make(map[string]bool, len(p.Nodes))
	for i, st := range p.Nodes {
		if err := st.check(defined); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("node %d (%s): %w", i, st.Name, err))
		}
		if defined[st.Name] {
			errs = multierr.Append(errs, fmt.Errorf("node %d: %w: %s", i, ErrDuplicateName, st.Name))
		}
		defined[st.Name] = true
	}
	if !defined[p.Root] {
		errs = multierr.Append(errs, fmt.Errorf("root: %w: %s", ErrUnknownName, p.Root))
	}
	return errs
}

func (st Statement) check(defined map[string]bool) error {
	kind, err := st.Kind()
	if err != nil {
		return err
	}

	var errs error
	if kind == ops.None {
		if st.Value == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: leaf needs a value", ErrInvalidProgram))
		}
		if len(st.Args) > 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: leaf takes no args", ErrInvalidProgram))
		}
	} else {
		if st.Value != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: value is only allowed on leaves", ErrInvalidProgram))
		}
		if err := st.Rule().Check(len(st.Args)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %w", ErrInvalidProgram, err))
		}
	}

	if (kind == ops.Pow) != (st.Exponent != nil) {
		errs = multierr.Append(errs, fmt.Errorf("%w: exponent is required for pow and only for pow", ErrInvalidProgram))
	}

	for _, arg := range st.Args {
		if !defined[arg] {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrUnknownName, arg))
		}
	}
	return errs
}

// Kind returns the statement's operation, ops.None for leaves.
func (st Statement) Kind() (ops.Kind, error) {
	return ops.ParseKind(st.Op)
}

// Rule returns the derivative rule the statement builds.
func (st Statement) Rule() ops.Rule {
	kind, _ := st.Kind()
	r := ops.Rule{Kind: kind}
	if st.Exponent != nil {
		r.Exponent = *st.Exponent
	}
	return r
}
