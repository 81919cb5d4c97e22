package hier

import (
	"regexp"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
	"github.com/cloudcalvin/gdsutil/pkg/gds"
)

// Options controls which references a walk follows.
type Options struct {
	// MaxDepth is the number of reference levels below the root structs to
	// visit. Zero visits the root structs only.
	MaxDepth int

	// Patterns are regular expressions matched against reference target
	// names. A reference matches if any pattern matches; an empty list
	// matches every reference.
	Patterns []string

	// DetectCycles rejects libraries with a reference cycle reachable from
	// the root structs before anything is modified.
	DetectCycles bool
}

// visitor receives the elements of each struct the first time it is visited.
type visitor interface {
	// element handles anything but a struct reference.
	element(s *gds.Struct, el gds.Element) error
	// reference handles a reference whose target matches the patterns.
	reference(s *gds.Struct, ref *gds.StructRef) error
}

type visit struct {
	depth   int
	targets []string
}

type walker struct {
	lib      *gds.Library
	patterns []*regexp.Regexp
	v        visitor
	seen     map[*gds.Struct]*visit
}

// walk validates opts and runs v over the hierarchy below root.
func walk(lib *gds.Library, root string, opts Options, v visitor) error {
	if lib == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil library")
	}
	if opts.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth %d is negative", opts.MaxDepth)
	}
	patterns, err := errors.CompilePatterns(opts.Patterns)
	if err != nil {
		return err
	}

	if opts.DetectCycles {
		roots := lib.StructsWithPrefix(root)
		names := make([]string, len(roots))
		for i, s := range roots {
			names[i] = s.Name
		}
		if err := gds.NewGraph(lib).DetectCycles(names...); err != nil {
			return err
		}
	}

	w := &walker{
		lib:      lib,
		patterns: patterns,
		v:        v,
		seen:     make(map[*gds.Struct]*visit),
	}
	return w.prefix(root, opts.MaxDepth)
}

func (w *walker) matches(name string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	for _, re := range w.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// prefix visits every struct whose name starts with prefix.
func (w *walker) prefix(prefix string, depth int) error {
	structs := w.lib.StructsWithPrefix(prefix)
	if len(structs) == 0 {
		return errors.New(errors.ErrCodeUnresolvedReference, "no struct matches %q", prefix).For(prefix)
	}
	for _, s := range structs {
		if err := w.visit(s, depth); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit(s *gds.Struct, depth int) error {
	v, ok := w.seen[s]
	if ok && v.depth >= depth {
		return nil
	}
	if !ok {
		v = &visit{}
		w.seen[s] = v
		for _, el := range s.Elements {
			ref, isRef := el.(*gds.StructRef)
			if !isRef {
				if err := w.v.element(s, el); err != nil {
					return err
				}
				continue
			}
			if !w.matches(ref.Name) {
				continue
			}
			// Captured before the visitor runs, which may rename the reference.
			v.targets = append(v.targets, ref.Name)
			if err := w.v.reference(s, ref); err != nil {
				return err
			}
		}
	}
	v.depth = depth

	if depth == 0 {
		return nil
	}
	for _, t := range v.targets {
		if err := w.prefix(t, depth-1); err != nil {
			return err
		}
	}
	return nil
}
