package gds

import (
	"slices"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// Edge is a reference from one struct to another, with the number of
// StructRef and ArrayRef elements that make it.
type Edge struct {
	From  string
	To    string
	Count int
}

// Graph is the struct reference graph of a library.
type Graph struct {
	names    []string
	defined  map[string]bool
	outgoing map[string][]string
	counts   map[[2]string]int
}

// NewGraph builds the reference graph of lib. Referenced names that no
// struct defines still appear as nodes; see Undefined.
func NewGraph(lib *Library) *Graph {
	g := &Graph{
		defined:  make(map[string]bool),
		outgoing: make(map[string][]string),
		counts:   make(map[[2]string]int),
	}
	add := func(name string) {
		if _, seen := g.outgoing[name]; !seen {
			g.outgoing[name] = nil
			g.names = append(g.names, name)
		}
	}
	for _, s := range lib.Structs {
		add(s.Name)
		g.defined[s.Name] = true
	}
	for _, s := range lib.Structs {
		for _, el := range s.Elements {
			var target string
			switch e := el.(type) {
			case *StructRef:
				target = e.Name
			case *ArrayRef:
				target = e.Name
			default:
				continue
			}
			add(target)
			key := [2]string{s.Name, target}
			if g.counts[key] == 0 {
				g.outgoing[s.Name] = append(g.outgoing[s.Name], target)
			}
			g.counts[key]++
		}
	}
	return g
}

// Nodes returns every struct name, defined or referenced, in library order.
func (g *Graph) Nodes() []string { return g.names }

// Children returns the distinct structs referenced by name.
func (g *Graph) Children(name string) []string { return g.outgoing[name] }

// Edges returns every distinct reference in library order.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.names {
		for _, to := range g.outgoing[from] {
			out = append(out, Edge{From: from, To: to, Count: g.counts[[2]string{from, to}]})
		}
	}
	return out
}

// Undefined returns referenced names that no struct defines.
func (g *Graph) Undefined() []string {
	var out []string
	for _, n := range g.names {
		if !g.defined[n] {
			out = append(out, n)
		}
	}
	return out
}

// Roots returns the defined structs that no other struct references.
func (g *Graph) Roots() []string {
	referenced := make(map[string]bool)
	for _, children := range g.outgoing {
		for _, c := range children {
			referenced[c] = true
		}
	}
	var out []string
	for _, n := range g.names {
		if g.defined[n] && !referenced[n] {
			out = append(out, n)
		}
	}
	return out
}

// Reachable returns the structs reachable from the given roots, roots included.
func (g *Graph) Reachable(roots ...string) []string {
	seen := make(map[string]bool)
	var out []string
	var visit func(string)
	visit = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, c := range g.outgoing[n] {
			visit(c)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}

// FindCycle returns one reference cycle reachable from the given roots (all
// structs when none are given) as a closed name sequence, or nil.
func (g *Graph) FindCycle(roots ...string) []string {
	const (
		white = iota
		gray
		black
	)
	if len(roots) == 0 {
		roots = g.names
	}

	color := make(map[string]int, len(g.names))
	var stack, cycle []string

	var dfs func(n string) bool
	dfs = func(n string) bool {
		color[n] = gray
		stack = append(stack, n)
		for _, c := range g.outgoing[n] {
			switch color[c] {
			case white:
				if dfs(c) {
					return true
				}
			case gray:
				i := slices.Index(stack, c)
				cycle = append(slices.Clone(stack[i:]), c)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return false
	}

	for _, r := range roots {
		if color[r] == white && dfs(r) {
			return cycle
		}
	}
	return nil
}

// DetectCycles returns an ErrCodeReferenceCycle error naming the first struct
// of a reachable cycle, or nil.
func (g *Graph) DetectCycles(roots ...string) error {
	if c := g.FindCycle(roots...); c != nil {
		return errors.New(errors.ErrCodeReferenceCycle, "reference cycle: %v", c).For(c[0])
	}
	return nil
}
