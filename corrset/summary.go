package corrset

import (
	"math"

	"correctionlib.dev/go/content"
)

// InputSummary collects the observations Summary makes about one
// declared input by walking the correction's content tree, mirroring
// schemav2.py's _SummaryInfo.
type InputSummary struct {
	Values    []string // observed Category string keys, in no particular order
	IntValues []int64  // observed Category int keys, in no particular order
	HasDefault bool
	Overflow   bool // true if every Binning/MultiBinning touching this input tolerates out-of-range values
	Transform  bool
	Min, Max   float64 // observed Binning/MultiBinning range; Min > Max if never binned
}

// Summary reports node-kind counts and per-input usage statistics for a
// correction, the data backing the CLI's `summary` subcommand and
// mirroring schemav2.py's Correction.summary().
type Summary struct {
	NodeCounts map[string]int
	Inputs     map[string]*InputSummary
}

func (c *Correction) Summary() Summary {
	s := Summary{
		NodeCounts: map[string]int{},
		Inputs:     map[string]*InputSummary{},
	}
	for _, v := range c.built.Inputs {
		s.Inputs[v.Name] = &InputSummary{Overflow: true, Min: math.Inf(1), Max: math.Inf(-1)}
	}
	names := make(map[int]string, len(c.built.Inputs))
	for i, v := range c.built.Inputs {
		names[i] = v.Name
	}
	summarizeNode(&s, names, c.built.Root)
	return s
}

func summarizeNode(s *Summary, names map[int]string, node content.Content) {
	switch n := node.(type) {
	case content.Constant:
		return
	case *content.Binning:
		s.NodeCounts["Binning"]++
		summarizeRange(s, names[n.InputSlot], &n.Edges, n.Flow.Mode != content.FlowError || n.Flow.Content != nil)
		for _, sub := range n.Content {
			summarizeNode(s, names, sub)
		}
		if n.Flow.Content != nil {
			summarizeNode(s, names, n.Flow.Content)
		}
	case *content.MultiBinning:
		s.NodeCounts["MultiBinning"]++
		overflowOK := n.Flow.Mode != content.FlowError || n.Flow.Content != nil
		for i, slot := range n.InputSlots {
			summarizeRange(s, names[slot], &n.Edges[i], overflowOK)
		}
		for _, sub := range n.Content {
			summarizeNode(s, names, sub)
		}
		if n.Flow.Content != nil {
			summarizeNode(s, names, n.Flow.Content)
		}
	case *content.Category:
		s.NodeCounts["Category"]++
		is := s.Inputs[names[n.InputSlot]]
		if n.KeyIsStr {
			for k := range n.StrKeys {
				is.Values = append(is.Values, k)
			}
		} else {
			for k := range n.IntKeys {
				is.IntValues = append(is.IntValues, k)
			}
		}
		is.HasDefault = is.HasDefault || n.Default != nil
		for _, sub := range n.StrKeys {
			summarizeNode(s, names, sub)
		}
		for _, sub := range n.IntKeys {
			summarizeNode(s, names, sub)
		}
		if n.Default != nil {
			summarizeNode(s, names, n.Default)
		}
	case *content.Transform:
		s.NodeCounts["Transform"]++
		s.Inputs[names[n.InputSlot]].Transform = true
		summarizeNode(s, names, n.Rule)
		summarizeNode(s, names, n.Content)
	case *content.Formula:
		s.NodeCounts["Formula"]++
	case *content.FormulaRef:
		s.NodeCounts["FormulaRef"]++
	case *content.HashPRNG:
		s.NodeCounts["HashPRNG"]++
	case *content.Switch:
		s.NodeCounts["Switch"]++
		for _, sel := range n.Selections {
			summarizeNode(s, names, sel.Content)
		}
		summarizeNode(s, names, n.Default)
	}
}

func summarizeRange(s *Summary, name string, edges *content.Edges, overflowOK bool) {
	is := s.Inputs[name]
	is.Overflow = is.Overflow && overflowOK
	low, high := edges.Bounds()
	if low < is.Min {
		is.Min = low
	}
	if high > is.Max {
		is.Max = high
	}
}
