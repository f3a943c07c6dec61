package corrset

import (
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/schema"
)

// CorrectionSet is a loaded, ready-to-evaluate collection of
// Corrections and CompoundCorrections, spec.md §4.7/C8.
type CorrectionSet struct {
	SchemaVersion int
	Description   string

	corrections map[string]*Correction
	compounds   map[string]*CompoundCorrection
	order       []string // correction names, in declaration order
}

// Load parses, validates, and builds a CorrectionSet from a JSON
// document (see schema.Load for the normalization and validation this
// delegates to).
func Load(data []byte, opts schema.Options) (*CorrectionSet, error) {
	loaded, err := schema.Load(data, opts)
	if err != nil {
		return nil, err
	}
	return FromSchema(loaded)
}

// FromSchema builds a CorrectionSet from an already-loaded and
// validated schema.CorrectionSet.
func FromSchema(loaded *schema.CorrectionSet) (*CorrectionSet, error) {
	cs := &CorrectionSet{
		SchemaVersion: loaded.SchemaVersion,
		Description:   loaded.Description,
		corrections:   make(map[string]*Correction, len(loaded.Corrections)),
		compounds:     make(map[string]*CompoundCorrection, len(loaded.CompoundCorrections)),
		order:         make([]string, len(loaded.Corrections)),
	}
	for i, built := range loaded.Corrections {
		c := newCorrection(built)
		cs.corrections[built.Name] = c
		cs.order[i] = built.Name
	}
	for i := range loaded.CompoundCorrections {
		def := &loaded.CompoundCorrections[i]
		stack := make([]*Correction, len(def.Stack))
		for j, name := range def.Stack {
			comp, ok := cs.corrections[name]
			if !ok {
				return nil, correrrors.New(correrrors.ReferenceError,
					"compound correction %q stack references unknown correction %q", def.Name, name)
			}
			stack[j] = comp
		}
		cs.compounds[def.Name] = &CompoundCorrection{def: def, stack: stack}
	}
	return cs, nil
}

// Correction returns the named Correction, or false if not present.
func (cs *CorrectionSet) Correction(name string) (*Correction, bool) {
	c, ok := cs.corrections[name]
	return c, ok
}

// CompoundCorrection returns the named CompoundCorrection, or false if
// not present.
func (cs *CorrectionSet) CompoundCorrection(name string) (*CompoundCorrection, bool) {
	c, ok := cs.compounds[name]
	return c, ok
}

// Names returns the set's correction names in declaration order.
func (cs *CorrectionSet) Names() []string {
	out := make([]string, len(cs.order))
	copy(out, cs.order)
	return out
}
