// Package crcopts holds the validated, normalised CRC model — the
// Options record every other crcgen package is built around. It mirrors
// the parameter set of the original pycrc project's opt.Options class,
// generalised from pycrc's single width-less encoding into typed,
// independently-nilable fields so "undefined" (unknown at generate
// time) and "zero" (a concrete value of 0) are never confused.
package crcopts

import (
	"path/filepath"
	"strings"

	"github.com/mbsulliv/crcgen/internal/crcerr"
)

// Algorithm selects one of the three reference CRC algorithms.
type Algorithm int

const (
	BitByBit Algorithm = iota
	BitByBitFast
	TableDriven
)

func (a Algorithm) String() string {
	switch a {
	case BitByBit:
		return "bit-by-bit"
	case BitByBitFast:
		return "bit-by-bit-fast"
	case TableDriven:
		return "table-driven"
	default:
		return "UNDEFINED"
	}
}

// CStd selects the target C dialect for generated code.
type CStd int

const (
	C99 CStd = iota
	C89
)

func (c CStd) String() string {
	if c == C89 {
		return "C89"
	}
	return "C99"
}

// Action selects what the Driver does with a fully-specified Options.
type Action int

const (
	ActionCompute Action = iota
	ActionGenerateH
	ActionGenerateC
	ActionGenerateCMain
	ActionGenerateTable
)

// MaxWidth is the widest CRC register crcgen supports. The original
// pycrc project allows arbitrary-precision widths; crcgen bounds width
// to the widest native C integer type it emits (uint_fast64_t /
// unsigned long long), same ceiling the teacher package hard-coded via
// its uint16 register.
const MaxWidth = 64

// Options is the normalised CrcModel. Every optional CRC parameter is
// represented as a pointer: nil means "Undefined", a non-nil pointer to
// zero means the concrete value 0. Algorithm, TableIdxWidth, SliceBy,
// CStd and Action are never Undefined — they always have a default.
type Options struct {
	Width      *uint
	Poly       *uint64
	ReflectIn  *bool
	XorIn      *uint64
	ReflectOut *bool
	XorOut     *uint64

	Algorithm     Algorithm
	TableIdxWidth uint
	SliceBy       uint
	CStd          CStd
	CRCType       string
	SymbolPrefix  string
	IncludeFiles  []string
	OutputFile    string
	Action        Action
}

// Default returns an Options with pycrc's defaults: table-driven
// algorithm, a byte-wide table index, no slicing, C99, the "crc_"
// symbol prefix. Every CRC parameter starts Undefined.
func Default() Options {
	return Options{
		Algorithm:     TableDriven,
		TableIdxWidth: 8,
		SliceBy:       1,
		CStd:          C99,
		SymbolPrefix:  "crc_",
	}
}

func u64p(v uint64) *uint64 { return &v }
func up(v uint) *uint       { return &v }
func bp(v bool) *bool       { return &v }

// WithWidth, WithPoly, ... return a copy of Options with the given
// field set to a concrete (non-Undefined) value. They exist so model
// catalogue entries (internal/models) and tests can be built as value
// literals without address-of noise at every call site.
func (o Options) WithWidth(w uint) Options      { o.Width = up(w); return o }
func (o Options) WithPoly(p uint64) Options     { o.Poly = u64p(p); return o }
func (o Options) WithReflectIn(b bool) Options  { o.ReflectIn = bp(b); return o }
func (o Options) WithXorIn(x uint64) Options    { o.XorIn = u64p(x); return o }
func (o Options) WithReflectOut(b bool) Options { o.ReflectOut = bp(b); return o }
func (o Options) WithXorOut(x uint64) Options   { o.XorOut = u64p(x); return o }

// UndefinedCRCParameters reports whether any of the six CRC parameters
// is Undefined. It drives most of the Code Generator's specialisation
// decisions (spec §4.4): a cfg_t struct is emitted iff this is true.
func (o Options) UndefinedCRCParameters() bool {
	return o.Width == nil || o.Poly == nil || o.ReflectIn == nil ||
		o.XorIn == nil || o.ReflectOut == nil || o.XorOut == nil
}

// Mask returns (1<<width)-1, or (0, false) if width is Undefined.
func (o Options) Mask() (uint64, bool) {
	if o.Width == nil {
		return 0, false
	}
	return mask(*o.Width), true
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// MsbMask returns 1<<(width-1), or (0, false) if width is Undefined.
func (o Options) MsbMask() (uint64, bool) {
	if o.Width == nil {
		return 0, false
	}
	return uint64(1) << (*o.Width - 1), true
}

// TableWidth returns 1<<TableIdxWidth, the number of entries in one
// CRC lookup table.
func (o Options) TableWidth() uint {
	return 1 << o.TableIdxWidth
}

// CrcShift returns the left-alignment shift applied to the table-driven
// working register when width < 8 (spec §3), or (0, true) when no shift
// applies, or (0, false) when width is Undefined and the algorithm is
// table-driven (the shift can't be known yet).
func (o Options) CrcShift() (uint, bool) {
	if o.Algorithm != TableDriven {
		return 0, true
	}
	if o.Width == nil {
		return 0, false
	}
	if *o.Width < 8 {
		return 8 - *o.Width, true
	}
	return 0, true
}

// Validate checks the invariants of spec §3/§7. For ActionCompute every
// CRC parameter must be concrete; for generate actions any may be
// Undefined. Width, when known, must be in [1, MaxWidth]; poly/xor_in/
// xor_out, when known, must fit within the width's mask.
func (o Options) Validate() error {
	if o.Action == ActionCompute && o.UndefinedCRCParameters() {
		return crcerr.Paramf("all CRC parameters are required in compute mode")
	}
	if o.Width != nil {
		if *o.Width < 1 || *o.Width > MaxWidth {
			return crcerr.Paramf("width must be between 1 and %d, got %d", MaxWidth, *o.Width)
		}
		m := mask(*o.Width)
		if o.Poly != nil && *o.Poly > m {
			return crcerr.Paramf("poly 0x%x exceeds the %d-bit mask", *o.Poly, *o.Width)
		}
		if o.XorIn != nil && *o.XorIn > m {
			return crcerr.Paramf("xor-in 0x%x exceeds the %d-bit mask", *o.XorIn, *o.Width)
		}
		if o.XorOut != nil && *o.XorOut > m {
			return crcerr.Paramf("xor-out 0x%x exceeds the %d-bit mask", *o.XorOut, *o.Width)
		}
	}
	switch o.TableIdxWidth {
	case 1, 2, 4, 8:
	default:
		return crcerr.Paramf("table-idx-width must be one of {1,2,4,8}, got %d", o.TableIdxWidth)
	}
	switch o.SliceBy {
	case 1, 4, 8, 16:
	default:
		return crcerr.Paramf("slice-by must be one of {1,4,8,16}, got %d", o.SliceBy)
	}
	if o.SliceBy > 1 {
		if o.Algorithm != TableDriven {
			return crcerr.Paramf("slice-by > 1 requires the table-driven algorithm")
		}
		if o.TableIdxWidth != 8 {
			return crcerr.Paramf("slice-by > 1 requires table-idx-width = 8")
		}
		if o.ReflectIn == nil {
			return crcerr.Paramf("slice-by > 1 requires reflect-in to be specified")
		}
	}
	return nil
}

// HeaderFilename returns the basename of the header that would be
// generated alongside OutputFile: foo.c -> foo.h, anything else gets
// ".h" appended. An empty OutputFile yields the stdout placeholder name
// "crcgen_stdout.h".
func (o Options) HeaderFilename() string {
	if o.OutputFile == "" {
		return "crcgen_stdout.h"
	}
	base := filepath.Base(o.OutputFile)
	if strings.HasSuffix(base, ".c") {
		return strings.TrimSuffix(base, ".c") + ".h"
	}
	return base + ".h"
}
