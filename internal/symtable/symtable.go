// Package symtable renders an Options value into the named strings the
// Code Generator splices into emitted C source, generalising the
// original tool's SymbolTable class (every symbol is a public field
// computed once at construction, not re-derived at template-expansion
// time).
//
// Each CRC parameter exposes two families of symbol: crc_* is the
// pretty-printed literal value (meaningful only when the parameter is
// concrete), and cfg_* is either that same literal, or — when the
// parameter is Undefined — a reference into the runtime cfg_t
// configuration record (e.g. "cfg->poly"). The Code Generator takes the
// CRC parameters it emits into C expressions from the cfg_* family; it is
// the one family that is always safe to emit regardless of how many
// parameters are fixed at generate time.
package symtable

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mbsulliv/crcgen/internal/crcengine"
	"github.com/mbsulliv/crcgen/internal/crcopts"
)

// SymbolTable is immutable after construction; CRCTableInit is the one
// expensive derived field and is computed lazily and memoized.
type SymbolTable struct {
	opt crcopts.Options

	Filename          string
	HeaderFilename    string
	HeaderProtection  string
	HeaderGuardSuffix string

	CrcAlgorithm    string
	CrcWidth        string
	CrcPoly         string
	CrcReflectIn    string
	CrcXorIn        string
	CrcReflectOut   string
	CrcXorOut       string
	CrcSliceBy      string
	CrcTableIdxWidth string
	CrcTableWidth   string
	CrcTableMask    string
	CrcMask         string
	CrcMsbMask      string
	CrcShift        string

	CfgWidth          string
	CfgPoly           string
	CfgReflectIn      string
	CfgXorIn          string
	CfgReflectOut     string
	CfgXorOut         string
	CfgTableIdxWidth  string
	CfgTableWidth     string
	CfgMask           string
	CfgMsbMask        string
	CfgShift          string
	CfgPolyShifted    string
	CfgMaskShifted    string
	CfgMsbMaskShifted string

	CBool  string
	CTrue  string
	CFalse string

	UnderlyingCRCType string
	CrcT              string
	CfgT              string

	CrcReflectFunction   string
	CrcTableGenFunction  string
	CrcInitFunction      string
	CrcUpdateFunction    string
	CrcFinalizeFunction  string

	CrcInitValue string

	tblShift     *uint
	tableInit    string
	tableInitSet bool
	once         sync.Once
}

// New builds a SymbolTable for o. It never errors: every field degrades
// to "Undefined" or a cfg-> runtime reference rather than failing, since
// generate-mode Options frequently leave parameters unset by design.
func New(o crcopts.Options) *SymbolTable {
	s := &SymbolTable{opt: o}
	s.tblShift = tableShift(o)

	s.Filename = prettyFilename(o.OutputFile)
	s.HeaderFilename = o.HeaderFilename()
	s.HeaderProtection = headerProtection(o.OutputFile)

	s.CrcAlgorithm = o.Algorithm.String()
	s.CrcWidth = prettyUint(o.Width)
	s.CrcPoly = prettyHex(o.Poly, o.Width)
	s.CrcReflectIn = prettyBool(o.ReflectIn)
	s.CrcXorIn = prettyHex(o.XorIn, o.Width)
	s.CrcReflectOut = prettyBool(o.ReflectOut)
	s.CrcXorOut = prettyHex(o.XorOut, o.Width)
	s.CrcSliceBy = fmt.Sprintf("%d", o.SliceBy)
	s.CrcTableIdxWidth = fmt.Sprintf("%d", o.TableIdxWidth)
	s.CrcTableWidth = fmt.Sprintf("%d", o.TableWidth())
	tblMask := o.TableWidth() - 1
	s.CrcTableMask = prettyHexUint(uint64(tblMask), 8)
	if m, ok := o.Mask(); ok {
		s.CrcMask = prettyHexUint(m, widthOrZero(o.Width))
	} else {
		s.CrcMask = "Undefined"
	}
	if m, ok := o.MsbMask(); ok {
		s.CrcMsbMask = prettyHexUint(m, widthOrZero(o.Width))
	} else {
		s.CrcMsbMask = "Undefined"
	}
	s.CrcShift = prettyUintPtr(s.tblShift)

	s.CfgWidth = cfgOrLiteral(o.Width != nil, s.CrcWidth, "cfg->width")
	s.CfgPoly = cfgOrLiteral(o.Poly != nil, s.CrcPoly, "cfg->poly")
	s.CfgReflectIn = cfgOrLiteral(o.ReflectIn != nil, s.CrcReflectIn, "cfg->reflect_in")
	s.CfgXorIn = cfgOrLiteral(o.XorIn != nil, s.CrcXorIn, "cfg->xor_in")
	s.CfgReflectOut = cfgOrLiteral(o.ReflectOut != nil, s.CrcReflectOut, "cfg->reflect_out")
	s.CfgXorOut = cfgOrLiteral(o.XorOut != nil, s.CrcXorOut, "cfg->xor_out")
	s.CfgTableIdxWidth = s.CrcTableIdxWidth
	s.CfgTableWidth = s.CrcTableWidth
	s.CfgMask = cfgOrLiteral(o.Width != nil, s.CrcMask, "cfg->crc_mask")
	s.CfgMsbMask = cfgOrLiteral(o.Width != nil, s.CrcMsbMask, "cfg->msb_mask")
	s.CfgShift = cfgOrLiteral(s.tblShift != nil, s.CrcShift, "cfg->crc_shift")

	shifted := s.tblShift == nil || *s.tblShift > 0
	s.CfgPolyShifted = maybeShift(s.CfgPoly, s.CfgShift, shifted)
	s.CfgMaskShifted = maybeShift(s.CfgMask, s.CfgShift, shifted)
	s.CfgMsbMaskShifted = maybeShift(s.CfgMsbMask, s.CfgShift, shifted)

	if o.CStd == crcopts.C89 {
		s.CBool, s.CTrue, s.CFalse = "int", "1", "0"
	} else {
		s.CBool, s.CTrue, s.CFalse = "bool", "true", "false"
	}

	s.UnderlyingCRCType = underlyingCRCType(o)
	s.CrcT = o.SymbolPrefix + "t"
	s.CfgT = o.SymbolPrefix + "cfg_t"
	s.CrcReflectFunction = o.SymbolPrefix + "reflect"
	s.CrcTableGenFunction = o.SymbolPrefix + "table_gen"
	s.CrcInitFunction = o.SymbolPrefix + "init"
	s.CrcUpdateFunction = o.SymbolPrefix + "update"
	s.CrcFinalizeFunction = o.SymbolPrefix + "finalize"

	s.CrcInitValue = initValue(o)

	return s
}

// CRCTableInit returns the precomputed CRC table rendered as a C
// initializer string, computed and memoized on first access: table
// generation is comparatively expensive and many generate actions never
// touch it (e.g. generating only the header).
func (s *SymbolTable) CRCTableInit() string {
	s.once.Do(func() {
		s.tableInit = tableInit(s.opt)
	})
	return s.tableInit
}

func widthOrZero(w *uint) uint {
	if w == nil {
		return 0
	}
	return *w
}

func prettyUint(v *uint) string {
	if v == nil {
		return "Undefined"
	}
	return fmt.Sprintf("%d", *v)
}

func prettyUintPtr(v *uint) string {
	if v == nil {
		return "Undefined"
	}
	return fmt.Sprintf("%d", *v)
}

func prettyBool(v *bool) string {
	if v == nil {
		return "Undefined"
	}
	if *v {
		return "True"
	}
	return "False"
}

// prettyHex renders value as a zero-padded hex literal sized to width
// bits, matching pycrc's ceil(width/4)+2-character formatting so every
// CRC constant in generated code lines up in a column.
func prettyHex(value *uint64, width *uint) string {
	if value == nil {
		return "Undefined"
	}
	return prettyHexUint(*value, widthOrZero(width))
}

func prettyHexUint(value uint64, width uint) string {
	if width == 0 {
		return fmt.Sprintf("%#x", value)
	}
	digits := (width + 3) / 4
	return fmt.Sprintf("0x%0*x", digits, value)
}

func cfgOrLiteral(defined bool, literal, ref string) string {
	if defined {
		return literal
	}
	return ref
}

func maybeShift(value, shift string, shifted bool) string {
	if shifted {
		return fmt.Sprintf("(%s << %s)", value, shift)
	}
	return value
}

func prettyFilename(outputFile string) string {
	if outputFile == "" {
		return "crcgen_stdout"
	}
	return baseName(outputFile)
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, "/\\")
	return path[i+1:]
}

// headerProtection derives an #ifndef guard name from the output
// filename: every non-alphanumeric character becomes an underscore and
// letters are upper-cased, matching the original tool's guard-naming
// rule exactly.
func headerProtection(outputFile string) string {
	filename := "crcgen_stdout"
	if outputFile != "" {
		filename = baseName(outputFile)
	}
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func underlyingCRCType(o crcopts.Options) string {
	if o.CRCType != "" {
		return o.CRCType
	}
	w := o.Width
	if o.CStd == crcopts.C89 {
		switch {
		case w == nil:
			return "unsigned long int"
		case *w <= 8:
			return "unsigned char"
		case *w <= 16:
			return "unsigned int"
		default:
			return "unsigned long int"
		}
	}
	switch {
	case w == nil:
		return "unsigned long long int"
	case *w <= 8:
		return "uint_fast8_t"
	case *w <= 16:
		return "uint_fast16_t"
	case *w <= 32:
		return "uint_fast32_t"
	default:
		return "uint_fast64_t"
	}
}

func initValue(o crcopts.Options) string {
	switch o.Algorithm {
	case crcopts.BitByBit:
		if o.XorIn == nil || o.Width == nil || o.Poly == nil {
			return "Undefined"
		}
		init, err := crcengine.NondirectInit(o)
		if err != nil {
			return "Undefined"
		}
		return prettyHexUint(init, *o.Width)
	case crcopts.BitByBitFast:
		if o.XorIn == nil {
			return "Undefined"
		}
		return prettyHexUint(*o.XorIn, widthOrZero(o.Width))
	case crcopts.TableDriven:
		if o.ReflectIn == nil || o.XorIn == nil || o.Width == nil {
			return "Undefined"
		}
		poly := uint64(0)
		if o.Poly != nil {
			poly = *o.Poly
		}
		full := o.WithPoly(poly)
		init := *full.XorIn
		if *o.ReflectIn {
			init = crcengine.Reflect(init, *o.Width)
		}
		return prettyHexUint(init, *o.Width)
	default:
		return prettyHexUint(0, widthOrZero(o.Width))
	}
}

func tableShift(o crcopts.Options) *uint {
	if o.Algorithm != crcopts.TableDriven {
		z := uint(0)
		return &z
	}
	if o.Width == nil {
		return nil
	}
	if *o.Width < 8 {
		v := 8 - *o.Width
		return &v
	}
	z := uint(0)
	return &z
}

// tableInit renders the table-driven CRC table as a C brace-initializer
// string, including the slice-by-N outer bracing the original tool
// emits once slice_by exceeds 1.
func tableInit(o crcopts.Options) string {
	if o.Algorithm != crcopts.TableDriven {
		return "0"
	}
	if o.Width == nil || o.Poly == nil || o.ReflectIn == nil {
		return "0"
	}
	full := o.WithXorIn(0).WithReflectOut(false).WithXorOut(0)
	tables, err := crcengine.GenSliceTables(full, o.SliceBy)
	if err != nil {
		return "0"
	}

	valuesPerLine := uint(16)
	switch {
	case *o.Width > 32:
		valuesPerLine = 4
	case *o.Width >= 16:
		valuesPerLine = 8
	}
	formatWidth := *o.Width
	if formatWidth < 8 {
		formatWidth = 8
	}
	indent := 4
	if o.SliceBy != 1 {
		indent = 8
	}

	rendered := make([]string, o.SliceBy)
	for i := range tables {
		rendered[i] = renderTable(tables[i], valuesPerLine, formatWidth, uint(indent))
	}
	fixedIndent := strings.Repeat(" ", indent-4)
	body := fixedIndent + "{\n" +
		strings.Join(rendered, "\n"+fixedIndent+"},\n"+fixedIndent+"{\n") +
		"\n" + fixedIndent + "}"
	if o.SliceBy == 1 {
		return body
	}
	return "{\n" + body + "\n}"
}

func renderTable(tbl []uint64, valuesPerLine, formatWidth, indent uint) string {
	var b strings.Builder
	for i, v := range tbl {
		if uint(i)%valuesPerLine == 0 {
			b.WriteString(strings.Repeat(" ", int(indent)))
		}
		s := prettyHexUint(v, formatWidth)
		switch {
		case i == len(tbl)-1:
			b.WriteString(s)
		case uint(i)%valuesPerLine == valuesPerLine-1:
			b.WriteString(s + ",\n")
		default:
			b.WriteString(s + ", ")
		}
	}
	return b.String()
}
