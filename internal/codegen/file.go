package codegen

import (
	"fmt"
	"strings"

	"github.com/mbsulliv/crcgen/internal/cexpr"
	"github.com/mbsulliv/crcgen/internal/crcopts"
	"github.com/mbsulliv/crcgen/internal/symtable"
)

// Generate renders the C source for o's Action. It is the Go analogue
// of the original tool's File class: one dispatch point that fans out
// to the header, implementation, standalone-main, or bare-table
// renderers depending on what the caller asked for.
func Generate(o crcopts.Options) string {
	sym := symtable.New(o)
	var nodes []Node
	switch o.Action {
	case crcopts.ActionGenerateH:
		nodes = append(nodes, fileComment(o, sym)...)
		nodes = append(nodes, headerFile(o, sym)...)
	case crcopts.ActionGenerateC:
		nodes = append(nodes, fileComment(o, sym)...)
		nodes = append(nodes, sourceFile(o, sym)...)
	case crcopts.ActionGenerateCMain:
		nodes = append(nodes, fileComment(o, sym)...)
		nodes = append(nodes, sourceFile(o, sym)...)
		nodes = append(nodes, mainFile(o, sym)...)
	case crcopts.ActionGenerateTable:
		nodes = append(nodes, Line(sym.CRCTableInit()))
	}
	return Render(nodes)
}

func includes(o crcopts.Options) []Node {
	var out []Node
	for _, f := range o.IncludeFiles {
		if strings.HasPrefix(f, "\"") || strings.HasPrefix(f, "<") {
			out = append(out, Line(fmt.Sprintf("#include %s", f)))
		} else {
			out = append(out, Line(fmt.Sprintf("#include %q", f)))
		}
	}
	return out
}

func crcAlgoDefine(sym *symtable.SymbolTable) string {
	name := strings.ToUpper(strings.ReplaceAll(sym.CrcAlgorithm, "-", "_"))
	return "CRC_ALGO_" + name
}

func paramBlock(o crcopts.Options, sym *symtable.SymbolTable, withAlgorithm bool) []Node {
	lines := []Node{
		Line(fmt.Sprintf("- %-13s = %s", "Width", sym.CrcWidth)),
		Line(fmt.Sprintf("- %-13s = %s", "Poly", sym.CrcPoly)),
		Line(fmt.Sprintf("- %-13s = %s", "XorIn", sym.CrcXorIn)),
		Line(fmt.Sprintf("- %-13s = %s", "ReflectIn", sym.CrcReflectIn)),
		Line(fmt.Sprintf("- %-13s = %s", "XorOut", sym.CrcXorOut)),
		Line(fmt.Sprintf("- %-13s = %s", "ReflectOut", sym.CrcReflectOut)),
	}
	if withAlgorithm {
		lines = append(lines, Line(fmt.Sprintf("- %-13s = %s", "Algorithm", sym.CrcAlgorithm)))
	}
	if o.SliceBy > 1 {
		lines = append(lines, Line(fmt.Sprintf("- %-13s = %d", "SliceBy", o.SliceBy)))
	}
	return lines
}

func fileComment(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	body := []Node{
		Line("\\file"),
		Line("Functions and types for CRC checks."),
		Blank,
		Line(fmt.Sprintf("Generated by crcgen, a parameterisable CRC calculation toolkit.")),
		Line("using the configuration:"),
	}
	body = append(body, paramBlock(o, sym, true)...)
	if o.Action == crcopts.ActionGenerateH {
		body = append(body, Blank,
			Line(fmt.Sprintf("This file defines the functions %s(), %s() and %s().",
				sym.CrcInitFunction, sym.CrcUpdateFunction, sym.CrcFinalizeFunction)),
			Blank,
			Line(fmt.Sprintf("The %s() function returns the initial crc value and must be called", sym.CrcInitFunction)),
			Line(fmt.Sprintf("before the first call to %s().", sym.CrcUpdateFunction)),
		)
	}
	return []Node{Doc(body...), Blank}
}

func headerFile(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var out []Node
	out = append(out,
		Line(fmt.Sprintf("#ifndef %s", sym.HeaderProtection)),
		Line(fmt.Sprintf("#define %s", sym.HeaderProtection)),
		Blank,
	)
	out = append(out, includes(o)...)
	out = append(out, Line("#include <stdlib.h>"))
	out = append(out, When(o.CStd != crcopts.C89, Line("#include <stdint.h>")))
	out = append(out, When(useCfg(o) && o.CStd != crcopts.C89, Line("#include <stdbool.h>")))
	out = append(out,
		Blank,
		Line("#ifdef __cplusplus"),
		Line(`extern "C" {`),
		Line("#endif"),
		Blank, Blank,
	)
	out = append(out,
		Doc(Line("The definition of the used algorithm.")),
		Line(fmt.Sprintf("#define %s 1", crcAlgoDefine(sym))),
		Blank, Blank,
	)
	out = append(out,
		Doc(Line("The type of the CRC values.")),
		Line(fmt.Sprintf("typedef %s %s;", sym.UnderlyingCRCType, sym.CrcT)),
	)
	out = append(out, When(useCfg(o), cfgStructDecl(o, sym)...))
	out = append(out, When(useReflectFunc(o) && !useStaticReflectFunc(o),
		Blank, Blank,
		Doc(Line("Reflect all bits of a data word.")),
		Line(fmt.Sprintf("%s %s(%s data, size_t data_len);", sym.CrcT, sym.CrcReflectFunction, sym.CrcT)),
	))
	out = append(out, When(useCRCTableGen(o),
		Blank, Blank,
		Doc(Line("Populate the private static crc table.")),
		Line(fmt.Sprintf("void %s(const %s *cfg);", sym.CrcTableGenFunction, sym.CfgT)),
	))
	out = append(out, Blank, Blank)
	out = append(out, Doc(Line("Calculate the initial crc value.")))
	out = append(out, crcInitDecl(o, sym)...)
	out = append(out, Blank, Blank)
	out = append(out, Doc(Line("Update the crc value with new data.")))
	out = append(out, Line(crcUpdateFunctionDef(o, sym)+";"))
	out = append(out, Blank, Blank)
	out = append(out, Doc(Line("Calculate the final crc value.")))
	out = append(out, crcFinalizeDecl(o, sym)...)
	out = append(out,
		Blank, Blank,
		Line("#ifdef __cplusplus"),
		Line(`}           /* closing brace for extern "C" */`),
		Line("#endif"),
		Blank,
		Line(fmt.Sprintf("#endif      /* %s */", sym.HeaderProtection)),
		Blank,
	)
	return out
}

func cfgStructDecl(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var fields []Node
	fields = append(fields, When(o.Width == nil, Line("unsigned int width;        /*!< The width of the polynomial */")))
	fields = append(fields, When(o.Poly == nil, Line(sym.CrcT+" poly;         /*!< The CRC polynomial */")))
	fields = append(fields, When(o.ReflectIn == nil, Line(sym.CBool+" reflect_in;   /*!< Whether the input shall be reflected */")))
	fields = append(fields, When(o.XorIn == nil, Line(sym.CrcT+" xor_in;       /*!< The initial value of the register */")))
	fields = append(fields, When(o.ReflectOut == nil, Line(sym.CBool+" reflect_out;  /*!< Whether the output shall be reflected */")))
	fields = append(fields, When(o.XorOut == nil, Line(sym.CrcT+" xor_out;      /*!< XOR-ed into the final CRC value */")))
	fields = append(fields, When(o.Width == nil,
		Blank,
		Line("/* internal parameters */"),
		Line(sym.CrcT+" msb_mask;     /*!< (crc_t)1u << (width - 1) */"),
		Line(sym.CrcT+" crc_mask;     /*!< (msb_mask - 1) | msb_mask */"),
		Line("unsigned int crc_shift;    /*!< width < 8 ? 8 - width : 0 */"),
	))
	return []Node{
		Blank, Blank,
		Doc(Line("The configuration type of the CRC algorithm.")),
		Line("typedef struct {"),
		Indented(fields...),
		Line(fmt.Sprintf("} %s;", sym.CfgT)),
	}
}

func crcInitDecl(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if useConstantCRCInit(o) {
		if o.CStd == crcopts.C89 {
			return []Node{Line(fmt.Sprintf("#define %s()      (%s)", sym.CrcInitFunction, sym.CrcInitValue))}
		}
		return []Node{
			Line(fmt.Sprintf("static inline %s", crcInitFunctionDef(o, sym))),
			Line("{"),
			Indented(Line(fmt.Sprintf("return %s;", sym.CrcInitValue))),
			Line("}"),
		}
	}
	return []Node{Line(crcInitFunctionDef(o, sym) + ";")}
}

func crcInitFunctionDef(o crcopts.Options, sym *symtable.SymbolTable) string {
	if useConstantCRCInit(o) {
		return fmt.Sprintf("%s %s(void)", sym.CrcT, sym.CrcInitFunction)
	}
	return fmt.Sprintf("%s %s(const %s *cfg)", sym.CrcT, sym.CrcInitFunction, sym.CfgT)
}

func crcUpdateFunctionDef(o crcopts.Options, sym *symtable.SymbolTable) string {
	if useCfgInCRCUpdate(o) {
		return fmt.Sprintf("%s %s(%s crc, const void *data, size_t data_len)", sym.CrcT, sym.CrcUpdateFunction, sym.CrcT)
	}
	return fmt.Sprintf("%s %s(const %s *cfg, %s crc, const void *data, size_t data_len)", sym.CrcT, sym.CrcUpdateFunction, sym.CfgT, sym.CrcT)
}

func crcFinalizeDecl(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if useInlineCRCFinalize(o) {
		finalValue := crcFinalValue(o, sym)
		if o.CStd == crcopts.C89 {
			return []Node{Line(fmt.Sprintf("#define %s(crc)      (%s)", sym.CrcFinalizeFunction, finalValue))}
		}
		return []Node{
			Line(fmt.Sprintf("static inline %s", crcFinalizeFunctionDef(o, sym))),
			Line("{"),
			Indented(Line(fmt.Sprintf("return %s;", finalValue))),
			Line("}"),
		}
	}
	return []Node{Line(crcFinalizeFunctionDef(o, sym) + ";")}
}

func crcFinalizeFunctionDef(o crcopts.Options, sym *symtable.SymbolTable) string {
	if useCfgInFinalize(o) {
		return fmt.Sprintf("%s %s(%s crc)", sym.CrcT, sym.CrcFinalizeFunction, sym.CrcT)
	}
	return fmt.Sprintf("%s %s(const %s *cfg, %s crc)", sym.CrcT, sym.CrcFinalizeFunction, sym.CfgT, sym.CrcT)
}

func crcFinalValue(o crcopts.Options, sym *symtable.SymbolTable) string {
	if o.Algorithm == crcopts.TableDriven {
		if o.ReflectIn != nil && o.ReflectOut != nil && *o.ReflectIn == *o.ReflectOut {
			return cexpr.Xor(cexpr.Str("crc"), cexpr.Str(sym.CfgXorOut)).Simplify().String()
		}
		call := cexpr.Call(sym.CrcReflectFunction, cexpr.Str("crc"), cexpr.Str(sym.CfgWidth))
		return cexpr.Xor(call, cexpr.Str(sym.CfgXorOut)).Simplify().String()
	}
	if o.ReflectOut != nil && *o.ReflectOut {
		call := cexpr.Call(sym.CrcReflectFunction, cexpr.Str("crc"), cexpr.Str(sym.CfgWidth))
		return cexpr.Xor(call, cexpr.Str(sym.CfgXorOut)).Simplify().String()
	}
	return cexpr.Xor(cexpr.Str("crc"), cexpr.Str(sym.CfgXorOut)).Simplify().String()
}

func sourceFile(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var out []Node
	out = append(out, includes(o)...)
	out = append(out,
		Line(fmt.Sprintf("#include %q     /* include the header file generated by crcgen */", sym.HeaderFilename)),
		Line("#include <stdlib.h>"),
	)
	out = append(out, When(o.CStd != crcopts.C89, Line("#include <stdint.h>")))
	needsStdbool := useCfg(o) || o.Algorithm == crcopts.BitByBit || o.Algorithm == crcopts.BitByBitFast
	out = append(out, When(o.CStd != crcopts.C89 && needsStdbool, Line("#include <stdbool.h>")))
	out = append(out, When(o.SliceBy > 1, Line("#include <endian.h>")))
	out = append(out, When(useReflectFunc(o) && useStaticReflectFunc(o),
		Blank,
		Line(fmt.Sprintf("static %s %s(%s data, size_t data_len);", sym.CrcT, sym.CrcReflectFunction, sym.CrcT)),
	))
	out = append(out, Blank)
	out = append(out, crcTableDecl(o, sym)...)
	out = append(out, crcReflectFunctionGen(o, sym)...)
	out = append(out, crcInitFunctionGen(o, sym)...)
	out = append(out, crcTableGenFunctionGen(o, sym)...)
	out = append(out, crcUpdateFunctionGen(o, sym)...)
	out = append(out, crcFinalizeFunctionGen(o, sym)...)
	out = append(out, Blank)
	return out
}

func crcTableDecl(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if o.Algorithm != crcopts.TableDriven {
		return nil
	}
	comment := []Node{Line("Static table used by the table-driven implementation.")}
	if useCfg(o) {
		comment = append(comment, Line(fmt.Sprintf("Must be initialised with %s().", sym.CrcTableGenFunction)))
	}
	var decl Node
	if useConstantCRCTable(o) {
		if o.SliceBy > 1 {
			decl = Line(fmt.Sprintf("static const %s crc_table[%s][%s] = %s;", sym.CrcT, sym.CrcSliceBy, sym.CrcTableWidth, sym.CRCTableInit()))
		} else {
			decl = Line(fmt.Sprintf("static const %s crc_table[%s] = %s;", sym.CrcT, sym.CrcTableWidth, sym.CRCTableInit()))
		}
	} else {
		decl = Line(fmt.Sprintf("static %s crc_table[%s];", sym.CrcT, sym.CrcTableWidth))
	}
	return []Node{Blank, Blank, Doc(comment...), decl}
}

func crcReflectFunctionGen(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if !useReflectFunc(o) {
		return nil
	}
	forcedOff := (o.ReflectIn != nil && !*o.ReflectIn) && (o.ReflectOut != nil && !*o.ReflectOut)
	if forcedOff {
		return nil
	}
	return []Node{
		Blank, Blank,
		Line(fmt.Sprintf("%s %s(%s data, size_t data_len)", sym.CrcT, sym.CrcReflectFunction, sym.CrcT)),
		Line("{"),
		Indented(
			Line("unsigned int i;"),
			Line(sym.CrcT+" ret;"),
			Blank,
			Line("ret = data & 0x01;"),
			Line("for (i = 1; i < data_len; i++) {"),
			Indented(
				Line("data >>= 1;"),
				Line("ret = (ret << 1) | (data & 0x01);"),
			),
			Line("}"),
			Line("return ret;"),
		),
		Line("}"),
	}
}

func crcInitFunctionGen(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if useConstantCRCInit(o) {
		return nil
	}
	var body []Node
	switch o.Algorithm {
	case crcopts.BitByBit:
		body = []Node{
			Line("unsigned int i;"),
			Line(sym.CBool + " bit;"),
			Line(fmt.Sprintf("%s crc = %s;", sym.CrcT, sym.CfgXorIn)),
			Line(fmt.Sprintf("for (i = 0; i < %s; i++) {", sym.CfgWidth)),
			Indented(
				Line("bit = crc & 0x01;"),
				Line("if (bit) {"),
				Indented(Line(fmt.Sprintf("crc = ((crc ^ %s) >> 1) | %s;", sym.CfgPoly, sym.CfgMsbMask))),
				Line("} else {"),
				Indented(Line("crc >>= 1;")),
				Line("}"),
			),
			Line("}"),
			Line(fmt.Sprintf("return crc & %s;", sym.CfgMask)),
		}
	case crcopts.BitByBitFast:
		body = []Node{Line(fmt.Sprintf("return %s & %s;", sym.CfgXorIn, sym.CfgMask))}
	case crcopts.TableDriven:
		reflectedInit := Line(fmt.Sprintf("return %s(%s & %s, %s);", sym.CrcReflectFunction, sym.CfgXorIn, sym.CfgMask, sym.CfgWidth))
		plainInit := Line(fmt.Sprintf("return %s & %s;", sym.CfgXorIn, sym.CfgMask))
		if o.ReflectIn == nil {
			body = []Node{
				Line(fmt.Sprintf("if (%s) {", sym.CfgReflectIn)),
				Indented(reflectedInit),
				Line("} else {"),
				Indented(plainInit),
				Line("}"),
			}
		} else if *o.ReflectIn {
			body = []Node{reflectedInit}
		} else {
			body = []Node{plainInit}
		}
	}
	return []Node{
		Blank, Blank,
		Line(crcInitFunctionDef(o, sym)),
		Line("{"),
		Indented(body...),
		Line("}"),
	}
}

func crcTableGenFunctionGen(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if o.Algorithm != crcopts.TableDriven || useConstantCRCTable(o) {
		return nil
	}
	shiftExpr := cexpr.Parenthesis{Inner: cexpr.Add(cexpr.Sub(cexpr.Str(sym.CfgWidth), cexpr.Str(sym.CfgTableIdxWidth)), cexpr.Str(sym.CfgShift))}
	crcAssign := cexpr.Xor(cexpr.Parenthesis{Inner: cexpr.Shl(cexpr.Str("crc"), cexpr.Int(1))}, cexpr.Str(sym.CfgPolyShifted)).Simplify()
	finalAssign := cexpr.Shr(cexpr.Parenthesis{Inner: cexpr.And(cexpr.Str("crc"), cexpr.Str(sym.CfgMaskShifted))}, cexpr.Str(sym.CfgShift)).Simplify()

	var reflectInInit Node
	if o.ReflectIn == nil {
		reflectInInit = Seq(
			Line(fmt.Sprintf("if (cfg->reflect_in) {")),
			Indented(Line(fmt.Sprintf("crc = %s(i, %s);", sym.CrcReflectFunction, sym.CfgTableIdxWidth))),
			Line("} else {"),
			Indented(Line("crc = i;")),
			Line("}"),
		)
	} else if *o.ReflectIn {
		reflectInInit = Line(fmt.Sprintf("crc = %s(i, %s);", sym.CrcReflectFunction, sym.CfgTableIdxWidth))
	} else {
		reflectInInit = Line("crc = i;")
	}

	var postReflect []Node
	reflectedShift := sym.CrcShift != "0"
	applyReflect := func() Node {
		if reflectedShift {
			inner := cexpr.Shl(cexpr.Call(sym.CrcReflectFunction, cexpr.Shr(cexpr.Str("crc"), cexpr.Str(sym.CfgShift)), cexpr.Str(sym.CfgWidth)), cexpr.Str(sym.CfgShift))
			return Line(fmt.Sprintf("crc = %s;", inner.Simplify().String()))
		}
		return Line(fmt.Sprintf("crc = %s(crc, %s);", sym.CrcReflectFunction, sym.CfgWidth))
	}
	if o.ReflectIn == nil {
		postReflect = []Node{
			Line(fmt.Sprintf("if (%s) {", sym.CfgReflectIn)),
			Indented(applyReflect()),
			Line("}"),
		}
	} else if *o.ReflectIn {
		postReflect = []Node{applyReflect()}
	}

	return []Node{
		Blank, Blank,
		Line(fmt.Sprintf("void %s(const %s *cfg)", sym.CrcTableGenFunction, sym.CfgT)),
		Line("{"),
		Indented(
			Line(sym.CrcT+" crc;"),
			Line("unsigned int i, j;"),
			Blank,
			Line(fmt.Sprintf("for (i = 0; i < %s; i++) {", sym.CfgTableWidth)),
			Indented(append([]Node{
				reflectInInit,
				Line(fmt.Sprintf("crc <<= %s;", shiftExpr.Simplify().String())),
				Line(fmt.Sprintf("for (j = 0; j < %s; j++) {", sym.CfgTableIdxWidth)),
				Indented(
					Line(fmt.Sprintf("if (crc & %s) {", sym.CfgMsbMaskShifted)),
					Indented(Line(fmt.Sprintf("crc = %s;", crcAssign.String()))),
					Line("} else {"),
					Indented(Line("crc = crc << 1;")),
					Line("}"),
				),
				Line("}"),
			}, append(postReflect, Line(fmt.Sprintf("crc_table[i] = %s;", finalAssign.String())))...)...),
			Line("}"),
		),
		Line("}"),
	}
}

func crcUpdateFunctionGen(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	header := []Node{
		Blank, Blank,
		Line(crcUpdateFunctionDef(o, sym)),
		Line("{"),
	}
	body := []Node{Line("const unsigned char *d = (const unsigned char *)data;")}

	switch o.Algorithm {
	case crcopts.BitByBit:
		body = append(body, bitByBitUpdateBody(o, sym)...)
	case crcopts.BitByBitFast:
		body = append(body, bitByBitFastUpdateBody(o, sym)...)
	case crcopts.TableDriven:
		body = append(body, tableDrivenUpdateBody(o, sym)...)
	}
	return append(header, Indented(body...), Line("}"))
}

func bitByBitUpdateBody(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var fetchByte Node
	reflectCall := Line(fmt.Sprintf("c = %s(*d++, 8);", sym.CrcReflectFunction))
	plainByte := Line("c = *d++;")
	if o.ReflectIn == nil {
		fetchByte = Seq(Line(fmt.Sprintf("if (%s) {", sym.CfgReflectIn)), Indented(reflectCall), Line("} else {"), Indented(plainByte), Line("}"))
	} else {
		fetchByte = IfElse{Pred: *o.ReflectIn, Then: []Node{reflectCall}, Else: []Node{plainByte}}
	}
	bitExpr := Line(fmt.Sprintf("bit = crc & %s;", sym.CfgMsbMask))
	if o.CStd == crcopts.C89 {
		bitExpr = Line(fmt.Sprintf("bit = !!(crc & %s);", sym.CfgMsbMask))
	}
	return []Node{
		Line("unsigned int i;"),
		Line(sym.CBool + " bit;"),
		Line("unsigned char c;"),
		Blank,
		Line("while (data_len--) {"),
		Indented(append([]Node{fetchByte,
			Line("for (i = 0; i < 8; i++) {"),
		}, Indented(
			bitExpr,
			Line("crc = (crc << 1) | ((c >> (7 - i)) & 0x01);"),
			Line("if (bit) {"),
			Indented(Line(fmt.Sprintf("crc ^= %s;", sym.CfgPoly))),
			Line("}"),
		), Line("}"), Line(fmt.Sprintf("crc &= %s;", sym.CfgMask)))...),
		Line("}"),
		Line(fmt.Sprintf("return crc & %s;", sym.CfgMask)),
	}
}

func bitByBitFastUpdateBody(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var fetchByte Node
	reflectCall := Line(fmt.Sprintf("c = %s(*d++, 8);", sym.CrcReflectFunction))
	plainByte := Line("c = *d++;")
	if o.ReflectIn == nil {
		fetchByte = Seq(Line(fmt.Sprintf("if (%s) {", sym.CfgReflectIn)), Indented(reflectCall), Line("} else {"), Indented(plainByte), Line("}"))
	} else {
		fetchByte = plainByte
	}
	loopHeader := Line("for (i = 0x80; i > 0; i >>= 1) {")
	if o.ReflectIn != nil && *o.ReflectIn {
		loopHeader = Line("for (i = 0x01; i & 0xff; i <<= 1) {")
	}
	bitAssign := cexpr.Xor(cexpr.And(cexpr.Str("crc"), cexpr.Str(sym.CfgMsbMask)).Simplify(), cexpr.Str(fmt.Sprintf("((c & i) ? %s : 0)", sym.CfgMsbMask))).Simplify()
	return []Node{
		Line("unsigned int i;"),
		Line(sym.CrcT + " bit;"),
		Line("unsigned char c;"),
		Blank,
		Line("while (data_len--) {"),
		Indented(
			fetchByte,
			loopHeader,
			Indented(
				Line(fmt.Sprintf("bit = %s;", bitAssign.String())),
				Line("crc <<= 1;"),
				Line("if (bit) {"),
				Indented(Line(fmt.Sprintf("crc ^= %s;", sym.CfgPoly))),
				Line("}"),
			),
			Line("}"),
			Line(fmt.Sprintf("crc &= %s;", sym.CfgMask)),
		),
		Line("}"),
		Line(fmt.Sprintf("return %s;", cexpr.And(cexpr.Str("crc"), cexpr.Str(sym.CfgMask)).Simplify().String())),
	}
}

func tableCoreAlgorithm(sym *symtable.SymbolTable) []Node {
	return []Node{
		Line(fmt.Sprintf("tbl_idx = (crc ^ *d) & %s;", sym.CrcTableMask)),
		Line(fmt.Sprintf("crc = crc_table[tbl_idx] ^ (crc >> %s);", sym.CfgTableIdxWidth)),
	}
}

func tableDrivenUpdateBody(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	reflected := append([]Node{Line("while (data_len--) {")}, Indented(append(tableCoreAlgorithm(sym), Line("d++;"))...), Line("}"))
	shiftAmount := cexpr.Add(cexpr.Sub(cexpr.Str(sym.CfgWidth), cexpr.Str(sym.CfgTableIdxWidth)), cexpr.Str(sym.CfgShift)).Simplify()
	nonReflected := []Node{
		Line("while (data_len--) {"),
		Indented(
			Line(fmt.Sprintf("tbl_idx = ((crc >> (%s)) ^ *d) & %s;", shiftAmount.String(), sym.CrcTableMask)),
			Line(fmt.Sprintf("crc = (crc_table[tbl_idx] << %s) ^ (crc << %s);", sym.CfgTableIdxWidth, sym.CfgTableIdxWidth)),
			Line("d++;"),
		),
		Line("}"),
	}
	var loop Node
	if o.ReflectIn == nil {
		loop = Seq(
			Line("if (cfg->reflect_in) {"),
			Indented(reflected...),
			Line("} else {"),
			Indented(nonReflected...),
			Line("}"),
		)
	} else if *o.ReflectIn {
		loop = Seq(reflected...)
	} else {
		loop = Seq(nonReflected...)
	}
	return []Node{
		Line("unsigned int tbl_idx;"),
		Blank,
		loop,
		Line(fmt.Sprintf("return %s;", cexpr.And(cexpr.Str("crc"), cexpr.Str(sym.CfgMask)).Simplify().String())),
	}
}

func crcFinalizeFunctionGen(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	if useInlineCRCFinalize(o) {
		return nil
	}
	return []Node{
		Blank, Blank,
		Line(crcFinalizeFunctionDef(o, sym)),
		Line("{"),
		Indented(Line(fmt.Sprintf("return %s;", crcFinalValue(o, sym)))),
		Line("}"),
	}
}

func mainFile(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var out []Node
	out = append(out, Blank, Blank)
	out = append(out, includes(o)...)
	out = append(out, Line("#include <stdio.h>"), Line("#include <getopt.h>"))
	out = append(out, When(useCfg(o), Line("#include <stdlib.h>"), Line("#include <ctype.h>")))
	out = append(out, When(o.CStd != crcopts.C89, Line("#include <stdbool.h>")))
	out = append(out,
		Line("#include <string.h>"),
		Blank,
		Line(`static char str[256] = "123456789";`),
		Line(fmt.Sprintf("static %s verbose = %s;", sym.CBool, sym.CFalse)),
	)
	out = append(out, getoptTemplate(o, sym)...)
	out = append(out, Blank, Blank)
	out = append(out, printParamsFunc(o, sym)...)
	out = append(out, Blank, Blank)

	var cfgInit []Node
	if useCfg(o) {
		fields := []Node{
			When(o.Width == nil, Line("0,      /* width */")),
			When(o.Poly == nil, Line("0,      /* poly */")),
			When(o.ReflectIn == nil, Line("0,      /* reflect_in */")),
			When(o.XorIn == nil, Line("0,      /* xor_in */")),
			When(o.ReflectOut == nil, Line("0,      /* reflect_out */")),
			When(o.XorOut == nil, Line("0,      /* xor_out */")),
			When(o.Width == nil, Blank, Line("0,      /* msb_mask */"), Line("0,      /* crc_mask */"), Line("0,      /* crc_shift */")),
		}
		cfgInit = []Node{
			Line(fmt.Sprintf("%s cfg = {", sym.CfgT)),
			Indented(fields...),
			Line("};"),
		}
	}

	getConfigCall := Line("get_config(argc, argv);")
	if useCfg(o) {
		getConfigCall = Line("get_config(argc, argv, &cfg);")
	}

	out = append(out,
		Doc(
			Line("C main function."),
			Line(`\param[in] argc the number of arguments in \a argv.`),
			Line(`\param[in] argv a NULL-terminated array of pointers to the argument strings.`),
			Line(`\retval 0 on success.`),
			Line(`\retval >0 on error.`),
		),
		Line("int main(int argc, char *argv[])"),
		Line("{"),
		Indented(append(cfgInit,
			Line(sym.CrcT+" crc;"),
			Blank,
			getConfigCall,
			When(useCRCTableGen(o), Line(fmt.Sprintf("%s(&cfg);", sym.CrcTableGenFunction))),
			Line(fmt.Sprintf("crc = %s(%s);", sym.CrcInitFunction, initArg(o, sym))),
			Line(fmt.Sprintf("crc = %s(%scrc, (void *)str, strlen(str));", sym.CrcUpdateFunction, updateCfgArg(o))),
			Line(fmt.Sprintf("crc = %s(%scrc);", sym.CrcFinalizeFunction, finalizeCfgArg(o))),
			Blank,
			Line("if (verbose) {"),
			Indented(Line(fmt.Sprintf("print_params(%s);", printParamsArg(o)))),
			Line("}"),
			finalPrintf(o),
			Line("return 0;"),
		)...),
		Line("}"),
	)
	return out
}

// printParamsArg returns the argument print_params is called with from
// main: a pointer to cfg when any CRC parameter is Undefined, nothing
// otherwise (print_params itself is declared to match).
func printParamsArg(o crcopts.Options) string {
	if useCfg(o) {
		return "&cfg"
	}
	return ""
}

// printParamsFunc renders the verbose-mode parameter dump, reading
// every field straight from cfg_t when useCfg, or as compile-time
// constants otherwise, mirroring the crc_init/crc_finalize split.
func printParamsFunc(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	sig := "static void print_params(void)"
	if useCfg(o) {
		sig = fmt.Sprintf("static void print_params(const %s *cfg)", sym.CfgT)
	}
	widthFmt := "%-16s = 0x%%0%dlx\\n"
	longCast := "(unsigned long int)"
	if o.CStd != crcopts.C89 {
		widthFmt = "%-16s = 0x%%0%dllx\\n"
		longCast = "(unsigned long long int)"
	}
	hexFmtLine := Line(fmt.Sprintf(`sprintf(format, "%s", (unsigned int)(%s + 3) / 4);`, widthFmt, sym.CfgWidth))
	if o.CStd != crcopts.C89 {
		hexFmtLine = Line(fmt.Sprintf(`snprintf(format, sizeof(format), "%s", (unsigned int)(%s + 3) / 4);`, widthFmt, sym.CfgWidth))
	}

	reflectInStr := sym.CfgReflectIn + ` ? "true" : "false"`
	if o.ReflectIn != nil {
		reflectInStr = `"true"`
		if !*o.ReflectIn {
			reflectInStr = `"false"`
		}
	}
	reflectOutStr := sym.CfgReflectOut + ` ? "true" : "false"`
	if o.ReflectOut != nil {
		reflectOutStr = `"true"`
		if !*o.ReflectOut {
			reflectOutStr = `"false"`
		}
	}

	return []Node{
		Line(sig),
		Line("{"),
		Indented(
			Line("char format[32];"),
			Blank,
			hexFmtLine,
			Line(fmt.Sprintf(`printf("%%-16s = %%d\n", "width", (unsigned int)%s);`, sym.CfgWidth)),
			Line(fmt.Sprintf(`printf(format, "poly", %s%s);`, longCast, sym.CfgPoly)),
			Line(fmt.Sprintf(`printf("%%-16s = %%s\n", "reflect_in", %s);`, reflectInStr)),
			Line(fmt.Sprintf(`printf(format, "xor_in", %s%s);`, longCast, sym.CfgXorIn)),
			Line(fmt.Sprintf(`printf("%%-16s = %%s\n", "reflect_out", %s);`, reflectOutStr)),
			Line(fmt.Sprintf(`printf(format, "xor_out", %s%s);`, longCast, sym.CfgXorOut)),
			Line(fmt.Sprintf(`printf(format, "crc_mask", %s%s);`, longCast, sym.CfgMask)),
			Line(fmt.Sprintf(`printf(format, "msb_mask", %s%s);`, longCast, sym.CfgMsbMask)),
		),
		Line("}"),
	}
}

// getoptTemplate renders the atob/xtoi argument-parsing helpers and the
// get_config function that uses getopt_long to accept a long option for
// each Undefined CRC parameter, plus --verbose and --check-string;
// --table-idx-width is accepted only when width is Undefined. Parameters
// already concrete at generate time have no flag: there is nothing left
// for a flag to override.
func getoptTemplate(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	var out []Node
	if o.ReflectIn == nil || o.ReflectOut == nil {
		out = append(out, Blank, Blank,
			Line(fmt.Sprintf("static %s atob(const char *str)", sym.CBool)),
			Line("{"),
			Indented(
				Line("if (!str) {"),
				Indented(Line("return 0;")),
				Line("}"),
				Line("if (isdigit(str[0])) {"),
				Indented(Line(fmt.Sprintf("return (%s)atoi(str);", sym.CBool))),
				Line("}"),
				Line("if (tolower(str[0]) == 't') {"),
				Indented(Line(fmt.Sprintf("return %s;", sym.CTrue))),
				Line("}"),
				Line(fmt.Sprintf("return %s;", sym.CFalse)),
			),
			Line("}"),
		)
	}
	if o.Poly == nil || o.XorIn == nil || o.XorOut == nil {
		out = append(out, Blank, Blank,
			Line(fmt.Sprintf("static %s xtoi(const char *str)", sym.CrcT)),
			Line("{"),
			Indented(
				Line(sym.CrcT+" ret = 0;"),
				Blank,
				Line("if (!str) {"),
				Indented(Line("return 0;")),
				Line("}"),
				Line("if (str[0] == '0' && tolower(str[1]) == 'x') {"),
				Indented(
					Line("str += 2;"),
					Line("while (*str) {"),
					Indented(
						Line("if (isdigit(*str))"),
						Indented(Line("ret = 16 * ret + *str - '0';")),
						Line("else if (isxdigit(*str))"),
						Indented(Line("ret = 16 * ret + tolower(*str) - 'a' + 10;")),
						Line("else"),
						Indented(Line("return ret;")),
						Line("str++;"),
					),
					Line("}"),
				),
				Line("} else if (isdigit(*str)) {"),
				Indented(
					Line("while (*str) {"),
					Indented(
						Line("if (isdigit(*str))"),
						Indented(Line("ret = 10 * ret + *str - '0';")),
						Line("else"),
						Indented(Line("return ret;")),
						Line("str++;"),
					),
					Line("}"),
				),
				Line("}"),
				Line("return ret;"),
			),
			Line("}"),
		)
	}

	out = append(out, Blank, Blank)
	out = append(out, getConfigFunc(o, sym)...)
	return out
}

func getConfigFunc(o crcopts.Options, sym *symtable.SymbolTable) []Node {
	sig := "static int get_config(int argc, char *argv[])"
	if useCfg(o) {
		sig = fmt.Sprintf("static int get_config(int argc, char *argv[], %s *cfg)", sym.CfgT)
	}

	longOpts := []Node{
		When(o.Width == nil, Line(`{"width",           1, 0, 'w'},`)),
		When(o.Poly == nil, Line(`{"poly",            1, 0, 'p'},`)),
		When(o.ReflectIn == nil, Line(`{"reflect-in",      1, 0, 'n'},`)),
		When(o.XorIn == nil, Line(`{"xor-in",          1, 0, 'i'},`)),
		When(o.ReflectOut == nil, Line(`{"reflect-out",     1, 0, 'u'},`)),
		When(o.XorOut == nil, Line(`{"xor-out",         1, 0, 'o'},`)),
		Line(`{"verbose",         0, 0, 'v'},`),
		Line(`{"check-string",    1, 0, 's'},`),
		When(o.Width == nil, Line(`{"table-idx-width", 1, 0, 't'},`)),
		Line(`{0, 0, 0, 0}`),
	}

	cases := []Node{
		Line("case 0:"),
		Indented(
			Line(`printf("option %s", long_options[option_index].name);`),
			Line("if (optarg)"),
			Indented(Line(`printf(" with arg %s", optarg);`)),
			Line(`printf("\n");`),
			Line("break;"),
		),
		When(o.Width == nil, Line("case 'w':"), Indented(Line("cfg->width = atoi(optarg);"), Line("break;"))),
		When(o.Poly == nil, Line("case 'p':"), Indented(Line("cfg->poly = xtoi(optarg);"), Line("break;"))),
		When(o.ReflectIn == nil, Line("case 'n':"), Indented(Line("cfg->reflect_in = atob(optarg);"), Line("break;"))),
		When(o.XorIn == nil, Line("case 'i':"), Indented(Line("cfg->xor_in = xtoi(optarg);"), Line("break;"))),
		When(o.ReflectOut == nil, Line("case 'u':"), Indented(Line("cfg->reflect_out = atob(optarg);"), Line("break;"))),
		When(o.XorOut == nil, Line("case 'o':"), Indented(Line("cfg->xor_out = xtoi(optarg);"), Line("break;"))),
		Line("case 's':"),
		Indented(
			Line("memcpy(str, optarg, strlen(optarg) < sizeof(str) ? strlen(optarg) + 1 : sizeof(str));"),
			Line("str[sizeof(str) - 1] = '\\0';"),
			Line("break;"),
		),
		Line("case 'v':"),
		Indented(Line(fmt.Sprintf("verbose = %s;", sym.CTrue)), Line("break;")),
		When(o.Width == nil, Line("case 't':"), Indented(Line("/* table-idx-width cannot change the generated table's layout at runtime */"), Line("break;"))),
		Line("case '?':"),
		Indented(Line("return -1;")),
		Line("case ':':"),
		Indented(Line(`fprintf(stderr, "missing argument to option %c\n", c);`), Line("return -1;")),
		Line("default:"),
		Indented(Line(`fprintf(stderr, "unhandled option %c\n", c);`), Line("return -1;")),
	}

	var postProcess []Node
	if o.Width == nil {
		postProcess = append(postProcess,
			Line("cfg->msb_mask = (crc_t)1u << (cfg->width - 1);"),
			Line("cfg->crc_mask = (cfg->msb_mask - 1) | cfg->msb_mask;"),
			Line("cfg->crc_shift = cfg->width < 8 ? 8 - cfg->width : 0;"),
			Blank,
		)
	}
	if o.Poly == nil {
		postProcess = append(postProcess, Line(fmt.Sprintf("cfg->poly &= %s;", sym.CfgMask)))
	}
	if o.XorIn == nil {
		postProcess = append(postProcess, Line(fmt.Sprintf("cfg->xor_in &= %s;", sym.CfgMask)))
	}
	if o.XorOut == nil {
		postProcess = append(postProcess, Line(fmt.Sprintf("cfg->xor_out &= %s;", sym.CfgMask)))
	}

	return []Node{
		Line(sig),
		Line("{"),
		Indented(append([]Node{
			Line("int c;"),
			Line("int option_index;"),
			Line("static struct option long_options[] = {"),
			Indented(longOpts...),
			Line("};"),
			Blank,
			Line("while (1) {"),
			Indented(
				Line("option_index = 0;"),
				Blank,
				Line(`c = getopt_long(argc, argv, "w:p:n:i:u:o:s:vt", long_options, &option_index);`),
				Line("if (c == -1)"),
				Indented(Line("break;")),
				Blank,
				Line("switch (c) {"),
				Indented(cases...),
				Line("}"),
			),
			Line("}"),
		}, append(postProcess, Line("return 0;"))...)...),
		Line("}"),
	}
}

func initArg(o crcopts.Options, sym *symtable.SymbolTable) string {
	if useConstantCRCInit(o) {
		return ""
	}
	return "&cfg"
}

func updateCfgArg(o crcopts.Options) string {
	if useCfgInCRCUpdate(o) {
		return ""
	}
	return "&cfg, "
}

func finalizeCfgArg(o crcopts.Options) string {
	if useCfgInFinalize(o) {
		return ""
	}
	return "&cfg, "
}

func finalPrintf(o crcopts.Options) Node {
	if o.CStd == crcopts.C89 {
		return Line(`printf("0x%lx\n", (unsigned long int)crc);`)
	}
	return Line(`printf("0x%llx\n", (unsigned long long int)crc);`)
}
