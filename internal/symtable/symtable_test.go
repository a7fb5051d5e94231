package symtable

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcopts"
)

func TestUndefinedParametersRenderAsCfgReferences(t *testing.T) {
	Convey("every crc_* family member is Undefined when nothing is set", t, func() {
		s := New(crcopts.Default())
		So(s.CrcWidth, ShouldEqual, "Undefined")
		So(s.CrcPoly, ShouldEqual, "Undefined")
		So(s.CrcReflectIn, ShouldEqual, "Undefined")
	})

	Convey("the cfg_* family falls back to cfg-> references", t, func() {
		s := New(crcopts.Default())
		So(s.CfgWidth, ShouldEqual, "cfg->width")
		So(s.CfgPoly, ShouldEqual, "cfg->poly")
		So(s.CfgReflectIn, ShouldEqual, "cfg->reflect_in")
		So(s.CfgXorIn, ShouldEqual, "cfg->xor_in")
		So(s.CfgReflectOut, ShouldEqual, "cfg->reflect_out")
		So(s.CfgXorOut, ShouldEqual, "cfg->xor_out")
		So(s.CfgMask, ShouldEqual, "cfg->crc_mask")
		So(s.CfgMsbMask, ShouldEqual, "cfg->msb_mask")
		So(s.CfgShift, ShouldEqual, "cfg->crc_shift")
	})
}

func TestFullyDefinedModelRendersLiterals(t *testing.T) {
	o := crcopts.Default().WithWidth(16).WithPoly(0x1021).WithReflectIn(false).
		WithXorIn(0xFFFF).WithReflectOut(false).WithXorOut(0)

	Convey("crc_* fields render pretty hex/bool literals", t, func() {
		s := New(o)
		So(s.CrcWidth, ShouldEqual, "16")
		So(s.CrcPoly, ShouldEqual, "0x1021")
		So(s.CrcReflectIn, ShouldEqual, "False")
		So(s.CrcXorIn, ShouldEqual, "0xffff")
		So(s.CrcMask, ShouldEqual, "0xffff")
		So(s.CrcMsbMask, ShouldEqual, "0x8000")
	})

	Convey("cfg_* fields mirror the literal once a parameter is concrete", t, func() {
		s := New(o)
		So(s.CfgWidth, ShouldEqual, "16")
		So(s.CfgPoly, ShouldEqual, "0x1021")
		So(s.CfgReflectIn, ShouldEqual, "False")
	})

	Convey("the table shift is zero for byte-or-wider widths", t, func() {
		s := New(o)
		So(s.CrcShift, ShouldEqual, "0")
		So(s.CfgPolyShifted, ShouldEqual, s.CfgPoly)
	})
}

func TestSubByteWidthShiftsPolyMaskAndMsbMask(t *testing.T) {
	o := crcopts.Default().WithWidth(5).WithPoly(0x05).WithReflectIn(false).
		WithXorIn(0).WithReflectOut(false).WithXorOut(0)

	Convey("a sub-byte width carries a non-zero shift", t, func() {
		s := New(o)
		So(s.CrcShift, ShouldEqual, "3")
	})

	Convey("the shifted cfg fields are wrapped in a shift expression", t, func() {
		s := New(o)
		So(s.CfgPolyShifted, ShouldEqual, "(0x05 << 3)")
		So(s.CfgMaskShifted, ShouldEqual, "(0x1f << 3)")
	})
}

func TestHeaderNaming(t *testing.T) {
	Convey("an empty output file falls back to the stdout placeholder", t, func() {
		s := New(crcopts.Default())
		So(s.Filename, ShouldEqual, "crcgen_stdout")
		So(s.HeaderFilename, ShouldEqual, "crcgen_stdout.h")
		So(s.HeaderProtection, ShouldEqual, "CRCGEN_STDOUT")
	})

	Convey("a concrete path drives filename, header name, and guard", t, func() {
		o := crcopts.Default()
		o.OutputFile = "/tmp/out/my-crc.c"
		s := New(o)
		So(s.Filename, ShouldEqual, "my-crc.c")
		So(s.HeaderFilename, ShouldEqual, "my-crc.h")
		So(s.HeaderProtection, ShouldEqual, "MY_CRC_C")
	})
}

func TestUnderlyingCRCType(t *testing.T) {
	Convey("C99 widths select the narrowest uint_fast type", t, func() {
		So(New(crcopts.Default().WithWidth(8)).UnderlyingCRCType, ShouldEqual, "uint_fast8_t")
		So(New(crcopts.Default().WithWidth(16)).UnderlyingCRCType, ShouldEqual, "uint_fast16_t")
		So(New(crcopts.Default().WithWidth(32)).UnderlyingCRCType, ShouldEqual, "uint_fast32_t")
		So(New(crcopts.Default().WithWidth(64)).UnderlyingCRCType, ShouldEqual, "uint_fast64_t")
	})

	Convey("C89 widths select the narrowest classic unsigned type", t, func() {
		o := crcopts.Default()
		o.CStd = crcopts.C89
		So(New(o.WithWidth(8)).UnderlyingCRCType, ShouldEqual, "unsigned char")
		So(New(o.WithWidth(16)).UnderlyingCRCType, ShouldEqual, "unsigned int")
		So(New(o.WithWidth(32)).UnderlyingCRCType, ShouldEqual, "unsigned long int")
	})

	Convey("an explicit CRCType overrides derivation entirely", t, func() {
		o := crcopts.Default().WithWidth(16)
		o.CRCType = "my_crc_t"
		So(New(o).UnderlyingCRCType, ShouldEqual, "my_crc_t")
	})
}

func TestCrcInitValue(t *testing.T) {
	Convey("bit-by-bit derives the non-direct init value", t, func() {
		o := crcopts.Default()
		o.Algorithm = crcopts.BitByBit
		o = o.WithWidth(16).WithPoly(0x1021).WithReflectIn(false).
			WithXorIn(0xFFFF).WithReflectOut(false).WithXorOut(0)
		So(New(o).CrcInitValue, ShouldNotEqual, "Undefined")
	})

	Convey("bit-by-bit-fast uses xor_in directly", t, func() {
		o := crcopts.Default()
		o.Algorithm = crcopts.BitByBitFast
		o = o.WithXorIn(0xFFFF).WithWidth(16)
		So(New(o).CrcInitValue, ShouldEqual, "0xffff")
	})

	Convey("table-driven reflects xor_in when reflect_in is set", t, func() {
		o := crcopts.Default().WithWidth(8).WithReflectIn(true).WithXorIn(0x01)
		So(New(o).CrcInitValue, ShouldEqual, "0x80")
	})

	Convey("a missing required parameter yields Undefined", t, func() {
		o := crcopts.Default()
		o.Algorithm = crcopts.BitByBitFast
		So(New(o).CrcInitValue, ShouldEqual, "Undefined")
	})
}

func TestCRCTableInitIsMemoizedAndSkippedForNonTableDriven(t *testing.T) {
	Convey("a non-table-driven model renders the table as a bare zero", t, func() {
		o := crcopts.Default()
		o.Algorithm = crcopts.BitByBit
		So(New(o).CRCTableInit(), ShouldEqual, "0")
	})

	Convey("a fully defined table-driven model renders a brace-initializer", t, func() {
		o := crcopts.Default().WithWidth(8).WithPoly(0x07).WithReflectIn(false)
		init := New(o).CRCTableInit()
		So(init, ShouldNotEqual, "0")
		So(init[0], ShouldEqual, byte('{'))

		// calling it twice must return the identical memoized string
		s := New(o)
		first := s.CRCTableInit()
		second := s.CRCTableInit()
		So(first, ShouldEqual, second)
	})
}
