package codegen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcopts"
)

func fullModel() crcopts.Options {
	return crcopts.Default().WithWidth(16).WithPoly(0x1021).WithReflectIn(false).
		WithXorIn(0xFFFF).WithReflectOut(false).WithXorOut(0)
}

func TestUseCfg(t *testing.T) {
	Convey("a fully defined model needs no cfg_t", t, func() {
		So(useCfg(fullModel()), ShouldBeFalse)
	})
	Convey("any Undefined parameter forces a cfg_t", t, func() {
		So(useCfg(crcopts.Default().WithWidth(16)), ShouldBeTrue)
	})
}

func TestUseConstantCRCInit(t *testing.T) {
	Convey("table-driven needs width, reflect_in and xor_in", t, func() {
		So(useConstantCRCInit(fullModel()), ShouldBeTrue)
		So(useConstantCRCInit(crcopts.Default().WithWidth(16)), ShouldBeFalse)
	})
}

func TestUseReflectFunc(t *testing.T) {
	Convey("no reflection anywhere means no reflect function", t, func() {
		So(useReflectFunc(fullModel()), ShouldBeFalse)
	})
	Convey("reflect_in alone on table-driven still needs it", t, func() {
		o := fullModel()
		o = o.WithReflectIn(true)
		So(useReflectFunc(o), ShouldBeTrue)
	})
	Convey("an Undefined reflect parameter always needs it", t, func() {
		o := crcopts.Default().WithWidth(16)
		So(useReflectFunc(o), ShouldBeTrue)
	})
}

func TestUseCfgInCRCUpdate(t *testing.T) {
	Convey("table-driven only needs width and reflect_in", t, func() {
		o := crcopts.Default().WithWidth(16).WithReflectIn(false)
		So(useCfgInCRCUpdate(o), ShouldBeTrue)
	})
	Convey("missing reflect_in means the update function still needs cfg", t, func() {
		o := crcopts.Default().WithWidth(16)
		So(useCfgInCRCUpdate(o), ShouldBeFalse)
	})
}

func TestUseInlineCRCFinalize(t *testing.T) {
	Convey("bit-by-bit is never inlined", t, func() {
		o := fullModel()
		o.Algorithm = crcopts.BitByBit
		So(useInlineCRCFinalize(o), ShouldBeFalse)
	})
	Convey("a fully defined table-driven model is inlined", t, func() {
		So(useInlineCRCFinalize(fullModel()), ShouldBeTrue)
	})
}
