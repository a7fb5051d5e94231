package codegen

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcopts"
)

func TestGenerateHeaderContainsCoreDeclarations(t *testing.T) {
	o := fullModel()
	o.Action = crcopts.ActionGenerateH
	out := Generate(o)

	Convey("a header declares the crc_t typedef and the three API functions", t, func() {
		So(out, ShouldContainSubstring, "typedef uint_fast16_t crc_t;")
		So(out, ShouldContainSubstring, "crc_update(")
		So(out, ShouldContainSubstring, "#ifndef")
		So(out, ShouldContainSubstring, "#endif")
	})

	Convey("a fully defined model emits no cfg_t struct", t, func() {
		So(out, ShouldNotContainSubstring, "crc_cfg_t;")
	})
}

func TestGenerateHeaderWithUndefinedParametersEmitsCfgT(t *testing.T) {
	o := crcopts.Default().WithWidth(16)
	o.Action = crcopts.ActionGenerateH
	out := Generate(o)

	Convey("an Undefined poly forces a cfg_t struct and table generator", t, func() {
		So(out, ShouldContainSubstring, "crc_cfg_t;")
		So(out, ShouldContainSubstring, "crc_table_gen(")
	})
}

func TestGenerateSourceContainsTableAndFunctions(t *testing.T) {
	o := fullModel()
	o.Action = crcopts.ActionGenerateC
	out := Generate(o)

	Convey("the source file declares a constant table and the update function body", t, func() {
		So(out, ShouldContainSubstring, "static const crc_t crc_table[256]")
		So(out, ShouldContainSubstring, "crc_t crc_update(crc_t crc, const void *data, size_t data_len)")
		So(out, ShouldContainSubstring, "tbl_idx")
	})
}

func TestGenerateTableEmitsBareInitializer(t *testing.T) {
	o := crcopts.Default().WithWidth(8).WithPoly(0x07).WithReflectIn(false)
	o.Action = crcopts.ActionGenerateTable
	out := Generate(o)

	Convey("the table action emits only a brace-initializer", t, func() {
		So(strings.TrimSpace(out), ShouldStartWith, "{")
	})
}

func TestGenerateCMainIncludesHeaderAndSource(t *testing.T) {
	o := fullModel()
	o.Action = crcopts.ActionGenerateCMain
	out := Generate(o)

	Convey("the standalone program wires init/update/finalize together", t, func() {
		So(out, ShouldContainSubstring, "int main(int argc, char *argv[])")
		So(out, ShouldContainSubstring, "crc_init()")
		So(out, ShouldContainSubstring, "crc_update(")
		So(out, ShouldContainSubstring, "crc_finalize(crc)")
	})
}

func TestBitByBitSourceUsesNonDirectInit(t *testing.T) {
	o := fullModel()
	o.Algorithm = crcopts.BitByBit
	o.Action = crcopts.ActionGenerateC
	// A known xor_in makes crc_init a header constant; leave it Undefined
	// so the source has to carry the register-shifting body.
	o.XorIn = nil
	out := Generate(o)

	Convey("bit-by-bit emits a register-shifting init function body", t, func() {
		So(out, ShouldContainSubstring, "crc_init(const crc_cfg_t *cfg)")
		So(out, ShouldContainSubstring, "crc >>= 1;")
	})
}
