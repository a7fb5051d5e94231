package crcengine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcopts"
)

func model(width uint, poly uint64, refIn bool, xorIn uint64, refOut bool, xorOut uint64) crcopts.Options {
	o := crcopts.Default()
	o.Algorithm = crcopts.TableDriven
	o = o.WithWidth(width).WithPoly(poly).WithReflectIn(refIn).
		WithXorIn(xorIn).WithReflectOut(refOut).WithXorOut(xorOut)
	return o
}

// knownModels mirrors the literal expectations in the project's
// end-to-end test table (CRC-16/CCITT-FALSE, CRC-16/ARC, CRC-32,
// CRC-32/BZIP2, CRC-8), checked against the ASCII string "123456789".
var knownModels = []struct {
	name     string
	o        crcopts.Options
	expected uint64
}{
	{"CRC-16/CCITT-FALSE", model(16, 0x1021, false, 0xFFFF, false, 0x0000), 0x29B1},
	{"CRC-16/ARC", model(16, 0x8005, true, 0x0000, true, 0x0000), 0xBB3D},
	{"CRC-32", model(32, 0x04C11DB7, true, 0xFFFFFFFF, true, 0xFFFFFFFF), 0xCBF43926},
	{"CRC-32/BZIP2", model(32, 0x04C11DB7, false, 0xFFFFFFFF, false, 0xFFFFFFFF), 0xFC891918},
	{"CRC-8", model(8, 0x07, false, 0x00, false, 0x00), 0xF4},
}

var check = []byte("123456789")

func TestKnownModelsAgreeAcrossAlgorithms(t *testing.T) {
	Convey("every reference algorithm reproduces the catalogue checksum", t, func() {
		for _, tc := range knownModels {
			Convey(tc.name, func() {
				bbb, err := BitByBit(tc.o, check)
				So(err, ShouldBeNil)
				So(bbb, ShouldEqual, tc.expected)

				bbf, err := BitByBitFast(tc.o, check)
				So(err, ShouldBeNil)
				So(bbf, ShouldEqual, tc.expected)

				tbl, err := TableDriven(tc.o, check)
				So(err, ShouldBeNil)
				So(tbl, ShouldEqual, tc.expected)
			})
		}
	})
}

func TestReflectionInvolution(t *testing.T) {
	Convey("Reflect is its own inverse within width bits", t, func() {
		for _, w := range []uint{1, 5, 8, 16, 31, 32, 63, 64} {
			v := uint64(0xDEADBEEFCAFEBABE)
			r1 := Reflect(v, w)
			r2 := Reflect(r1, w)
			So(r2, ShouldEqual, v&maskOf(w))
		}
	})
}

func TestEmptyInput(t *testing.T) {
	Convey("the CRC of empty input equals finalize(init)", t, func() {
		for _, tc := range knownModels {
			bbb, err := BitByBit(tc.o, nil)
			So(err, ShouldBeNil)
			bbf, err := BitByBitFast(tc.o, nil)
			So(err, ShouldBeNil)
			tbl, err := TableDriven(tc.o, nil)
			So(err, ShouldBeNil)
			So(bbb, ShouldEqual, bbf)
			So(bbf, ShouldEqual, tbl)
		}
	})

	Convey("CRC-5 over empty input is finalize(init)", t, func() {
		o := model(5, 0x05, false, 0x00, false, 0x00)
		got, err := BitByBit(o, nil)
		So(err, ShouldBeNil)
		So(got&^uint64(0x1F), ShouldEqual, 0)
		// init is xor_in (0x00); finalize applies no reflection and xor_out 0x00
		So(got, ShouldEqual, uint64(0x00))
	})
}

func TestMaskClosure(t *testing.T) {
	Convey("results never exceed the width's mask", t, func() {
		for _, tc := range knownModels {
			for _, in := range [][]byte{nil, {0x00}, {0x01}, {0x00, 0x00, 0x00, 0x00}, {0xFF}} {
				got, err := TableDriven(tc.o, in)
				So(err, ShouldBeNil)
				m, _ := tc.o.Mask()
				So(got&^m, ShouldEqual, 0)
			}
		}
	})
}

func TestVariableWidth(t *testing.T) {
	const crc64JonesPoly = 0xad93d23594c935a9

	widths := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13,
		15, 16, 17, 23, 24, 25, 31, 32, 33, 63, 64}

	Convey("all three algorithms agree across a spread of widths", t, func() {
		for _, w := range widths {
			o := model(w, crc64JonesPoly&maskOf(w), true, 0, true, 0)
			for _, in := range [][]byte{nil, {0x00}, {0x01}, {0xFF}, []byte("123456789")} {
				bbb, err := BitByBit(o, in)
				So(err, ShouldBeNil)
				bbf, err := BitByBitFast(o, in)
				So(err, ShouldBeNil)
				tbl, err := TableDriven(o, in)
				So(err, ShouldBeNil)
				So(bbf, ShouldEqual, bbb)
				So(tbl, ShouldEqual, bbb)
			}
		}
	})
}

func TestSliceByOneMatchesScalar(t *testing.T) {
	Convey("slice-by-1 is exactly the scalar table-driven algorithm", t, func() {
		for _, tc := range knownModels {
			tables, err := GenSliceTables(tc.o, 1)
			So(err, ShouldBeNil)
			sliced, err := TableDrivenSliced(tc.o, tables, check)
			So(err, ShouldBeNil)
			So(sliced, ShouldEqual, tc.expected)
		}
	})
}

func TestSliceByNMatchesScalarAcrossLengths(t *testing.T) {
	crc32 := model(32, 0x04C11DB7, true, 0xFFFFFFFF, true, 0xFFFFFFFF)
	data := []byte("The quick brown fox jumps over the lazy dog, 0123456789!")

	Convey("slice-by-N agrees with the scalar table-driven algorithm for every window length", t, func() {
		for _, sliceBy := range []uint{4, 8, 16} {
			tables, err := GenSliceTables(crc32, sliceBy)
			So(err, ShouldBeNil)
			// Exercise every remainder mod sliceBy, including a full
			// multiple, so the partial-window tail path is covered too.
			for n := uint(0); n <= sliceBy+2 && n <= uint(len(data)); n++ {
				in := data[:n]
				want, err := TableDriven(crc32, in)
				So(err, ShouldBeNil)
				got, err := TableDrivenSliced(crc32, tables, in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
			full, err := TableDriven(crc32, data)
			So(err, ShouldBeNil)
			sliced, err := TableDrivenSliced(crc32, tables, data)
			So(err, ShouldBeNil)
			So(sliced, ShouldEqual, full)
		}
	})
}

func TestUndefinedParameterIsInternalError(t *testing.T) {
	Convey("an Undefined parameter reaching the engine is an internal error", t, func() {
		o := crcopts.Default()
		_, err := BitByBit(o, check)
		So(err, ShouldNotBeNil)
	})
}
