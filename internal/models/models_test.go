package models

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcengine"
)

func TestCatalogueEntriesAreValidAndChecksumCorrectly(t *testing.T) {
	check := []byte("123456789")
	expected := map[string]uint64{
		"crc-8":              0xF4,
		"crc-16/arc":         0xBB3D,
		"crc-16/ccitt-false": 0x29B1,
		"crc-32":             0xCBF43926,
		"crc-32/bzip2":       0xFC891918,
	}

	Convey("every listed known-answer model reproduces its catalogue checksum", t, func() {
		for name, want := range expected {
			o, ok := Lookup(name)
			So(ok, ShouldBeTrue)
			So(o.Validate(), ShouldBeNil)

			got, err := crcengine.Compute(o, check)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, want)
		}
	})
}

func TestLookupMissReturnsFalse(t *testing.T) {
	Convey("an unknown model name is reported, not silently defaulted", t, func() {
		_, ok := Lookup("crc-does-not-exist")
		So(ok, ShouldBeFalse)
	})
}

func TestNamesCoversTheFullCatalogue(t *testing.T) {
	Convey("every name returned by Names resolves via Lookup", t, func() {
		for _, n := range Names() {
			_, ok := Lookup(n)
			So(ok, ShouldBeTrue)
		}
	})
}
