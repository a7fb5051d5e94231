package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/crcopts"
)

func crc32Options() crcopts.Options {
	o := crcopts.Default()
	o.Action = crcopts.ActionCompute
	return o.WithWidth(32).WithPoly(0x04C11DB7).WithReflectIn(true).
		WithXorIn(0xFFFFFFFF).WithReflectOut(true).WithXorOut(0xFFFFFFFF)
}

func TestInputSpecResolve(t *testing.T) {
	Convey("a plain string resolves to its bytes", t, func() {
		data, err := InputSpec{String: "123456789"}.Resolve()
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "123456789")
	})

	Convey("a hex string decodes, tolerating spaces", t, func() {
		data, err := InputSpec{HexString: "31 32 33"}.Resolve()
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "123")
	})

	Convey("an invalid hex string is a parameter error", t, func() {
		_, err := InputSpec{HexString: "zz"}.Resolve()
		So(err, ShouldNotBeNil)
	})

	Convey("a file path reads the file's contents", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "in.bin")
		So(os.WriteFile(path, []byte("123456789"), 0o644), ShouldBeNil)

		data, err := InputSpec{File: path}.Resolve()
		So(err, ShouldBeNil)
		So(string(data), ShouldEqual, "123456789")
	})

	Convey("a missing file is an IO error", t, func() {
		_, err := InputSpec{File: "/nonexistent/path"}.Resolve()
		So(err, ShouldNotBeNil)
	})
}

func TestComputeMatchesKnownChecksum(t *testing.T) {
	Convey("CRC-32 of the catalogue check string", t, func() {
		got, err := Compute(crc32Options(), InputSpec{String: "123456789"})
		So(err, ShouldBeNil)
		So(got, ShouldEqual, uint64(0xCBF43926))
	})
}

func TestRunComputeWritesHexLine(t *testing.T) {
	Convey("compute mode prints 0x-prefixed hex followed by a newline", t, func() {
		var buf bytes.Buffer
		err := Run(crc32Options(), InputSpec{String: "123456789"}, &buf)
		So(err, ShouldBeNil)
		So(buf.String(), ShouldEqual, "0xcbf43926\n")
	})
}

func TestRunGenerateWritesToStdoutOrFile(t *testing.T) {
	o := crcopts.Default()
	o.Action = crcopts.ActionGenerateH
	o = o.WithWidth(16).WithPoly(0x1021).WithReflectIn(false).
		WithXorIn(0xFFFF).WithReflectOut(false).WithXorOut(0)

	Convey("an empty OutputFile writes generated source to w", t, func() {
		var buf bytes.Buffer
		err := Run(o, InputSpec{}, &buf)
		So(err, ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "typedef uint_fast16_t crc_t;")
	})

	Convey("a concrete OutputFile writes to disk instead of w", t, func() {
		dir := t.TempDir()
		out := o
		out.OutputFile = filepath.Join(dir, "crc16.h")
		var buf bytes.Buffer
		err := Run(out, InputSpec{}, &buf)
		So(err, ShouldBeNil)
		So(buf.Len(), ShouldEqual, 0)

		written, err := os.ReadFile(out.OutputFile)
		So(err, ShouldBeNil)
		So(string(written), ShouldContainSubstring, "typedef uint_fast16_t crc_t;")
	})
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	Convey("an incomplete compute-mode model fails validation before touching input", t, func() {
		o := crcopts.Default()
		o.Action = crcopts.ActionCompute
		var buf bytes.Buffer
		err := Run(o, InputSpec{String: "x"}, &buf)
		So(err, ShouldNotBeNil)
	})
}
