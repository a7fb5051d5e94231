// Package models is the built-in catalogue of named CRC algorithms,
// generalising the teacher package's single hard-coded CRC-16/CCITT
// table (mbsulliv/crc16.TTable) into a lookup keyed by the catalogue
// name used throughout the CRC community (the names reproduced here
// match the RevEng CRC catalogue pycrc itself ships).
package models

import "github.com/mbsulliv/crcgen/internal/crcopts"

type entry struct {
	name string
	opts crcopts.Options
}

func model(width uint, poly uint64, refIn bool, xorIn uint64, refOut bool, xorOut uint64) crcopts.Options {
	return crcopts.Default().WithWidth(width).WithPoly(poly).WithReflectIn(refIn).
		WithXorIn(xorIn).WithReflectOut(refOut).WithXorOut(xorOut)
}

var catalogue = []entry{
	{"crc-5", model(5, 0x05, true, 0x1f, true, 0x1f)},
	{"crc-5/epc", model(5, 0x09, false, 0x09, false, 0x00)},
	{"crc-8", model(8, 0x07, false, 0x00, false, 0x00)},
	{"crc-8/ebu", model(8, 0x1d, true, 0xff, true, 0x00)},
	{"crc-16", model(16, 0x8005, true, 0x0000, true, 0x0000)},
	{"crc-16/arc", model(16, 0x8005, true, 0x0000, true, 0x0000)},
	{"crc-16/ccitt-false", model(16, 0x1021, false, 0xffff, false, 0x0000)},
	{"crc-16/x-25", model(16, 0x1021, true, 0xffff, true, 0xffff)},
	{"crc-16/xmodem", model(16, 0x1021, false, 0x0000, false, 0x0000)},
	{"crc-16/modbus", model(16, 0x8005, true, 0xffff, true, 0x0000)},
	{"crc-24", model(24, 0x864cfb, false, 0xb704ce, false, 0x000000)},
	{"crc-32", model(32, 0x04c11db7, true, 0xffffffff, true, 0xffffffff)},
	{"crc-32/bzip2", model(32, 0x04c11db7, false, 0xffffffff, false, 0xffffffff)},
	{"crc-32c", model(32, 0x1edc6f41, true, 0xffffffff, true, 0xffffffff)},
	{"crc-32/posix", model(32, 0x04c11db7, false, 0x00000000, false, 0xffffffff)},
	{"crc-64", model(64, 0x000000000000001b, true, 0x0000000000000000, true, 0x0000000000000000)},
	{"crc-64/jones", model(64, 0xad93d23594c935a9, true, 0xffffffffffffffff, true, 0x0000000000000000)},
	{"crc-64/xz", model(64, 0x42f0e1eba9ea3693, true, 0xffffffffffffffff, true, 0xffffffffffffffff)},
}

// Lookup returns the named model's Options and true, or a zero Options
// and false if name is not in the catalogue.
func Lookup(name string) (crcopts.Options, bool) {
	for _, e := range catalogue {
		if e.name == name {
			return e.opts, true
		}
	}
	return crcopts.Options{}, false
}

// Names returns every catalogue entry's name, in catalogue order, for
// --list-models-style CLI help.
func Names() []string {
	names := make([]string, len(catalogue))
	for i, e := range catalogue {
		names[i] = e.name
	}
	return names
}
