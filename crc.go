//-----------------------------------------------------------------------------

// Package crcgen is a parameterisable CRC calculation toolkit: given a
// width, polynomial, and the usual reflect/xor knobs, it computes
// checksums for arbitrary-width CRCs and can also emit standalone C
// source implementing the same algorithm (see the codegen subpackages
// under internal/ and the crcgen command).
//
// It generalises the single hard-coded CRC-16 table of its ancestor
// into an arbitrary-width table built from an Options value, the same
// way MakeTable once built one for a fixed TAlgo.
package crcgen

import (
	"github.com/mbsulliv/crcgen/internal/crcengine"
	"github.com/mbsulliv/crcgen/internal/crcopts"
)

//-----------------------------------------------------------------------------

// Options re-exports the CRC model type so callers of this package
// don't need to import internal/crcopts directly.
type Options = crcopts.Options

// Model builds a fully specified Options from the six CRC parameters,
// the role the predecessor's TAlgo variables played. It does no lookup
// by name; see internal/models for the named catalogue.
func Model(width uint, poly uint64, reflectIn bool, xorIn uint64, reflectOut bool, xorOut uint64) Options {
	return crcopts.Default().WithWidth(width).WithPoly(poly).WithReflectIn(reflectIn).
		WithXorIn(xorIn).WithReflectOut(reflectOut).WithXorOut(xorOut)
}

// Table is the generalised analogue of TTable: a precomputed lookup
// table bound to one Options value, reused across many Checksum calls
// so repeated checksums of the same algorithm don't regenerate it.
type Table struct {
	opts crcopts.Options
	data []uint64
}

//-----------------------------------------------------------------------------

// MakeTable returns the Table constructed from aOpts. aOpts must have
// Width, Poly and ReflectIn set; MakeTable panics otherwise, the same
// way the predecessor's MakeTable assumed a fully populated TAlgo.
func MakeTable(aOpts Options) *Table {
	vData, vErr := crcengine.GenTable(aOpts)
	if vErr != nil {
		panic(vErr)
	}
	return &Table{opts: aOpts, data: vData}
}

//--------------------------------------

// Init returns the initial value for the CRC register of aTable's model.
func Init(aTable *Table) uint64 {
	vReg := *aTable.opts.XorIn & mustMask(aTable.opts)
	if *aTable.opts.ReflectIn {
		vReg = crcengine.Reflect(vReg, *aTable.opts.Width)
	}
	shift, _ := aTable.opts.CrcShift()
	return vReg << shift
}

//--------------------------------------

// Update returns the result of folding the bytes in data into crc using
// aTable, continuing a checksum started with Init.
func Update(crc uint64, data []byte, aTable *Table) uint64 {
	vReg, vErr := crcengine.TableDrivenRegisterUpdate(aTable.opts, aTable.data, crc, data)
	if vErr != nil {
		panic(vErr)
	}
	return vReg
}

//--------------------------------------

// Complete returns the final CRC value after post-processing crc
// (reflect-out and xor-out) for aTable's model.
func Complete(crc uint64, aTable *Table) uint64 {
	o := aTable.opts
	shift, _ := o.CrcShift()
	reg := crc >> shift
	if *o.ReflectIn != *o.ReflectOut {
		reg = crcengine.Reflect(reg, *o.Width)
	}
	m := mustMask(o)
	return (reg ^ *o.XorOut) & m
}

//--------------------------------------

// Checksum returns the CRC checksum of data using the algorithm
// represented by aTable.
func Checksum(data []byte, aTable *Table) uint64 {
	crc := Init(aTable)
	crc = Update(crc, data, aTable)
	return Complete(crc, aTable)
}

func mustMask(o crcopts.Options) uint64 {
	m, ok := o.Mask()
	if !ok {
		panic("crcgen: width is Undefined")
	}
	return m
}

//-----------------------------------------------------------------------------
