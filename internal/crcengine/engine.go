// Package crcengine implements the three reference CRC algorithms
// described by the project's CRC model: bit-by-bit, bit-by-bit-fast,
// and table-driven (with optional slice-by-N acceleration). All three
// must agree bit-exactly for any valid model; this package is the
// ground truth the code generator's emitted C is checked against.
//
// Registers are carried in uint64, bounding supported widths to 64 —
// the same ceiling the teacher package fixed at 16 by choosing uint16
// as its register type (mbsulliv/crc16.TTable), generalised here to
// the widest native width crcgen's C backend emits (uint_fast64_t).
package crcengine

import (
	"math/bits"

	"github.com/mbsulliv/crcgen/internal/crcerr"
	"github.com/mbsulliv/crcgen/internal/crcopts"
)

// Reflect reverses the low width bits of value and returns the result
// masked to width bits. Reflect is an involution: Reflect(Reflect(x,
// w), w) == x & mask(w).
func Reflect(value uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	if width >= 64 {
		return bits.Reverse64(value)
	}
	return bits.Reverse64(value) >> (64 - width)
}

func maskOf(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func requireDefined(o crcopts.Options) error {
	if o.UndefinedCRCParameters() {
		return crcerr.Internalf("an Undefined CRC parameter reached the engine")
	}
	return nil
}

// NondirectInit computes the non-direct initial register value used by
// BitByBit: the value that, after width zero-bit shift-xor update
// steps, reproduces xor_in.
func NondirectInit(o crcopts.Options) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	width, poly := *o.Width, *o.Poly
	msbMask, _ := o.MsbMask()
	reg := *o.XorIn
	for i := uint(0); i < width; i++ {
		if reg&1 != 0 {
			reg = ((reg ^ poly) >> 1) | msbMask
		} else {
			reg >>= 1
		}
	}
	return reg, nil
}

// BitByBit runs the reference, tableless CRC algorithm over data.
func BitByBit(o crcopts.Options, data []byte) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	width, poly := *o.Width, *o.Poly
	msbMask, _ := o.MsbMask()
	m := maskOf(width)

	reg, err := NondirectInit(o)
	if err != nil {
		return 0, err
	}

	for _, b := range data {
		if *o.ReflectIn {
			b = byte(Reflect(uint64(b), 8))
		}
		for i := 0; i < 8; i++ {
			bit := (b & 0x80) != 0
			b <<= 1
			msbSet := reg&msbMask != 0
			reg = (reg << 1) & m
			if bit {
				reg |= 1
			}
			if msbSet {
				reg ^= poly
			}
		}
		reg &= m
	}

	for i := uint(0); i < width; i++ {
		msbSet := reg&msbMask != 0
		reg = (reg << 1) & m
		if msbSet {
			reg ^= poly
		}
	}

	if *o.ReflectOut {
		reg = Reflect(reg, width)
	}
	return (reg ^ *o.XorOut) & m, nil
}

// BitByBitFast runs the faster tableless variant of spec §4.1: it skips
// the non-direct-init reconstruction by operating directly on xor_in.
func BitByBitFast(o crcopts.Options, data []byte) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	width, poly := *o.Width, *o.Poly
	msbMask, _ := o.MsbMask()
	m := maskOf(width)

	reg := *o.XorIn & m
	for _, b := range data {
		c := b
		for i := 0; i < 8; i++ {
			var probe byte
			if *o.ReflectIn {
				probe = 1 << i
			} else {
				probe = 0x80 >> i
			}
			bit := (reg & msbMask) != 0
			if c&probe != 0 {
				bit = !bit
			}
			reg = (reg << 1) & m
			if bit {
				reg ^= poly
			}
		}
	}
	reg &= m

	if *o.ReflectOut {
		reg = Reflect(reg, width)
	}
	return (reg ^ *o.XorOut) & m, nil
}

// Table holds the slice-by-N family of CRC lookup tables. Table[k] is the
// table used for the byte k positions back in the input stream;
// slice-by-1 (the non-sliced table-driven implementation) has exactly
// one table at index 0.
type Table [][]uint64

// GenTable builds the base (slice index 0) table for o: table[i] is the
// CRC contribution of byte value i, computed per spec §4.1.
func GenTable(o crcopts.Options) ([]uint64, error) {
	if o.Width == nil || o.Poly == nil || o.ReflectIn == nil {
		return nil, crcerr.Internalf("table generation requires width, poly and reflect_in")
	}
	width, poly := *o.Width, *o.Poly
	idxWidth := o.TableIdxWidth
	tblWidth := o.TableWidth()
	shift, _ := o.CrcShift()
	m := maskOf(width)
	msbMaskShifted := (uint64(1) << (width - 1 + shift))
	polyShifted := poly << shift
	maskShifted := m << shift

	table := make([]uint64, tblWidth)
	for i := uint(0); i < tblWidth; i++ {
		var crc uint64
		if *o.ReflectIn {
			crc = Reflect(uint64(i), idxWidth)
		} else {
			crc = uint64(i)
		}
		crc <<= (width - idxWidth + shift)
		for j := uint(0); j < idxWidth; j++ {
			if crc&msbMaskShifted != 0 {
				crc = (crc << 1) ^ polyShifted
			} else {
				crc <<= 1
			}
		}
		if *o.ReflectIn {
			crc = Reflect(crc>>shift, width) << shift
		}
		table[i] = (crc & maskShifted) >> shift
	}
	return table, nil
}

// GenSliceTables builds the full family of sliceBy tables: table[k][b]
// is the CRC contribution of byte b placed k bytes back in the input
// stream (spec §4.1), derived from the base table by repeated
// application of table[0] to b shifted into an otherwise-zero register.
func GenSliceTables(o crcopts.Options, sliceBy uint) (Table, error) {
	base, err := GenTable(o)
	if err != nil {
		return nil, err
	}
	tables := make(Table, sliceBy)
	tables[0] = base
	if sliceBy == 1 {
		return tables, nil
	}
	width := *o.Width
	m := maskOf(width)
	for k := uint(1); k < sliceBy; k++ {
		tbl := make([]uint64, len(base))
		for b := range base {
			reg := uint64(b)
			if *o.ReflectIn {
				reg = tables[k-1][b]
				reg = base[byte(reg)] ^ (reg >> 8)
			} else {
				reg = tables[k-1][b]
				reg = base[byte(reg>>(width-o.TableIdxWidth))&0xFF] ^ ((reg << o.TableIdxWidth) & m)
			}
			tbl[b] = reg & m
		}
		tables[k] = tbl
	}
	return tables, nil
}

// TableDriven runs the table-driven reference algorithm over data using
// a freshly generated (non-sliced) table. Production callers that
// process many buffers under the same model should generate the table
// once with GenTable and call TableDrivenWithTable instead.
func TableDriven(o crcopts.Options, data []byte) (uint64, error) {
	table, err := GenTable(o)
	if err != nil {
		return 0, err
	}
	return TableDrivenWithTable(o, table, data)
}

// TableDrivenWithTable is TableDriven but reuses a precomputed table,
// avoiding redundant table generation across calls.
func TableDrivenWithTable(o crcopts.Options, table []uint64, data []byte) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	width := *o.Width
	shift, _ := o.CrcShift()
	m := maskOf(width)

	var reg uint64
	if *o.ReflectIn {
		reg = Reflect(*o.XorIn&m, width)
	} else {
		reg = *o.XorIn & m
	}
	reg <<= shift

	reg, err := tableDrivenStep(o, table, reg, data)
	if err != nil {
		return 0, err
	}
	reg >>= shift

	if *o.ReflectIn != *o.ReflectOut {
		reg = Reflect(reg, width)
	}
	return (reg ^ *o.XorOut) & m, nil
}

// tableDrivenStep runs the table-driven core loop only: no init, no
// finalize, just folding data into reg (already shifted per CrcShift).
// It is the piece TableDrivenWithTable and TableDrivenRegisterUpdate
// share, factored out so a caller can init/update/finalize a checksum
// across several calls the way hash.Hash's Write does.
func tableDrivenStep(o crcopts.Options, table []uint64, reg uint64, data []byte) (uint64, error) {
	width := *o.Width
	shift, _ := o.CrcShift()
	idxWidth := o.TableIdxWidth
	m := maskOf(width)
	maskShifted := m << shift

	chunksPerByte := uint(8) / idxWidth
	idxMask := uint64(len(table) - 1)

	if *o.ReflectIn {
		reg >>= shift
		for _, b := range data {
			c := uint64(b)
			for k := uint(0); k < chunksPerByte; k++ {
				idx := (reg ^ c) & idxMask
				reg = table[idx] ^ (reg >> idxWidth)
				c >>= idxWidth
			}
		}
		reg <<= shift
	} else {
		for _, b := range data {
			for k := uint(0); k < chunksPerByte; k++ {
				chunkShift := 8 - idxWidth*(k+1)
				chunk := (uint64(b) >> chunkShift) & idxMask
				idx := ((reg >> (width - idxWidth + shift)) ^ chunk) & idxMask
				reg = ((table[idx] << shift) ^ (reg << idxWidth)) & maskShifted
			}
		}
	}
	return reg, nil
}

// TableDrivenRegisterUpdate folds data into a register that is already
// mid-checksum (shifted and reflected per CrcShift/ReflectIn, but not
// yet finalized), for streaming callers that hold the register across
// many Write calls rather than handing all the data to TableDriven at
// once.
func TableDrivenRegisterUpdate(o crcopts.Options, table []uint64, reg uint64, data []byte) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	return tableDrivenStep(o, table, reg, data)
}

// TableDrivenSliced runs the table-driven algorithm using the
// slice-by-N family of tables from GenSliceTables, one N-byte window at
// a time. tables[k] holds the contribution of a byte k positions back
// in the stream (see GenSliceTables), so within a window the earliest
// byte (sliceBy-1 positions back, counting from the window's last byte)
// is looked up in tables[sliceBy-1] and the latest byte in tables[0] —
// the reverse of the window's byte order. It is numerically equivalent
// to TableDriven for every input and every sliceBy in {1,4,8,16} by
// construction of the slice tables (spec §8's slice-by equivalence
// property), and requires reflect_in to be set to use tables built for
// the reflected walk. A final partial window (len(data) not a multiple
// of sliceBy) is finished one byte at a time against tables[0], same as
// the non-sliced algorithm. crcgen's generated C additionally
// vectorises the full-window case into N-byte-at-a-time word loads
// (spec §4.1's "slice-by-N fast path"); that optimisation is the C
// backend's concern, not this reference implementation's.
func TableDrivenSliced(o crcopts.Options, tables Table, data []byte) (uint64, error) {
	if err := requireDefined(o); err != nil {
		return 0, err
	}
	if !*o.ReflectIn {
		return TableDrivenWithTable(o, tables[0], data)
	}
	width := *o.Width
	m := maskOf(width)
	sliceBy := uint(len(tables))

	reg := Reflect(*o.XorIn&m, width)
	n := uint(len(data))
	full := n - n%sliceBy

	for base := uint(0); base < full; base += sliceBy {
		window := data[base : base+sliceBy]
		acc := reg >> (8 * sliceBy)
		for k, b := range window {
			idx := byte(reg>>(8*uint(k))) ^ b
			acc ^= tables[sliceBy-1-uint(k)][idx]
		}
		reg = acc
	}

	for _, b := range data[full:] {
		reg = tables[0][byte(reg)^b] ^ (reg >> 8)
	}

	if *o.ReflectIn != *o.ReflectOut {
		reg = Reflect(reg, width)
	}
	return (reg ^ *o.XorOut) & m, nil
}

// Compute dispatches to the algorithm named by o.Algorithm.
func Compute(o crcopts.Options, data []byte) (uint64, error) {
	switch o.Algorithm {
	case crcopts.BitByBit:
		return BitByBit(o, data)
	case crcopts.BitByBitFast:
		return BitByBitFast(o, data)
	case crcopts.TableDriven:
		return TableDriven(o, data)
	default:
		return 0, crcerr.Internalf("unknown algorithm %v", o.Algorithm)
	}
}
