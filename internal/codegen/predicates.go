package codegen

import "github.com/mbsulliv/crcgen/internal/crcopts"

// useCfg reports whether a cfg_t configuration struct needs to exist at
// all: it does whenever any CRC parameter is left Undefined.
func useCfg(o crcopts.Options) bool { return o.UndefinedCRCParameters() }

// useConstantCRCInit reports whether crc_init can be a compile-time
// constant (a #define or an argument-less inline function) rather than
// a function taking cfg.
func useConstantCRCInit(o crcopts.Options) bool {
	switch o.Algorithm {
	case crcopts.BitByBit:
		return o.Width != nil && o.Poly != nil && o.XorIn != nil
	case crcopts.BitByBitFast:
		return o.XorIn != nil
	case crcopts.TableDriven:
		return o.Width != nil && o.ReflectIn != nil && o.XorIn != nil
	default:
		return false
	}
}

// useReflectFunc reports whether crc_reflect needs to exist at all.
func useReflectFunc(o crcopts.Options) bool {
	if o.ReflectIn == nil || o.ReflectOut == nil {
		return true
	}
	switch o.Algorithm {
	case crcopts.TableDriven:
		if *o.ReflectIn && *o.ReflectOut {
			return true
		}
		if *o.ReflectIn != *o.ReflectOut {
			return true
		}
	case crcopts.BitByBit, crcopts.BitByBitFast:
		if *o.ReflectIn || *o.ReflectOut {
			return true
		}
	}
	return false
}

// useStaticReflectFunc reports whether crc_reflect, when emitted, should
// be file-local (static) rather than part of the public header API.
func useStaticReflectFunc(o crcopts.Options) bool {
	if o.Algorithm == crcopts.TableDriven {
		return false
	}
	if o.ReflectOut != nil && o.Algorithm == crcopts.BitByBitFast {
		return false
	}
	return true
}

// useCRCTableGen reports whether a runtime table-generator function is
// needed because the table can't be fully precomputed at generate time.
func useCRCTableGen(o crcopts.Options) bool {
	if o.Algorithm != crcopts.TableDriven {
		return false
	}
	return o.Width == nil || o.Poly == nil || o.ReflectIn == nil
}

// useConstantCRCTable reports whether the lookup table is knowable at
// generate time (the complement of useCRCTableGen's table-driven case).
func useConstantCRCTable(o crcopts.Options) bool {
	return o.Width != nil && o.Poly != nil && o.ReflectIn != nil
}

// useCfgInCRCUpdate reports whether crc_update can be emitted without a
// cfg_t parameter: true once every parameter crc_update's inner loop
// touches is concrete, false when the signature must take cfg.
func useCfgInCRCUpdate(o crcopts.Options) bool {
	switch o.Algorithm {
	case crcopts.BitByBit, crcopts.BitByBitFast:
		return o.Width != nil && o.Poly != nil && o.ReflectIn != nil
	case crcopts.TableDriven:
		return o.Width != nil && o.ReflectIn != nil
	}
	return false
}

// useCfgInFinalize reports whether crc_finalize can be emitted without a
// cfg_t parameter: true once every parameter it reads is concrete, false
// when the signature must take cfg.
func useCfgInFinalize(o crcopts.Options) bool {
	switch o.Algorithm {
	case crcopts.BitByBit:
		return o.Width != nil && o.Poly != nil && o.ReflectOut != nil && o.XorOut != nil
	case crcopts.BitByBitFast:
		return o.Width != nil && o.ReflectOut != nil && o.XorOut != nil
	case crcopts.TableDriven:
		return o.Width != nil && o.ReflectIn != nil && o.ReflectOut != nil && o.XorOut != nil
	}
	return false
}

// useInlineCRCFinalize reports whether crc_finalize can be emitted as an
// inline function (or macro, under C89) instead of a true function with
// a cfg_t parameter.
func useInlineCRCFinalize(o crcopts.Options) bool {
	if o.Algorithm != crcopts.BitByBitFast && o.Algorithm != crcopts.TableDriven {
		return false
	}
	return o.Width != nil && o.ReflectIn != nil && o.ReflectOut != nil && o.XorOut != nil
}
