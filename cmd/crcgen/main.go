// Command crcgen computes CRC checksums and generates standalone C
// source implementing a chosen CRC model, following the parameter set
// popularised by pycrc.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mbsulliv/crcgen/internal/crcerr"
	"github.com/mbsulliv/crcgen/internal/crcopts"
	"github.com/mbsulliv/crcgen/internal/driver"
	"github.com/mbsulliv/crcgen/internal/models"
)

// parseNumber accepts pycrc's permissive poly/xor-in/xor-out grammar:
// a decimal or 0x-prefixed hex literal.
func parseNumber(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

// parseBool accepts pycrc's permissive true/false grammar: the usual
// strconv.ParseBool spellings plus "0"/"1".
func parseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

var log = logrus.New()

type flags struct {
	model         string
	width         uint
	poly          string
	reflectIn     string
	xorIn         string
	reflectOut    string
	xorOut        string
	algorithm     string
	tableIdxWidth uint
	sliceBy       uint
	cstd          string
	crcType       string
	symbolPrefix  string
	includes      []string
	output        string

	checkString    string
	checkHexString string
	checkFile      string

	generateH    bool
	generateC    bool
	generateMain bool
	generateTbl  bool

	verbose bool
}

func main() {
	var f flags
	root := &cobra.Command{
		Use:   "crcgen",
		Short: "Compute CRC checksums and generate C CRC implementations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	pf := root.Flags()
	pf.StringVar(&f.model, "model", "", "named CRC model from the built-in catalogue (e.g. crc-32)")
	pf.UintVar(&f.width, "width", 0, "CRC register width in bits")
	pf.StringVar(&f.poly, "poly", "", "polynomial, hex or decimal")
	pf.StringVar(&f.reflectIn, "reflect-in", "", "reflect input bytes (true/false)")
	pf.StringVar(&f.xorIn, "xor-in", "", "initial register value, hex or decimal")
	pf.StringVar(&f.reflectOut, "reflect-out", "", "reflect the final register (true/false)")
	pf.StringVar(&f.xorOut, "xor-out", "", "value XOR-ed into the final CRC, hex or decimal")
	pf.StringVar(&f.algorithm, "algorithm", "table-driven", "bit-by-bit|bit-by-bit-fast|table-driven")
	pf.UintVar(&f.tableIdxWidth, "table-idx-width", 8, "bits consumed per table lookup: 1, 2, 4 or 8")
	pf.UintVar(&f.sliceBy, "slice-by", 1, "slice-by-N table acceleration: 1, 4, 8 or 16")
	pf.StringVar(&f.cstd, "c-std", "C99", "C99 or C89")
	pf.StringVar(&f.crcType, "crc-type", "", "override the generated crc_t underlying type")
	pf.StringVar(&f.symbolPrefix, "symbol-prefix", "crc_", "prefix for generated C identifiers")
	pf.StringArrayVar(&f.includes, "include-file", nil, "extra #include directive (repeatable)")
	pf.StringVarP(&f.output, "output", "o", "", "output file; empty means stdout")

	pf.StringVar(&f.checkString, "check-string", "123456789", "compute the CRC of this literal string")
	pf.StringVar(&f.checkHexString, "check-hexstring", "", "compute the CRC of these hex-encoded bytes")
	pf.StringVar(&f.checkFile, "check-file", "", "compute the CRC of this file's contents")

	pf.BoolVar(&f.generateH, "generate-h", false, "generate the C header")
	pf.BoolVar(&f.generateC, "generate-c", false, "generate the C implementation")
	pf.BoolVar(&f.generateMain, "generate-c-main", false, "generate a standalone C program")
	pf.BoolVar(&f.generateTbl, "generate-table", false, "generate just the lookup table initializer")

	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log resolved options to stderr")

	root.AddCommand(listModelsCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(crcerr.ExitCode(err))
	}
}

func listModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-models",
		Short: "List the built-in CRC model catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range models.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func run(f flags) error {
	if f.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	o, err := resolveOptions(f)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"width":     o.Width,
		"algorithm": o.Algorithm.String(),
		"action":    o.Action,
	}).Debug("resolved options")

	in := driver.InputSpec{
		String:    f.checkString,
		HexString: f.checkHexString,
		File:      f.checkFile,
	}
	if f.checkHexString != "" {
		in.String = ""
	}
	if f.checkFile != "" {
		in.String = ""
		in.HexString = ""
	}

	return driver.Run(o, in, os.Stdout)
}

func resolveOptions(f flags) (crcopts.Options, error) {
	o := crcopts.Default()

	if f.model != "" {
		m, ok := models.Lookup(f.model)
		if !ok {
			return o, crcerr.Paramf("unknown model %q (see crcgen list-models)", f.model)
		}
		o = m
	}

	if f.width != 0 {
		o = o.WithWidth(f.width)
	}
	if f.poly != "" {
		v, err := parseNumber(f.poly)
		if err != nil {
			return o, crcerr.Paramf("--poly: %v", err)
		}
		o = o.WithPoly(v)
	}
	if f.reflectIn != "" {
		v, err := parseBool(f.reflectIn)
		if err != nil {
			return o, crcerr.Paramf("--reflect-in: %v", err)
		}
		o = o.WithReflectIn(v)
	}
	if f.xorIn != "" {
		v, err := parseNumber(f.xorIn)
		if err != nil {
			return o, crcerr.Paramf("--xor-in: %v", err)
		}
		o = o.WithXorIn(v)
	}
	if f.reflectOut != "" {
		v, err := parseBool(f.reflectOut)
		if err != nil {
			return o, crcerr.Paramf("--reflect-out: %v", err)
		}
		o = o.WithReflectOut(v)
	}
	if f.xorOut != "" {
		v, err := parseNumber(f.xorOut)
		if err != nil {
			return o, crcerr.Paramf("--xor-out: %v", err)
		}
		o = o.WithXorOut(v)
	}

	switch f.algorithm {
	case "bit-by-bit":
		o.Algorithm = crcopts.BitByBit
	case "bit-by-bit-fast":
		o.Algorithm = crcopts.BitByBitFast
	case "table-driven":
		o.Algorithm = crcopts.TableDriven
	default:
		return o, crcerr.Paramf("--algorithm: unknown value %q", f.algorithm)
	}

	o.TableIdxWidth = f.tableIdxWidth
	o.SliceBy = f.sliceBy

	switch f.cstd {
	case "C99":
		o.CStd = crcopts.C99
	case "C89":
		o.CStd = crcopts.C89
	default:
		return o, crcerr.Paramf("--c-std: unknown value %q", f.cstd)
	}

	o.CRCType = f.crcType
	if f.symbolPrefix != "" {
		o.SymbolPrefix = f.symbolPrefix
	}
	o.IncludeFiles = f.includes
	o.OutputFile = f.output

	o.Action = crcopts.ActionCompute
	switch {
	case f.generateH:
		o.Action = crcopts.ActionGenerateH
	case f.generateC:
		o.Action = crcopts.ActionGenerateC
	case f.generateMain:
		o.Action = crcopts.ActionGenerateCMain
	case f.generateTbl:
		o.Action = crcopts.ActionGenerateTable
	}

	return o, nil
}
