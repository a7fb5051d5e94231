// Package driver wires a fully-built Options to the side effect it
// asks for: printing a checksum, or writing generated C source. It is
// the thin layer between the CLI (cmd/crcgen) and the engine/codegen
// packages, kept separate so the CLI package only has to worry about
// flag parsing and this package only has to worry about actions.
package driver

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mbsulliv/crcgen/internal/codegen"
	"github.com/mbsulliv/crcgen/internal/crcengine"
	"github.com/mbsulliv/crcgen/internal/crcerr"
	"github.com/mbsulliv/crcgen/internal/crcopts"
)

// InputSpec describes where the bytes to check come from; exactly one
// field should be set, mirroring pycrc's mutually exclusive
// --check-string / --check-hexstring / --check-file flags.
type InputSpec struct {
	String    string
	HexString string
	File      string
}

// Resolve reads the bytes InputSpec points at.
func (s InputSpec) Resolve() ([]byte, error) {
	switch {
	case s.File != "":
		data, err := os.ReadFile(s.File)
		if err != nil {
			return nil, crcerr.IOf(err, "reading %s", s.File)
		}
		return data, nil
	case s.HexString != "":
		clean := strings.ReplaceAll(s.HexString, " ", "")
		data, err := hex.DecodeString(clean)
		if err != nil {
			return nil, crcerr.Paramf("invalid hex string %q: %v", s.HexString, err)
		}
		return data, nil
	default:
		return []byte(s.String), nil
	}
}

// Compute validates o, resolves in, and returns the checksum.
func Compute(o crcopts.Options, in InputSpec) (uint64, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	data, err := in.Resolve()
	if err != nil {
		return 0, err
	}
	return crcengine.Compute(o, data)
}

// Run performs o.Action against w (for compute output) or the
// filesystem (for generate output, honoring o.OutputFile), returning
// any error encountered. It never calls os.Exit; callers translate the
// returned error to a process exit code via crcerr.ExitCode.
func Run(o crcopts.Options, in InputSpec, w io.Writer) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.Action == crcopts.ActionCompute {
		data, err := in.Resolve()
		if err != nil {
			return err
		}
		crc, err := crcengine.Compute(o, data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "0x%x\n", crc)
		return err
	}

	source := codegen.Generate(o)
	if o.OutputFile == "" {
		_, err := fmt.Fprintln(w, source)
		return err
	}
	if err := os.WriteFile(o.OutputFile, []byte(source+"\n"), 0o644); err != nil {
		return crcerr.IOf(err, "writing %s", o.OutputFile)
	}
	return nil
}
