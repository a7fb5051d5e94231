//-----------------------------------------------------------------------------

package crcgen

import (
	"fmt"
	"path"
	"runtime"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mbsulliv/crcgen/internal/models"
)

//-----------------------------------------------------------------------------

// Returns the function name of the calling function.
func funcName() string {
	vRet := "?"
	vPc, _, _, vOk := runtime.Caller(1)
	if vOk {
		vRet = path.Base(runtime.FuncForPC(vPc).Name())
	}
	return vRet
}

//-----------------------------------------------------------------------------

func TestMain(aT *testing.T) {
	vCases := []struct {
		Name  string
		Check uint64
	}{
		{"crc-16/ccitt-false", 0x29B1},
		{"crc-16/arc", 0xBB3D},
		{"crc-16/xmodem", 0x31C3},
		{"crc-32", 0xCBF43926},
		{"crc-32/bzip2", 0xFC891918},
		{"crc-8", 0xF4},
	}

	vTestData := []byte("123456789")

	for _, vCase := range vCases {
		Convey(fmt.Sprintf("%s: %s", funcName(), vCase.Name), aT, func() {
			vOpts, vOk := models.Lookup(vCase.Name)
			So(vOk, ShouldBeTrue)

			vTable := MakeTable(vOpts)
			So(vTable, ShouldNotBeNil)

			vGotCrc := Checksum(vTestData, vTable)
			So(fmt.Sprintf("0x%X", vGotCrc), ShouldEqual, fmt.Sprintf("0x%X", vCase.Check))
		})
	}
}

//--------------------------------------

func TestHash(aT *testing.T) {
	Convey(funcName(), aT, func() {
		vOpts, vOk := models.Lookup("crc-16/xmodem")
		So(vOk, ShouldBeTrue)
		vTable := MakeTable(vOpts)
		vH := New(vTable)

		fmt.Fprint(vH, "standard")
		fmt.Fprint(vH, " library hash interface")
		vSum1 := vH.SumN()
		vH.Reset()
		fmt.Fprint(vH, "standard library hash interface")
		vSum2 := vH.SumN()
		So(vSum1, ShouldEqual, vSum2)

		So(vH.Size(), ShouldEqual, 2)

		vBuf := make([]byte, 0, 10)
		vBuf = vH.Sum(vBuf)
		So(len(vBuf), ShouldEqual, 2)

		So(vH.BlockSize(), ShouldEqual, 1)
	})
}

//-----------------------------------------------------------------------------
