package units

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoInput is returned when the input ends before an acceptable answer.
var ErrNoInput = errors.New("units: no input")

// PromptSector asks for a sector number until Parse yields a value in
// [low, high]. An empty line takes def.
func PromptSector(in *bufio.Reader, out io.Writer, prompt string, low, high, def, sectorSize uint64) (uint64, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return 0, ErrNoInput
			}
			return 0, err
		}
		v := Parse(strings.TrimRight(line, "\r\n"), sectorSize, low, high, def)
		if v >= low && v <= high {
			return v, nil
		}
		fmt.Fprintln(out, "Value out of range")
		if err == io.EOF {
			return 0, ErrNoInput
		}
	}
}
