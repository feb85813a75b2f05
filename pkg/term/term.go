// Package term renders a cpu.Usage vector to a terminal: clear the screen,
// then write every row in one shot so the refresh never shows a half
// painted frame.
package term

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ja7ad/cuttrack/pkg/cpu"
)

const ansiClearScreen = "\x1b[2J"

// Render writes the ANSI clear-screen sequence followed by one line per
// entry of u: "total: " for index 0, "cpu N: " for index N+1, then either
// "UNKNOWN" or the usage formatted to two decimal places and a percent
// sign. The whole frame is assembled in memory first and written with a
// single Write call so a slow or partial write never leaves the terminal
// showing a mix of the old and new frame.
func Render(w io.Writer, u cpu.Usage) error {
	var buf bytes.Buffer
	buf.WriteString(ansiClearScreen)

	for i, v := range u {
		if i == 0 {
			buf.WriteString("total: ")
		} else {
			fmt.Fprintf(&buf, "cpu %d: ", i-1)
		}
		if v == cpu.Unknown {
			buf.WriteString("UNKNOWN\n")
		} else {
			fmt.Fprintf(&buf, "%.2f%%\n", v)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}
