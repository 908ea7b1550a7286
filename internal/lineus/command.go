package lineus

import (
	"fmt"
	"strconv"
	"strings"
)

// Terminator ends every message in both directions.
const Terminator = 0x00

// Command is a single G-code line sent to the arm.
type Command struct {
	Code string
	Args string
}

// Move builds a linear move. z is the pen height: 0 touches the surface.
func Move(x, y, z float64) Command {
	return Command{
		Code: "G01",
		Args: "X" + formatCoord(x) + " Y" + formatCoord(y) + " Z" + formatCoord(z),
	}
}

// Encode builds the on-wire representation:
//
//	<code>[ <args>]\x00
func (c Command) Encode() []byte {
	out := make([]byte, 0, len(c.Code)+len(c.Args)+2)
	out = append(out, c.Code...)
	if c.Args != "" {
		out = append(out, ' ')
		out = append(out, c.Args...)
	}
	return append(out, Terminator)
}

func (c Command) String() string {
	return strings.TrimSuffix(string(c.Encode()), "\x00")
}

// Coordinates are sent rounded to whole device units.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// ResponseError is returned when the arm answers with anything but "ok".
type ResponseError struct {
	Command  Command
	Response string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("lineus: %s rejected: %q", e.Command, e.Response)
}
