package serialsink

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Foot controller firmware runs its UART at 115200 8N1 unless reflashed.
const (
	DefaultBaudRate = 115200
	DefaultDataBits = 8
	DefaultStopBits = 1
)

var parities = map[string]serial.Parity{
	"N": serial.NoParity,
	"E": serial.EvenParity,
	"O": serial.OddParity,
}

// PortOptions is the UART framing of the foot controller link. Zero
// values take the firmware defaults.
type PortOptions struct {
	BaudRate int    `json:"baud_rate"`
	DataBits int    `json:"data_bits"`
	StopBits int    `json:"stop_bits"`
	Parity   string `json:"parity"`
}

// Normalize fills in firmware defaults and folds the parity name to a
// single letter. Action records are plain ASCII, so 7 data bits is the
// smallest framing the controller can still parse.
func (o PortOptions) Normalize() (PortOptions, error) {
	out := o
	if out.BaudRate <= 0 {
		out.BaudRate = DefaultBaudRate
	}
	if out.DataBits == 0 {
		out.DataBits = DefaultDataBits
	}
	if out.StopBits == 0 {
		out.StopBits = DefaultStopBits
	}

	if out.DataBits != 7 && out.DataBits != 8 {
		return o, fmt.Errorf("foot link: %d data bits cannot carry action records, use 7 or 8", out.DataBits)
	}
	if out.StopBits != 1 && out.StopBits != 2 {
		return o, fmt.Errorf("foot link: stop bits must be 1 or 2, got %d", out.StopBits)
	}

	p := strings.ToUpper(strings.TrimSpace(out.Parity))
	switch p {
	case "", "NONE":
		p = "N"
	case "EVEN":
		p = "E"
	case "ODD":
		p = "O"
	}
	if _, ok := parities[p]; !ok {
		return o, fmt.Errorf("foot link: parity %q not supported by the controller (N, E or O)", o.Parity)
	}
	out.Parity = p
	return out, nil
}

// String renders the framing the way the controller firmware documents
// it, e.g. "115200 8N1".
func (o PortOptions) String() string {
	return fmt.Sprintf("%d %d%s%d", o.BaudRate, o.DataBits, o.Parity, o.StopBits)
}

// SerialMode returns the normalized framing as a serial.Mode for Open.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	n, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	stop := serial.OneStopBit
	if n.StopBits == 2 {
		stop = serial.TwoStopBits
	}
	return &serial.Mode{
		BaudRate: n.BaudRate,
		DataBits: n.DataBits,
		StopBits: stop,
		Parity:   parities[n.Parity],
	}, nil
}
