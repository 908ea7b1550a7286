package lineus

import (
	"fmt"
	"log/slog"

	"go.bug.st/serial"
)

// DefaultBaud is the rate the arm's USB serial console runs at.
const DefaultBaud = 115200

// OpenSerial opens the arm on a USB serial device such as /dev/ttyUSB0.
// Serial reads have no deadline; the port blocks until the arm replies or
// the device goes away.
func OpenSerial(name string, baud int, logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		logger.Error("serial: failed to open port", "device", name, "baud", baud, "err", err)
		return nil, fmt.Errorf("lineus: open serial %s: %w", name, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)

	c, err := NewConn(p, 0, logger)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return c, nil
}

// SerialPorts lists the serial devices present on this machine.
func SerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("lineus: list serial ports: %w", err)
	}
	return ports, nil
}
