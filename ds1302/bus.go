package ds1302

// Level is the logical level of a pin.
type Level bool

// Pin levels.
const (
	Low  Level = false
	High Level = true
)

func (l Level) String() string {
	if l {
		return "high"
	}
	return "low"
}

// Pin identifies one of the three chip lines by role. A PinBus
// implementation maps roles to physical pins.
type Pin int

// The three lines of the chip interface.
const (
	PinCLK Pin = iota // serial clock (SCLK)
	PinIO             // bidirectional data (I/O)
	PinRST            // chip enable (CE, labelled RST on older datasheets)
)

func (p Pin) String() string {
	switch p {
	case PinCLK:
		return "clk"
	case PinIO:
		return "io"
	case PinRST:
		return "rst"
	default:
		return "unknown"
	}
}

// PinBus gives the driver control over the three GPIO lines wired to the
// chip. The driver owns the pins for the lifetime of a Dev; no other party
// may drive them between SetupOutput and Release.
type PinBus interface {
	// SetupOutput configures the pins as outputs driven to initial.
	SetupOutput(initial Level, pins ...Pin) error
	// SetupInput configures the pin as a high-impedance input.
	SetupInput(pin Pin) error
	// Set drives an output pin to the given level.
	Set(pin Pin, level Level) error
	// Get samples the current level of a pin.
	Get(pin Pin) (Level, error)
	// Release returns the pins to an unconfigured state.
	Release(pins ...Pin) error
}
