package ds1302

import (
	"fmt"
	"time"
)

type deviceState int

const (
	deviceStateReady deviceState = iota
	deviceStateClosed
)

// Config is the configuration object for a device.
type Config struct {
	// ClockDelay is the settle time held on each clock phase. It must be
	// at least the chip's minimum clock pulse width. Zero means no delay,
	// which is only useful against a fake bus in tests.
	ClockDelay time.Duration
	// Debug is used for debug output.
	Debug Logger
}

// ConfigDefault returns a configuration with conservative chip timing.
func ConfigDefault() Config {
	return Config{
		ClockDelay: 5 * time.Microsecond,
	}
}

// Dev is a handle to a DS1302 chip.
//
// A Dev owns its three pins from New until Close. It provides no internal
// locking; callers sharing one Dev across goroutines must serialize calls,
// as interleaved clock pulses would corrupt the bit stream.
type Dev struct {
	bus   PinBus
	cfg   Config
	state deviceState
	log   Logger
}

// New returns a new DS1302 device using the supplied bus for pin control.
//
// The clock and chip-enable pins are configured as outputs held low, then
// write protection is cleared and the trickle charger is disabled. If any
// step fails the pins are released and no device is returned.
func New(bus PinBus, cfg Config) (*Dev, error) {
	d := &Dev{
		bus:   bus,
		cfg:   cfg,
		state: deviceStateReady,
		log:   getLogger(cfg),
	}
	d.bus = &busDebug{"rtc", d.log, bus}
	if err := d.init(); err != nil {
		_ = d.bus.Release(PinCLK, PinIO, PinRST)
		return nil, err
	}
	return d, nil
}

func (d *Dev) init() error {
	if err := d.bus.SetupOutput(Low, PinCLK, PinRST); err != nil {
		return fmt.Errorf("ds1302: pin setup: %w", err)
	}

	// Clear write protection. The bit survives power loss on a
	// battery-backed chip, so it cannot be assumed clear.
	err := d.tx(func() error {
		return d.writeBytes(cmdWPWrite, 0x00)
	})
	if err != nil {
		return err
	}

	// Disable the trickle charger.
	return d.tx(func() error {
		return d.writeBytes(cmdChargeWrite, 0x00)
	})
}

// Close releases the three pins. It is safe to call more than once. The
// device cannot be used afterwards.
func (d *Dev) Close() error {
	if d.state == deviceStateClosed {
		return nil
	}
	d.state = deviceStateClosed
	if err := d.bus.Release(PinCLK, PinIO, PinRST); err != nil {
		return fmt.Errorf("ds1302: pin release: %w", err)
	}
	return nil
}

// ReadTime reads the current date and time from the chip.
//
// The returned time is in UTC with the century fixed at 2000. Registers
// that do not decode to a valid calendar value yield a DecodeError.
func (d *Dev) ReadTime() (time.Time, error) {
	var regs [clockRegSize]byte
	err := d.op(func() error {
		if err := d.writeByte(cmdClockRead); err != nil {
			return err
		}
		return d.readBytes(regs[:])
	})
	if err != nil {
		return time.Time{}, err
	}
	return decodeTime(regs[:])
}

// SetTime writes t to the chip, rounded to the nearest second.
//
// The halt flag is written clear, so setting the time also starts a
// stopped oscillator. The chip stores a two-digit year; times outside
// [2000, 2100) are rejected with ErrYearOutOfRange.
func (d *Dev) SetTime(t time.Time) error {
	regs, err := encodeTime(t)
	if err != nil {
		return err
	}
	return d.op(func() error {
		if err := d.writeByte(cmdClockWrite); err != nil {
			return err
		}
		if err := d.writeBytes(regs[:]...); err != nil {
			return err
		}
		// The burst spans the write-protect and reserved slots as well;
		// pad them with zeros to complete the frame.
		return d.writeBytes(0x00, 0x00)
	})
}

// ReadRAM reads the chip's 31 bytes of battery-backed RAM.
func (d *Dev) ReadRAM() ([]byte, error) {
	ram := make([]byte, RAMSize)
	err := d.op(func() error {
		if err := d.writeByte(cmdRAMRead); err != nil {
			return err
		}
		return d.readBytes(ram)
	})
	if err != nil {
		return nil, err
	}
	d.log.Printf("%5s ram %s", "rtc", hexDump(ram))
	return ram, nil
}

// WriteRAM stores b in the battery-backed RAM, starting at cell 0.
//
// At most RAMSize bytes are written; extra bytes are silently dropped to
// match the chip's capacity. Cells beyond len(b) keep their previous
// contents.
func (d *Dev) WriteRAM(b []byte) error {
	if len(b) > RAMSize {
		b = b[:RAMSize]
	}
	return d.op(func() error {
		if err := d.writeByte(cmdRAMWrite); err != nil {
			return err
		}
		return d.writeBytes(b...)
	})
}

// Running reports whether the oscillator is running. A chip that lost its
// backup supply powers up halted until the time is set.
func (d *Dev) Running() (bool, error) {
	b, err := d.readReg(cmdSecondsRead)
	return b&haltBit == 0, err
}

// WriteProtected reports whether the chip's write-protect bit is set.
func (d *Dev) WriteProtected() (bool, error) {
	b, err := d.readReg(cmdWPRead)
	return b&wpBit != 0, err
}

// SetWriteProtect sets or clears the write-protect bit. While set, the
// chip ignores writes to the clock registers and RAM.
func (d *Dev) SetWriteProtect(on bool) error {
	var b byte
	if on {
		b = wpBit
	}
	return d.op(func() error {
		return d.writeBytes(cmdWPWrite, b)
	})
}

// ChargeEnabled reports whether the trickle charger is enabled. New always
// disables it; a true value means something else programmed the chip since.
func (d *Dev) ChargeEnabled() (bool, error) {
	b, err := d.readReg(cmdChargeRead)
	// Charging requires the magic 1010 pattern in the upper nibble; any
	// other value leaves the charger off.
	return b>>4 == 0x0a, err
}

// op runs fn as a single chip transaction after checking the lifecycle
// state. A closed device is rejected without touching the bus.
func (d *Dev) op(fn func() error) error {
	if d.state != deviceStateReady {
		return ErrClosed
	}
	return d.tx(fn)
}

// tx brackets fn with chip selection. Deselection runs on every exit path
// so a failed exchange cannot leave the chip mid-command.
func (d *Dev) tx(fn func() error) error {
	if err := d.beginTx(); err != nil {
		return err
	}
	defer d.endTx()
	return fn()
}

// beginTx establishes the idle bus state and selects the chip: clock low
// first, then chip enable high. No clock edge may occur before CE is
// stable.
func (d *Dev) beginTx() error {
	if err := d.bus.Set(PinCLK, Low); err != nil {
		return fmt.Errorf("ds1302: select: %w", err)
	}
	if err := d.bus.Set(PinRST, High); err != nil {
		return fmt.Errorf("ds1302: select: %w", err)
	}
	return nil
}

// endTx releases the data line before deselecting, so neither side is left
// driving a stale level, then parks the clock and drops chip enable.
// Errors are ignored: deselection is best effort on failure paths.
func (d *Dev) endTx() {
	_ = d.bus.SetupInput(PinIO)
	_ = d.bus.Set(PinCLK, Low)
	_ = d.bus.Set(PinRST, Low)
}

// readByte clocks in one byte from the chip, least significant bit first.
// The chip shifts its next bit out on the falling clock edge; the bit is
// sampled during the low phase.
func (d *Dev) readByte() (byte, error) {
	if err := d.bus.SetupInput(PinIO); err != nil {
		return 0, fmt.Errorf("ds1302: read: %w", err)
	}

	var b byte
	for i := 0; i < 8; i++ {
		if err := d.bus.Set(PinCLK, High); err != nil {
			return 0, fmt.Errorf("ds1302: read: %w", err)
		}
		d.settle()
		if err := d.bus.Set(PinCLK, Low); err != nil {
			return 0, fmt.Errorf("ds1302: read: %w", err)
		}
		d.settle()

		bit, err := d.bus.Get(PinIO)
		if err != nil {
			return 0, fmt.Errorf("ds1302: read: %w", err)
		}
		if bit {
			b |= 1 << i
		}
	}
	return b, nil
}

// writeByte clocks out one byte to the chip, least significant bit first.
// The data line is driven during the low phase; the chip samples it on the
// rising clock edge.
func (d *Dev) writeByte(b byte) error {
	if err := d.bus.SetupOutput(Low, PinIO); err != nil {
		return fmt.Errorf("ds1302: write: %w", err)
	}

	for i := 0; i < 8; i++ {
		if err := d.bus.Set(PinCLK, Low); err != nil {
			return fmt.Errorf("ds1302: write: %w", err)
		}
		d.settle()

		if err := d.bus.Set(PinIO, Level(b&1 != 0)); err != nil {
			return fmt.Errorf("ds1302: write: %w", err)
		}
		b >>= 1

		if err := d.bus.Set(PinCLK, High); err != nil {
			return fmt.Errorf("ds1302: write: %w", err)
		}
		d.settle()
	}
	return nil
}

func (d *Dev) readBytes(p []byte) error {
	for i := range p {
		b, err := d.readByte()
		if err != nil {
			return err
		}
		p[i] = b
	}
	return nil
}

func (d *Dev) writeBytes(p ...byte) error {
	for _, b := range p {
		if err := d.writeByte(b); err != nil {
			return err
		}
	}
	return nil
}

// readReg reads one register using a single-byte read command.
func (d *Dev) readReg(cmd byte) (byte, error) {
	var b byte
	err := d.op(func() error {
		if err := d.writeByte(cmd); err != nil {
			return err
		}
		var err error
		b, err = d.readByte()
		return err
	})
	return b, err
}

func (d *Dev) settle() {
	if d.cfg.ClockDelay > 0 {
		time.Sleep(d.cfg.ClockDelay)
	}
}
