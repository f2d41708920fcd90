package ds1302

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// gpioBus drives the chip through three periph.io GPIO pins.
type gpioBus struct {
	pins [3]gpio.PinIO
}

// NewGPIOBus returns a PinBus backed by periph.io pins. The three pins
// must be distinct.
func NewGPIOBus(clk, io, rst gpio.PinIO) (PinBus, error) {
	if clk == nil || io == nil || rst == nil {
		return nil, fmt.Errorf("ds1302: nil pin")
	}
	if clk == io || io == rst || clk == rst {
		return nil, fmt.Errorf("ds1302: pins must be distinct")
	}
	var b gpioBus
	b.pins[PinCLK] = clk
	b.pins[PinIO] = io
	b.pins[PinRST] = rst
	return &b, nil
}

// NewGPIODev returns a new device wired to the given periph.io pins.
func NewGPIODev(clk, io, rst gpio.PinIO, cfg Config) (*Dev, error) {
	bus, err := NewGPIOBus(clk, io, rst)
	if err != nil {
		return nil, err
	}
	return New(bus, cfg)
}

func (b *gpioBus) pin(p Pin) (gpio.PinIO, error) {
	if p < 0 || int(p) >= len(b.pins) {
		return nil, fmt.Errorf("ds1302: unknown pin %d", int(p))
	}
	return b.pins[p], nil
}

func (b *gpioBus) SetupOutput(initial Level, pins ...Pin) error {
	for _, p := range pins {
		pin, err := b.pin(p)
		if err != nil {
			return err
		}
		if err := pin.Out(gpio.Level(initial)); err != nil {
			return fmt.Errorf("ds1302: %s as output: %w", p, err)
		}
	}
	return nil
}

func (b *gpioBus) SetupInput(p Pin) error {
	pin, err := b.pin(p)
	if err != nil {
		return err
	}
	if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
		return fmt.Errorf("ds1302: %s as input: %w", p, err)
	}
	return nil
}

func (b *gpioBus) Set(p Pin, l Level) error {
	pin, err := b.pin(p)
	if err != nil {
		return err
	}
	if err := pin.Out(gpio.Level(l)); err != nil {
		return fmt.Errorf("ds1302: set %s: %w", p, err)
	}
	return nil
}

func (b *gpioBus) Get(p Pin) (Level, error) {
	pin, err := b.pin(p)
	if err != nil {
		return Low, err
	}
	return Level(pin.Read()), nil
}

func (b *gpioBus) Release(pins ...Pin) error {
	var firstErr error
	for _, p := range pins {
		pin, err := b.pin(p)
		if err == nil {
			err = pin.Halt()
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("ds1302: release %s: %w", p, err)
		}
	}
	return firstErr
}
