// Package ds1302 is a driver for the Maxim DS1302 trickle-charge
// timekeeping chip.
//
// The chip is reached over its synchronous three-wire interface (CE, I/O,
// SCLK), bit-banged through a PinBus implementation. Backends are provided
// for periph.io GPIO pins and for the GP pins of an MCP2221A USB-to-GPIO
// bridge.
//
// # Datasheets
//
// https://www.analog.com/media/en/technical-documentation/data-sheets/DS1302.pdf
package ds1302
