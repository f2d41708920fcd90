package ds1302

// Command bytes, per table 3 of the datasheet. Bit 0 selects read, bit 6
// selects RAM over the clock registers, bits 1-5 address the register.
const (
	cmdSecondsRead = 0x81 // seconds register read
	cmdWPRead      = 0x8f // write-protect register read
	cmdWPWrite     = 0x8e // write-protect register write
	cmdChargeRead  = 0x91 // trickle-charge register read
	cmdChargeWrite = 0x90 // trickle-charge register write
	cmdClockRead   = 0xbf // clock burst read
	cmdClockWrite  = 0xbe // clock burst write
	cmdRAMRead     = 0xff // RAM burst read
	cmdRAMWrite    = 0xfe // RAM burst write
)

// RAMSize is the number of general-purpose battery-backed RAM bytes on the
// chip.
const RAMSize = 31

// clockRegSize is the number of calendar registers transferred by a clock
// burst before the write-protect and reserved slots.
const clockRegSize = 7

const (
	// haltBit in the seconds register stops the oscillator while set.
	haltBit = 0x80
	// wpBit in the write-protect register blocks all clock and RAM writes
	// while set.
	wpBit = 0x80
)
