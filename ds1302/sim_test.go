package ds1302

// chipSim is a PinBus that behaves like a DS1302 on the far side of the
// three wires: it decodes command bytes from the clocked bit stream and
// serves the clock registers, the protection registers and the RAM.
//
// The chip samples the data line on rising clock edges while the host
// writes, and shifts its own data out on falling edges once a read command
// has been received. Both match the edges the driver generates.
type chipSim struct {
	clockRegs [8]byte // seconds..year + write-protect
	charge    byte
	ram       [RAMSize]byte

	clk, rst Level
	ioLevel  Level // level currently on the data line
	hostIn   bool  // host side has the data pin as input

	shift   byte
	nbits   int
	cmd     byte
	haveCmd bool
	byteIdx int
	outBits int
}

func newChipSim() *chipSim {
	s := &chipSim{}
	// A chip fresh from the drawer: halted and write protected.
	s.clockRegs[regSecond] = haltBit
	s.clockRegs[7] = wpBit
	return s
}

func (s *chipSim) SetupOutput(initial Level, pins ...Pin) error {
	for _, p := range pins {
		switch p {
		case PinIO:
			s.hostIn = false
			s.ioLevel = initial
		case PinCLK:
			s.clk = initial
		case PinRST:
			s.setRST(initial)
		}
	}
	return nil
}

func (s *chipSim) SetupInput(pin Pin) error {
	if pin == PinIO {
		s.hostIn = true
	}
	return nil
}

func (s *chipSim) Set(pin Pin, level Level) error {
	switch pin {
	case PinCLK:
		rising := !bool(s.clk) && bool(level)
		falling := bool(s.clk) && !bool(level)
		s.clk = level
		if !bool(s.rst) {
			return nil
		}
		if rising && !s.hostIn {
			s.shiftIn(s.ioLevel)
		}
		if falling && s.haveCmd && isReadCmd(s.cmd) {
			s.shiftOut()
		}
	case PinIO:
		if !s.hostIn {
			s.ioLevel = level
		}
	case PinRST:
		s.setRST(level)
	}
	return nil
}

func (s *chipSim) Get(pin Pin) (Level, error) {
	if pin == PinIO {
		return s.ioLevel, nil
	}
	if pin == PinCLK {
		return s.clk, nil
	}
	return s.rst, nil
}

func (s *chipSim) Release(pins ...Pin) error {
	return nil
}

// setRST resets the protocol state machine when chip enable drops.
func (s *chipSim) setRST(level Level) {
	s.rst = level
	if !bool(level) {
		s.shift = 0
		s.nbits = 0
		s.cmd = 0
		s.haveCmd = false
		s.byteIdx = 0
		s.outBits = 0
	}
}

// shiftIn accumulates one host-driven bit, LSB first.
func (s *chipSim) shiftIn(bit Level) {
	if bit {
		s.shift |= 1 << s.nbits
	}
	s.nbits++
	if s.nbits < 8 {
		return
	}
	b := s.shift
	s.shift = 0
	s.nbits = 0

	if !s.haveCmd {
		s.cmd = b
		s.haveCmd = true
		s.byteIdx = 0
		return
	}
	s.store(b)
	s.byteIdx++
}

// store applies one data byte of a write command.
func (s *chipSim) store(b byte) {
	wp := s.clockRegs[7]&wpBit != 0
	switch s.cmd {
	case cmdWPWrite:
		if s.byteIdx == 0 {
			s.clockRegs[7] = b
		}
	case cmdChargeWrite:
		if !wp && s.byteIdx == 0 {
			s.charge = b
		}
	case cmdClockWrite:
		if !wp && s.byteIdx < len(s.clockRegs) {
			s.clockRegs[s.byteIdx] = b
		}
	case cmdRAMWrite:
		if !wp && s.byteIdx < len(s.ram) {
			s.ram[s.byteIdx] = b
		}
	}
}

// shiftOut drives the next bit of the current read command onto the data
// line.
func (s *chipSim) shiftOut() {
	b := s.load()
	s.ioLevel = Level(b>>(s.outBits%8)&1 != 0)
	s.outBits++
	if s.outBits%8 == 0 {
		s.byteIdx++
	}
}

// load returns the data byte the chip is currently shifting out.
func (s *chipSim) load() byte {
	switch s.cmd {
	case cmdWPRead:
		if s.byteIdx == 0 {
			return s.clockRegs[7]
		}
	case cmdChargeRead:
		if s.byteIdx == 0 {
			return s.charge
		}
	case cmdSecondsRead:
		if s.byteIdx == 0 {
			return s.clockRegs[regSecond]
		}
	case cmdClockRead:
		if s.byteIdx < len(s.clockRegs) {
			return s.clockRegs[s.byteIdx]
		}
	case cmdRAMRead:
		if s.byteIdx < len(s.ram) {
			return s.ram[s.byteIdx]
		}
	}
	return 0
}

func isReadCmd(cmd byte) bool {
	return cmd&0x01 != 0
}
