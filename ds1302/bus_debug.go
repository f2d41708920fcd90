package ds1302

// busDebug logs every pin operation passing through a PinBus.
type busDebug struct {
	id   string
	l    Logger
	next PinBus
}

func (b *busDebug) SetupOutput(initial Level, pins ...Pin) error {
	err := b.next.SetupOutput(initial, pins...)
	b.l.Printf("%5s >>  out  %v=%v %+v", b.id, pins, initial, err)
	return err
}

func (b *busDebug) SetupInput(pin Pin) error {
	err := b.next.SetupInput(pin)
	b.l.Printf("%5s >>  in   %v %+v", b.id, pin, err)
	return err
}

func (b *busDebug) Set(pin Pin, level Level) error {
	err := b.next.Set(pin, level)
	b.l.Printf("%5s >>  set  %v=%v %+v", b.id, pin, level, err)
	return err
}

func (b *busDebug) Get(pin Pin) (Level, error) {
	level, err := b.next.Get(pin)
	b.l.Printf("%5s <<  get  %v=%v %+v", b.id, pin, level, err)
	return level, err
}

func (b *busDebug) Release(pins ...Pin) error {
	err := b.next.Release(pins...)
	b.l.Printf("%5s >>  free %v %+v", b.id, pins, err)
	return err
}
