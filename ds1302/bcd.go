package ds1302

import "time"

// century anchors the chip's two-digit year. The DS1302 does not store the
// century, so this driver cannot represent dates outside [2000, 2100).
const century = 2000

// Clock register indices in burst order.
const (
	regSecond = iota
	regMinute
	regHour
	regDate
	regMonth
	regWeekday
	regYear
)

var regNames = [clockRegSize]string{
	"seconds", "minutes", "hours", "date", "month", "weekday", "year",
}

// fieldRanges holds the valid decoded range per clock register.
var fieldRanges = [clockRegSize][2]int{
	{0, 59}, // seconds
	{0, 59}, // minutes
	{0, 23}, // hours
	{1, 31}, // date
	{1, 12}, // month
	{1, 7},  // weekday
	{0, 99}, // year
}

// bcdToDec converts a packed BCD byte to its decimal value. ok is false if
// either nibble is not a decimal digit.
func bcdToDec(b byte) (int, bool) {
	if b&0x0f > 9 || b>>4 > 9 {
		return 0, false
	}
	return int(b) - 6*int(b>>4), true
}

func decToBCD(x int) byte {
	return byte(x/10<<4 | x%10)
}

// decodeTime converts a 7-register clock frame to a time.Time in UTC.
//
// The halt flag in the seconds register is masked off before decoding so a
// stopped clock still reads back its held time. A register with a non-BCD
// nibble or a field outside its valid range yields a DecodeError.
func decodeTime(regs []byte) (time.Time, error) {
	var v [clockRegSize]int
	for i, b := range regs[:clockRegSize] {
		if i == regSecond {
			b &^= haltBit
		}
		n, ok := bcdToDec(b)
		if !ok || n < fieldRanges[i][0] || n > fieldRanges[i][1] {
			return time.Time{}, &DecodeError{regNames[i], regs[i]}
		}
		v[i] = n
	}
	return time.Date(
		v[regYear]+century, time.Month(v[regMonth]), v[regDate],
		v[regHour], v[regMinute], v[regSecond], 0, time.UTC,
	), nil
}

// encodeTime converts t to a 7-register clock frame in burst order.
//
// The time is rounded to the nearest second. The returned seconds register
// has the halt flag clear, so writing the frame starts the oscillator.
func encodeTime(t time.Time) ([clockRegSize]byte, error) {
	t = t.UTC()
	if t.Nanosecond() >= 5e8 {
		t = t.Add(time.Second)
	}
	var regs [clockRegSize]byte
	if t.Year() < century || t.Year() >= century+100 {
		return regs, ErrYearOutOfRange
	}
	regs[regSecond] = decToBCD(t.Second())
	regs[regMinute] = decToBCD(t.Minute())
	regs[regHour] = decToBCD(t.Hour())
	regs[regDate] = decToBCD(t.Day())
	regs[regMonth] = decToBCD(int(t.Month()))
	regs[regWeekday] = decToBCD(isoWeekday(t))
	regs[regYear] = decToBCD(t.Year() - century)
	return regs, nil
}

// isoWeekday returns the day of the week with Monday as 1 and Sunday as 7,
// the convention this driver uses for the chip's day register.
func isoWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}
