package dataset

import "time"

// Excel serial dates count days since 1899-12-30 in wall-clock time.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const minutesPerDay = 24 * 60

// edgeTolerance absorbs float error when comparing serial differences against a
// bucket edge, so a latency of exactly 20:00 lands in the lower bucket.
const edgeTolerance = 0.5 / (24 * 60 * 60)

// ToSerial converts t's wall-clock time in its own location to an Excel serial.
func ToSerial(t time.Time) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return wall.Sub(serialEpoch).Hours() / 24
}

// Minutes expresses a duration in minutes as a fraction of a day.
func Minutes(m int) float64 {
	return float64(m) / minutesPerDay
}

// DayRange returns the serial bounds [start, end) of the calendar day containing day.
func DayRange(day time.Time) (float64, float64) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	s := ToSerial(start)
	return s, s + 1
}
