package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of check-in and check-out dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t in DateLayout using its calendar date in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Nights counts the nights between two calendar dates. It is zero or
// negative when checkOut is not after checkIn.
func Nights(checkIn, checkOut time.Time) int {
	in := truncateDay(checkIn)
	out := truncateDay(checkOut)
	return int(math.Round(out.Sub(in).Hours() / 24))
}

// StayPrice is nights times the nightly price, rounded to cents.
func StayPrice(pricePerNight decimal.Decimal, nights int) decimal.Decimal {
	if nights <= 0 {
		return decimal.Zero
	}
	return pricePerNight.Mul(decimal.NewFromInt(int64(nights))).Round(MoneyPlaces)
}

// ToMinorUnits converts an amount to the smallest currency unit (cents).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(MoneyPlaces).Round(0).IntPart()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
