package model

// BookingTimeLayout renders booking timestamps the way a US-English locale
// string looks ("10/19/2026, 3:04:05 PM").  Stored snapshots keep the
// rendered string, never a parsed time, so the layout must stay stable.
const BookingTimeLayout = "1/2/2006, 3:04:05 PM"

// Reservation is one traveller's booking.  The JSON field names are the
// persisted snapshot format and must not change.
//
// Fields:
//
//	ID          – caller supplied identifier, unique and case-sensitive.
//	Name        – traveller name.
//	Phone       – contact phone, free-form.
//	BookingTime – human readable time the booking was made.
type Reservation struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Phone       string `json:"phone" yaml:"phone"`
	BookingTime string `json:"bookingTime" yaml:"bookingTime"`
}

// Complete reports whether the caller supplied fields are non-empty.
// BookingTime is informational and may be blank in older snapshots.
func (r Reservation) Complete() bool {
	return r.ID != "" && r.Name != "" && r.Phone != ""
}
