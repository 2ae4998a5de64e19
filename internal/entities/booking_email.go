package entities

// BookingEmailData feeds the booking email template.
type BookingEmailData struct {
	GuestName    string
	BookingID    string
	ListingTitle string
	Location     string
	CheckIn      string
	CheckOut     string
	Nights       int
	Guests       int
	TotalPrice   string
	Status       string
	CurrentYear  int
}
