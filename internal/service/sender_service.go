package service

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"travelapp/internal/db"
	"travelapp/internal/entities"
	"travelapp/internal/logger"
	"travelapp/internal/utils"

	"github.com/sirupsen/logrus"
)

//go:embed templates/booking_email.html
var templateFS embed.FS

// Messenger is the transport used by SenderService.
type Messenger interface {
	SendEmail(toEmailAddress, toName, subject, plainTextContent, htmlContent string) error
	SendSMS(toNumber, messageBody string) error
}

var _ Notifier = (*SenderService)(nil)

// SenderService turns booking events into email and SMS messages and sends
// them in the background.
type SenderService struct {
	messenger Messenger
	tmpl      *template.Template
	wg        sync.WaitGroup
	log       *logrus.Entry
}

func NewSenderService(messenger Messenger) (*SenderService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/booking_email.html")
	if err != nil {
		return nil, fmt.Errorf("error parsing booking email template: %w", err)
	}
	return &SenderService{messenger: messenger, tmpl: tmpl, log: logger.New("sender")}, nil
}

func (s *SenderService) BookingReceived(booking entities.BookingResponse, listing db.Listing) {
	s.send(booking, listing, "received")
}

func (s *SenderService) BookingConfirmed(booking entities.BookingResponse, listing db.Listing) {
	s.send(booking, listing, "confirmed")
}

// Wait blocks until every message queued so far has been handled.
func (s *SenderService) Wait() {
	s.wg.Wait()
}

func (s *SenderService) send(booking entities.BookingResponse, listing db.Listing, status string) {
	data := entities.BookingEmailData{
		GuestName:    booking.GuestName,
		BookingID:    booking.ID.String(),
		ListingTitle: listing.Title,
		Location:     listing.Location,
		CheckIn:      booking.CheckIn,
		CheckOut:     booking.CheckOut,
		Nights:       booking.Nights,
		Guests:       booking.Guests,
		TotalPrice:   booking.TotalPrice.StringFixed(utils.MoneyPlaces),
		Status:       status,
		CurrentYear:  time.Now().Year(),
	}
	entry := s.log.WithFields(logrus.Fields{"booking_id": data.BookingID, "status": status})

	subject := fmt.Sprintf("Your booking at %s is %s", data.ListingTitle, status)
	plain := fmt.Sprintf(
		"Hello %s,\n\nYour booking at %s is %s.\n\n"+
			"Booking: %s\nLocation: %s\nCheck-in: %s\nCheck-out: %s\nNights: %d\nGuests: %d\nTotal: %s\n\n"+
			"Thank you for travelling with us.",
		data.GuestName, data.ListingTitle, status,
		data.BookingID, data.Location, data.CheckIn, data.CheckOut, data.Nights, data.Guests, data.TotalPrice,
	)

	var html bytes.Buffer
	if err := s.tmpl.Execute(&html, data); err != nil {
		entry.WithError(err).Warn("booking email template failed, sending plain text only")
		html.Reset()
	}

	sms := fmt.Sprintf("Travel App: booking %s at %s is %s. Check-in %s.", shortID(data.BookingID), data.ListingTitle, status, data.CheckIn)

	s.wg.Add(1)
	go func(toEmail, toName, toPhone, htmlBody string) {
		defer s.wg.Done()

		if err := s.messenger.SendEmail(toEmail, toName, subject, plain, htmlBody); err != nil {
			logFailure(entry, "email", err)
		}
		if toPhone == "" {
			return
		}
		if err := s.messenger.SendSMS(toPhone, sms); err != nil {
			logFailure(entry, "sms", err)
		}
	}(booking.GuestEmail, booking.GuestName, booking.GuestPhone, html.String())
}

func logFailure(entry *logrus.Entry, channel string, err error) {
	if errors.Is(err, ErrEmailNotConfigured) || errors.Is(err, ErrSMSNotConfigured) {
		entry.WithField("channel", channel).Debug("notification channel not configured, skipped")
		return
	}
	entry.WithError(err).WithField("channel", channel).Error("notification failed")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
