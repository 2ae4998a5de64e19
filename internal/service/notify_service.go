package service

import (
	"errors"
	"fmt"
	"strings"

	"travelapp/internal/config"
	"travelapp/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	ErrEmailNotConfigured = errors.New("sendgrid is not configured")
	ErrSMSNotConfigured   = errors.New("twilio is not configured")
)

// NotifyService delivers email through SendGrid and SMS through Twilio.
type NotifyService struct {
	cfg    config.NotifyConfig
	twilio *twilio.RestClient
	log    *logrus.Entry
}

func NewNotifyService(cfg config.NotifyConfig) *NotifyService {
	n := &NotifyService{cfg: cfg, log: logger.New("notify")}
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		n.twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   cfg.TwilioAccountSID,
			Password:   cfg.TwilioAuthToken,
			AccountSid: cfg.TwilioAccountSID,
		})
	}
	return n
}

func (n *NotifyService) EmailEnabled() bool {
	return n.cfg.SendGridAPIKey != "" && n.cfg.SendGridFromEmail != ""
}

func (n *NotifyService) SMSEnabled() bool {
	return n.twilio != nil && n.cfg.TwilioFromNumber != ""
}

func (n *NotifyService) SendEmail(toEmailAddress, toName, subject, plainTextContent, htmlContent string) error {
	if !n.EmailEnabled() {
		return ErrEmailNotConfigured
	}

	from := mail.NewEmail(n.cfg.SendGridFromName, n.cfg.SendGridFromEmail)
	to := mail.NewEmail(toName, toEmailAddress)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(n.cfg.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s failed: %w", toEmailAddress, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	n.log.WithFields(logrus.Fields{"to": toEmailAddress, "subject": subject, "status": response.StatusCode}).Info("email sent")
	return nil
}

func (n *NotifyService) SendSMS(toNumber, messageBody string) error {
	if !n.SMSEnabled() {
		return ErrSMSNotConfigured
	}
	if !strings.HasPrefix(toNumber, "+") {
		n.log.WithField("to", toNumber).Warn("destination is not in E.164 format, SMS may fail")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(n.cfg.TwilioFromNumber)
	params.SetBody(messageBody)

	resp, err := n.twilio.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s failed: %w", toNumber, err)
	}

	entry := n.log.WithField("to", toNumber)
	if resp != nil && resp.Sid != nil {
		entry = entry.WithField("sid", *resp.Sid)
	}
	entry.Info("sms sent")
	return nil
}
