package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/Moosaa95/seqproject-backend/config"
	"github.com/Moosaa95/seqproject-backend/models"
)

// MailSender delivers a single email. Implementations must not panic; the
// notification service logs failures and moves on.
type MailSender interface {
	Send(to []string, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.DefaultFromEmail,
	}
}

func (s *SMTPSender) Send(to []string, subject, body string) error {
	msg := strings.Builder{}
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	return smtp.SendMail(s.host+":"+s.port, auth, s.from, to, []byte(msg.String()))
}

// EmailNotificationService sends booking/payment/inquiry emails. Every method
// is fire-and-forget from the caller's perspective: errors are logged, never
// returned into a state transition.
type EmailNotificationService struct {
	sender     MailSender
	adminEmail string
}

func NewEmailNotificationService(cfg *config.Config, sender MailSender) *EmailNotificationService {
	return &EmailNotificationService{sender: sender, adminEmail: cfg.AdminEmail}
}

func (ns *EmailNotificationService) send(to []string, subject, body string) {
	if err := ns.sender.Send(to, subject, body); err != nil {
		log.Printf("failed to send email %q to %s: %v", subject, strings.Join(to, ", "), err)
		return
	}
	log.Printf("email sent to %s: %s", strings.Join(to, ", "), subject)
}

func bookingSummary(booking *models.Booking) string {
	title := ""
	if booking.Property != nil {
		title = booking.Property.Title
	}
	return fmt.Sprintf(
		"Booking ID: %s\nProperty: %s\nGuest: %s\nCheck-in: %s\nCheck-out: %s\nNights: %d\nGuests: %d\nTotal: %s %s\nStatus: %s\nPayment: %s\n",
		booking.BookingID, title, booking.Name,
		booking.CheckIn, booking.CheckOut,
		booking.Nights, booking.Guests,
		booking.Currency, booking.TotalAmount.StringFixed(2),
		booking.Status, booking.PaymentStatus,
	)
}

// BookingCreated emails the customer a confirmation of receipt and notifies
// the admin inbox.
func (ns *EmailNotificationService) BookingCreated(booking *models.Booking) {
	ns.send([]string{booking.Email},
		"Your booking request has been received",
		"Dear "+booking.Name+",\n\nWe have received your booking request.\n\n"+bookingSummary(booking)+
			"\nYou will receive a confirmation once payment is completed.\n")

	ns.send([]string{ns.adminEmail},
		fmt.Sprintf("New booking %s", booking.BookingID),
		bookingSummary(booking))
}

func (ns *EmailNotificationService) BookingConfirmed(booking *models.Booking) {
	ns.send([]string{booking.Email},
		"Your booking is confirmed",
		"Dear "+booking.Name+",\n\nYour booking has been confirmed.\n\n"+bookingSummary(booking))
}

func (ns *EmailNotificationService) BookingCancelled(booking *models.Booking) {
	body := "Dear " + booking.Name + ",\n\nYour booking has been cancelled.\n\n" + bookingSummary(booking)
	if booking.CancellationReason != "" {
		body += "\nReason: " + booking.CancellationReason + "\n"
	}
	ns.send([]string{booking.Email}, "Your booking has been cancelled", body)
	ns.send([]string{ns.adminEmail}, fmt.Sprintf("Booking %s cancelled", booking.BookingID), body)
}

func (ns *EmailNotificationService) PaymentReceived(payment *models.Payment, booking *models.Booking) {
	if booking == nil {
		return
	}
	ns.send([]string{booking.Email},
		"Payment received",
		fmt.Sprintf("Dear %s,\n\nWe have received your payment of %s %s.\n\n%s",
			booking.Name, payment.Currency, payment.Amount.StringFixed(2), bookingSummary(booking)))
}

// ContactInquiryReceived notifies the admin inbox of a contact submission.
func (ns *EmailNotificationService) ContactInquiryReceived(inquiry *models.ContactInquiry) {
	ns.send([]string{ns.adminEmail},
		"New contact inquiry: "+inquiry.Subject,
		fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nSubject: %s\n\n%s\n",
			inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Subject, inquiry.Message))
}

// PropertyInquiryReceived notifies the property's agent when one is assigned,
// falling back to the admin inbox.
func (ns *EmailNotificationService) PropertyInquiryReceived(inquiry *models.PropertyInquiry) {
	to := ns.adminEmail
	title := ""
	if inquiry.Property != nil {
		title = inquiry.Property.Title
		if inquiry.Property.Agent != nil && inquiry.Property.Agent.Email != "" {
			to = inquiry.Property.Agent.Email
		}
	}
	ns.send([]string{to},
		"New property inquiry: "+title,
		fmt.Sprintf("Property: %s\nName: %s\nEmail: %s\nPhone: %s\n\n%s\n",
			title, inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Message))
}
