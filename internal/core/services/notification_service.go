package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/adapters/persistence/models"
	"github.com/gabrieljohansenthomas-ui/Smartlib-2/internal/config"
)

const mailAPIEndpoint = "https://api.sendgrid.com/v3/mail/send"

// NotificationService sends loan lifecycle emails through the mail API.
// All Notify* methods are best-effort: failures are logged, never returned,
// so a dropped email can never roll back a committed loan decision.
type NotificationService struct {
	apiKey  string
	from    string
	client  *http.Client
	enabled bool
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg config.MailConfig) *NotificationService {
	return &NotificationService{
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		client:  &http.Client{Timeout: 10 * time.Second},
		enabled: cfg.APIKey != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

type mailAddress struct {
	Email string `json:"email"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailPayload struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

// sendMail sends one plain-text email via the mail API
func (s *NotificationService) sendMail(to, subject, body string) error {
	if !s.enabled || to == "" {
		return nil
	}

	payload := mailPayload{
		Personalizations: []mailPersonalization{{To: []mailAddress{{Email: to}}}},
		From:             mailAddress{Email: s.from},
		Subject:          subject,
		Content:          []mailContent{{Type: "text/plain", Value: body}},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", mailAPIEndpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	return nil
}

// notify logs instead of failing when delivery goes wrong
func (s *NotificationService) notify(to, subject, body string) {
	if err := s.sendMail(to, subject, body); err != nil {
		log.Printf("⚠️ Notification failed [%s]: %v", subject, err)
	}
}

// NotifyLoanApproved tells the member their request was approved
func (s *NotificationService) NotifyLoanApproved(loan *models.Loan) {
	if loan.User == nil || loan.Book == nil {
		return
	}

	due := ""
	if loan.DueDate != nil {
		due = loan.DueDate.Format("2 Jan 2006")
	}

	body := fmt.Sprintf(`Hi %s,

Your loan request for "%s" has been approved.
Please return the book by %s.

Happy reading!`,
		loan.User.DisplayName,
		loan.Book.Title,
		due,
	)

	s.notify(loan.User.Email, "Loan approved: "+loan.Book.Title, body)
}

// NotifyLoanRejected tells the member their request was rejected
func (s *NotificationService) NotifyLoanRejected(loan *models.Loan) {
	if loan.User == nil || loan.Book == nil {
		return
	}

	body := fmt.Sprintf(`Hi %s,

Unfortunately your loan request for "%s" was rejected.
Please contact the library desk if you have questions.`,
		loan.User.DisplayName,
		loan.Book.Title,
	)

	s.notify(loan.User.Email, "Loan rejected: "+loan.Book.Title, body)
}

// NotifyLoanReturned confirms the return was recorded
func (s *NotificationService) NotifyLoanReturned(loan *models.Loan) {
	if loan.User == nil || loan.Book == nil {
		return
	}

	body := fmt.Sprintf(`Hi %s,

Thanks for returning "%s". The loan is closed.`,
		loan.User.DisplayName,
		loan.Book.Title,
	)

	s.notify(loan.User.Email, "Return confirmed: "+loan.Book.Title, body)
}

// NotifyDueReminder reminds a member about an upcoming due date
func (s *NotificationService) NotifyDueReminder(loan *models.Loan) {
	if loan.User == nil || loan.Book == nil || loan.DueDate == nil {
		return
	}

	body := fmt.Sprintf(`Hi %s,

A friendly reminder that "%s" is due back on %s.`,
		loan.User.DisplayName,
		loan.Book.Title,
		loan.DueDate.Format("2 Jan 2006"),
	)

	s.notify(loan.User.Email, "Due soon: "+loan.Book.Title, body)
}

// NotifyOverdue tells a member their loan is now overdue
func (s *NotificationService) NotifyOverdue(loan *models.Loan) {
	if loan.User == nil || loan.Book == nil || loan.DueDate == nil {
		return
	}

	body := fmt.Sprintf(`Hi %s,

"%s" was due on %s and is now overdue.
Please return it as soon as possible.`,
		loan.User.DisplayName,
		loan.Book.Title,
		loan.DueDate.Format("2 Jan 2006"),
	)

	s.notify(loan.User.Email, "Overdue: "+loan.Book.Title, body)
}

// NotifyNewBook announces a new catalog entry to subscribed members
func (s *NotificationService) NotifyNewBook(book *models.Book, subscribers []*models.User) {
	if book == nil {
		return
	}

	body := fmt.Sprintf(`A new book just arrived in the library:

%s
by %s

Log in to place a loan request.`,
		book.Title,
		book.Author,
	)

	for _, u := range subscribers {
		s.notify(u.Email, "New arrival: "+book.Title, body)
	}
}
