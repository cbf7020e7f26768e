package utils

import (
	"fmt"
	"html"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}

func sendAsync(to, subject, body, kind string) {
	go func() {
		if err := SendEmail(to, subject, body); err != nil {
			log.Printf("Failed to send %s email to %s: %v", kind, to, err)
		}
	}()
}

func greetingName(name string) string {
	first := strings.Split(strings.TrimSpace(name), " ")[0]
	if first == "" {
		return "there"
	}
	return html.EscapeString(first)
}

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`<h2>Welcome aboard, %s!</h2>
<p>Your account has been created. You can now book rides, request deliveries and order from local stores.</p>
<p>The Marketplace Team</p>`, greetingName(name))
	sendAsync(email, "Welcome to the Marketplace", body, "welcome")
}

// AccountStatusEmail builds the notice sent when an admin activates or
// deactivates an account.
func AccountStatusEmail(name string, active bool, reason string) (subject, body string) {
	if active {
		subject = "Your account has been reactivated"
		body = fmt.Sprintf(`<h2>Account reactivated</h2>
<p>Hi %s,</p>
<p>Your account is active again and you can sign in as usual.</p>
<p>The Marketplace Team</p>`, greetingName(name))
		return subject, body
	}

	subject = "Your account has been deactivated"
	reasonLine := ""
	if reason != "" {
		reasonLine = fmt.Sprintf("<p>Reason: <strong>%s</strong></p>\n", html.EscapeString(reason))
	}
	body = fmt.Sprintf(`<h2>Account deactivated</h2>
<p>Hi %s,</p>
<p>Your account has been deactivated by an administrator.</p>
%s<p>If you think this is a mistake, reply to this e-mail.</p>
<p>The Marketplace Team</p>`, greetingName(name), reasonLine)
	return subject, body
}

func SendAccountStatusEmail(email, name string, active bool, reason string) {
	subject, body := AccountStatusEmail(name, active, reason)
	sendAsync(email, subject, body, "account status")
}

// VerificationEmail builds the notice sent when an admin changes a user's
// verification flag.
func VerificationEmail(name string, verified bool) (subject, body string) {
	if verified {
		return "Your account has been verified", fmt.Sprintf(`<h2>You're verified</h2>
<p>Hi %s,</p>
<p>Your account has been verified. Thanks for completing the checks.</p>
<p>The Marketplace Team</p>`, greetingName(name))
	}
	return "Your account verification was revoked", fmt.Sprintf(`<h2>Verification revoked</h2>
<p>Hi %s,</p>
<p>Your account is no longer marked as verified. Please contact support to complete verification again.</p>
<p>The Marketplace Team</p>`, greetingName(name))
}

func SendVerificationEmail(email, name string, verified bool) {
	subject, body := VerificationEmail(name, verified)
	sendAsync(email, subject, body, "verification")
}

// SendStaffAddedEmail tells a new staff member which store added them.
func SendStaffAddedEmail(email, name, storeName, role string) {
	roleDisplay := strings.ToLower(role)
	subject := fmt.Sprintf("You've been added to %s", storeName)
	body := fmt.Sprintf(`<h2>Welcome to %s!</h2>
<p>Hi %s,</p>
<p>You have been added to the team at <strong>%s</strong> as <strong>%s</strong>.</p>
<p>The Marketplace Team</p>`, html.EscapeString(storeName), greetingName(name), html.EscapeString(storeName), roleDisplay)
	sendAsync(email, subject, body, "staff added")
}
