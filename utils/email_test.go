package utils

import (
	"os"
	"strings"
	"testing"
)

func TestSendEmailWithoutSMTPConfig(t *testing.T) {
	os.Unsetenv("SMTP_HOST")
	os.Unsetenv("SMTP_PORT")
	os.Unsetenv("SMTP_FROM")

	err := SendEmail("someone@test.com", "hi", "<p>hi</p>")
	if err == nil || !strings.Contains(err.Error(), "SMTP not configured") {
		t.Fatalf("expected SMTP not configured error, got %v", err)
	}
}

func TestAccountStatusEmailDeactivated(t *testing.T) {
	subject, body := AccountStatusEmail("Jane Doe", false, "fraud <review>")
	if !strings.Contains(subject, "deactivated") {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "Hi Jane,") {
		t.Errorf("expected greeting with first name, got: %s", body)
	}
	if !strings.Contains(body, "fraud &lt;review&gt;") {
		t.Errorf("expected escaped reason, got: %s", body)
	}
}

func TestAccountStatusEmailReactivated(t *testing.T) {
	subject, body := AccountStatusEmail("", true, "ignored")
	if !strings.Contains(subject, "reactivated") {
		t.Errorf("unexpected subject: %s", subject)
	}
	if strings.Contains(body, "ignored") {
		t.Error("reactivation notice should not include a reason")
	}
	if !strings.Contains(body, "Hi there,") {
		t.Errorf("expected fallback greeting, got: %s", body)
	}
}

func TestVerificationEmail(t *testing.T) {
	subject, _ := VerificationEmail("Sam", true)
	if subject != "Your account has been verified" {
		t.Errorf("unexpected subject: %s", subject)
	}
	subject, body := VerificationEmail("Sam", false)
	if !strings.Contains(subject, "revoked") || !strings.Contains(body, "Hi Sam,") {
		t.Errorf("unexpected revoke notice: %s / %s", subject, body)
	}
}
