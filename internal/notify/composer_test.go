package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"soultrack/followup/internal/models/dtos"

	"gopkg.in/gomail.v2"
)

func jeanDupont() ContactCard {
	return ContactCard{
		Prenom:    "Jean",
		Nom:       "Dupont",
		Telephone: "+23055512345",
		Besoin:    []string{"Finances"},
	}
}

func TestCompose_WhatsAppLink(t *testing.T) {
	dest := Destination{Type: "cellule", ID: "7", Name: "Cellule Nord", Owner: "Marie", Telephone: "+230 5 77 88 99"}

	msg := Compose(jeanDupont(), dest)

	if !strings.HasPrefix(msg.WhatsAppURI, "https://wa.me/2305778899?text=") {
		t.Errorf("Unexpected WhatsApp URI: %s", msg.WhatsAppURI)
	}
	if strings.Contains(msg.WhatsAppURI, "+") || strings.Contains(msg.WhatsAppURI, " ") {
		t.Errorf("Expected spaces encoded as %%20, got %s", msg.WhatsAppURI)
	}
	for _, want := range []string{"Bonjour Marie", "Cellule Nord", "Jean Dupont", "+23055512345", "Finances"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("Expected message text to contain %q:\n%s", want, msg.Text)
		}
	}
	if msg.MailtoURI != "" {
		t.Errorf("Expected no mailto link without email, got %s", msg.MailtoURI)
	}
}

func TestCompose_MailtoOnly(t *testing.T) {
	dest := Destination{Type: "conseiller", ID: "p-1", Name: "Paul", Email: "paul@example.org"}

	msg := Compose(jeanDupont(), dest)

	if msg.WhatsAppURI != "" {
		t.Errorf("Expected no WhatsApp link without phone, got %s", msg.WhatsAppURI)
	}
	if !strings.HasPrefix(msg.MailtoURI, "mailto:paul@example.org?subject=") || !strings.Contains(msg.MailtoURI, "&body=") {
		t.Errorf("Unexpected mailto URI: %s", msg.MailtoURI)
	}
}

func TestEmailNotifier(t *testing.T) {
	var sent *gomail.Message
	n := &EmailNotifier{from: "noreply@soultrack.org", send: func(m *gomail.Message) error {
		sent = m
		return nil
	}}
	dest := Destination{Email: "paul@example.org"}
	msg := dtos.Message{Text: "Bonjour", WhatsAppURI: "https://wa.me/1?text=x"}

	if err := n.Notify(context.Background(), dest, "Sujet", msg); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if sent == nil || sent.GetHeader("To")[0] != "paul@example.org" {
		t.Fatalf("Expected message to paul@example.org, got %v", sent)
	}

	sent = nil
	if err := n.Notify(context.Background(), Destination{}, "Sujet", msg); err != nil || sent != nil {
		t.Error("Expected destinations without email to be skipped")
	}

	n.send = func(*gomail.Message) error { return errors.New("smtp down") }
	if err := n.Notify(context.Background(), dest, "Sujet", msg); err == nil {
		t.Error("Expected SMTP error to be returned")
	}
}

func TestEmailNotifier_StalledServerHonoursDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	n := &EmailNotifier{from: "noreply@soultrack.org", send: func(*gomail.Message) error {
		<-release
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := n.Notify(ctx, Destination{Email: "paul@example.org"}, "Sujet", dtos.Message{Text: "Bonjour"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected Notify to give up at the deadline, took %v", elapsed)
	}
}
