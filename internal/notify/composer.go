// Package notify composes the hand-off message a destination owner receives
// and optionally emails it.
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"soultrack/followup/internal/common"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/models/dtos"
	gormModels "soultrack/followup/internal/models/gorm"
)

// Destination is the owner a contact is handed to.
type Destination struct {
	Type      string
	ID        string
	Name      string
	Owner     string
	Telephone string
	Email     string
}

// ContactCard is the part of a contact that goes into the message.
type ContactCard struct {
	Prenom               string
	Nom                  string
	Telephone            string
	IsWhatsapp           bool
	Ville                string
	Besoin               []string
	InfosSupplementaires string
}

func CardFromContact(c *gormModels.Contact) ContactCard {
	return ContactCard{
		Prenom:               c.Prenom,
		Nom:                  c.Nom,
		Telephone:            c.Telephone,
		IsWhatsapp:           c.IsWhatsapp,
		Ville:                c.Ville,
		Besoin:               c.Besoin,
		InfosSupplementaires: c.InfosSupplementaires,
	}
}

func CardFromFollowUp(f *gormModels.FollowUpRecord) ContactCard {
	return ContactCard{
		Prenom:               f.Prenom,
		Nom:                  f.Nom,
		Telephone:            f.Telephone,
		IsWhatsapp:           f.IsWhatsapp,
		Ville:                f.Ville,
		Besoin:               f.Besoin,
		InfosSupplementaires: f.InfosSupplementaires,
	}
}

// Subject is the email subject for a hand-off.
func Subject(card ContactCard) string {
	return fmt.Sprintf("Nouveau contact à suivre : %s %s", card.Prenom, card.Nom)
}

// Compose builds the message text and the links the client opens. Links are
// omitted when the destination has no matching channel.
func Compose(card ContactCard, dest Destination) dtos.Message {
	text := composeText(card, dest)
	msg := dtos.Message{Text: text}

	if digits := common.PhoneDigits(dest.Telephone); digits != "" {
		msg.WhatsAppURI = "https://wa.me/" + digits + "?text=" + encode(text)
	}
	if dest.Email != "" {
		msg.MailtoURI = "mailto:" + dest.Email + "?subject=" + encode(Subject(card)) + "&body=" + encode(text)
	}
	return msg
}

func composeText(card ContactCard, dest Destination) string {
	var b strings.Builder

	greeting := dest.Owner
	if greeting == "" {
		greeting = dest.Name
	}
	fmt.Fprintf(&b, "Bonjour %s,\n\n", greeting)
	if dest.Type == constants.DestinationCellule && dest.Name != "" {
		fmt.Fprintf(&b, "Un nouveau contact est confié à %s :\n", dest.Name)
	} else {
		b.WriteString("Un nouveau contact vous est confié :\n")
	}

	fmt.Fprintf(&b, "- Nom : %s %s\n", card.Prenom, card.Nom)
	phone := card.Telephone
	if card.IsWhatsapp {
		phone += " (WhatsApp)"
	}
	fmt.Fprintf(&b, "- Téléphone : %s\n", phone)
	if card.Ville != "" {
		fmt.Fprintf(&b, "- Ville : %s\n", card.Ville)
	}
	if len(card.Besoin) > 0 {
		fmt.Fprintf(&b, "- Besoin : %s\n", strings.Join(card.Besoin, ", "))
	}
	if card.InfosSupplementaires != "" {
		fmt.Fprintf(&b, "- Infos : %s\n", card.InfosSupplementaires)
	}
	b.WriteString("\nMerci pour votre suivi.")
	return b.String()
}

// encode escapes s for a query value, with spaces as %20 rather than +.
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
