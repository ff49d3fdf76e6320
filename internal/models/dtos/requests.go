package dtos

// ContactInput is the intake form payload, shared by the authenticated form
// and the public token link.
type ContactInput struct {
	Prenom               string   `json:"prenom" validate:"required,max=100"`
	Nom                  string   `json:"nom" validate:"required,max=100"`
	Telephone            string   `json:"telephone" validate:"required,min=6,max=20"`
	IsWhatsapp           bool     `json:"is_whatsapp"`
	Ville                string   `json:"ville" validate:"max=100"`
	Besoin               []string `json:"besoin" validate:"dive,max=100"`
	InfosSupplementaires string   `json:"infos_supplementaires" validate:"max=2000"`
	PriereSalut          bool     `json:"priere_salut"`
	TypeConversion       string   `json:"type_conversion" validate:"max=50"`
}

// DispatchRequest sends one or more contacts to a cellule or a conseiller.
type DispatchRequest struct {
	ContactIDs      []int64 `json:"contact_ids" validate:"required,min=1,dive,gt=0"`
	DestinationType string  `json:"destination_type" validate:"required,oneof=cellule conseiller"`
	DestinationID   string  `json:"destination_id" validate:"required"`
}

// FollowUpPatch is the owner's update of a follow-up record.
type FollowUpPatch struct {
	Status      *string `json:"status,omitempty"`
	StatusCode  *int    `json:"status_code,omitempty" validate:"omitempty,min=1,max=4"`
	Commentaire *string `json:"commentaire,omitempty" validate:"omitempty,max=2000"`
}

// ContactStatusPatch changes the lifecycle status of a contact directly.
type ContactStatusPatch struct {
	Status string `json:"status" validate:"required"`
}

// EvangelismStatusPatch changes the outreach status of a contact.
type EvangelismStatusPatch struct {
	EvangelismStatus string `json:"evangelism_status" validate:"required"`
}

// MemberDetails carries the membership fields captured at integration time.
type MemberDetails struct {
	BaptemeEau    bool     `json:"bapteme_eau"`
	BaptemeEsprit bool     `json:"bapteme_esprit"`
	Ministere     []string `json:"ministere" validate:"dive,max=100"`
	Formation     []string `json:"formation" validate:"dive,max=100"`
}

// IntakeLinkRequest asks for a public submission link.
type IntakeLinkRequest struct {
	TTLHours int `json:"ttl_hours" validate:"omitempty,min=1,max=8760"`
}

// RevokeIntakeLinkRequest revokes a previously issued link.
type RevokeIntakeLinkRequest struct {
	Token string `json:"token" validate:"required"`
}

// ListFilter narrows scoped list endpoints.
type ListFilter struct {
	Status string
	Limit  int
	Offset int
}
