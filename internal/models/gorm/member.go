package gorm

import "time"

// Member is the terminal record a contact becomes once integrated.
type Member struct {
	ID                   int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContactKey           string    `gorm:"column:contact_key;type:varchar(36);uniqueIndex;not null" json:"contact_key"`
	Prenom               string    `gorm:"column:prenom;not null" json:"prenom"`
	Nom                  string    `gorm:"column:nom;not null" json:"nom"`
	Telephone            string    `gorm:"column:telephone;index" json:"telephone"`
	IsWhatsapp           bool      `gorm:"column:is_whatsapp;default:false" json:"is_whatsapp"`
	Ville                string    `gorm:"column:ville" json:"ville"`
	Besoin               []string  `gorm:"column:besoin;type:text;serializer:json" json:"besoin"`
	InfosSupplementaires string    `gorm:"column:infos_supplementaires" json:"infos_supplementaires"`
	StatutIntegration    string    `gorm:"column:statut_integration" json:"statut_integration"`
	BaptemeEau           bool      `gorm:"column:bapteme_eau;default:false" json:"bapteme_eau"`
	BaptemeEsprit        bool      `gorm:"column:bapteme_esprit;default:false" json:"bapteme_esprit"`
	Ministere            []string  `gorm:"column:ministere;type:text;serializer:json" json:"ministere"`
	Formation            []string  `gorm:"column:formation;type:text;serializer:json" json:"formation"`
	CelluleID            *int64    `gorm:"column:cellule_id;index" json:"cellule_id,omitempty"`
	ConseillerID         *string   `gorm:"column:conseiller_id;type:varchar(64);index" json:"conseiller_id,omitempty"`
	ChurchID             int64     `gorm:"column:church_id;index" json:"church_id"`
	BranchID             int64     `gorm:"column:branch_id;index" json:"branch_id"`
	IntegratedAt         time.Time `gorm:"column:integrated_at" json:"integrated_at"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Member) TableName() string {
	return "membres"
}
