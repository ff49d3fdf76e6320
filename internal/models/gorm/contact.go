package gorm

import (
	"time"

	"soultrack/followup/internal/lifecycle"
)

// Contact is a person captured by evangelism outreach or the intake form,
// before integration.
type Contact struct {
	ID                   int64                      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContactKey           string                     `gorm:"column:contact_key;type:varchar(36);uniqueIndex;not null" json:"contact_key"`
	Prenom               string                     `gorm:"column:prenom;not null" json:"prenom"`
	Nom                  string                     `gorm:"column:nom;not null" json:"nom"`
	Telephone            string                     `gorm:"column:telephone;index" json:"telephone"`
	IsWhatsapp           bool                       `gorm:"column:is_whatsapp;default:false" json:"is_whatsapp"`
	Ville                string                     `gorm:"column:ville" json:"ville"`
	Besoin               []string                   `gorm:"column:besoin;type:text;serializer:json" json:"besoin"`
	InfosSupplementaires string                     `gorm:"column:infos_supplementaires" json:"infos_supplementaires"`
	PriereSalut          bool                       `gorm:"column:priere_salut;default:false" json:"priere_salut"`
	TypeConversion       string                     `gorm:"column:type_conversion" json:"type_conversion"`
	Status               lifecycle.Status           `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	EvangelismStatus     lifecycle.EvangelismStatus `gorm:"column:evangelism_status;type:varchar(40)" json:"evangelism_status,omitempty"`
	Source               string                     `gorm:"column:source;type:varchar(20)" json:"source"`
	ChurchID             int64                      `gorm:"column:church_id;index:idx_evangelises_scope" json:"church_id"`
	BranchID             int64                      `gorm:"column:branch_id;index:idx_evangelises_scope" json:"branch_id"`
	CreatedAt            time.Time                  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Contact) TableName() string {
	return "evangelises"
}
