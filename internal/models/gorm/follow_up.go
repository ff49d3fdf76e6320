package gorm

import (
	"time"

	"soultrack/followup/internal/lifecycle"
)

// FollowUpRecord assigns a contact to a cell group or a counselor.
// The (telephone, destination_type, destination_id) unique index is what
// makes a repeated hand-off fail at the store instead of racing a prior read.
type FollowUpRecord struct {
	ID                   int64                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContactKey           string               `gorm:"column:contact_key;type:varchar(36);index;not null" json:"contact_key"`
	Prenom               string               `gorm:"column:prenom" json:"prenom"`
	Nom                  string               `gorm:"column:nom" json:"nom"`
	Telephone            string               `gorm:"column:telephone;uniqueIndex:idx_suivis_destination;not null" json:"telephone"`
	IsWhatsapp           bool                 `gorm:"column:is_whatsapp;default:false" json:"is_whatsapp"`
	Ville                string               `gorm:"column:ville" json:"ville"`
	Besoin               []string             `gorm:"column:besoin;type:text;serializer:json" json:"besoin"`
	InfosSupplementaires string               `gorm:"column:infos_supplementaires" json:"infos_supplementaires"`
	DestinationType      string               `gorm:"column:destination_type;type:varchar(20);uniqueIndex:idx_suivis_destination;not null" json:"destination_type"`
	DestinationID        string               `gorm:"column:destination_id;type:varchar(64);uniqueIndex:idx_suivis_destination;not null" json:"destination_id"`
	DestinationName      string               `gorm:"column:destination_name" json:"destination_name"`
	CelluleID            *int64               `gorm:"column:cellule_id;index" json:"cellule_id,omitempty"`
	ConseillerID         *string              `gorm:"column:conseiller_id;type:varchar(64);index" json:"conseiller_id,omitempty"`
	StatusCode           lifecycle.StatusCode `gorm:"column:status_code;not null;index" json:"status_code"`
	Commentaire          string               `gorm:"column:commentaire" json:"commentaire"`
	ChurchID             int64                `gorm:"column:church_id;index:idx_suivis_scope" json:"church_id"`
	BranchID             int64                `gorm:"column:branch_id;index:idx_suivis_scope" json:"branch_id"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (FollowUpRecord) TableName() string {
	return "suivis"
}
