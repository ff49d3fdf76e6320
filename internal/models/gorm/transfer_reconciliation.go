package gorm

import "time"

// TransferReconciliation flags a hand-off that left the person in both
// collections, or in neither, so an operator can fix it.
type TransferReconciliation struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContactKey  string     `gorm:"column:contact_key;type:varchar(36);index" json:"contact_key"`
	Telephone   string     `gorm:"column:telephone" json:"telephone"`
	Operation   string     `gorm:"column:operation;type:varchar(30)" json:"operation"`
	SourceTable string     `gorm:"column:source_table;type:varchar(30)" json:"source_table"`
	TargetTable string     `gorm:"column:target_table;type:varchar(30)" json:"target_table"`
	Reason      string     `gorm:"column:reason" json:"reason"`
	ChurchID    int64      `gorm:"column:church_id;index" json:"church_id"`
	BranchID    int64      `gorm:"column:branch_id;index" json:"branch_id"`
	Resolved    bool       `gorm:"column:resolved;default:false;index" json:"resolved"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TransferReconciliation) TableName() string {
	return "transfer_reconciliations"
}

// All returns every model the service migrates.
func All() []interface{} {
	return []interface{}{
		&Contact{},
		&FollowUpRecord{},
		&CellGroup{},
		&Profile{},
		&Member{},
		&TransferReconciliation{},
	}
}
