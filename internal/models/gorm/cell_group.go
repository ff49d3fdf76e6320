package gorm

// CellGroup is a small group ("cellule") led by a responsible person.
type CellGroup struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Cellule       string `gorm:"column:cellule;not null" json:"cellule"`
	Responsable   string `gorm:"column:responsable" json:"responsable"`
	ResponsableID string `gorm:"column:responsable_id;type:varchar(64);index" json:"responsable_id"`
	Telephone     string `gorm:"column:telephone" json:"telephone"`
	Email         string `gorm:"column:email" json:"email,omitempty"`
	Ville         string `gorm:"column:ville" json:"ville"`
	ChurchID      int64  `gorm:"column:church_id;index" json:"church_id"`
	BranchID      int64  `gorm:"column:branch_id;index" json:"branch_id"`
}

// TableName specifies the table name for GORM
func (CellGroup) TableName() string {
	return "cellules"
}
