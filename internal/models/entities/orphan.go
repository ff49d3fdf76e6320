package entities

// Orphan is a row left behind by a half-applied hand-off: the person exists
// in membres and still in a source collection.
type Orphan struct {
	ContactKey  string `json:"contact_key" db:"contact_key"`
	Telephone   string `json:"telephone" db:"telephone"`
	SourceTable string `json:"source_table" db:"source_table"`
	SourceID    int64  `json:"source_id" db:"source_id"`
	ChurchID    int64  `json:"church_id" db:"church_id"`
	BranchID    int64  `json:"branch_id" db:"branch_id"`
}
