package entities

// StatusCount is one row of a GROUP BY status aggregate.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Total  int64  `db:"total" json:"total"`
}

// StatusCodeCount is one row of a GROUP BY status_code aggregate.
type StatusCodeCount struct {
	StatusCode int   `db:"status_code" json:"status_code"`
	Total      int64 `db:"total" json:"total"`
}

// CelluleCount is the number of follow-ups per cellule.
type CelluleCount struct {
	DestinationID   string `db:"destination_id" json:"cellule_id"`
	DestinationName string `db:"destination_name" json:"cellule"`
	Total           int64  `db:"total" json:"total"`
}
