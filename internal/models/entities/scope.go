package entities

// VisibilityScope is the row predicate a caller is entitled to. It is built
// from the session and applied by repositories as a SQL WHERE clause.
type VisibilityScope struct {
	ChurchID int64
	BranchID int64

	// AllInBranch grants every row of the church/branch (administrators).
	AllInBranch bool
	// CellGroupIDs restricts rows to follow-ups sent to these cellules.
	CellGroupIDs []int64
	// CounselorID restricts rows to follow-ups owned by this counselor.
	CounselorID string
}

// Empty is true when the scope grants nothing. Repositories return no rows
// for an empty scope without querying.
func (s VisibilityScope) Empty() bool {
	return !s.AllInBranch && len(s.CellGroupIDs) == 0 && s.CounselorID == ""
}
