package constants

// Report aggregates. Placeholders are written as ? and rebound per driver;
// %s receives the visibility predicate built by the repository.
const (
	CountFollowUpsByStatus = `
	SELECT status_code, COUNT(*) AS total FROM suivis WHERE %s GROUP BY status_code
	`

	CountFollowUpsByCellule = `
	SELECT destination_id, destination_name, COUNT(*) AS total
	FROM suivis
	WHERE destination_type = 'cellule' AND %s
	GROUP BY destination_id, destination_name
	ORDER BY total DESC
	`

	CountContactsByStatus = `
	SELECT status, COUNT(*) AS total FROM evangelises WHERE %s GROUP BY status
	`

	CountMembers = `
	SELECT COUNT(*) FROM membres WHERE %s
	`
)

// Orphan detection: people present in membres and still in a source table.
// %s receives the church/branch predicate, or 1=1 for a global pass.
const (
	FindOrphanContacts = `
	SELECT DISTINCT e.contact_key, e.telephone, 'evangelises' AS source_table, e.id AS source_id, e.church_id, e.branch_id
	FROM evangelises e
	JOIN membres m ON m.contact_key = e.contact_key OR (e.telephone <> '' AND m.telephone = e.telephone)
	WHERE %s
	`

	FindOrphanFollowUps = `
	SELECT DISTINCT s.contact_key, s.telephone, 'suivis' AS source_table, s.id AS source_id, s.church_id, s.branch_id
	FROM suivis s
	JOIN membres m ON m.contact_key = s.contact_key
	WHERE %s
	`
)
