package constants

type (
	APIStatus     string
	CachePrefix   string
	ContactSource string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixReportSummary CachePrefix = "REPORT_SUMMARY_"
	CachePrefixRevokedIntake CachePrefix = "INTAKE_REVOKED_"

	ContactSourceIntakeForm ContactSource = "intake_form"
	ContactSourcePublicLink ContactSource = "public_link"
)

// Destination types a contact can be dispatched to.
const (
	DestinationCellule    = "cellule"
	DestinationConseiller = "conseiller"
)

// Lifecycle event names published to the broker.
const (
	EventContactCreated    = "contact.created"
	EventContactDispatched = "contact.dispatched"
	EventStatusChanged     = "contact.status_changed"
	EventContactIntegrated = "contact.integrated"
	EventRetentionSwept    = "followup.retention_swept"
)
