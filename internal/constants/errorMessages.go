package constants

const (
	MsgDestinationRequired  = "A destination (cellule or conseiller) must be selected"
	MsgDestinationNotFound  = "Destination not found"
	MsgDestinationNoContact = "Destination has no phone number to send the contact to"
	MsgContactNotFound      = "Contact not found"
	MsgFollowUpNotFound     = "Follow-up record not found"
	MsgAlreadySent          = "Contact already sent to this destination"
	MsgInvalidStatus        = "Unknown status"
	MsgTransitionNotAllowed = "Status transition not allowed"
	MsgReconciliationNeeded = "Hand-off partially applied, manual reconciliation required"
	MsgStoreUnavailable     = "Data store unavailable, please retry"
	MsgForbidden            = "You are not allowed to access this record"
	MsgIntakeLinkInvalid    = "Intake link is invalid or expired"
	MsgNoFollowUpCode       = "Status nouveau cannot be set on a contact that is already in follow-up"
	MsgUnauthorized         = "Unauthorized"
	MsgNoProfile            = "No profile is attached to this account"
	MsgTooManyRequests      = "Too many requests"
	MsgInvalidBody          = "Invalid request body"
	MsgInvalidID            = "Invalid id"
	MsgInternal             = "Internal server error"
	MsgStatusChanged        = "Status was changed by someone else, reload and retry"
	MsgIntakeCheckFailed    = "Intake link could not be checked, please retry"
	MsgReconciliationGone   = "Reconciliation record not found"
)
