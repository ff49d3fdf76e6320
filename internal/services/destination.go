package services

import (
	"context"
	"strconv"

	"soultrack/followup/internal/auth"
	"soultrack/followup/internal/constants"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/lifecycle"
	"soultrack/followup/internal/notify"
)

// resolvedDestination is a dispatch target checked against the session's
// church and branch.
type resolvedDestination struct {
	notify.Destination
	CelluleID    *int64
	ConseillerID *string
}

type destinationResolver struct {
	cells    *repositories.CellGroupRepository
	profiles *repositories.ProfileRepository
}

func (r destinationResolver) resolve(ctx context.Context, session *auth.Session, destType, destID string) (*resolvedDestination, error) {
	if destType == "" || destID == "" {
		return nil, lifecycle.NewValidationError("destination_required", constants.MsgDestinationRequired)
	}

	switch destType {
	case constants.DestinationCellule:
		id, err := strconv.ParseInt(destID, 10, 64)
		if err != nil || id <= 0 {
			return nil, lifecycle.NewValidationError("invalid_destination", constants.MsgDestinationNotFound)
		}
		cell, err := r.cells.GetByID(ctx, id, session.ChurchID, session.BranchID)
		if err != nil {
			return nil, storeError("failed to resolve cellule", err)
		}
		if cell == nil {
			return nil, lifecycle.NewNotFoundError("destination_not_found", constants.MsgDestinationNotFound)
		}
		if cell.Telephone == "" {
			return nil, lifecycle.NewValidationError("destination_without_phone", constants.MsgDestinationNoContact)
		}

		dest := &resolvedDestination{
			Destination: notify.Destination{
				Type:      constants.DestinationCellule,
				ID:        strconv.FormatInt(cell.ID, 10),
				Name:      cell.Cellule,
				Owner:     cell.Responsable,
				Telephone: cell.Telephone,
				Email:     cell.Email,
			},
			CelluleID: &cell.ID,
		}
		if dest.Email == "" && cell.ResponsableID != "" {
			if owner, err := r.profiles.GetByID(ctx, cell.ResponsableID); err == nil && owner != nil {
				dest.Email = owner.Email
			}
		}
		return dest, nil

	case constants.DestinationConseiller:
		profile, err := r.profiles.GetByID(ctx, destID)
		if err != nil {
			return nil, storeError("failed to resolve conseiller", err)
		}
		if profile == nil || profile.ChurchID != session.ChurchID || profile.BranchID != session.BranchID || !profile.HasRole(constants.RoleConseiller) {
			return nil, lifecycle.NewNotFoundError("destination_not_found", constants.MsgDestinationNotFound)
		}
		if profile.Telephone == "" {
			return nil, lifecycle.NewValidationError("destination_without_phone", constants.MsgDestinationNoContact)
		}

		id := profile.ID
		return &resolvedDestination{
			Destination: notify.Destination{
				Type:      constants.DestinationConseiller,
				ID:        profile.ID,
				Name:      profile.DisplayName(),
				Owner:     profile.Prenom,
				Telephone: profile.Telephone,
				Email:     profile.Email,
			},
			ConseillerID: &id,
		}, nil
	}

	return nil, lifecycle.NewValidationError("invalid_destination", constants.MsgDestinationRequired)
}
