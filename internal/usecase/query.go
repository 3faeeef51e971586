package usecase

import (
	"context"

	"teleconseil/internal/domain/appointment"
	"teleconseil/internal/domain/user"
	"teleconseil/internal/infra"
	"teleconseil/internal/pkg/errs"

	"github.com/google/uuid"
)

// AppointmentQueries is the read side. Reads are plain snapshots of the
// document; no status guard applies.
type AppointmentQueries interface {
	GetByID(ctx context.Context, id, actorID uuid.UUID, role user.Role) (*appointment.Appointment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error)
}

type appointmentQueriesImpl struct {
	appointments AppointmentRepository
}

func NewAppointmentQueries(appointments AppointmentRepository) AppointmentQueries {
	return &appointmentQueriesImpl{appointments: appointments}
}

// GetByID returns the appointment if the actor participates in it. Admins
// can read any appointment.
func (uc *appointmentQueriesImpl) GetByID(ctx context.Context, id, actorID uuid.UUID, role user.Role) (*appointment.Appointment, error) {
	appt, err := uc.appointments.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, errs.Mark(err, ErrOperationFailed)
	}

	if role != user.RoleAdmin && appt.ClientID != actorID && appt.ProID != actorID {
		return nil, ErrForbidden
	}
	return appt, nil
}

func (uc *appointmentQueriesImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*appointment.Appointment, error) {
	appts, err := uc.appointments.FindByParticipant(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrOperationFailed)
	}
	return appts, nil
}
