package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateAppointmentRequest struct {
	ProID    uuid.UUID `json:"proId" binding:"required"`
	DateTime time.Time `json:"dateTime" binding:"required"`
	Duration int       `json:"duration" binding:"required"`
	TimeSlot string    `json:"timeSlot" binding:"required"`
}

type EvaluateAppointmentRequest struct {
	AppointmentID uuid.UUID `json:"appointmentId" binding:"required"`
	ProID         uuid.UUID `json:"proId"`
	Rating        int       `json:"rating" binding:"required,min=1,max=5"`
}
