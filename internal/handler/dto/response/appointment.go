package response

import (
	"time"

	"teleconseil/internal/domain/appointment"

	"github.com/google/uuid"
)

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProID           uuid.UUID  `json:"proId"`
	ClientID        uuid.UUID  `json:"clientId"`
	Duration        int        `json:"duration"`
	DateTime        time.Time  `json:"dateTime"`
	TimeSlot        string     `json:"timeSlot"`
	AmountHT        int64      `json:"amountHT"`
	AmountTotal     int64      `json:"amountTotal"`
	Status          string     `json:"status"`
	RoomID          *string    `json:"roomId,omitempty"`
	AmountPaidOut   *int64     `json:"amountPaidOut,omitempty"`
	LastEvaluatedAt *time.Time `json:"lastEvaluatedAt,omitempty"`
	PaidOutAt       *time.Time `json:"paidOutAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func FromAppointment(a *appointment.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              a.ID,
		ProID:           a.ProID,
		ClientID:        a.ClientID,
		Duration:        a.Duration.Minutes(),
		DateTime:        a.DateTime,
		TimeSlot:        a.TimeSlot,
		AmountHT:        a.AmountHT,
		AmountTotal:     a.AmountTotal,
		Status:          string(a.Status),
		RoomID:          a.RoomID,
		AmountPaidOut:   a.AmountPaidOut,
		LastEvaluatedAt: a.LastEvaluatedAt,
		PaidOutAt:       a.PaidOutAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

type CreateAppointmentResponse struct {
	Appointment  *AppointmentResponse `json:"appointment"`
	ClientSecret string               `json:"clientSecret"`
}

type EvaluationResponse struct {
	AppointmentID   uuid.UUID `json:"appointmentId"`
	ProID           uuid.UUID `json:"proId"`
	TotalDuration   int       `json:"totalDuration"`
	Rating          int       `json:"rating"`
	EvaluationAdded bool      `json:"evaluationAdded"`
}

type ConfirmAppointmentResponse struct {
	Appointment   *AppointmentResponse `json:"appointment"`
	ClientInvoice string               `json:"clientInvoice"`
	ProInvoice    string               `json:"proInvoice"`
}
