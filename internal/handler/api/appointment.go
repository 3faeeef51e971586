package api

import (
	"errors"
	"net/http"

	"teleconseil/internal/domain/appointment"
	reqdto "teleconseil/internal/handler/dto/request"
	resdto "teleconseil/internal/handler/dto/response"
	"teleconseil/internal/handler/httperr"
	"teleconseil/internal/handler/middleware"
	"teleconseil/internal/pkg/errs"
	"teleconseil/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingIdentity = errs.New("authenticated identity missing from context")

type AppointmentHandler struct {
	commands    usecase.AppointmentCommands
	evaluations usecase.EvaluationCommands
	queries     usecase.AppointmentQueries
}

func NewAppointmentHandler(commands usecase.AppointmentCommands, evaluations usecase.EvaluationCommands, queries usecase.AppointmentQueries) *AppointmentHandler {
	return &AppointmentHandler{
		commands:    commands,
		evaluations: evaluations,
		queries:     queries,
	}
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.commands.Create(c.Request.Context(), usecase.CreateAppointmentInput{
		ClientID: userID,
		ProID:    req.ProID,
		DateTime: req.DateTime,
		Duration: req.Duration,
		TimeSlot: req.TimeSlot,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrProfessionalNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Professional not found", nil)
		case errors.Is(err, usecase.ErrNotProfessional):
			httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Target user is not a professional", nil)
		case errors.Is(err, appointment.ErrInvalidDuration):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Duration must be 30 or 60 minutes", nil)
		case errors.Is(err, usecase.ErrAuthorizationFailed):
			httperr.AbortWithError(c, http.StatusPaymentRequired, err, "Payment authorization failed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateAppointmentResponse{
		Appointment:  resdto.FromAppointment(result.Appointment),
		ClientSecret: result.ClientSecret,
	})
}

// AuthorizePayment is called back by the client once the payment sheet
// succeeded; it moves the document to PAYMENT_AUTHORIZED.
func (h *AppointmentHandler) AuthorizePayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	id, err := parseID(c)
	if err != nil {
		return
	}

	appt, err := h.commands.AuthorizePayment(c.Request.Context(), id, userID)
	if err != nil {
		abortLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAppointment(appt))
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	id, err := parseID(c)
	if err != nil {
		return
	}

	result, err := h.commands.Confirm(c.Request.Context(), id, userID)
	if err != nil {
		abortLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.ConfirmAppointmentResponse{
		Appointment:   resdto.FromAppointment(result.Appointment),
		ClientInvoice: result.Invoices.Client,
		ProInvoice:    result.Invoices.Professional,
	})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	role, roleOK := middleware.GetUserRole(c)
	if !ok || !roleOK {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	id, err := parseID(c)
	if err != nil {
		return
	}

	appt, err := h.commands.Cancel(c.Request.Context(), id, userID, role)
	if err != nil {
		abortLifecycleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAppointment(appt))
}

func (h *AppointmentHandler) Evaluate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	var req reqdto.EvaluateAppointmentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request format", nil)
		return
	}

	appt, err := h.evaluations.Evaluate(c.Request.Context(), req.AppointmentID, userID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
		case errors.Is(err, appointment.ErrNotAppointmentUser):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Only the appointment's client can evaluate it", nil)
		case errors.Is(err, appointment.ErrInvalidRating):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Rating must be between 1 and 5", nil)
		case errors.Is(err, usecase.ErrEvaluationNotAllowed):
			httperr.AbortWithError(c, http.StatusConflict, err, "Appointment cannot be evaluated in its current status", nil)
		case errors.Is(err, usecase.ErrConcurrentUpdate):
			httperr.AbortWithError(c, http.StatusConflict, err, "Appointment changed concurrently, retry", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	ev := appt.EvaluationHistory[len(appt.EvaluationHistory)-1]
	c.JSON(http.StatusOK, resdto.EvaluationResponse{
		AppointmentID:   appt.ID,
		ProID:           appt.ProID,
		TotalDuration:   ev.TotalCallDuration,
		Rating:          ev.Rating,
		EvaluationAdded: true,
	})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	role, roleOK := middleware.GetUserRole(c)
	if !ok || !roleOK {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	id, err := parseID(c)
	if err != nil {
		return
	}

	appt, err := h.queries.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAppointmentNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
		case errors.Is(err, usecase.ErrForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, "Not a participant of this appointment", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}
	c.JSON(http.StatusOK, resdto.FromAppointment(appt))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errMissingIdentity, "Internal server error", nil)
		return
	}

	appts, err := h.queries.ListForUser(c.Request.Context(), userID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	response := make([]*resdto.AppointmentResponse, len(appts))
	for i, a := range appts {
		response[i] = resdto.FromAppointment(a)
	}
	c.JSON(http.StatusOK, response)
}

func abortLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrAppointmentNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Appointment not found", nil)
	case errors.Is(err, usecase.ErrForbidden):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Not allowed to act on this appointment", nil)
	case errors.Is(err, appointment.ErrInvalidTransition):
		httperr.AbortWithError(c, http.StatusConflict, err, "Appointment status does not allow this operation", nil)
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		httperr.AbortWithError(c, http.StatusConflict, err, "Appointment changed concurrently, retry", nil)
	case errors.Is(err, appointment.ErrCancellationNotAllowed):
		httperr.AbortWithError(c, http.StatusForbidden, err, "This role cannot cancel the appointment", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid appointment ID format", nil)
		return uuid.Nil, err
	}
	return id, nil
}
