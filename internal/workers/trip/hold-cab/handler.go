// internal/workers/trip/hold-cab/handler.go
package holdcab

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"cabs-workers/internal/booking"
	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
)

const (
	TaskType = "hold-cab"
)

// Handler reserves one cab from an earlier search. The selection is checked
// against the stored search session before the Hold API is called, and a
// successful hold is appended to the booking audit trail.
type Handler struct {
	config       *Config
	cabs         *booking.Client
	sessions     *booking.SessionStore
	records      *booking.RecordStore
	errorHandler *cerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, cabs *booking.Client, sessions *booking.SessionStore, records *booking.RecordStore, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		cabs:         cabs,
		sessions:     sessions,
		records:      records,
		errorHandler: cerrors.NewErrorHandler(log),
		logger:       log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.handleError(client, job, cerrors.NewValidationError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.handleError(client, job, err)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	session, err := h.sessions.Get(ctx, input.SearchID)
	if err != nil {
		return nil, err
	}

	cab, ok := session.FindCab(input.CabID, input.Category)
	if !ok {
		return nil, cerrors.NewValidationError(
			fmt.Sprintf("cab '%s' with category '%s' is not part of search '%s'", input.CabID, input.Category, input.SearchID))
	}

	passenger := &booking.Passenger{
		Name:        input.PassengerName,
		Gender:      input.Gender,
		Mobile:      input.Mobile,
		CountryCode: CountryCode,
		Email:       input.Email,
	}

	result, err := h.cabs.Hold(ctx, input.SearchID, cab, passenger)
	if err != nil {
		return nil, err
	}

	h.recordBooking(ctx, input, result)

	if err := h.sessions.Delete(ctx, input.SearchID); err != nil {
		h.logger.Warn("failed to delete search session", map[string]interface{}{
			"searchId": input.SearchID,
			"error":    err.Error(),
		})
	}

	return &Output{
		HoldStatus:      StatusHeld,
		BookingID:       result.BookingID,
		PaymentURL:      result.PaymentURL,
		Fare:            cab.Fare,
		Currency:        cab.Currency,
		PassengerMobile: input.Mobile,
		PassengerEmail:  input.Email,
	}, nil
}

// recordBooking is best effort: the hold already succeeded upstream, a
// missing audit row must not undo it.
func (h *Handler) recordBooking(ctx context.Context, input *Input, result *booking.HoldResult) {
	if h.records == nil {
		return
	}

	err := h.records.Insert(ctx, &booking.Record{
		BookingID:       result.BookingID,
		SearchID:        input.SearchID,
		PassengerName:   input.PassengerName,
		PassengerMobile: input.Mobile,
		PassengerEmail:  input.Email,
	})
	if err != nil {
		h.logger.Error("failed to record booking", map[string]interface{}{
			"bookingId": result.BookingID,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, sendErr := cmd.Send(context.Background()); sendErr != nil {
		h.logger.Error("Failed to send complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

func (h *Handler) handleError(client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(cerrors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(context.Background(), client, job, err)
}
