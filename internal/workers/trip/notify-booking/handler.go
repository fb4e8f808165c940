// internal/workers/trip/notify-booking/handler.go
package notifybooking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
)

const (
	TaskType = "notify-booking"
)

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from, to, subject, body string) error
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message, senderID string) error
}

// Handler sends the booking confirmation with the payment link over the
// configured channels. A send failure is retryable, the hold itself is
// already done by the time this worker runs.
type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	errorHandler *cerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
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

	if strings.TrimSpace(input.BookingID) == "" {
		h.handleError(client, job, cerrors.NewValidationError("bookingId is required"))
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
	var channels []string

	if h.config.EmailEnabled && h.email != nil && input.PassengerEmail != "" {
		subject, body := buildEmail(input)
		if err := h.email.SendText(ctx, h.config.FromEmail, input.PassengerEmail, subject, body); err != nil {
			return nil, cerrors.NewNotificationSendFailedError(ChannelEmail, err)
		}
		channels = append(channels, ChannelEmail)
	}

	if h.config.SMSEnabled && h.sms != nil && input.PassengerMobile != "" {
		if err := h.sms.SendSMS(ctx, toE164(input.PassengerMobile), buildSMS(input), h.config.SenderID); err != nil {
			return nil, cerrors.NewNotificationSendFailedError(ChannelSMS, err)
		}
		channels = append(channels, ChannelSMS)
	}

	status := StatusSent
	if len(channels) == 0 {
		status = StatusSkipped
		h.logger.Warn("no notification channel available", map[string]interface{}{
			"bookingId": input.BookingID,
		})
	}

	return &Output{
		NotificationID: uuid.New().String(),
		Status:         status,
		Channels:       channels,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func buildEmail(input *Input) (subject, body string) {
	subject = fmt.Sprintf("Your cab booking %s is confirmed", input.BookingID)

	var b strings.Builder
	name := strings.TrimSpace(input.PassengerName)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your cab is booked (booking id %s).\n", input.BookingID)
	if input.SourceAddress != "" && input.DestinationAddress != "" {
		fmt.Fprintf(&b, "Trip: %s -> %s\n", input.SourceAddress, input.DestinationAddress)
	}
	if input.PaymentURL != "" {
		fmt.Fprintf(&b, "\nComplete your payment to confirm the ride: %s\n", input.PaymentURL)
	}
	b.WriteString("\nHave a safe trip!\n")
	return subject, b.String()
}

func buildSMS(input *Input) string {
	msg := fmt.Sprintf("Cab booked, id %s.", input.BookingID)
	if input.PaymentURL != "" {
		msg += " Pay here: " + input.PaymentURL
	}
	return msg
}

// toE164 assumes the mobile was normalized to 10 digits upstream.
func toE164(mobile string) string {
	if strings.HasPrefix(mobile, "+") {
		return mobile
	}
	return "+91" + mobile
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
