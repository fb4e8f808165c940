// internal/workers/trip/resolve-location/handler.go
package resolvelocation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
	"cabs-workers/internal/location"
)

const (
	TaskType = "resolve-location"
)

// Handler exposes the location resolver as a stateless task. Ambiguity and
// user-facing failures become regular output variables the process can
// route on; only the missing-credential case is thrown as a BPMN error.
type Handler struct {
	config       *Config
	resolver     *location.Resolver
	errorHandler *cerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *location.Resolver, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		resolver:     resolver,
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

	if input.Role != string(location.RoleSource) && input.Role != string(location.RoleDestination) {
		h.handleError(client, job, cerrors.NewValidationError(
			fmt.Sprintf("role must be 'source' or 'destination', got '%s'", input.Role)))
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

// execute maps a resolver outcome onto the stateless output protocol.
// The only error return is the fatal configuration case.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	out := h.resolver.Resolve(ctx, location.Query{
		Text:       input.Query,
		Role:       location.Role(input.Role),
		Identifier: input.PlaceID,
	})

	switch out.Status {
	case location.StatusResolved:
		return &Output{
			ResolutionStatus: StatusResolved,
			Role:             input.Role,
			Location:         out.Location,
		}, nil

	case location.StatusNeedsDisambiguation:
		return &Output{
			ResolutionStatus: StatusDisambiguationNeeded,
			Role:             input.Role,
			Options:          out.Disambiguation.Options,
			Message:          out.Disambiguation.Message,
		}, nil

	default:
		if cerrors.IsConfiguration(out.Err) {
			return nil, out.Err
		}
		return &Output{
			ResolutionStatus: StatusError,
			Role:             input.Role,
			ErrorCode:        string(out.Err.Code),
			Message:          out.Err.Message,
		}, nil
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
