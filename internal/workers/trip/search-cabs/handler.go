// internal/workers/trip/search-cabs/handler.go
package searchcabs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"cabs-workers/internal/booking"
	cerrors "cabs-workers/internal/common/errors"
	"cabs-workers/internal/common/logger"
	"cabs-workers/internal/common/metrics"
	"cabs-workers/internal/location"
)

const (
	TaskType = "search-cabs"
)

// Handler resolves both trip ends, parses the pickup time and runs the cab
// search. The two resolutions run concurrently; a disambiguation on either
// end pauses the search and goes back to the caller, source first.
type Handler struct {
	config       *Config
	resolver     *location.Resolver
	cabs         *booking.Client
	sessions     *booking.SessionStore
	errorHandler *cerrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, resolver *location.Resolver, cabs *booking.Client, sessions *booking.SessionStore, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		resolver:     resolver,
		cabs:         cabs,
		sessions:     sessions,
		errorHandler: cerrors.NewErrorHandler(log),
		logger:       log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	requestID := uuid.New().String()
	log := h.logger.With(map[string]interface{}{"requestId": requestID})

	log.Info("processing job", map[string]interface{}{
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

type roleOutcome struct {
	role    location.Role
	outcome location.Outcome
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	pickupMs, err := booking.ParsePickupTime(input.PickupDate, input.PickupTime)
	if err != nil {
		return nil, err
	}

	queries := []location.Query{
		{Text: input.Source, Role: location.RoleSource, Identifier: input.SourcePlaceID},
		{Text: input.Destination, Role: location.RoleDestination, Identifier: input.DestinationPlaceID},
	}

	results := make(chan roleOutcome, len(queries))
	for _, q := range queries {
		go func(q location.Query) {
			results <- roleOutcome{role: q.Role, outcome: h.resolver.Resolve(ctx, q)}
		}(q)
	}

	outcomes := make(map[location.Role]location.Outcome, len(queries))
	for range queries {
		r := <-results
		outcomes[r.role] = r.outcome
	}

	// Hard failures win over disambiguation; source wins over destination.
	for _, role := range []location.Role{location.RoleSource, location.RoleDestination} {
		if out := outcomes[role]; out.Status == location.StatusFailed {
			return nil, out.Err
		}
	}
	for _, role := range []location.Role{location.RoleSource, location.RoleDestination} {
		if out := outcomes[role]; out.Status == location.StatusNeedsDisambiguation {
			return &Output{
				SearchStatus: StatusDisambiguationNeeded,
				Role:         string(role),
				Options:      out.Disambiguation.Options,
				Message:      out.Disambiguation.Message,
			}, nil
		}
	}

	source := outcomes[location.RoleSource].Location
	destination := outcomes[location.RoleDestination].Location

	result, err := h.cabs.Search(ctx, source, destination, pickupMs)
	if err != nil {
		return nil, err
	}

	h.saveSession(ctx, result, source, destination, pickupMs)

	return &Output{
		SearchStatus:        StatusResults,
		SearchID:            result.SearchID,
		SourceAddress:       source.Address,
		DestinationAddress:  destination.Address,
		PickupTimeMs:        pickupMs,
		TotalDistanceKm:     result.TotalDistanceKm,
		TotalDurationMin:    result.TotalDurationMin,
		CabAvailabilityTime: result.CabAvailabilityTime,
		Cabs:                result.Cabs,
	}, nil
}

// saveSession is best effort: a session store outage must not fail a search
// that already succeeded. The hold step reports SESSION_NOT_FOUND later if
// the save was lost.
func (h *Handler) saveSession(ctx context.Context, result *booking.SearchResult, source, destination *location.Location, pickupMs int64) {
	if h.sessions == nil {
		return
	}

	session := &booking.Session{
		SearchID:        result.SearchID,
		SourceAddress:   source.Address,
		DestinationAddr: destination.Address,
		PickupTimeMs:    pickupMs,
		Cabs:            result.Cabs,
	}
	if err := h.sessions.Save(ctx, session); err != nil {
		h.logger.Error("failed to save search session", map[string]interface{}{
			"searchId": result.SearchID,
			"error":    err.Error(),
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
