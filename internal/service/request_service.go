package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thermotrack/internal/metrics"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

type RequestService struct {
	repos  *repository.Repositories
	access *AccessService
	log    *slog.Logger
}

func NewRequestService(repos *repository.Repositories, access *AccessService, log *slog.Logger) *RequestService {
	return &RequestService{
		repos:  repos,
		access: access,
		log:    log,
	}
}

// RequestInput is the payload of a room condition request
type RequestInput struct {
	RoomID             uint               `json:"room_id" validate:"required"`
	RequestType        models.RequestType `json:"request_type" validate:"enum"`
	CurrentTemperature *float64           `json:"current_temperature" validate:"omitempty,gte=-50,lte=100"`
	TargetTemperature  *float64           `json:"target_temperature" validate:"omitempty,gte=-50,lte=100"`
	FanLevelRequest    *models.FanLevel   `json:"fan_level_request" validate:"omitempty,enum"`
	Notes              string             `json:"notes" validate:"max=2000"`
}

// validate checks the fields each request type depends on
func (in RequestInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}

	switch in.RequestType {
	case models.RequestTemperatureChange:
		if in.CurrentTemperature == nil || in.TargetTemperature == nil {
			return apperrors.NewValidationError("temperature_change requests require current_temperature and target_temperature")
		}
	case models.RequestFanAdjustment:
		if in.FanLevelRequest == nil {
			return apperrors.NewValidationError("fan_adjustment requests require fan_level_request")
		}
	case models.RequestAirQuality:
	}
	return nil
}

// CreateRequest files a pending request on a room the actor can access and
// notifies the requester in the same transaction
func (s *RequestService) CreateRequest(ctx context.Context, actor Actor, in RequestInput) (*models.RoomConditionRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.access.AuthorizeRoom(ctx, actor, in.RoomID); err != nil {
		return nil, err
	}

	req := &models.RoomConditionRequest{
		UserID:             actor.UserID,
		RoomID:             in.RoomID,
		RequestType:        in.RequestType,
		CurrentTemperature: in.CurrentTemperature,
		TargetTemperature:  in.TargetTemperature,
		FanLevelRequest:    in.FanLevelRequest,
		Notes:              in.Notes,
		Status:             models.StatusPending,
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Requests.CreateRequest(ctx, req); err != nil {
			return err
		}
		if err := NotifyOnRequestChange(ctx, tx, req); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "request_create", fmt.Sprintf("Request %d (%s) on room %d", req.ID, req.RequestType, req.RoomID))
	})
	if err != nil {
		return nil, err
	}

	metrics.RequestTransitionsTotal.WithLabelValues(string(models.StatusPending)).Inc()
	s.log.Info("request created", "request_id", req.ID, "room_id", req.RoomID, "user_id", actor.UserID)
	return req, nil
}

// StatusUpdate is the payload of a workflow transition
type StatusUpdate struct {
	Status              models.RequestStatus `json:"status" validate:"enum"`
	EstimatedCompletion *time.Time           `json:"estimated_completion"`
}

// UpdateRequestStatus moves a request along the workflow. Only elevated
// actors may do so. Re-applying the current status only records a new
// estimated completion when one is given; any other move the workflow does
// not allow is a conflict, including one raced by a concurrent update.
func (s *RequestService) UpdateRequestStatus(ctx context.Context, actor Actor, requestID uint, in StatusUpdate) (*models.RoomConditionRequest, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !s.access.IsElevated(actor.Role) {
		return nil, apperrors.NewForbiddenError("only administrators and technicians can update request status")
	}

	var req *models.RoomConditionRequest
	changed := false
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		var err error
		req, err = tx.Requests.GetRequestByID(ctx, requestID)
		if err != nil {
			return err
		}

		if req.Status == in.Status {
			if in.EstimatedCompletion == nil {
				return nil
			}
			eta := in.EstimatedCompletion.UTC()
			if err := tx.Requests.SetEstimatedCompletion(ctx, req.ID, req.Status, eta); err != nil {
				return err
			}
			req.EstimatedCompletion = &eta
			return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "request_eta", fmt.Sprintf("Request %d estimated completion set to %s", req.ID, eta.Format(time.RFC3339)))
		}
		if !req.Status.CanTransition(in.Status) {
			return apperrors.NewConflictError(fmt.Sprintf("cannot move request from %s to %s", req.Status, in.Status))
		}

		if err := tx.Requests.UpdateStatus(ctx, req.ID, req.Status, in.Status, in.EstimatedCompletion); err != nil {
			return err
		}
		from := req.Status
		req.Status = in.Status
		if in.EstimatedCompletion != nil {
			eta := in.EstimatedCompletion.UTC()
			req.EstimatedCompletion = &eta
		}

		if err := NotifyOnRequestChange(ctx, tx, req); err != nil {
			return err
		}
		changed = true
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "request_status", fmt.Sprintf("Request %d moved from %s to %s", req.ID, from, req.Status))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		metrics.RequestTransitionsTotal.WithLabelValues(string(req.Status)).Inc()
		s.log.Info("request status updated", "request_id", req.ID, "status", req.Status, "actor_id", actor.UserID)
	}
	return req, nil
}

// ListRequests returns the actor's own requests; elevated actors see every
// request, optionally filtered by status
func (s *RequestService) ListRequests(ctx context.Context, actor Actor, status *models.RequestStatus) ([]models.RoomConditionRequest, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", *status))
	}

	if s.access.IsElevated(actor.Role) {
		return s.repos.Requests.GetRequests(ctx, status)
	}

	reqs, err := s.repos.Requests.GetRequestsByUserID(ctx, actor.UserID)
	if err != nil || status == nil {
		return reqs, err
	}

	filtered := reqs[:0]
	for _, r := range reqs {
		if r.Status == *status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
