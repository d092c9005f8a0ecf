package service

import (
	"errors"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"go.uber.org/zap"
)

// computationMessage is all a caller sees of a computation failure. The
// detail goes to the log through logComputationError.
const computationMessage = "schedule computation failed"

// toRescheduleError maps engine and persistence errors onto the codes the
// CLI understands. Anything unrecognised is returned unchanged.
func toRescheduleError(err error) error {
	if err == nil {
		return nil
	}
	var re *app.RescheduleError
	if errors.As(err, &re) {
		return err
	}
	var verr *reschedule.ValidationError
	var cerr *reschedule.ComputationError
	switch {
	case errors.As(err, &verr):
		return &app.RescheduleError{Code: app.ErrValidation, Message: verr.Error(), Err: err}
	case errors.As(err, &cerr):
		return &app.RescheduleError{Code: app.ErrComputation, Message: computationMessage, Err: err}
	case errors.Is(err, repository.ErrVersionConflict):
		return &app.RescheduleError{Code: app.ErrConflict, Message: "plan group changed since it was read; preview again", Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return &app.RescheduleError{Code: app.ErrNotFound, Message: err.Error(), Err: err}
	}
	return err
}

// logComputationError records invariant violations before they surface.
func logComputationError(logger *zap.Logger, groupID string, err error) {
	var cerr *reschedule.ComputationError
	if errors.As(err, &cerr) {
		logger.Error("reschedule computation failed",
			zap.String("group_id", groupID),
			zap.String("op", cerr.Op),
			zap.Error(cerr.Err))
	}
}
