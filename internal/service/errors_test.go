package service

import (
	"errors"
	"testing"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToRescheduleError_ComputationDetailStaysInLog(t *testing.T) {
	cause := errors.New("plan p7 on 2025-03-05 overlaps p3 at 09:00")
	err := &reschedule.ComputationError{Op: "diff", Err: cause}

	core, logs := observer.New(zapcore.ErrorLevel)
	logComputationError(zap.New(core), "g1", err)
	mapped := toRescheduleError(err)

	var re *app.RescheduleError
	require.ErrorAs(t, mapped, &re)
	assert.Equal(t, app.ErrComputation, re.Code)
	assert.Equal(t, "COMPUTATION: schedule computation failed", mapped.Error())
	assert.NotContains(t, mapped.Error(), "p7")
	assert.ErrorIs(t, mapped, cause)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "g1", fields["group_id"])
	assert.Equal(t, "diff", fields["op"])
	assert.Contains(t, fields["error"], "p7")
}

func TestToRescheduleError_ValidationKeepsMessage(t *testing.T) {
	err := toRescheduleError(&reschedule.ValidationError{Reason: "window ends before it starts"})
	var re *app.RescheduleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, app.ErrValidation, re.Code)
	assert.Contains(t, err.Error(), "ends before it starts")
}
