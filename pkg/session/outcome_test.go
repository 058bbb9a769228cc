package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordAndGet(t *testing.T) {
	r := NewRecorder()

	_, ok := r.Get(PhaseCall)
	assert.False(t, ok)

	require.NoError(t, r.Record(Outcome{Phase: PhaseCall, Status: OutcomeFailed, Message: "boom"}))
	o, ok := r.Get(PhaseCall)
	require.True(t, ok)
	assert.Equal(t, "boom", o.Message)
	assert.False(t, o.Passed())
}

func TestRecorder_PhaseRecordedOnce(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Record(Outcome{Phase: PhaseSetup, Status: OutcomePassed}))

	err := r.Record(Outcome{Phase: PhaseSetup, Status: OutcomeError})
	assert.ErrorContains(t, err, "already recorded")

	o, _ := r.Get(PhaseSetup)
	assert.True(t, o.Passed(), "first outcome is kept unaltered")
}

func TestRecorder_OutcomesInPhaseOrder(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Record(Outcome{Phase: PhaseTeardown, Status: OutcomePassed}))
	require.NoError(t, r.Record(Outcome{Phase: PhaseSetup, Status: OutcomePassed}))
	require.NoError(t, r.Record(Outcome{Phase: PhaseCall, Status: OutcomePassed}))

	var phases []Phase
	for _, o := range r.Outcomes() {
		phases = append(phases, o.Phase)
	}
	assert.Equal(t, []Phase{PhaseSetup, PhaseCall, PhaseTeardown}, phases)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "reporting", StateReporting.String())
	assert.Equal(t, "released", StateReleased.String())
	assert.Equal(t, "state(9)", State(9).String())
}
