package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
	"digital.vasic.crossbrowser/pkg/grid"
	"digital.vasic.crossbrowser/pkg/matrix"
)

func newStub(id string, markers ...check.Marker) check.Check {
	return check.New(
		check.NewBase(check.ID(id), id, "stub "+id, markers...),
		func(context.Context, grid.Session, matrix.Descriptor, *assertion.Asserter) error {
			return nil
		},
	)
}

func ids(cs []check.Check) []check.ID {
	out := make([]check.ID, len(cs))
	for i, c := range cs {
		out[i] = c.ID()
	}
	return out
}

func populated(t *testing.T) *DefaultRegistry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(newStub("POS-01", check.MarkerPositive)))
	require.NoError(t, r.Register(newStub("NEG-03", check.MarkerNegative, check.MarkerForm)))
	require.NoError(t, r.Register(newStub("NEG-07", check.MarkerNegative, check.MarkerSecurity)))
	require.NoError(t, r.Register(newStub("UI-02", check.MarkerUI, check.MarkerSecurity)))
	return r
}

func TestDefaultRegistry_Register_Success(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newStub("a")))
	assert.Equal(t, 1, r.Count())
}

func TestDefaultRegistry_Register_Duplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newStub("a")))

	err := r.Register(newStub("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestDefaultRegistry_Register_Nil(t *testing.T) {
	assert.Error(t, NewRegistry().Register(nil))
}

func TestDefaultRegistry_Get(t *testing.T) {
	r := populated(t)

	c, err := r.Get("NEG-07")
	require.NoError(t, err)
	assert.Equal(t, check.ID("NEG-07"), c.ID())

	_, err = r.Get("NOPE")
	assert.ErrorContains(t, err, "check not found")
}

func TestDefaultRegistry_ListKeepsRegistrationOrder(t *testing.T) {
	r := populated(t)
	assert.Equal(t, []check.ID{"POS-01", "NEG-03", "NEG-07", "UI-02"}, ids(r.List()))
}

func TestDefaultRegistry_ListByMarker(t *testing.T) {
	r := populated(t)
	assert.Equal(t, []check.ID{"NEG-07", "UI-02"}, ids(r.ListByMarker(check.MarkerSecurity)))
	assert.Empty(t, r.ListByMarker("smoke"))
}

func TestDefaultRegistry_Select(t *testing.T) {
	r := populated(t)

	tests := []struct {
		expr string
		want []check.ID
	}{
		{"", []check.ID{"POS-01", "NEG-03", "NEG-07", "UI-02"}},
		{"negative", []check.ID{"NEG-03", "NEG-07"}},
		{"not security", []check.ID{"POS-01", "NEG-03"}},
		{"positive, ui", []check.ID{"POS-01", "UI-02"}},
		{"negative and not form", []check.ID{"NEG-07"}},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := r.Select(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestDefaultRegistry_Select_BadExpr(t *testing.T) {
	_, err := populated(t).Select("smoke")
	assert.ErrorContains(t, err, "unknown marker")
}

func TestSelectIDs(t *testing.T) {
	r := populated(t)

	got, err := SelectIDs(r, "UI-02", "POS-01")
	require.NoError(t, err)
	assert.Equal(t, []check.ID{"UI-02", "POS-01"}, ids(got))

	_, err = SelectIDs(r, "UI-02", "UI-99")
	assert.Error(t, err)
}

func TestDefaultRegistry_Clear(t *testing.T) {
	r := populated(t)
	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.List())
	require.NoError(t, r.Register(newStub("POS-01")))
}

func TestDefaultRegistry_ConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(newStub(fmt.Sprintf("c-%d", i)))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count())
	assert.Len(t, r.List(), 50)
}
