package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/nodewars/internal/reference"
)

// AssertRecordState asserts that identifier is recorded in the given state.
func AssertRecordState(t *testing.T, store *reference.Store, identifier string, expected reference.State) {
	t.Helper()
	rec, err := store.Find(identifier)
	require.NoError(t, err, "record %s not found", identifier)
	assert.Equal(t, expected, rec.State, "state of %s mismatch", identifier)
}

// AssertNoRecord asserts that identifier has no local record.
func AssertNoRecord(t *testing.T, store *reference.Store, identifier string) {
	t.Helper()
	_, err := store.Find(identifier)
	assert.True(t, reference.IsNotFound(err), "expected no record for %s, got err=%v", identifier, err)
}

// AssertCallCount asserts how many times method and route were requested.
func AssertCallCount(t *testing.T, ft *FakeTransport, method, route string, expected int) {
	t.Helper()
	assert.Len(t, ft.CallsTo(method, route), expected, "calls to %s %s", method, route)
}

// AssertNoCalls asserts that no request reached the transport.
func AssertNoCalls(t *testing.T, ft *FakeTransport) {
	t.Helper()
	assert.Empty(t, ft.Calls(), "expected no remote calls")
}
