// Package testutil provides shared test utilities for nodewars.
//
// # Fixtures
//
// The fixtures.go file provides canned service responses:
//
//   - SampleChallengeJSON - challenge metadata for SampleID / SampleSlug
//   - SampleTrainJSON - a training session with project and solution ids
//   - SampleDeferredJSON - the deferred message returned by an attempt
//   - SampleResultPendingJSON, SampleResultPassJSON, SampleResultFailJSON
//   - SampleCodeFile(code) - a code template holding the begin-code marker
//
// # Environment Helpers
//
// The env.go file provides test environment setup:
//
//   - SetupTestDir(t) - creates a temp directory with a .nodewars config
//   - NewMemEnv(t) - an in-memory filesystem with reference and artifact stores
//   - MustMarshalJSON(t, v), MustUnmarshalJSON(t, data, v)
//   - WriteTestFile(t, base, path, content)
//
// # Fake Transport
//
// The transport.go file provides FakeTransport, a scripted api.Transport
// that records every call:
//
//	ft := testutil.NewFakeTransport()
//	ft.On(http.MethodGet, api.ChallengeRoute("sum"), testutil.Respond(testutil.SampleChallengeJSON))
//	ft.On(http.MethodGet, api.DeferredRoute("dm1"),
//	    testutil.Respond(testutil.SampleResultPendingJSON),
//	    testutil.Respond(testutil.SampleResultPassJSON))
//
// Responses for a route are consumed in order; the last one repeats.
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - AssertRecordState(t, store, identifier, state)
//   - AssertNoRecord(t, store, identifier)
//   - AssertCallCount(t, ft, method, route, n)
//   - AssertNoCalls(t, ft)
package testutil
