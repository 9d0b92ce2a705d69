package workflow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/artifact"
	"github.com/thruflo/nodewars/internal/deferred"
	"github.com/thruflo/nodewars/internal/logging"
	"github.com/thruflo/nodewars/internal/reference"
	"github.com/thruflo/nodewars/internal/testutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingReporter struct {
	started   []string
	passed    []reference.Record
	failed    []reference.Record
	finalized []reference.Record
	codePath  string
}

func (r *recordingReporter) TrainingStarted(ts *api.TrainingSession, codePath string) {
	r.started = append(r.started, ts.Slug)
	r.codePath = codePath
}

func (r *recordingReporter) EvaluationPassed(rec reference.Record, _ *api.EvaluationResult) {
	r.passed = append(r.passed, rec)
}

func (r *recordingReporter) EvaluationFailed(rec reference.Record, _ *api.EvaluationResult) {
	r.failed = append(r.failed, rec)
}

func (r *recordingReporter) Finalized(rec reference.Record, _ *api.Challenge) {
	r.finalized = append(r.finalized, rec)
}

type fixture struct {
	ctx context.Context
	wf  *Workflow
	env *testutil.MemEnv
	ft  *testutil.FakeTransport
	rep *recordingReporter
}

func javascript(t *testing.T) Language {
	t.Helper()
	lang, err := LookupLanguage("javascript")
	require.NoError(t, err)
	return lang
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logging.New()
	log.SetOutput(io.Discard)

	env := testutil.NewMemEnv(t)
	ft := testutil.NewFakeTransport()
	rep := &recordingReporter{}
	poller := deferred.New(ft, deferred.WithInterval(time.Millisecond), deferred.WithLogger(log))

	wf := New(ft, env.Store, env.Artifacts, javascript(t),
		WithReporter(rep), WithPoller(poller), WithLogger(log))

	ctx, cancel := testutil.ShortOperationContext(t)
	t.Cleanup(cancel)
	return &fixture{ctx: ctx, wf: wf, env: env, ft: ft, rep: rep}
}

func (f *fixture) storeBytes(t *testing.T) []byte {
	t.Helper()
	data, err := afero.ReadFile(f.env.Fs, f.env.Store.Path())
	require.NoError(t, err)
	return data
}

func (f *fixture) scriptTraining() {
	f.ft.On(http.MethodPost, api.TrainRoute(testutil.SampleSlug, "javascript"), testutil.Respond(testutil.SampleTrainJSON))
	f.ft.On(http.MethodPost, api.TrainNextRoute("javascript"), testutil.Respond(testutil.SampleTrainJSON))
	f.ft.On(http.MethodGet, api.ChallengeRoute(testutil.SampleSlug), testutil.Respond(testutil.SampleChallengeJSON))
}

func (f *fixture) scriptAttempt(results ...string) {
	f.ft.On(http.MethodPost, api.AttemptRoute(testutil.SampleProjectID, testutil.SampleSolutionID),
		testutil.Respond(testutil.SampleDeferredJSON))
	responses := make([]testutil.Response, len(results))
	for i, r := range results {
		responses[i] = testutil.Respond(r)
	}
	f.ft.On(http.MethodGet, api.DeferredRoute(testutil.SampleDMID), responses...)
}

func TestFetchChallenge_WithoutSave(t *testing.T) {
	f := newFixture(t)
	f.ft.On(http.MethodGet, api.ChallengeRoute(testutil.SampleSlug), testutil.Respond(testutil.SampleChallengeJSON))

	c, err := f.wf.FetchChallenge(f.ctx, testutil.SampleSlug, false)
	require.NoError(t, err)

	assert.Equal(t, "Multiply", c.Name)
	testutil.AssertNoRecord(t, f.env.Store, testutil.SampleSlug)
	assert.False(t, f.env.Artifacts.Exists(testutil.SampleSlug, artifact.ChallengeFile))
}

func TestFetchChallenge_SaveRecordsSaved(t *testing.T) {
	f := newFixture(t)
	f.ft.On(http.MethodGet, api.ChallengeRoute(testutil.SampleSlug), testutil.Respond(testutil.SampleChallengeJSON))

	_, err := f.wf.FetchChallenge(f.ctx, testutil.SampleSlug, true)
	require.NoError(t, err)

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleID, reference.StateSaved)
	assert.True(t, f.env.Artifacts.Exists(testutil.SampleSlug, artifact.ChallengeFile))

	var saved api.Challenge
	require.NoError(t, f.env.Artifacts.ReadJSON(testutil.SampleSlug, artifact.ChallengeFile, &saved))
	assert.Equal(t, testutil.SampleID, saved.ID)
}

func TestFetchChallenge_SaveKeepsExistingState(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateFinal)
	f.ft.On(http.MethodGet, api.ChallengeRoute(testutil.SampleSlug), testutil.Respond(testutil.SampleChallengeJSON))

	_, err := f.wf.FetchChallenge(f.ctx, testutil.SampleSlug, true)
	require.NoError(t, err)

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateFinal)
}

func TestFetchChallenge_TransportFailureCommitsNothing(t *testing.T) {
	f := newFixture(t)
	before := f.storeBytes(t)

	_, err := f.wf.FetchChallenge(f.ctx, testutil.SampleSlug, true)
	require.Error(t, err)
	assert.True(t, api.IsTransportError(err))

	assert.Equal(t, before, f.storeBytes(t))
	assert.Equal(t, 0, f.env.Store.Len())
}

func TestStartTraining_WritesArtifactsAndActivates(t *testing.T) {
	f := newFixture(t)
	f.scriptTraining()

	ts, err := f.wf.StartTraining(f.ctx, testutil.SampleSlug)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleSlug, ts.Slug)

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleID, reference.StateActive)
	for _, name := range []string{artifact.TrainFile, artifact.SessionFile, artifact.ChallengeFile, "kata.js"} {
		assert.True(t, f.env.Artifacts.Exists(testutil.SampleSlug, name), "missing %s", name)
	}

	calls := f.ft.CallsTo(http.MethodPost, api.TrainRoute(testutil.SampleSlug, "javascript"))
	require.Len(t, calls, 1)
	assert.Equal(t, "language=javascript", calls[0].Body)

	code, err := f.env.Artifacts.ReadText(testutil.SampleSlug, "kata.js")
	require.NoError(t, err)
	assert.Contains(t, code, "// kata: Multiply [bug_fixes / 8 kyu]")
	assert.Contains(t, code, BeginCodeMarker)

	assert.Equal(t, []string{testutil.SampleSlug}, f.rep.started)
	assert.Equal(t, f.env.Artifacts.Path(testutil.SampleSlug, "kata.js"), f.rep.codePath)
}

func TestStartTraining_FromSavedAndCompleted(t *testing.T) {
	for _, st := range []reference.State{reference.StateSaved, reference.StateCompleted, reference.StateActive} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, st)
			f.scriptTraining()

			_, err := f.wf.StartTraining(f.ctx, testutil.SampleSlug)
			require.NoError(t, err)
			testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)
		})
	}
}

func TestStartTraining_RejectedStatesMakeNoCalls(t *testing.T) {
	for _, st := range []reference.State{reference.StateQueued, reference.StateFinal} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, st)
			f.scriptTraining()

			_, err := f.wf.StartTraining(f.ctx, testutil.SampleSlug)
			require.Error(t, err)
			assert.True(t, IsInvalidState(err))
			testutil.AssertNoCalls(t, f.ft)
			testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, st)
		})
	}
}

func TestTrainNext_SendsStrategy(t *testing.T) {
	f := newFixture(t)
	f.scriptTraining()

	_, err := f.wf.TrainNext(f.ctx, "kyu_8_workout")
	require.NoError(t, err)

	calls := f.ft.CallsTo(http.MethodPost, api.TrainNextRoute("javascript"))
	require.Len(t, calls, 1)
	assert.Equal(t, "strategy=kyu_8_workout", calls[0].Body)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleID, reference.StateActive)
}

func TestTrainNext_DefaultStrategy(t *testing.T) {
	f := newFixture(t)
	f.scriptTraining()

	_, err := f.wf.TrainNext(f.ctx, "")
	require.NoError(t, err)

	calls := f.ft.CallsTo(http.MethodPost, api.TrainNextRoute("javascript"))
	require.Len(t, calls, 1)
	assert.Equal(t, "strategy=default", calls[0].Body)
}

func TestTrainNext_PickedQueuedChallengeIsRejected(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateQueued)
	f.scriptTraining()

	_, err := f.wf.TrainNext(f.ctx, DefaultStrategy)
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateQueued)
	assert.False(t, f.env.Artifacts.Exists(testutil.SampleSlug, artifact.SessionFile))
}

func TestTrainNext_TransportFailureCommitsNothing(t *testing.T) {
	f := newFixture(t)
	f.ft.On(http.MethodPost, api.TrainNextRoute("javascript"), testutil.Fail(errors.New("connection reset")))
	before := f.storeBytes(t)

	_, err := f.wf.TrainNext(f.ctx, DefaultStrategy)
	require.Error(t, err)

	assert.Equal(t, before, f.storeBytes(t))
	assert.Empty(t, f.rep.started)
}

func TestSubmitSolution_NotFoundLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, "other-id", "other-slug", reference.StateActive)
	before := f.storeBytes(t)

	_, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	require.Error(t, err)
	assert.True(t, reference.IsNotFound(err))

	assert.Equal(t, before, f.storeBytes(t))
	testutil.AssertNoCalls(t, f.ft)
}

func TestSubmitSolution_PassAfterPendingPolls(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateActive)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)
	f.scriptAttempt(testutil.SampleResultPendingJSON, testutil.SampleResultPendingJSON, testutil.SampleResultPassJSON)

	result, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	require.NoError(t, err)
	assert.True(t, result.Valid)

	testutil.AssertCallCount(t, f.ft, http.MethodGet, api.DeferredRoute(testutil.SampleDMID), 3)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateFinal)
	require.Len(t, f.rep.passed, 1)
	assert.Equal(t, reference.StateFinal, f.rep.passed[0].State)
	stored, err := f.env.Artifacts.ReadText(testutil.SampleSlug, artifact.ResultFile)
	require.NoError(t, err)
	var saved api.EvaluationResult
	testutil.MustUnmarshalJSON(t, []byte(stored), &saved)
	assert.True(t, saved.Valid)
	assert.Equal(t, testutil.SampleDMID, saved.DMID)

	attempts := f.ft.CallsTo(http.MethodPost, api.AttemptRoute(testutil.SampleProjectID, testutil.SampleSolutionID))
	require.Len(t, attempts, 1)
	assert.True(t, strings.HasPrefix(attempts[0].Body, "code=function+multiply"))
	assert.True(t, strings.HasSuffix(attempts[0].Body, "&output_format=raw"))
}

func TestSubmitSolution_FailReturnsToActive(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateActive)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", "return 0\n")
	f.scriptAttempt(testutil.SampleResultFailJSON)

	result, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	require.NoError(t, err)
	assert.False(t, result.Valid)

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)
	assert.Len(t, f.rep.failed, 1)
	assert.Empty(t, f.rep.passed)
}

func TestSubmitSolution_RequiresActive(t *testing.T) {
	for _, st := range []reference.State{reference.StateSaved, reference.StateFinal, reference.StateCompleted} {
		t.Run(string(st), func(t *testing.T) {
			f := newFixture(t)
			f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, st)
			f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)

			_, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
			require.Error(t, err)

			var ise *InvalidStateError
			require.ErrorAs(t, err, &ise)
			assert.Equal(t, st, ise.Actual)
			testutil.AssertNoCalls(t, f.ft)
		})
	}
}

func TestSubmitSolution_MissingMarker(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateActive)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", "")
	require.NoError(t, f.env.Artifacts.WriteText(testutil.SampleSlug, "kata.js", "no marker here"))

	_, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	assert.ErrorIs(t, err, ErrMissingMarker)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)
	testutil.AssertNoCalls(t, f.ft)
}

func TestSubmitSolution_PollFailureLeavesQueued(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateActive)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)
	f.ft.On(http.MethodPost, api.AttemptRoute(testutil.SampleProjectID, testutil.SampleSolutionID),
		testutil.Respond(testutil.SampleDeferredJSON))
	f.ft.On(http.MethodGet, api.DeferredRoute(testutil.SampleDMID), testutil.Fail(errors.New("timeout")))

	_, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	require.Error(t, err)

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateQueued)
	assert.Empty(t, f.rep.passed)
	assert.Empty(t, f.rep.failed)
}

func TestSubmitSolution_ResubmitFromQueued(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateQueued)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)
	f.scriptAttempt(testutil.SampleResultPassJSON)

	_, err := f.wf.SubmitSolution(f.ctx, testutil.SampleSlug)
	require.NoError(t, err)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateFinal)
}

func TestFinalizeSolution_RequiresFinal(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateActive)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)

	err := f.wf.FinalizeSolution(f.ctx, testutil.SampleSlug)
	require.Error(t, err)

	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, reference.StateActive, ise.Actual)
	assert.Equal(t, []reference.State{reference.StateFinal}, ise.Required)
	testutil.AssertNoCalls(t, f.ft)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)
}

func TestFinalizeSolution_Completes(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateFinal)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)
	f.ft.On(http.MethodPost, api.FinalizeRoute(testutil.SampleProjectID, testutil.SampleSolutionID),
		testutil.Respond(testutil.SampleAckJSON))

	require.NoError(t, f.wf.FinalizeSolution(f.ctx, testutil.SampleSlug))

	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateCompleted)
	require.Len(t, f.rep.finalized, 1)
	assert.Equal(t, reference.StateCompleted, f.rep.finalized[0].State)
}

func TestFinalizeSolution_Rejected(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateFinal)
	f.env.SeedSession(t, testutil.SampleSlug, "kata.js", testutil.SampleSolution)
	f.ft.On(http.MethodPost, api.FinalizeRoute(testutil.SampleProjectID, testutil.SampleSolutionID),
		testutil.Respond(`{"success": false, "reason": "solution not passing"}`))

	err := f.wf.FinalizeSolution(f.ctx, testutil.SampleSlug)
	var rejected *FinalizeRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "solution not passing", rejected.Reason)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateFinal)
}

func TestFullLifecycle(t *testing.T) {
	f := newFixture(t)
	f.scriptTraining()
	f.scriptAttempt(testutil.SampleResultFailJSON, testutil.SampleResultPassJSON)
	f.ft.On(http.MethodPost, api.FinalizeRoute(testutil.SampleProjectID, testutil.SampleSolutionID),
		testutil.Respond(testutil.SampleAckJSON))
	ctx := f.ctx

	_, err := f.wf.FetchChallenge(ctx, testutil.SampleSlug, true)
	require.NoError(t, err)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateSaved)

	_, err = f.wf.StartTraining(ctx, testutil.SampleSlug)
	require.NoError(t, err)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)

	_, err = f.wf.SubmitSolution(ctx, testutil.SampleSlug)
	require.NoError(t, err)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateActive)

	_, err = f.wf.SubmitSolution(ctx, testutil.SampleSlug)
	require.NoError(t, err)
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateFinal)

	require.NoError(t, f.wf.FinalizeSolution(ctx, testutil.SampleSlug))
	testutil.AssertRecordState(t, f.env.Store, testutil.SampleSlug, reference.StateCompleted)

	assert.Equal(t, 1, f.env.Store.Len())
}

func TestLookupAndCodeFilePath(t *testing.T) {
	f := newFixture(t)
	f.env.Seed(t, testutil.SampleID, testutil.SampleSlug, reference.StateSaved)

	rec, err := f.wf.Lookup(testutil.SampleID)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleSlug, rec.Slug)

	path, err := f.wf.CodeFilePath(testutil.SampleSlug)
	require.NoError(t, err)
	assert.Equal(t, f.env.Artifacts.Path(testutil.SampleSlug, "kata.js"), path)

	_, err = f.wf.CodeFilePath("missing")
	assert.True(t, reference.IsNotFound(err))

	assert.Len(t, f.wf.List(reference.StateSaved), 1)
	assert.Empty(t, f.wf.List(reference.StateActive))
}
