// Package workflow drives a challenge through its local lifecycle: fetch,
// train, submit, and finalize. It composes the transport, the reference
// store, the artifact store, and the deferred-result poller.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/artifact"
	"github.com/thruflo/nodewars/internal/deferred"
	"github.com/thruflo/nodewars/internal/logging"
	"github.com/thruflo/nodewars/internal/reference"
)

// Reporter receives user-facing notifications as operations complete.
type Reporter interface {
	TrainingStarted(ts *api.TrainingSession, codePath string)
	EvaluationPassed(rec reference.Record, result *api.EvaluationResult)
	EvaluationFailed(rec reference.Record, result *api.EvaluationResult)
	Finalized(rec reference.Record, c *api.Challenge)
}

type nopReporter struct{}

func (nopReporter) TrainingStarted(*api.TrainingSession, string) {}
func (nopReporter) EvaluationPassed(reference.Record, *api.EvaluationResult) {}
func (nopReporter) EvaluationFailed(reference.Record, *api.EvaluationResult) {}
func (nopReporter) Finalized(reference.Record, *api.Challenge) {}

// FinalizeRejectedError is returned when the service answers a finalize
// request without success.
type FinalizeRejectedError struct {
	Identifier string
	Reason     string
}

func (e *FinalizeRejectedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("finalize %s rejected by service", e.Identifier)
	}
	return fmt.Sprintf("finalize %s rejected by service: %s", e.Identifier, e.Reason)
}

// Workflow orchestrates challenge operations.
type Workflow struct {
	transport api.Transport
	store     *reference.Store
	artifacts *artifact.Store
	poller    *deferred.Poller
	reporter  Reporter
	language  Language
	log       *logging.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithReporter sets the notification sink.
func WithReporter(r Reporter) Option {
	return func(w *Workflow) {
		if r != nil {
			w.reporter = r
		}
	}
}

// WithPoller replaces the default deferred-result poller.
func WithPoller(p *deferred.Poller) Option {
	return func(w *Workflow) {
		if p != nil {
			w.poller = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.log = l
		}
	}
}

// New creates a Workflow training in lang.
func New(transport api.Transport, store *reference.Store, artifacts *artifact.Store, lang Language, opts ...Option) *Workflow {
	w := &Workflow{
		transport: transport,
		store:     store,
		artifacts: artifacts,
		reporter:  nopReporter{},
		language:  lang,
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.poller == nil {
		w.poller = deferred.New(transport, deferred.WithLogger(w.log))
	}
	return w
}

// Language returns the training language.
func (w *Workflow) Language() Language {
	return w.language
}

// Lookup returns the local record for an id or slug.
func (w *Workflow) Lookup(identifier string) (reference.Record, error) {
	return w.store.Find(identifier)
}

// List returns local records in insertion order, optionally filtered by state.
func (w *Workflow) List(filter reference.State) []reference.Record {
	return w.store.List(filter)
}

// CodeFilePath returns where the code template for identifier lives.
func (w *Workflow) CodeFilePath(identifier string) (string, error) {
	rec, err := w.store.Find(identifier)
	if err != nil {
		return "", err
	}
	return w.artifacts.Path(rec.Slug, w.language.CodeFileName()), nil
}

// CachedChallenge reads the saved metadata for identifier.
func (w *Workflow) CachedChallenge(identifier string) (*api.Challenge, error) {
	rec, err := w.store.Find(identifier)
	if err != nil {
		return nil, err
	}
	var c api.Challenge
	if err := w.artifacts.ReadJSON(rec.Slug, artifact.ChallengeFile, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FetchChallenge retrieves challenge metadata. With save, the metadata is
// written as an artifact and a SAVED record is created when none exists.
// An existing record keeps its state.
func (w *Workflow) FetchChallenge(ctx context.Context, identifier string, save bool) (*api.Challenge, error) {
	c, raw, err := w.fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if !save {
		return c, nil
	}

	if err := w.artifacts.WriteJSON(c.Slug, artifact.ChallengeFile, raw); err != nil {
		return nil, err
	}

	from := w.stateOf(c.ID)
	if from != none {
		w.log.Debug("challenge already recorded", "id", c.ID, "state", from)
		return c, nil
	}
	if err := w.commit("save", c.ID, c.Slug, from, reference.StateSaved); err != nil {
		return nil, err
	}
	return c, nil
}

// StartTraining begins a session for a specific challenge.
func (w *Workflow) StartTraining(ctx context.Context, identifier string) (*api.TrainingSession, error) {
	if rec, err := w.store.Find(identifier); err == nil {
		if err := checkTrain(identifier, rec.State); err != nil {
			return nil, err
		}
	}

	data, err := w.transport.Do(ctx, http.MethodPost,
		api.TrainRoute(identifier, w.language.Name), api.TrainBody(w.language.Name))
	if err != nil {
		return nil, err
	}
	return w.beginTraining(ctx, data)
}

// TrainNext asks the service to pick the next challenge with strategy.
func (w *Workflow) TrainNext(ctx context.Context, strategy Strategy) (*api.TrainingSession, error) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	data, err := w.transport.Do(ctx, http.MethodPost,
		api.TrainNextRoute(w.language.Name), api.TrainNextBody(string(strategy)))
	if err != nil {
		return nil, err
	}
	return w.beginTraining(ctx, data)
}

// SubmitSolution sends the user code for an ACTIVE challenge, waits for the
// evaluation, and moves the record to FINAL on a pass or back to ACTIVE
// on a failure.
func (w *Workflow) SubmitSolution(ctx context.Context, identifier string) (*api.EvaluationResult, error) {
	rec, err := w.store.Find(identifier)
	if err != nil {
		return nil, err
	}
	if err := checkTransition("submit", identifier, rec.State, reference.StateQueued); err != nil {
		return nil, err
	}

	session, err := w.readSession(rec.Slug)
	if err != nil {
		return nil, err
	}
	content, err := w.artifacts.ReadText(rec.Slug, w.language.CodeFileName())
	if err != nil {
		return nil, err
	}
	code, err := ExtractCode(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.artifacts.Path(rec.Slug, w.language.CodeFileName()), err)
	}

	if err := w.commit("submit", rec.ID, rec.Slug, rec.State, reference.StateQueued); err != nil {
		return nil, err
	}

	data, err := w.transport.Do(ctx, http.MethodPost,
		api.AttemptRoute(session.ProjectID, session.SolutionID), api.AttemptBody(code)...)
	if err != nil {
		return nil, err
	}
	dm, err := api.DecodeDeferredMessage(data)
	if err != nil {
		return nil, err
	}

	w.log.Info("awaiting evaluation", "slug", rec.Slug, "dmid", dm.DMID)
	result, err := w.poller.Await(ctx, dm.DMID)
	if err != nil {
		return nil, err
	}
	if err := w.artifacts.WriteJSON(rec.Slug, artifact.ResultFile, result); err != nil {
		w.log.Warn("failed to save evaluation result", "slug", rec.Slug, "error", err)
	}

	next := reference.StateActive
	if result.Valid {
		next = reference.StateFinal
	}
	if err := w.commit("evaluate", rec.ID, rec.Slug, reference.StateQueued, next); err != nil {
		return nil, err
	}

	rec.State = next
	if result.Valid {
		w.reporter.EvaluationPassed(rec, result)
	} else {
		w.reporter.EvaluationFailed(rec, result)
	}
	return result, nil
}

// FinalizeSolution publishes a FINAL solution and marks it COMPLETED. No
// request is made unless the record is FINAL.
func (w *Workflow) FinalizeSolution(ctx context.Context, identifier string) error {
	rec, err := w.store.Find(identifier)
	if err != nil {
		return err
	}
	if err := checkTransition("finalize", identifier, rec.State, reference.StateCompleted); err != nil {
		return err
	}

	session, err := w.readSession(rec.Slug)
	if err != nil {
		return err
	}

	data, err := w.transport.Do(ctx, http.MethodPost,
		api.FinalizeRoute(session.ProjectID, session.SolutionID))
	if err != nil {
		return err
	}
	if ack, err := api.DecodeAck(data); err == nil && !ack.Success {
		return &FinalizeRejectedError{Identifier: identifier, Reason: ack.Reason}
	}

	if err := w.commit("finalize", rec.ID, rec.Slug, rec.State, reference.StateCompleted); err != nil {
		return err
	}
	rec.State = reference.StateCompleted

	c, err := w.CachedChallenge(rec.ID)
	if err != nil {
		c = &api.Challenge{ID: rec.ID, Slug: rec.Slug, Name: rec.Slug}
	}
	w.reporter.Finalized(rec, c)
	return nil
}

// beginTraining handles a train response: it saves the session artifacts,
// records ACTIVE, refreshes the metadata, and writes the code template.
func (w *Workflow) beginTraining(ctx context.Context, data []byte) (*api.TrainingSession, error) {
	ts, err := api.DecodeTrainingSession(data)
	if err != nil {
		return nil, err
	}

	from := w.stateOf(ts.ID)
	if err := checkTrain(ts.Slug, from); err != nil {
		return nil, err
	}

	if err := w.artifacts.WriteJSON(ts.Slug, artifact.TrainFile, json.RawMessage(data)); err != nil {
		return nil, err
	}
	if err := w.artifacts.WriteJSON(ts.Slug, artifact.SessionFile, ts.Session); err != nil {
		return nil, err
	}
	if err := w.commit("train", ts.ID, ts.Slug, from, reference.StateActive); err != nil {
		return nil, err
	}

	c, raw, err := w.fetch(ctx, ts.Slug)
	if err != nil {
		return nil, fmt.Errorf("training started but metadata fetch failed: %w", err)
	}
	if err := w.artifacts.WriteJSON(c.Slug, artifact.ChallengeFile, raw); err != nil {
		return nil, err
	}

	codeName := w.language.CodeFileName()
	if err := w.artifacts.WriteText(ts.Slug, codeName, BuildCodeFile(w.language, c, ts)); err != nil {
		return nil, err
	}

	w.reporter.TrainingStarted(ts, w.artifacts.Path(ts.Slug, codeName))
	return ts, nil
}

func (w *Workflow) fetch(ctx context.Context, identifier string) (*api.Challenge, json.RawMessage, error) {
	data, err := w.transport.Do(ctx, http.MethodGet, api.ChallengeRoute(identifier))
	if err != nil {
		return nil, nil, err
	}
	c, err := api.DecodeChallenge(data)
	if err != nil {
		return nil, nil, err
	}
	return c, json.RawMessage(data), nil
}

func (w *Workflow) readSession(slug string) (*api.Session, error) {
	var session api.Session
	if err := w.artifacts.ReadJSON(slug, artifact.SessionFile, &session); err != nil {
		return nil, fmt.Errorf("read session for %s: %w", slug, err)
	}
	if session.ProjectID == "" || session.SolutionID == "" {
		return nil, fmt.Errorf("session for %s has no project or solution id", slug)
	}
	return &session, nil
}

func (w *Workflow) stateOf(id string) reference.State {
	rec, err := w.store.Find(id)
	if err != nil {
		return none
	}
	return rec.State
}

func (w *Workflow) commit(op, id, slug string, from, to reference.State) error {
	if err := w.store.Upsert(id, slug, to); err != nil {
		return err
	}
	w.log.Info("state changed", "op", op, "slug", slug, "from", from, "to", to)
	return nil
}
