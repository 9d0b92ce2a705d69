package api

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Rank is a challenge's difficulty. ID is nil for beta challenges.
type Rank struct {
	ID    *int   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Author identifies the user who published a challenge.
type Author struct {
	Username string `json:"username"`
	URL      string `json:"url"`
}

// Challenge is the metadata returned by GET /<idOrSlug>.
type Challenge struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	URL            string   `json:"url"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Languages      []string `json:"languages"`
	Rank           Rank     `json:"rank"`
	CreatedBy      Author   `json:"createdBy"`
	TotalAttempts  int      `json:"totalAttempts"`
	TotalCompleted int      `json:"totalCompleted"`
	TotalStars     int      `json:"totalStars"`
	VoteScore      int      `json:"voteScore"`
}

// CompletionRate returns completed/attempted as a percentage, or 0 when
// nobody has attempted the challenge.
func (c *Challenge) CompletionRate() float64 {
	if c.TotalAttempts == 0 {
		return 0
	}
	return float64(c.TotalCompleted) / float64(c.TotalAttempts) * 100
}

// Session is the training context issued by the service.
type Session struct {
	ProjectID      string  `json:"projectId"`
	SolutionID     string  `json:"solutionId"`
	Setup          string  `json:"setup"`
	ExampleFixture string  `json:"exampleFixture"`
	Code           *string `json:"code"`
}

// StarterCode returns the previously saved code, if any.
func (s *Session) StarterCode() string {
	if s.Code == nil {
		return ""
	}
	return *s.Code
}

// TrainingSession is the response to a train or train-next request.
type TrainingSession struct {
	Success     bool     `json:"success"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Session     Session  `json:"session"`
}

// Ack is the generic success envelope returned by mutating routes.
type Ack struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// DeferredMessage is the immediate response to a solution attempt.
type DeferredMessage struct {
	Success bool   `json:"success"`
	DMID    string `json:"dmid"`
}

// EvaluationResult is the deferred response body for an attempt.
type EvaluationResult struct {
	Success  bool            `json:"success"`
	DMID     string          `json:"dmid"`
	Valid    bool            `json:"valid"`
	Reason   string          `json:"reason"`
	Output   json.RawMessage `json:"output,omitempty"`
	WallTime float64         `json:"wall_time"`
}

// OutputLines returns the evaluation output when it is a list of strings.
func (r *EvaluationResult) OutputLines() []string {
	var lines []string
	if len(r.Output) == 0 || json.Unmarshal(r.Output, &lines) != nil {
		return nil
	}
	return lines
}

func decode[T any](what string, data []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &DecodeError{What: what, Err: err}
	}
	return &v, nil
}

// DecodeChallenge parses challenge metadata.
func DecodeChallenge(data []byte) (*Challenge, error) {
	c, err := decode[Challenge]("challenge", data)
	if err != nil {
		return nil, err
	}
	if c.ID == "" || c.Slug == "" {
		return nil, &DecodeError{What: "challenge", Err: fmt.Errorf("missing id or slug")}
	}
	return c, nil
}

// DecodeTrainingSession parses a train response.
func DecodeTrainingSession(data []byte) (*TrainingSession, error) {
	ts, err := decode[TrainingSession]("training session", data)
	if err != nil {
		return nil, err
	}
	if ts.ID == "" || ts.Slug == "" {
		return nil, &DecodeError{What: "training session", Err: fmt.Errorf("missing id or slug")}
	}
	return ts, nil
}

// DecodeDeferredMessage parses an attempt response.
func DecodeDeferredMessage(data []byte) (*DeferredMessage, error) {
	dm, err := decode[DeferredMessage]("deferred message", data)
	if err != nil {
		return nil, err
	}
	if dm.DMID == "" {
		return nil, &DecodeError{What: "deferred message", Err: fmt.Errorf("missing dmid")}
	}
	return dm, nil
}

// DecodeEvaluationResult parses a deferred poll response.
func DecodeEvaluationResult(data []byte) (*EvaluationResult, error) {
	return decode[EvaluationResult]("evaluation result", data)
}

// DecodeAck parses a generic success envelope.
func DecodeAck(data []byte) (*Ack, error) {
	return decode[Ack]("response", data)
}

// ChallengeRoute is GET /<idOrSlug>.
func ChallengeRoute(idOrSlug string) string {
	return "/" + url.PathEscape(idOrSlug)
}

// TrainNextRoute is POST /<language>/train.
func TrainNextRoute(language string) string {
	return fmt.Sprintf("/%s/train", url.PathEscape(language))
}

// TrainRoute is POST /<idOrSlug>/<language>/train.
func TrainRoute(idOrSlug, language string) string {
	return fmt.Sprintf("/%s/%s/train", url.PathEscape(idOrSlug), url.PathEscape(language))
}

// AttemptRoute is POST /projects/<project>/solutions/<solution>/attempt.
func AttemptRoute(projectID, solutionID string) string {
	return fmt.Sprintf("/projects/%s/solutions/%s/attempt", url.PathEscape(projectID), url.PathEscape(solutionID))
}

// FinalizeRoute is POST /projects/<project>/solutions/<solution>/finalize.
func FinalizeRoute(projectID, solutionID string) string {
	return fmt.Sprintf("/projects/%s/solutions/%s/finalize", url.PathEscape(projectID), url.PathEscape(solutionID))
}

// DeferredRoute is GET /deferred/<dmid>.
func DeferredRoute(dmid string) string {
	return "/deferred/" + url.PathEscape(dmid)
}

// TrainNextBody is the form body selecting a strategy.
func TrainNextBody(strategy string) string {
	return "strategy=" + url.QueryEscape(strategy)
}

// TrainBody is the form body for training a specific challenge.
func TrainBody(language string) string {
	return "language=" + url.QueryEscape(language)
}

// AttemptBody returns the attempt form body as chunks: the escaped code,
// then the output format.
func AttemptBody(code string) []string {
	return []string{
		"code=" + url.QueryEscape(code),
		"&output_format=raw",
	}
}
