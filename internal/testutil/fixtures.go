package testutil

// Identifiers used across the fixtures.
const (
	SampleID         = "5277c8a221e9f97d4e000001"
	SampleSlug       = "multiply"
	SampleProjectID  = "proj-1"
	SampleSolutionID = "sol-1"
	SampleDMID       = "dm-1"
)

// SampleChallengeJSON is GET /multiply.
const SampleChallengeJSON = `{
  "id": "5277c8a221e9f97d4e000001",
  "name": "Multiply",
  "slug": "multiply",
  "url": "https://www.codewars.com/kata/multiply",
  "category": "bug_fixes",
  "description": "The code does not execute properly.<br>Try to figure out why.",
  "tags": ["Fundamentals", "Bugs"],
  "languages": ["javascript", "python", "ruby"],
  "rank": {"id": -8, "name": "8 kyu", "color": "white"},
  "createdBy": {"username": "jhoffner", "url": "https://www.codewars.com/users/jhoffner"},
  "totalAttempts": 200,
  "totalCompleted": 150,
  "totalStars": 12,
  "voteScore": 40
}`

// SampleTrainJSON is a successful train response for the multiply challenge.
const SampleTrainJSON = `{
  "success": true,
  "id": "5277c8a221e9f97d4e000001",
  "name": "Multiply",
  "slug": "multiply",
  "description": "The code does not execute properly.",
  "tags": ["Fundamentals"],
  "session": {
    "projectId": "proj-1",
    "solutionId": "sol-1",
    "setup": "function multiply(a, b){\n  a * b\n}",
    "exampleFixture": "Test.assertEquals(multiply(2, 3), 6);",
    "code": null
  }
}`

// SampleDeferredJSON is the immediate response to an attempt.
const SampleDeferredJSON = `{"success": true, "dmid": "dm-1"}`

// SampleResultPendingJSON is a deferred poll before evaluation completes.
const SampleResultPendingJSON = `{"success": false, "dmid": "dm-1"}`

// SampleResultPassJSON is a completed evaluation that passed.
const SampleResultPassJSON = `{
  "success": true,
  "dmid": "dm-1",
  "valid": true,
  "reason": "",
  "output": ["<PASSED::>Test Passed"],
  "wall_time": 42
}`

// SampleResultFailJSON is a completed evaluation that failed.
const SampleResultFailJSON = `{
  "success": true,
  "dmid": "dm-1",
  "valid": false,
  "reason": "Expected: 6, instead got: undefined",
  "output": ["<FAILED::>Expected: 6, instead got: undefined"],
  "wall_time": 38
}`

// SampleAckJSON is a successful finalize response.
const SampleAckJSON = `{"success": true}`

// SampleSolution is user code that multiplies correctly.
const SampleSolution = "function multiply(a, b){\n  return a * b\n}\n"

// SampleCodeFile returns a minimal code template with code after the marker.
func SampleCodeFile(code string) string {
	return "// Multiply\n// &==BEGIN CODE==& (DO NOT REMOVE THIS LINE)\n" + code
}
