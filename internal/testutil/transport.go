package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/thruflo/nodewars/internal/api"
)

// Response is one scripted reply.
type Response struct {
	Body []byte
	Err  error
}

// Respond returns a Response carrying body.
func Respond(body string) Response {
	return Response{Body: []byte(body)}
}

// Fail returns a Response carrying err.
func Fail(err error) Response {
	return Response{Err: err}
}

// Call records one request made through FakeTransport.
type Call struct {
	Method string
	Route  string
	Body   string
}

// FakeTransport is a scripted api.Transport. Unscripted routes fail with a
// *api.TransportError carrying status 404.
type FakeTransport struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []Call
}

var _ api.Transport = (*FakeTransport)(nil)

// NewFakeTransport creates an empty FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{responses: make(map[string][]Response)}
}

func routeKey(method, route string) string {
	return method + " " + route
}

// On scripts the replies for method and route. Replies are consumed in
// order and the last one repeats.
func (f *FakeTransport) On(method, route string, responses ...Response) *FakeTransport {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := routeKey(method, route)
	f.responses[key] = append(f.responses[key], responses...)
	return f
}

// Do implements api.Transport.
func (f *FakeTransport) Do(ctx context.Context, method, route string, body ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Method: method, Route: route, Body: strings.Join(body, "")})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := routeKey(method, route)
	queue := f.responses[key]
	if len(queue) == 0 {
		return nil, &api.TransportError{
			Method:     method,
			Route:      route,
			StatusCode: 404,
			Err:        fmt.Errorf("no scripted response"),
		}
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return append([]byte(nil), resp.Body...), nil
}

// Calls returns a copy of every recorded call in order.
func (f *FakeTransport) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls for method and route.
func (f *FakeTransport) CallsTo(method, route string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if c.Method == method && c.Route == route {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls but keeps the script.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
