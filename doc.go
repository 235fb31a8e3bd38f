// The todoes package contains a client for a REST backend exposing a single resource, todo items, under the
// todoes path (e.g., http://localhost:8080/api/todoes). The client is meant to sit between a user interface and a
// backend it does not control; at the time of writing the only consumer is the acme user interface in the
// cmd/todoes subdirectory.
//
// Each client method makes exactly one remote call (SearchTodoes makes none for a blank term) and never returns an
// error. Failures of any kind (network, non-2xx status, undecodable response) are recorded with the client's
// ErrorLogger, and the method returns a fallback value instead: an empty slice for methods returning slices, nil
// for the others. This means a caller can not tell "no results" from "request failed" by looking at the return
// value; the error log is the only place where failures surface. There are no retries.
//
// The client holds no todo items between calls. There is no cache, no batching, no pagination.
//
// Lookup by id comes in two variants: Todo asks for todoes/{id}, which the backend answers with a 404 when the id
// is unknown, while TodoNo404 asks for todoes/?id={id}, which the backend answers with a zero or one element
// array. The latter is handy for probing whether an item exists. Both return nil on failure, so with Todo a
// missing item and an outage look the same.
package todoes // import "github.com/nicolagi/todoes"
