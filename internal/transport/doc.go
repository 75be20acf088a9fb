// Package transport defines how the VAPIX client exchanges requests with a device.
//
// The rest of the module depends only on the Transport interface, never on a
// concrete HTTP stack. HTTPTransport is the production adapter over net/http;
// the fixture harness in vapixtest provides recording and replaying
// implementations of the same interface, and Func turns a closure into a
// transport for tests.
//
// Bodies are fully buffered in both directions. Device API payloads are small,
// and buffering lets the authenticating pipeline re-send a request after a
// challenge and lets the harness record exchanges exactly.
package transport
