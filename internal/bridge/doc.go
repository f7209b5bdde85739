// Package bridge passes messages between the isolated execution contexts:
// the page, the background process and the panel.
//
// Each context owns an Endpoint. An Endpoint runs a single goroutine that
// drains its inbox, so everything a context does (message handlers, click
// events, timers posted to it) runs one task at a time and never in
// parallel with itself. Contexts share nothing but the messages they send
// and the persisted store.
//
// Every message delivered to an endpoint is answered exactly once. A
// handler that has nothing to say is answered with {status: "received"},
// and a kind with no handler is answered with {status: "ignored"}, so a
// sender never waits forever on a reply channel.
//
// A Port is a long-lived connection used only as a liveness signal: the
// receiver learns that the other side went away through OnDisconnect.
package bridge
