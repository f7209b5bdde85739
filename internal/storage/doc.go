// Package storage provides the persisted key/value store shared by the
// page, background and panel contexts.
//
// The store has no transactional isolation across calls: concurrent writers
// to the same key are last-write-wins, and a read-modify-write done by a
// caller may lose updates. Callers that need more must serialize themselves.
//
// Two implementations are provided. Memory is used by tests and one-shot
// runs. SQLite persists the store in a single file (via modernc.org/sqlite)
// so that history, cached results and custom ingredients survive between
// command invocations.
package storage
