// Package sessionflow coordinates interactive identity workflows against a
// reactive session store.
//
// A workflow is an ordinary Go function that calls a remote identity SDK
// and, whenever it needs the user, opens a sheet or prompt by mutating the
// store and suspends until the user's answer shows up in the store. The
// presenter (a terminal UI, a test, anything that can subscribe) only ever
// reads snapshots and writes answers back; it never calls the workflow.
//
// # Core Concepts
//
//  1. Store
//  2. Bridge
//  3. Executor
//  4. Session
//  5. Catalog
//
// # Store
//
// The Store holds two records. The domain record (digital address, linked
// device, pending transaction, recovery email, client credentials) is
// persisted as a whole after every mutation that changes it and reloaded
// when a Session starts. The UI record is transient and drives what the
// presenter shows.
//
// Subscribers receive the current snapshot when they subscribe and then
// every mutation, in order.
//
// # Bridge
//
// The bridge turns "wait until the store says X" into a single blocking
// call that resolves once and always unsubscribes. Selection, email and
// filter waits are built on it, and every one of them resolves when its
// sheet closes, with a value or with an error such as ErrNoSelection or
// ErrUserCancelled. Cancelling the workflow's context releases a pending
// wait with ErrCancelled.
//
// # Executor
//
// The Executor runs one workflow at a time. While it runs, the UI record's
// Requesting flag is set; when it ends, its message (or the error text) is
// shown as an alert in the same mutation that clears Requesting. Panics are
// recovered and reported the same way. A second trigger while a workflow is
// active fails with ErrBusy; use Session.Enqueue to run it afterwards.
//
// # Session
//
// Session wires a store, an executor, a registry of named actions, a queue
// with its worker and the persistence slot together. Slots exist for
// memory, SQLite, PostgreSQL, Redis and MongoDB, and any of them can be
// wrapped so the stored record is encrypted with a passphrase.
//
// # Catalog
//
// Catalog arranges action names into titled groups for presenters.
// DefaultCatalog lists every action in pkg/workflows.
package sessionflow
