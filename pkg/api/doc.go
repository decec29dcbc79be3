// Package api holds the types shared by every part of sessionflow: the
// session state, the Store contract, workflows and runs, the identity SDK
// surface and the observer hooks.
//
// # State
//
// A session has two halves. DomainState is the durable record (digital
// address, linked device, pending transaction and so on) and is persisted
// as a whole whenever it changes. UIState is transient: it drives what the
// presenter shows and carries the values a suspended workflow is waiting
// for, such as the chosen sheet item or the email typed into a prompt.
//
// A Store publishes Snapshots of both halves. Subscribers see every
// mutation in the order it happened.
//
// # Workflows
//
// A Workflow is a plain function that talks to the SDK, mutates the store
// and may suspend until the user answers a prompt. It returns the message
// shown to the user once it finishes, or an error whose text is shown
// instead.
//
// # Observability
//
// Observer receives workflow and wait lifecycle events. LoggingObserver
// writes them with log/slog, BasicMetrics counts them, and
// NewCompositeObserver fans events out to several observers.
package api
