// Package workflows implements the user actions of an identity session as
// api.Workflow functions.
//
// Each action is a straight-line script: it calls the identity SDK, opens a
// sheet or prompt through the bridge helpers when it needs the user, and
// returns the message to show once it is done. Failures from the SDK or from
// a cancelled prompt are returned unchanged.
package workflows
