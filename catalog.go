package sessionflow

import (
	"fmt"

	"github.com/petrijr/sessionflow/pkg/workflows"
)

// Group is a titled set of actions shown together.
type Group struct {
	Name    string
	Actions []string
}

// Catalog provides a fluent API for arranging actions into groups:
//
//	cat := sessionflow.NewCatalog().
//	    Group("Email", "sendRecoveryEmail", "setRecoveryEmail").
//	    Group("Language", "getLanguage", "setLanguage")
//
//	if err := cat.Validate(sess.Registry); err != nil {
//	    log.Fatal(err)
//	}
type Catalog struct {
	groups []Group
	titles map[string]string
}

// NewCatalog creates an empty catalog that titles actions with
// workflows.Titles.
func NewCatalog() *Catalog {
	return &Catalog{titles: workflows.Titles}
}

// DefaultCatalog arranges every library action the way the session app
// shows them.
func DefaultCatalog() *Catalog {
	return NewCatalog().
		Group("Setup",
			workflows.ActionConfigure,
			workflows.ActionDetectQR,
		).
		Group("Authentication",
			workflows.ActionAuthUser,
			workflows.ActionRegUser,
			workflows.ActionDeleteDevice,
			workflows.ActionProofProcess,
		).
		Group("Email",
			workflows.ActionSendRecoveryEmail,
			workflows.ActionSetRecoveryEmail,
		).
		Group("Digital Address Dependent",
			workflows.ActionGetCredentials,
			workflows.ActionGetCredentialDetails,
			workflows.ActionGetDevices,
			workflows.ActionGetDeviceDetails,
			workflows.ActionSetLanguage,
			workflows.ActionGetLanguage,
		).
		Group("Bootstrapping, Credential Verification",
			workflows.ActionDeviceBootstrappingVerification,
			workflows.ActionCheckBootstrappingStatus,
			workflows.ActionStartCredentialVerification,
			workflows.ActionAcceptProof,
			workflows.ActionRejectProof,
		)
}

// Group appends a group of actions.
func (c *Catalog) Group(name string, actions ...string) *Catalog {
	if name == "" {
		panic("sessionflow: group name must not be empty")
	}
	c.groups = append(c.groups, Group{Name: name, Actions: append([]string(nil), actions...)})
	return c
}

// Groups returns the groups in the order they were added.
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Name: g.Name, Actions: append([]string(nil), g.Actions...)}
	}
	return out
}

// Title returns the display title of action, or the action name itself.
func (c *Catalog) Title(action string) string {
	if t, ok := c.titles[action]; ok {
		return t
	}
	return action
}

// Lookup is the part of a registry Validate needs.
type Lookup interface {
	Names() []string
}

// Validate reports the first catalog action missing from reg.
func (c *Catalog) Validate(reg Lookup) error {
	known := make(map[string]struct{})
	for _, n := range reg.Names() {
		known[n] = struct{}{}
	}
	for _, g := range c.groups {
		for _, a := range g.Actions {
			if _, ok := known[a]; !ok {
				return fmt.Errorf("sessionflow: group %q references unregistered action %q", g.Name, a)
			}
		}
	}
	return nil
}
