package workflows

import (
	"encoding/json"

	"github.com/petrijr/sessionflow/pkg/api"
)

// Action names.
const (
	ActionConfigure                       = "configure"
	ActionAuthUser                        = "authUser"
	ActionRegUser                         = "regUser"
	ActionDetectQR                        = "detectQR"
	ActionProofProcess                    = "proofProcess"
	ActionGetDevices                      = "getDevices"
	ActionGetDeviceDetails                = "getDeviceDetails"
	ActionDeleteDevice                    = "deleteDevice"
	ActionSendRecoveryEmail               = "sendRecoveryEmail"
	ActionSetRecoveryEmail                = "setRecoveryEmail"
	ActionGetCredentials                  = "getCredentials"
	ActionGetCredentialDetails            = "getCredentialDetails"
	ActionGetLanguage                     = "getLanguage"
	ActionSetLanguage                     = "setLanguage"
	ActionStartCredentialVerification     = "startCredentialVerification"
	ActionAcceptProof                     = "acceptProof"
	ActionRejectProof                     = "rejectProof"
	ActionDeviceBootstrappingVerification = "deviceBootstrappingVerification"
	ActionCheckBootstrappingStatus        = "checkBootstrappingStatus"
)

// Titles maps action names to the label shown for them.
var Titles = map[string]string{
	ActionConfigure:                       "Configure SDK",
	ActionAuthUser:                        "Recover Digital Address",
	ActionRegUser:                         "Import Digital Address",
	ActionDetectQR:                        "Scan QR Code",
	ActionProofProcess:                    "Proof Process",
	ActionGetDevices:                      "Get Devices",
	ActionGetDeviceDetails:                "Get Device Details",
	ActionDeleteDevice:                    "Delete Device",
	ActionSendRecoveryEmail:               "Send Recovery Email",
	ActionSetRecoveryEmail:                "Set Recovery Email",
	ActionGetCredentials:                  "Get Credentials",
	ActionGetCredentialDetails:            "Get Credential Details",
	ActionGetLanguage:                     "Get Language",
	ActionSetLanguage:                     "Set Language",
	ActionStartCredentialVerification:     "Start Credential Verification",
	ActionAcceptProof:                     "Accept Proof",
	ActionRejectProof:                     "Reject Proof",
	ActionDeviceBootstrappingVerification: "Device Bootstrapping Verification",
	ActionCheckBootstrappingStatus:        "Check Bootstrapping Status",
}

// Registrar is the part of engine.Registry that Register needs.
type Registrar interface {
	Register(name string, wf api.Workflow) error
}

// Library binds the actions to their collaborators.
type Library struct {
	SDK     api.IdentitySDK
	Scanner api.QRScanner

	// BaseURL is handed to the SDK by the configure action.
	BaseURL string
}

// Actions returns every action keyed by name.
func (l *Library) Actions() map[string]api.Workflow {
	return map[string]api.Workflow{
		ActionConfigure:                       l.Configure,
		ActionAuthUser:                        l.AuthUser,
		ActionRegUser:                         l.RegUser,
		ActionDetectQR:                        l.DetectQR,
		ActionProofProcess:                    l.ProofProcess,
		ActionGetDevices:                      l.GetDevices,
		ActionGetDeviceDetails:                l.GetDeviceDetails,
		ActionDeleteDevice:                    l.DeleteDevice,
		ActionSendRecoveryEmail:               l.SendRecoveryEmail,
		ActionSetRecoveryEmail:                l.SetRecoveryEmail,
		ActionGetCredentials:                  l.GetCredentials,
		ActionGetCredentialDetails:            l.GetCredentialDetails,
		ActionGetLanguage:                     l.GetLanguage,
		ActionSetLanguage:                     l.SetLanguage,
		ActionStartCredentialVerification:     l.StartCredentialVerification,
		ActionAcceptProof:                     l.AcceptProof,
		ActionRejectProof:                     l.RejectProof,
		ActionDeviceBootstrappingVerification: l.DeviceBootstrappingVerification,
		ActionCheckBootstrappingStatus:        l.CheckBootstrappingStatus,
	}
}

// Register adds every action to r.
func (l *Library) Register(r Registrar) error {
	for name, wf := range l.Actions() {
		if err := r.Register(name, wf); err != nil {
			return err
		}
	}
	return nil
}

// toJSON renders v the way records are shown to the user. Values that
// cannot be encoded render as the empty string.
func toJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
