package api

import "context"

// Device is a device linked to a digital address.
type Device struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// Label is the text shown for d in a selection sheet.
func (d Device) Label() string {
	return d.Name + " - " + d.Identifier
}

// Credential is a credential held by the digital address.
type Credential struct {
	Schema           string `json:"schema"`
	SchemaIdentifier string `json:"schemaIdentifier"`
	Identifier       string `json:"identifier,omitempty"`
	Status           string `json:"status,omitempty"`
}

// LinkResult is returned by recover/import of a digital address.
type LinkResult struct {
	DigitalAddress string `json:"digitalAddress"`
	LinkDeviceID   string `json:"linkDeviceId"`
}

// VerificationResult is returned when a credential verification starts.
type VerificationResult struct {
	QuestionTitle string `json:"questionTitle"`
	Status        string `json:"status"`
}

// TransactionResult is returned by proof decisions and bootstrapping.
type TransactionResult struct {
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

// StatusResult carries a bare status string.
type StatusResult struct {
	Status string `json:"status"`
}

// IdentitySDK is the remote identity service the workflows drive.
// Every call may fail; failures are returned unchanged to the executor.
type IdentitySDK interface {
	Configure(ctx context.Context, baseURL, clientID, clientSecret string) error

	RecoverDigitalAddress(ctx context.Context, qr string) (LinkResult, error)
	ImportDigitalAddress(ctx context.Context, qr string) (LinkResult, error)

	GetDevices(ctx context.Context) ([]Device, error)
	DeleteDevice(ctx context.Context, identifier string) error

	// GetCredentials lists credentials. Empty filters mean "all".
	GetCredentials(ctx context.Context, statuses, schemaIDs []string) ([]Credential, error)

	GetLanguage(ctx context.Context) (string, error)
	SetLanguage(ctx context.Context, code string) (string, error)

	SendRecoveryEmail(ctx context.Context, email string) error
	SetRecoveryEmail(ctx context.Context, email string) error

	StartCredentialVerificationProcess(ctx context.Context, transactionID string) (VerificationResult, error)
	AcceptProof(ctx context.Context, transactionID, credentialIdentifier string) (TransactionResult, error)
	RejectProof(ctx context.Context, transactionID string) (TransactionResult, error)

	DeviceBootstrappingVerification(ctx context.Context) (TransactionResult, error)
	CheckBootstrappingStatus(ctx context.Context, transactionID string) (StatusResult, error)

	ProofProcess(ctx context.Context, qrData string) error
}

// QRScanner captures a single QR code. Scan resolves exactly once, after
// any scanner UI has been dismissed.
type QRScanner interface {
	Scan(ctx context.Context) (string, error)
}

// QRScannerFunc adapts a function to QRScanner.
type QRScannerFunc func(ctx context.Context) (string, error)

func (f QRScannerFunc) Scan(ctx context.Context) (string, error) { return f(ctx) }
