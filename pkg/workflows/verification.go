package workflows

import (
	"context"
	"errors"

	"github.com/petrijr/sessionflow/pkg/api"
)

// StartCredentialVerification starts verifying the pending transaction.
func (l *Library) StartCredentialVerification(ctx context.Context, st api.Store) (string, error) {
	res, err := l.SDK.StartCredentialVerificationProcess(ctx, st.Snapshot().Domain.TransactionID)
	if err != nil {
		return "", err
	}
	st.MutateDomain(func(d *api.DomainState) { d.CredentialVerificationStarted = true })
	return res.QuestionTitle + ", Status: " + res.Status, nil
}

// AcceptProof answers the pending verification with a credential the user
// picks.
func (l *Library) AcceptProof(ctx context.Context, st api.Store) (string, error) {
	creds, err := l.SDK.GetCredentials(ctx, nil, nil)
	if err != nil {
		return "", err
	}

	cred, ok, err := selectCredential(ctx, st, creds)
	if err != nil {
		return "", err
	}
	if !ok || cred.Identifier == "" {
		return "Failed to accept proof", nil
	}

	res, err := l.SDK.AcceptProof(ctx, st.Snapshot().Domain.TransactionID, cred.Identifier)
	if err != nil {
		return "", err
	}
	resetTransaction(st)
	return res.Identifier + " accepted, \nStatus: " + res.Status, nil
}

// RejectProof declines the pending verification.
func (l *Library) RejectProof(ctx context.Context, st api.Store) (string, error) {
	res, err := l.SDK.RejectProof(ctx, st.Snapshot().Domain.TransactionID)
	if err != nil {
		return "", err
	}
	resetTransaction(st)
	return res.Identifier + " rejected, \nStatus: " + res.Status, nil
}

func resetTransaction(st api.Store) {
	st.MutateDomain(func(d *api.DomainState) {
		d.CredentialVerificationStarted = false
		d.TransactionID = ""
	})
}

// DeviceBootstrappingVerification starts bootstrapping and remembers the
// transaction it created.
func (l *Library) DeviceBootstrappingVerification(ctx context.Context, st api.Store) (string, error) {
	res, err := l.SDK.DeviceBootstrappingVerification(ctx)
	if err != nil {
		return "", err
	}
	st.MutateDomain(func(d *api.DomainState) { d.TransactionID = res.Identifier })
	return res.Identifier + "\nStatus is: " + res.Status, nil
}

// CheckBootstrappingStatus reports the status of the pending transaction.
func (l *Library) CheckBootstrappingStatus(ctx context.Context, st api.Store) (string, error) {
	txID := st.Snapshot().Domain.TransactionID
	if txID == "" {
		return "", errors.New("no bootstrapping transaction in progress")
	}
	res, err := l.SDK.CheckBootstrappingStatus(ctx, txID)
	if err != nil {
		return "", err
	}
	return "Status is: " + res.Status, nil
}
