package mockidp

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/petrijr/sessionflow/pkg/api"
)

type qrBody struct {
	QR string `json:"qr"`
}

// linked returns the address this service is currently linked to, or
// writes a conflict. Callers hold s.mu.
func (s *Server) linked(w http.ResponseWriter) (*address, bool) {
	if s.current == nil {
		writeError(w, http.StatusConflict, "no digital address linked")
		return nil, false
	}
	return s.current, true
}

func (s *Server) linkDevice(a *address) api.LinkResult {
	dev := api.Device{Name: s.deviceName, Identifier: uuid.NewString()}
	a.devices = append(a.devices, dev)
	s.current = a
	return api.LinkResult{DigitalAddress: a.id, LinkDeviceID: dev.Identifier}
}

func (s *Server) recoverHandler(w http.ResponseWriter, r *http.Request) {
	var body qrBody
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[body.QR]
	if !ok {
		writeError(w, http.StatusNotFound, "digital address not found")
		return
	}
	writeJSON(w, http.StatusOK, s.linkDevice(a))
}

func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	var body qrBody
	if !decodeBody(w, r, &body) {
		return
	}
	if !strings.HasPrefix(body.QR, LinkPrefix) {
		writeError(w, http.StatusBadRequest, "not a link QR code")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.addresses[body.QR]; exists {
		writeError(w, http.StatusConflict, "digital address already exists")
		return
	}
	a := &address{
		id:          "did:sf:" + uuid.NewString(),
		credentials: seedCredentials(),
	}
	s.addresses[body.QR] = a
	writeJSON(w, http.StatusOK, s.linkDevice(a))
}

func seedCredentials() []api.Credential {
	return []api.Credential{
		{Schema: "Membership", SchemaIdentifier: "schema:membership", Identifier: uuid.NewString(), Status: "VALID"},
		{Schema: "Age Over 18", SchemaIdentifier: "schema:age-over-18", Identifier: uuid.NewString(), Status: "VALID"},
		{Schema: "Employee Badge", SchemaIdentifier: "schema:employee", Identifier: uuid.NewString(), Status: "REVOKED"},
	}
}

func (s *Server) devicesHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.linked(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, slices.Clone(a.devices))
}

func (s *Server) deleteDeviceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.linked(w)
	if !ok {
		return
	}
	i := slices.IndexFunc(a.devices, func(d api.Device) bool { return d.Identifier == id })
	if i < 0 {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	a.devices = slices.Delete(a.devices, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) credentialsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	statuses, schemas := q["status"], q["schema"]

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.linked(w)
	if !ok {
		return
	}
	out := make([]api.Credential, 0, len(a.credentials))
	for _, c := range a.credentials {
		if len(statuses) > 0 && !slices.Contains(statuses, c.Status) {
			continue
		}
		if len(schemas) > 0 && !slices.Contains(schemas, c.SchemaIdentifier) {
			continue
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getLanguageHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"language": s.language})
}

func (s *Server) setLanguageHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if !slices.Contains(Languages, body.Language) {
		writeError(w, http.StatusBadRequest, "unsupported language: "+body.Language)
		return
	}

	s.mu.Lock()
	s.language = body.Language
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Language set to " + body.Language})
}

type emailBody struct {
	Email string `json:"email"`
}

func validEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body emailBody
	if !decodeBody(w, r, &body) {
		return "", false
	}
	local, domain, ok := strings.Cut(body.Email, "@")
	if !ok || local == "" || domain == "" {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return "", false
	}
	return body.Email, true
}

func (s *Server) sendRecoveryEmailHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := validEmail(w, r)
	if !ok {
		return
	}
	s.logger.Info("mockidp_recovery_email_sent", "email", email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setRecoveryEmailHandler(w http.ResponseWriter, r *http.Request) {
	email, ok := validEmail(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	s.recoveryEmail = email
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// transaction returns the transaction named in the route, or writes a 404.
// Callers hold s.mu.
func (s *Server) transaction(w http.ResponseWriter, r *http.Request) (*transaction, bool) {
	tx, ok := s.transactions[mux.Vars(r)["tx"]]
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return nil, false
	}
	return tx, true
}

func (s *Server) startVerificationHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transaction(w, r)
	if !ok {
		return
	}
	tx.status = TxStarted
	writeJSON(w, http.StatusOK, api.VerificationResult{QuestionTitle: "Proof of membership", Status: tx.status})
}

func (s *Server) acceptProofHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CredentialIdentifier string `json:"credentialIdentifier"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.linked(w)
	if !ok {
		return
	}
	tx, ok := s.transaction(w, r)
	if !ok {
		return
	}
	if !slices.ContainsFunc(a.credentials, func(c api.Credential) bool { return c.Identifier == body.CredentialIdentifier }) {
		writeError(w, http.StatusNotFound, "credential not found")
		return
	}
	tx.status = TxAccepted
	writeJSON(w, http.StatusOK, api.TransactionResult{Identifier: tx.id, Status: tx.status})
}

func (s *Server) rejectProofHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transaction(w, r)
	if !ok {
		return
	}
	tx.status = TxRejected
	writeJSON(w, http.StatusOK, api.TransactionResult{Identifier: tx.id, Status: tx.status})
}

func (s *Server) bootstrapHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.linked(w); !ok {
		return
	}
	tx := &transaction{id: uuid.NewString(), status: TxPending}
	s.transactions[tx.id] = tx
	writeJSON(w, http.StatusOK, api.TransactionResult{Identifier: tx.id, Status: tx.status})
}

// bootstrapStatusHandler reports the status and completes a pending
// transaction on its second check.
func (s *Server) bootstrapStatusHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transaction(w, r)
	if !ok {
		return
	}
	tx.checks++
	if tx.status == TxPending && tx.checks >= 2 {
		tx.status = TxCompleted
	}
	writeJSON(w, http.StatusOK, api.StatusResult{Status: tx.status})
}

func (s *Server) proofHandler(w http.ResponseWriter, r *http.Request) {
	var body qrBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.QR == "" {
		writeError(w, http.StatusBadRequest, "qr is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := strings.CutPrefix(body.QR, VerifyPrefix); ok {
		tx, known := s.transactions[id]
		if !known {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		tx.status = TxScanned
	}
	s.proofs = append(s.proofs, body.QR)
	w.WriteHeader(http.StatusNoContent)
}
