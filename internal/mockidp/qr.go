package mockidp

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

// QRSize is the edge length in pixels of rendered QR codes.
const QRSize = 256

// NewLinkPayload returns a fresh payload for a link QR code. Importing it
// creates a new digital address.
func NewLinkPayload() string {
	return LinkPrefix + uuid.NewString()
}

// EncodeQR renders payload as a PNG QR code.
func EncodeQR(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, QRSize)
}

// linkQRHandler serves a link QR code. The payload query parameter pins the
// content; without it a fresh payload is generated.
func (s *Server) linkQRHandler(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	if payload == "" {
		payload = NewLinkPayload()
	}
	s.writeQR(w, payload)
}

// verifyQRHandler serves the QR code a wallet scans to answer the
// verification transaction in the route.
func (s *Server) verifyQRHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["tx"]

	s.mu.Lock()
	_, ok := s.transactions[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	s.writeQR(w, VerifyPrefix+id)
}

func (s *Server) writeQR(w http.ResponseWriter, payload string) {
	png, err := EncodeQR(payload)
	if err != nil {
		s.logger.Error("qr_encode_failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "cannot render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-QR-Payload", payload)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
