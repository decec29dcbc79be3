package sdkclient

// Request and response bodies shared with the identity service.

type qrRequest struct {
	QR string `json:"qr"`
}

type emailBody struct {
	Email string `json:"email"`
}

type languageBody struct {
	Language string `json:"language"`
}

type messageBody struct {
	Message string `json:"message"`
}

type acceptBody struct {
	CredentialIdentifier string `json:"credentialIdentifier"`
}

type errorBody struct {
	Error string `json:"error"`
}
