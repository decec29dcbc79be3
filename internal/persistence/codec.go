package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/petrijr/sessionflow/pkg/api"
)

// EncodeState serializes the session record as JSON.
func EncodeState(d api.DomainState) ([]byte, error) {
	return json.Marshal(d)
}

// DecodeState parses a record written by EncodeState. Unknown fields are
// ignored and missing ones stay empty.
func DecodeState(data []byte) (api.DomainState, error) {
	var d api.DomainState
	if len(data) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return api.DomainState{}, fmt.Errorf("decode state: %w", err)
	}
	return d, nil
}
