package common

import (
	"github.com/google/uuid"
)

// NewRequestID generates a correlation ID for one assembly submission
// Format: asm_<uuid>
func NewRequestID() string {
	return "asm_" + uuid.New().String()
}
