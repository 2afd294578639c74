// Package meet provisions video meeting rooms for human handoff, backed by a
// Jitsi-style meetings API.
package meet

import (
	"context"
	"fmt"
)

// Room is a provisioned meeting room.
type Room struct {
	URL  string
	Name string
}

// Provisioner creates a meeting room for a user and a subject line.
type Provisioner interface {
	CreateRoom(ctx context.Context, userID, subject string) (*Room, error)
}

// ProvisioningError wraps transport or remote failures from the meetings API.
// Handlers degrade to a retry-later message on this error instead of
// propagating it.
type ProvisioningError struct {
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("meeting provisioning failed: %v", e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }
