package queue

const (
	TypeRetentionSweep = "retention:sweep"
)

// RetentionSweepPayload is optional; an empty payload sweeps every area.
type RetentionSweepPayload struct {
	Reason string `json:"reason,omitempty"`
}
