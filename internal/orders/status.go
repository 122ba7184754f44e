package orders

type Status string

const (
	// StatusPending is the only status assigned today. The field exists
	// so later states (confirmation, cancellation, shipping) slot in
	// without a schema change.
	StatusPending Status = "PENDING"
)
