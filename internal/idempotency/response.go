package idempotency

// Response is a rendered HTTP response kept so a replay can return the
// exact bytes of the first answer.
type Response struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}
