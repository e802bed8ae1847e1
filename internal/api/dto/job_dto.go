package dto

const (
	StatusOK          = "OK"
	StatusUnavailable = "UNAVAILABLE"

	BrokerConnected    = "connected"
	BrokerDisconnected = "disconnected"
)

// StatusResponse is returned by the liveness route and on accepted jobs
type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Broker string `json:"broker"`
}
