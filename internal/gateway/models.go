package gateway

const (
	ServiceName = "api-gateway"
	Version     = "1.0.0"

	// UnmatchedRoute agrupa requests que caem no 404.
	UnmatchedRoute = "unmatched"

	// formato do Date.toISOString: UTC com milissegundos
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

type HealthResponse struct {
	Status      string  `json:"status"`
	Service     string  `json:"service"`
	Version     string  `json:"version"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	Environment string  `json:"environment"`
}

type ReadyChecks struct {
	Database     string `json:"database"`
	Redis        string `json:"redis"`
	ExternalAPIs string `json:"external_apis"`
}

type ReadyResponse struct {
	Status    string      `json:"status"`
	Service   string      `json:"service"`
	Checks    ReadyChecks `json:"checks"`
	Timestamp string      `json:"timestamp"`
}

type StatusResponse struct {
	Message   string            `json:"message"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
}

type Endpoints struct {
	Health string `json:"health"`
	Ready  string `json:"ready"`
	Status string `json:"status"`
}

type RootResponse struct {
	Message   string    `json:"message"`
	Version   string    `json:"version"`
	Endpoints Endpoints `json:"endpoints"`
	Timestamp string    `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
