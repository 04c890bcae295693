package dto

// ErrorResponse cuerpo de error HTTP.
// Details lleva datos para que el cliente actúe (productos sin resolver, ronda vigente, etc.).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}
