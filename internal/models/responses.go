package models

// StatusResponse is the command envelope: {"Status": true} on success,
// {"Status": false, "Error": "..."} on failure.
type StatusResponse struct {
	Status bool   `json:"Status"`
	Error  string `json:"Error,omitempty"`
}

// TokenResponse is returned by login.
type TokenResponse struct {
	Status bool   `json:"Status"`
	Token  string `json:"Token"`
}

// DataResponse wraps read endpoints.
type DataResponse struct {
	Status bool        `json:"Status"`
	Data   interface{} `json:"Data"`
}

// ImportResponse is returned by the import endpoints.
type ImportResponse struct {
	Status  bool           `json:"Status"`
	Error   string         `json:"Error,omitempty"`
	Summary *ImportSummary `json:"Summary,omitempty"`
}

// OK is a shorthand for a successful StatusResponse.
func OK() StatusResponse {
	return StatusResponse{Status: true}
}

// Fail is a shorthand for a failed StatusResponse.
func Fail(msg string) StatusResponse {
	return StatusResponse{Status: false, Error: msg}
}
