// internal/socket/response.go
package socket

// Error codes carried in failure responses. The numeric values are part of
// the client contract.
const (
	CodeNotAdmin    = -1    // action requires the room admin
	CodeNotJudge    = -2    // action requires the current judge
	CodeConflict    = 1     // room already full / answer already selected
	CodeUnknown     = -3    // no handler registered for a request message
	CodeUnreachable = -4    // transport failure while answering a request
	CodeInternal    = -1000 // handler panicked; converted at the boundary
)

// Response is the tagged union sent back for request-style messages:
// {success: true, ...payload} or {success: false, errorMessage, errorCode}.
type Response map[string]interface{}

// OK returns a bare success response.
func OK() Response {
	return Response{"success": true}
}

// OKWith returns a success response carrying extra payload fields.
func OKWith(fields map[string]interface{}) Response {
	resp := Response{"success": true}
	for k, v := range fields {
		resp[k] = v
	}
	return resp
}

// Fail returns a structured failure response.
func Fail(code int, message string) Response {
	return Response{
		"success":      false,
		"errorMessage": message,
		"errorCode":    code,
	}
}
