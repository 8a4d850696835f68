package limits

// Size limits for facade payloads and upstream responses

const (
	// JSON is the size limit for facade request/response payloads (1MB)
	JSON = 1 << 20

	// ErrorBody is the maximum size read from an error response body (1KB)
	ErrorBody = 1024

	// Document caps requirements.md / todo.md reads (4MB)
	Document = 4 << 20
)
