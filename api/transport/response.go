package transport

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every response. Clients read the payload from data and the
// failure from error.message and error.errors.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// ErrorBody is the error payload. Errors holds field-level validation messages
// keyed by request field, Laravel style.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ListMeta accompanies list payloads.
type ListMeta struct {
	Count int `json:"count"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

// NewList wraps items and reports their count in meta.
func NewList(items []interface{}) Envelope {
	if items == nil {
		items = []interface{}{}
	}
	return NewSuccess(items, ListMeta{Count: len(items)})
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, body ErrorBody, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: body, Meta: meta}
}

// NewMessage is an error envelope carrying only a message.
func NewMessage(code, message string) Envelope {
	return NewError(code, ErrorBody{Message: message}, nil)
}
