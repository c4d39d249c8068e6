package explain

import "fmt"

type Kind int

const (
	CredentialMissing Kind = iota + 1
	RateLimited
	APIError
	EmptyResponse
	NetworkFault
)

func (k Kind) String() string {
	switch k {
	case CredentialMissing:
		return "credential_missing"
	case RateLimited:
		return "rate_limited"
	case APIError:
		return "api_error"
	case EmptyResponse:
		return "empty_response"
	case NetworkFault:
		return "network_fault"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the terminal error of one Explain call. Message is meant to be
// shown to the user as is.
type Failure struct {
	Kind    Kind
	Status  int // HTTP status for APIError and RateLimited
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }
func (f *Failure) Unwrap() error { return f.Err }

// Outcome is either a success (Text set, Failure nil) or a failure.
// The zero Outcome means nothing was requested.
type Outcome struct {
	Topic    string
	Text     string
	Failure  *Failure
	Attempts int
}

func (o Outcome) OK() bool { return o.Failure == nil && o.Text != "" }

func (o Outcome) IsZero() bool { return o.Failure == nil && o.Text == "" && o.Attempts == 0 }

// Message is the text to display: the answer on success, the error otherwise.
func (o Outcome) Message() string {
	if o.Failure != nil {
		return o.Failure.Message
	}
	return o.Text
}
