package protocol

// ErrorCode classifies a fatal_error frame.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodeVersionMismatch
	CodeServerFull
	CodeShutdown
)

// UnknownErrorMessage is the message reported when a session ends without
// the server having sent a fatal_error frame first.
const UnknownErrorMessage = "unknown error"

func (c ErrorCode) String() string {
	switch c {
	case CodeVersionMismatch:
		return "version_mismatch"
	case CodeServerFull:
		return "server_full"
	case CodeShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
