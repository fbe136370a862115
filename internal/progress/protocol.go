package progress

const (
	TypeWelcome  = "welcome"
	TypeProgress = "progress"
	TypeStatus   = "status"
	TypeError    = "error"
	TypePing     = "ping"
	TypePong     = "pong"
)

// Message is the single envelope sent over a progress stream. Fields not
// relevant to Type are omitted.
type Message struct {
	Type     string `json:"type"`
	JobID    string `json:"jobId"`
	ClientID string `json:"clientId,omitempty"`
	Frame    int    `json:"frame,omitempty"`
	Total    int    `json:"total,omitempty"`
	Status   string `json:"status,omitempty"`
	Error    string `json:"error,omitempty"`
}

func ProgressMessage(jobID string, frame, total int) *Message {
	return &Message{Type: TypeProgress, JobID: jobID, Frame: frame, Total: total}
}

func StatusMessage(jobID, status, errMsg string) *Message {
	return &Message{Type: TypeStatus, JobID: jobID, Status: status, Error: errMsg}
}
