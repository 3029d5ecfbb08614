package reload

// Wire message types. All frames are JSON text messages.
const (
	msgTypeHello   = "hello"
	msgTypeAck     = "ack"
	msgTypeReload  = "reload"
	msgTypeGoodbye = "goodbye"
)

// Ack statuses a client may report.
const (
	AckApplied = "applied"
	AckFailed  = "failed"
)

// envelope carries just the discriminator, for dispatching inbound frames.
type envelope struct {
	Type string `json:"type"`
}

// Hello is the first message a client must send after connecting.
type Hello struct {
	Type     string `json:"type"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

// Ack is sent by a client after it has applied (or failed to apply) a
// reload instruction.
type Ack struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ReloadMessage instructs a client to reload after a successful build.
// Strategy is computed per recipient; the rest of the message is shared
// across the broadcast.
type ReloadMessage struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	ChangedFiles []string `json:"changedFiles"`
	Strategy     Strategy `json:"strategy"`
	Timestamp    int64    `json:"timestamp"`
}

// Goodbye is sent to every client on graceful shutdown.
type Goodbye struct {
	Type string `json:"type"`
}
