package adapter

// Message is one command sent over the websocket.
type Message struct {
	Cmd string `json:"cmd"`
}

// Response mirrors the /api/exec body.
type Response struct {
	OK          bool   `json:"ok"`
	Out         string `json:"out"`
	Interpreted string `json:"interpreted,omitempty"`
	Source      string `json:"source,omitempty"`
	Error       string `json:"error,omitempty"`
}
