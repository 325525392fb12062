package dto

// MatchArgs are the arguments of a match request.
// The "mapstructure" tags match the MCP tool argument names.
type MatchArgs struct {
	Path      string `json:"path" mapstructure:"path"`
	SessionID string `json:"session_id,omitempty" mapstructure:"session_id"`
}

// HrefArgs are the arguments of an href request.
type HrefArgs struct {
	To    string `json:"to" mapstructure:"to"`
	From  string `json:"from,omitempty" mapstructure:"from"`
	Query string `json:"query,omitempty" mapstructure:"query"`
}

// NavigateRequest is the body of a session navigation.
type NavigateRequest struct {
	Path string `json:"path" mapstructure:"path"`
}
