package model

// Command is a global action that applies regardless of the current state.
type Command string

const (
	CommandNone      Command = ""
	CommandExit      Command = "exit"       // F3: abandon pallet, return to batch scan
	CommandSkip      Command = "skip"       // F8: skip an optional field
	CommandLotToggle Command = "lot-toggle" // toggle the lot requirement for this pallet
	CommandLabel     Command = "label"      // request a pallet label print
	CommandCopy      Command = "copy"       // F6: copy previous pallet's values
)

// IsValid checks whether the command is a known value.
func (c Command) IsValid() bool {
	switch c {
	case CommandNone, CommandExit, CommandSkip, CommandLotToggle, CommandLabel, CommandCopy:
		return true
	}
	return false
}

// ScanField is the name of the primary input field on every screen.
const ScanField = "scan"

// ScanRequest is one terminal keystroke/scan.
type ScanRequest struct {
	Operator string            `json:"operator"`
	Terminal string            `json:"terminal"`
	OpHint   Op                `json:"op_hint,omitempty"`
	Command  Command           `json:"command,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Value returns the primary scanned value.
func (r *ScanRequest) Value() string {
	return r.Fields[ScanField]
}

// Field returns a named auxiliary input value.
func (r *ScanRequest) Field(name string) string {
	return r.Fields[name]
}

// FieldSpec describes one field of the next screen to render.
type FieldSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Default  string `json:"default,omitempty"`
	Editable bool   `json:"editable"`
	MaxLen   int    `json:"max_len,omitempty"`
	Hint     string `json:"hint,omitempty"`
}

// FunctionKey is one operator-visible key binding for the current state.
type FunctionKey struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ScanResponse is the reply rendered by the terminal after each request.
type ScanResponse struct {
	Error  string            `json:"error,omitempty"`
	Info   string            `json:"info,omitempty"`
	Warn   string            `json:"warn,omitempty"`
	Op     Op                `json:"op"`
	Screen []FieldSpec       `json:"screen,omitempty"`
	Aux    map[string]string `json:"aux,omitempty"`
	Keys   []FunctionKey     `json:"keys,omitempty"`
}

// SetAux records an auxiliary key/value on the response.
func (r *ScanResponse) SetAux(key, value string) {
	if r.Aux == nil {
		r.Aux = make(map[string]string)
	}
	r.Aux[key] = value
}
