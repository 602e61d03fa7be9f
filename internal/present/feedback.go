package present

// Level grades a Feedback message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Feedback is the user-facing result of an action. Path is set when the
// action wrote a file.
type Feedback struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

// Failed reports whether the action did not complete.
func (f Feedback) Failed() bool {
	return f.Level == LevelError || f.Level == LevelWarning
}

func success(message, path string) Feedback {
	return Feedback{Level: LevelSuccess, Message: message, Path: path}
}

func warning(message string, err error) Feedback {
	return Feedback{Level: LevelWarning, Message: message, Err: err}
}

func failure(message string, err error) Feedback {
	return Feedback{Level: LevelError, Message: message, Err: err}
}
