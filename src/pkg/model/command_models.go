package model

// Command represents a user command with its scope, operation, and arguments
type Command struct {
	Scope     string
	Operation string
	Args      []string
}

// QuickLoadStatus reports the outcome of loading the quick-cache slot.
type QuickLoadStatus int

const (
	QuickLoadSuccess QuickLoadStatus = iota
	QuickLoadEmpty
	QuickLoadCorrupt
	// QuickLoadFailed means the slot could not be read at all.
	QuickLoadFailed
)

func (s QuickLoadStatus) String() string {
	switch s {
	case QuickLoadSuccess:
		return "success"
	case QuickLoadEmpty:
		return "empty"
	case QuickLoadCorrupt:
		return "corrupt"
	case QuickLoadFailed:
		return "failed"
	default:
		return "unknown"
	}
}
