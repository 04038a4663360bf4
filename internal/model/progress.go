package model

// Progress event names shared by the scan and operation streams.
const (
	EventStarted    = "started"
	EventScanning   = "scanning"
	EventProcessing = "processing"
	EventCompleted  = "completed"
)

// ScanProgress is emitted while walking a directory tree. TotalCount is only
// known once the walk completes.
type ScanProgress struct {
	Event        string `json:"event"`
	CurrentFile  string `json:"current_file,omitempty"`
	ScannedCount int    `json:"scanned_count"`
	TotalCount   int    `json:"total_count,omitempty"`
}

// OperationProgress is emitted once per item while executing a batch. Sends
// never block the executing task; a channel buffered per the executor's
// documented capacity requirement receives every event.
type OperationProgress struct {
	Event          string  `json:"event"`
	CurrentFile    string  `json:"current_file,omitempty"`
	CompletedCount int     `json:"completed_count"`
	TotalCount     int     `json:"total_count"`
	Percentage     float64 `json:"percentage"`
}
