package hybridwall

// Progress checkpoints on the 0 to 1000 scale.
const (
	ProgressStart      = 0
	ProgressNearDrawn  = 100
	ProgressNearDone   = 200
	ProgressFarDone    = 400
	ProgressComposited = 800
	ProgressWritten    = 1000
)

// ProgressMonitor receives progress of a long-running pass and can ask for
// it to stop. Implementations must be safe for use from a worker goroutine.
type ProgressMonitor interface {
	// SetProgress reports progress on a 0 to 1000 scale.
	SetProgress(v int)
	// SetNote describes the current step.
	SetNote(note string)
	// Canceled reports whether the user asked to stop.
	Canceled() bool
	// Close is called once when the pass ends, successfully or not.
	Close()
}

// NopProgress is a ProgressMonitor that ignores all reports and never
// cancels. Interactive passes use it to stay low-latency.
type NopProgress struct{}

func (NopProgress) SetProgress(int) {}
func (NopProgress) SetNote(string)  {}
func (NopProgress) Canceled() bool  { return false }
func (NopProgress) Close()          {}
