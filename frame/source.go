package frame

// Source is the contract a video node must satisfy to feed the playback
// pipeline. Rendering runs on worker threads owned by the engine behind the
// node; implementations only create and resolve handles to that work.
type Source interface {
	// NumFrames returns the total frame count of the node.
	NumFrames() int

	// GetFrame renders frame n synchronously, blocking until done.
	GetFrame(n int) (*Frame, error)

	// GetFrameAsync requests frame n and returns immediately; the handle
	// resolves once the engine finishes rendering.
	GetFrameAsync(n int) *AsyncHandle
}
