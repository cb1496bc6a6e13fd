// Package buffer implements async pre-fetching of frames during playback.
//
// A FrameBuffer keeps a constant-depth queue of in-flight render requests
// ahead of the playback cursor. The display loop polls GetNextFrame once
// per tick; every successful pop enqueues exactly one new request, so the
// queue depth stays constant until the play range is exhausted. AudioBuffer
// is the plugin-less audio counterpart.
//
// The queue is driven by a single playback goroutine. Invalidate may be
// called from any goroutine; it flips a one-way flag synchronously and
// triggers the asynchronous Clear, which drains a snapshot of the queue and
// releases every frame that was never handed out.
package buffer
