// Package frame defines the frame-level types shared by the playback
// pipeline: bounded read-only views over planar pixel data, one-shot
// asynchronous render handles with move-only frame ownership, and the
// contracts a rendering engine must satisfy to feed the pipeline.
//
// Frames are produced by an external video engine and wrap natively-owned
// memory. Ownership is explicit: whoever ends up holding a *Frame must
// release it exactly once with Close. The AsyncHandle type enforces this
// structurally by handing the frame out only on the first Result call.
package frame
