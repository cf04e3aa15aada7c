package locomotion

// BoneNotFound is the sentinel a SkeletonSink returns for unknown bone
// names.
const BoneNotFound = -1

// KinematicSource supplies the per-frame kinematic state of one
// character. Implementations must be cheap to query every frame.
//
// The animator holds the source weakly: a source that reports !ok is
// treated as destroyed and the handle is dropped, to be re-acquired
// through the resolver on a later frame.
type KinematicSource interface {
	// Snapshot returns the current kinematic state. ok is false when
	// the source has been destroyed or cannot produce a state this
	// frame.
	Snapshot() (state KinematicState, ok bool)
}

// SourceResolver re-acquires a kinematic source after the cached handle
// went stale. It may return nil when no source is available; the
// animator then skips the frame and tries again on the next one.
type SourceResolver func() KinematicSource

// SkeletonSink receives procedural bone rotations. Implementations
// expose lookup by bone name and a local-space rotation write; both are
// called at most once per frame.
type SkeletonSink interface {
	// BoneIndex returns the index for a bone name, or BoneNotFound.
	BoneIndex(name string) int

	// SetBoneLocalRotation applies a rotation to the bone in its local
	// space.
	SetBoneLocalRotation(index int, rot Rotator)
}
