package model

// HashAbsent is the distinguished hash for "file does not exist here", so
// creation and deletion go through the same comparison table as edits.
const HashAbsent = ""

type Class string

const (
	ClassUnchanged         Class = "UNCHANGED"
	ClassRemoteOnlyChanged Class = "REMOTE_ONLY"
	ClassLocalOnlyChanged  Class = "LOCAL_ONLY"
	ClassConverged         Class = "CONVERGED"
	ClassConflicted        Class = "CONFLICTED"
)

// Classification is the three-way comparison result for one path.
type Classification struct {
	Path   string
	Class  Class
	Base   string
	Local  string
	Remote string

	// LocalSize and RemoteSize carry the sizes observed alongside the
	// hashes, so the applier can record fingerprints without re-reading.
	LocalSize  int64
	RemoteSize int64
}

// Classify maps a (base, local, remote) hash triple to its class.
func Classify(base, local, remote string) Class {
	switch {
	case base == local && base == remote:
		return ClassUnchanged
	case base == local:
		return ClassRemoteOnlyChanged
	case base == remote:
		return ClassLocalOnlyChanged
	case local == remote:
		return ClassConverged
	default:
		return ClassConflicted
	}
}
