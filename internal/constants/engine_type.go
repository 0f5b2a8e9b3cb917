package constants

type SpaceEngineType uint8

const (
	Cache    SpaceEngineType = 0
	InMemory SpaceEngineType = 1
	OnDisk   SpaceEngineType = 2
)

// CreateAction returns the action creating a space backed by t, and false for
// an unknown engine.
func (t SpaceEngineType) CreateAction() (uint8, bool) {
	switch t {
	case Cache:
		return CreateSpaceCache, true
	case InMemory:
		return CreateSpaceInMemory, true
	case OnDisk:
		return CreateSpaceOnDisk, true
	}
	return 0, false
}
