package migrate

// State is the phase an Engine run is in
type State int32

const (
	Idle State = iota
	PreMigration
	Locked
	Reconciling
	Applying
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PreMigration:
		return "pre-migration"
	case Locked:
		return "locked"
	case Reconciling:
		return "reconciling"
	case Applying:
		return "applying"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	}
	return "unknown"
}
