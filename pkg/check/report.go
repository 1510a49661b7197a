package check

// Level summarizes a whole run as the worst thing that happened in it.
// The CLI maps it onto the exit code.
type Level int

// Levels in ascending severity.
const (
	LevelNoUpdates Level = iota
	LevelCompatibleUpdate
	LevelBreakingUpdate
	LevelFailure
)

// String describes the level for logs.
func (l Level) String() string {
	switch l {
	case LevelNoUpdates:
		return "no updates"
	case LevelCompatibleUpdate:
		return "compatible update"
	case LevelBreakingUpdate:
		return "breaking update"
	case LevelFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Report groups check results by outcome, preserving input order inside
// each group. A result owning both a compatible and a breaking update
// appears in both update groups.
type Report struct {
	NoUpdates         []Result
	CompatibleUpdates []Result
	BreakingUpdates   []Result
	Failures          []Result
}

// NewReport sorts results into their groups.
func NewReport(results []Result) *Report {
	r := &Report{}
	for _, res := range results {
		if res.Failed() {
			r.Failures = append(r.Failures, res)
			continue
		}
		if !res.Updates.HasAny() {
			r.NoUpdates = append(r.NoUpdates, res)
			continue
		}
		if res.Updates.Compatible != nil {
			r.CompatibleUpdates = append(r.CompatibleUpdates, res)
		}
		if res.Updates.Breaking != nil {
			r.BreakingUpdates = append(r.BreakingUpdates, res)
		}
	}
	return r
}

// Level returns the run's severity. A failure outranks a breaking update,
// which outranks a compatible one, which outranks a clean bill.
func (r *Report) Level() Level {
	switch {
	case len(r.Failures) > 0:
		return LevelFailure
	case len(r.BreakingUpdates) > 0:
		return LevelBreakingUpdate
	case len(r.CompatibleUpdates) > 0:
		return LevelCompatibleUpdate
	default:
		return LevelNoUpdates
	}
}
