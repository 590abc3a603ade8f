package tokens

// Mode chooses between approximate and exact token counting.
type Mode string

const (
	ModeHeuristic Mode = "heuristic"
	ModeExact     Mode = "exact"
)

// Options describe which estimator a run should use.
type Options struct {
	Unit         UnitKind
	Mode         Mode
	Method       Method
	Model        string
	Encoding     string
	TokenizerDir string
}

// Selection is the estimator chosen for a run. Degraded is set when exact
// counting was requested but the heuristic had to be used instead.
type Selection struct {
	Estimator Estimator
	Degraded  bool
	Cause     error
}

// Select picks the estimator once per run. It never fails: an unavailable
// tokenizer degrades to the heuristic for the whole run.
func Select(opts Options) Selection {
	if opts.Unit == UnitCharacter {
		return Selection{Estimator: CharacterEstimator{}}
	}
	if opts.Mode != ModeExact {
		return Selection{Estimator: NewHeuristicEstimator(opts.Method)}
	}
	enc, err := NewTiktokenEstimator(opts.TokenizerDir, opts.Model, opts.Encoding)
	if err != nil {
		return Selection{
			Estimator: NewHeuristicEstimator(opts.Method),
			Degraded:  true,
			Cause:     err,
		}
	}
	return Selection{Estimator: enc}
}
