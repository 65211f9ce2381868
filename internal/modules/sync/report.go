package sync

import "fmt"

// Report is the per-kind batch result.
type Report struct {
	Kind    string    `json:"kind"`
	State   State     `json:"state"`
	Created int       `json:"created"`
	Updated int       `json:"updated"`
	Skipped int       `json:"skipped"`
	Removed int       `json:"removed"`
	Failed  []Failure `json:"failed,omitempty"`
}

func (r *Report) record(o Outcome) {
	switch o {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeRemoved:
		r.Removed++
	}
}

func (r *Report) fail(key, reason string) {
	r.Failed = append(r.Failed, Failure{Key: key, Reason: reason})
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: created=%d updated=%d skipped=%d removed=%d failed=%d state=%s",
		r.Kind, r.Created, r.Updated, r.Skipped, r.Removed, len(r.Failed), r.State)
}

// RunReport collects the kind reports of one sync run, in execution order.
type RunReport struct {
	Kinds []*Report `json:"kinds"`
}

// Clean reports whether every kind finished without an abort or failure.
func (rr *RunReport) Clean() bool {
	for _, r := range rr.Kinds {
		if r.State != StateDone || len(r.Failed) > 0 {
			return false
		}
	}
	return true
}
