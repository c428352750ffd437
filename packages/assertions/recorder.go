package assertions

// Result is one recorded assertion outcome. Failure is nil for a pass.
type Result struct {
	Passed  bool
	Failure *Failure
}

// Recorder is a Reporter that keeps every outcome instead of stopping on the
// first failure.
type Recorder struct {
	results []Result
}

var _ Reporter = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Pass() {
	r.results = append(r.results, Result{Passed: true})
}

func (r *Recorder) Fail(f *Failure) {
	r.results = append(r.results, Result{Failure: f})
}

// Results returns all outcomes in reporting order.
func (r *Recorder) Results() []Result {
	return r.results
}

// Failures returns the failures in reporting order.
func (r *Recorder) Failures() []*Failure {
	var out []*Failure
	for _, res := range r.results {
		if !res.Passed {
			out = append(out, res.Failure)
		}
	}
	return out
}

// Passes returns the number of passed assertions.
func (r *Recorder) Passes() int {
	n := 0
	for _, res := range r.results {
		if res.Passed {
			n++
		}
	}
	return n
}

// Failed reports whether any assertion failed.
func (r *Recorder) Failed() bool {
	for _, res := range r.results {
		if !res.Passed {
			return true
		}
	}
	return false
}

// Last returns the most recent outcome. ok is false when nothing was reported.
func (r *Recorder) Last() (res Result, ok bool) {
	if len(r.results) == 0 {
		return Result{}, false
	}
	return r.results[len(r.results)-1], true
}

func (r *Recorder) Reset() {
	r.results = nil
}
