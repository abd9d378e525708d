package ui

import "sync"

// Recorder captures navigation and alerts and answers confirmations with a
// fixed reply. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	Reply     bool
	routes    []Route
	alerts    []string
	questions []string
}

// NewRecorder returns a Recorder that answers confirmations with reply.
func NewRecorder(reply bool) *Recorder {
	return &Recorder{Reply: reply}
}

func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

func (r *Recorder) Alert(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, message)
}

func (r *Recorder) Confirm(question string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	return r.Reply
}

// Routes returns every navigation seen so far.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// LastRoute returns the most recent navigation.
func (r *Recorder) LastRoute() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return Route{}, false
	}
	return r.routes[len(r.routes)-1], true
}

// Alerts returns every alert seen so far.
func (r *Recorder) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

// Questions returns every confirmation asked so far.
func (r *Recorder) Questions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.questions...)
}
