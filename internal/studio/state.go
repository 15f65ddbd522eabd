package studio

import (
	"github.com/taigrr/avatarfit/pkg/fit"
)

// State is a point-in-time view of the session, shaped for JSON clients.
type State struct {
	Version      uint64   `json:"version"`
	Avatar       string   `json:"avatar,omitempty"`
	Clothing     string   `json:"clothing,omitempty"`
	ShowClothing bool     `json:"showClothing"`
	Color        string   `json:"color"`
	Fit          *FitInfo `json:"fit,omitempty"`
	FitError     string   `json:"fitError,omitempty"`
	Message      string   `json:"message,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// FitInfo summarizes a fit.Result.
type FitInfo struct {
	Class string     `json:"class"`
	Scale float64    `json:"scale"`
	Min   [3]float64 `json:"min"`
	Max   [3]float64 `json:"max"`
}

func newFitInfo(r fit.Result) *FitInfo {
	return &FitInfo{
		Class: r.Class.String(),
		Scale: r.Scale,
		Min:   [3]float64{r.Garment.Min.X, r.Garment.Min.Y, r.Garment.Min.Z},
		Max:   [3]float64{r.Garment.Max.X, r.Garment.Max.Y, r.Garment.Max.Z},
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Session) state() State {
	st := State{
		Version:      s.version,
		ShowClothing: s.showClothing,
		Color:        s.color,
		Message:      s.message,
		Error:        s.lastErr,
	}
	if s.avatar != nil {
		st.Avatar = s.avatar.Name
	}
	if s.clothing != nil {
		st.Clothing = s.clothing.Name
	}
	if s.lastFit != nil {
		st.Fit = newFitInfo(*s.lastFit)
	}
	if s.fitErr != nil {
		st.FitError = s.fitErr.Error()
	}
	return st
}

// Subscribe returns a channel that receives the state after every change,
// and a function that ends the subscription. A slow subscriber only sees
// the latest state.
func (s *Session) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan State, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// publish bumps the version and notifies subscribers. Callers hold s.mu.
func (s *Session) publish() {
	s.version++
	st := s.state()
	for _, ch := range s.subs {
		// Replace a pending state nobody has read yet.
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
