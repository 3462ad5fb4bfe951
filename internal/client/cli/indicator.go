package cli

import (
	"sync"

	"github.com/pterm/pterm"
)

// spinnerIndicator renders guard progress as a terminal spinner.
type spinnerIndicator struct {
	mu sync.Mutex
	sp *pterm.SpinnerPrinter
}

func (s *spinnerIndicator) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sp != nil {
		s.sp.UpdateText(msg)
		return
	}
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(msg)
	if err == nil {
		s.sp = sp
	}
}

func (s *spinnerIndicator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sp != nil {
		_ = s.sp.Stop()
		s.sp = nil
	}
}
