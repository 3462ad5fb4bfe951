package guard

// State is a guard state. Bootstrap moves from StateBootstrapping to
// StateReady; RouteGuard moves from StateVerifying to one of the terminal
// access states.
type State string

const (
	StateBootstrapping   State = "bootstrapping"
	StateReady           State = "ready"
	StateVerifying       State = "verifying"
	StateAuthorized      State = "authorized"
	StateUnauthorized    State = "unauthorized"
	StateUnauthenticated State = "unauthenticated"
)

// Indicator shows progress while a guard waits on the network.
type Indicator interface {
	Start(msg string)
	Stop()
}

type nopIndicator struct{}

func (nopIndicator) Start(string) {}
func (nopIndicator) Stop()        {}
