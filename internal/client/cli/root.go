package cli

import (
	"bufio"
	"context"

	"github.com/pterm/pterm"

	"github.com/dmitrijs2005/pharmsim/internal/client/guard"
)

// Shell runs the interactive session until the user exits or input ends.
func (a *App) Shell(ctx context.Context) {
	pterm.Info.Println("Welcome to the pharmsim CLI (type 'help' for commands)")
	a.interactive = true

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watchSession(ctx)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

// watchSession announces a session that ends without an explicit logout,
// for example when a renewal is rejected by the server.
func (a *App) watchSession(ctx context.Context) {
	wasAuthorized := false
	for d := range a.guard.Watch(ctx, homeView.route) {
		if d.State == guard.StateAuthorized {
			wasAuthorized = true
			continue
		}
		if wasAuthorized && d.State == guard.StateUnauthenticated && !a.explicitLogout.Swap(false) {
			pterm.Warning.Println("Your session has ended. Log in again to continue.")
		}
		wasAuthorized = false
	}
}
