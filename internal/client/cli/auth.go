package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"github.com/dmitrijs2005/pharmsim/internal/client/session"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
)

// Login prompts; tests replace them.
var (
	promptLine     = ReadLine
	promptPassword = ReadPassword
	promptYesNo    = AskYesNo
)

// loginOptions pre-answers login prompts; empty fields are asked for.
type loginOptions struct {
	Identifier string
	Trust      *bool
}

// Login prompts for credentials and the "trust this device" choice and
// authenticates. The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	return a.login(ctx, loginOptions{})
}

func (a *App) login(ctx context.Context, opts loginOptions) error {
	identifier := opts.Identifier
	if identifier == "" {
		var err error
		identifier, err = promptLine(a.reader, "Email or student number", a.out)
		if err != nil {
			return err
		}
	}

	password, err := promptPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	var trust bool
	if opts.Trust != nil {
		trust = *opts.Trust
	} else if trust, err = promptYesNo(a.reader, "Trust this device (stay signed in after restart)?", a.out); err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, identifier, string(password), trust)
	if err != nil {
		pterm.Error.Printfln("Login unsuccessful: %v", err)
		return err
	}

	pterm.Success.Printfln("Logged in as %s", displayName(s))
	a.warnTempPassword(s)
	return nil
}

func (a *App) warnTempPassword(s session.Session) {
	if s.IsAuthenticated && s.IsTempPassword {
		pterm.Warning.Println("You are using a temporary password. Change it before continuing.")
	}
}

// Logout ends this session on the server (best effort) and locally.
func (a *App) Logout(ctx context.Context) error {
	a.markExplicitLogout()
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	pterm.Success.Println("Logged out")
	return nil
}

// markExplicitLogout tells the session watcher that the next loss of the
// session was requested by the user.
func (a *App) markExplicitLogout() {
	if a.isLoggedIn() {
		a.explicitLogout.Store(true)
	}
}

// LogoutAll ends every session of the user and the local one.
func (a *App) LogoutAll(ctx context.Context) error {
	a.markExplicitLogout()
	if err := a.authService.LogoutEverywhere(ctx); err != nil {
		return err
	}
	pterm.Success.Println("Logged out on all devices")
	return nil
}

// ForgetDevice logs out and removes every trace of the user from local
// state, including the persist flag.
func (a *App) ForgetDevice(ctx context.Context) error {
	if err := a.Logout(ctx); err != nil {
		return err
	}
	if a.device != nil {
		if err := a.device.ForgetDevice(ctx); err != nil {
			return fmt.Errorf("forget device: %w", err)
		}
	}
	pterm.Success.Println("This device no longer remembers you")
	return nil
}

// WhoAmI prints the identity carried by the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.store.Get()
	if !s.IsAuthenticated {
		pterm.Info.Println("Not logged in")
		return nil
	}

	rows := [][]string{
		{"Email", s.Email},
		{"Student no.", s.StudentNo},
		{"Roles", fmt.Sprint(s.Roles)},
	}
	if c, ok := token.Decode(s.AccessToken); ok && c.ExpiresAt > 0 {
		rows = append(rows, []string{"Token expires", c.ExpiresAtTime().Format(time.RFC1123)})
	}
	if p, err := a.authService.Persist(ctx); err == nil {
		rows = append(rows, []string{"Trusted device", fmt.Sprint(p)})
	}

	pterm.DefaultSection.Println("Session")
	if err := pterm.DefaultTable.WithData(rows).Render(); err != nil {
		return err
	}
	a.warnTempPassword(s)
	return nil
}

// SetPersist changes whether this device restores the session on start.
func (a *App) SetPersist(ctx context.Context, persist bool) error {
	if err := a.authService.SetPersist(ctx, persist); err != nil {
		return err
	}
	if persist {
		pterm.Success.Println("This device is trusted; the session will be restored on start")
	} else {
		pterm.Success.Println("This device is not trusted; you will log in on every start")
	}
	return nil
}
