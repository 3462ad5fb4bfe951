package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/guard"
	"github.com/dmitrijs2005/pharmsim/internal/client/token"
	"github.com/dmitrijs2005/pharmsim/internal/common"
)

// ErrAccessDenied is returned when the session's roles do not admit a view.
var ErrAccessDenied = errors.New("access denied")

// Open renders the named view once the route guard admits the session. In
// the shell an unauthenticated user is sent through login and then back to
// the requested view.
func (a *App) Open(ctx context.Context, name string) error {
	v, ok := lookupView(name)
	if !ok {
		return fmt.Errorf("unknown view %q (available: %s)", name, strings.Join(viewNames(), ", "))
	}

	d := a.guard.Check(ctx, v.route)
	if d.State == guard.StateUnauthenticated && a.interactive {
		pterm.Info.Printfln("Log in to open %s", d.From)
		if err := a.Login(ctx); err != nil {
			return err
		}
		d = a.guard.Check(ctx, v.route)
	}

	switch d.State {
	case guard.StateAuthorized:
		return a.render(ctx, v)
	case guard.StateUnauthorized:
		return fmt.Errorf("%w: your roles do not allow %s", ErrAccessDenied, d.From)
	default:
		return fmt.Errorf("%w: log in to open %s", common.ErrNotLoggedIn, d.From)
	}
}

func (a *App) render(ctx context.Context, v view) error {
	if v.kind == "" {
		return a.renderHome()
	}

	recs, err := a.resources.List(ctx, v.kind)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		pterm.Info.Printfln("No %s found.", v.route.Name)
		return nil
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData(v.columns, recs)).Render()
}

func (a *App) renderHome() error {
	s := a.store.Get()
	pterm.DefaultSection.Printfln("Welcome, %s", displayName(s))

	var open []string
	claims := &token.Claims{Roles: s.Roles}
	for _, n := range viewNames() {
		if n != homeView.route.Name && claims.HasAnyRole(views[n].route.AllowedRoles) {
			open = append(open, n)
		}
	}
	pterm.Info.Printfln("Views available to you: %s", strings.Join(open, ", "))
	return nil
}

// tableData lays records out under an id column followed by columns.
func tableData(columns []string, recs []client.Record) pterm.TableData {
	data := pterm.TableData{append([]string{"ID"}, columns...)}
	for _, r := range recs {
		row := []string{r.ID()}
		for _, c := range columns {
			row = append(row, cell(r[c]))
		}
		data = append(data, row)
	}
	return data
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			parts = append(parts, cell(p))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if name, ok := x["name"]; ok {
			return cell(name)
		}
		return client.Record(x).ID()
	default:
		return fmt.Sprint(x)
	}
}
