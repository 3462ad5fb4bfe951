package cli

import (
	"sort"

	"github.com/dmitrijs2005/pharmsim/internal/client/client"
	"github.com/dmitrijs2005/pharmsim/internal/client/guard"
)

const (
	roleStudent = "student"
	roleStaff   = "staff"
	roleAdmin   = "admin"
)

// view is a guarded screen. Views without a kind render the home summary.
type view struct {
	route   guard.Route
	kind    client.Kind
	columns []string
}

var homeView = view{
	route: guard.Route{Name: "home", AllowedRoles: []string{roleStudent, roleStaff, roleAdmin}},
}

var views = map[string]view{
	"home": homeView,
	"scenarios": {
		route:   guard.Route{Name: "scenarios", AllowedRoles: []string{roleStudent, roleStaff, roleAdmin}},
		kind:    client.KindScenario,
		columns: []string{"name", "description"},
	},
	"transcripts": {
		route:   guard.Route{Name: "transcripts", AllowedRoles: []string{roleStudent, roleStaff, roleAdmin}},
		kind:    client.KindTranscript,
		columns: []string{"scenario", "student", "createdAt"},
	},
	"models": {
		route:   guard.Route{Name: "models", AllowedRoles: []string{roleStaff, roleAdmin}},
		kind:    client.KindModel,
		columns: []string{"name", "gender"},
	},
	"voices": {
		route:   guard.Route{Name: "voices", AllowedRoles: []string{roleStaff, roleAdmin}},
		kind:    client.KindVoice,
		columns: []string{"name", "language"},
	},
	"issues": {
		route:   guard.Route{Name: "issues", AllowedRoles: []string{roleStaff, roleAdmin}},
		kind:    client.KindIssue,
		columns: []string{"title", "status"},
	},
	"users": {
		route:   guard.Route{Name: "users", AllowedRoles: []string{roleAdmin}},
		kind:    client.KindUser,
		columns: []string{"email", "studentNo", "roles"},
	},
}

func lookupView(name string) (view, bool) {
	v, ok := views[name]
	return v, ok
}

func viewNames() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
