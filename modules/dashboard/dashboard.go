// Package dashboard is the signed-in landing view. It only reads the session
// user and never calls the API itself.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/guarzo/talentiq/common"
	"github.com/guarzo/talentiq/common/model"
	"github.com/guarzo/talentiq/modules/session"
)

const layout = `TalentIQ Dashboard
==================
Welcome back, {{name}}!
Signed in as {{email}} ({{role}})

Active jobs      {{active_jobs}}
Applications     {{applications}}
Interviews       {{interviews}}
Match rate       {{match_rate}}
`

// Stats are the numbers shown on the dashboard. The backend has no stats
// endpoint yet, so New fills in PlaceholderStats.
type Stats struct {
	ActiveJobs   int
	Applications int
	Interviews   int
	MatchRate    int // percent
}

var PlaceholderStats = Stats{ActiveJobs: 12, Applications: 48, Interviews: 5, MatchRate: 89}

// NavigateFunc moves the presentation layer to path.
type NavigateFunc func(path string)

// Dashboard renders the view for the user stored at mount time.
type Dashboard struct {
	store    common.Store
	navigate NavigateFunc
	user     *model.User
	stats    Stats
	tmpl     *fasttemplate.Template
}

// New mounts the dashboard. The session user is parsed once here; a missing
// user is not an error and renders as a guest.
func New(store common.Store, navigate NavigateFunc) (*Dashboard, error) {
	tmpl, err := fasttemplate.NewTemplate(layout, "{{", "}}")
	if err != nil {
		return nil, err
	}

	u, err := session.LoadUser(store)
	if err != nil && !errors.Is(err, common.ErrNoUser) {
		return nil, err
	}

	return &Dashboard{
		store:    store,
		navigate: navigate,
		user:     u,
		stats:    PlaceholderStats,
		tmpl:     tmpl,
	}, nil
}

// User is the user parsed at mount, or nil.
func (d *Dashboard) User() *model.User {
	return d.user
}

// Render writes the dashboard to w.
func (d *Dashboard) Render(w io.Writer) error {
	args := map[string]string{
		"name":         "guest",
		"email":        "-",
		"role":         "-",
		"active_jobs":  fmt.Sprint(d.stats.ActiveJobs),
		"applications": fmt.Sprint(d.stats.Applications),
		"interviews":   fmt.Sprint(d.stats.Interviews),
		"match_rate":   fmt.Sprintf("%d%%", d.stats.MatchRate),
	}
	if d.user != nil {
		args["name"] = d.user.Name
		args["email"] = d.user.Email
		args["role"] = d.user.Role
	}

	_, err := d.tmpl.ExecuteFunc(w, func(w io.Writer, tag string) (int, error) {
		value, ok := args[strings.TrimSpace(tag)]
		if !ok {
			return 0, fmt.Errorf("missing argument %s", tag)
		}
		return w.Write([]byte(value))
	})
	return err
}

// Logout clears the credential pair and session user, then navigates to the
// login page. Navigation happens even if the store fails.
func (d *Dashboard) Logout(ctx context.Context) error {
	err := d.store.Delete(common.SessionKeys...)
	if err != nil {
		common.LoggerFrom(ctx, nil).Error("dashboard logout: clearing session failed", slog.String("err", err.Error()))
		err = fmt.Errorf("clearing session: %w", err)
	}
	d.user = nil
	if d.navigate != nil {
		d.navigate(session.LoginPath)
	}
	return err
}
