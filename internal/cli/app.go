// Package cli is the diyctl terminal front end. Each subcommand mounts the
// matching screen controller and prints its state.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"diyclient/internal/auth"
	"diyclient/internal/detail"
	"diyclient/internal/engage"
	apperrors "diyclient/internal/errors"
	"diyclient/internal/feed"
	"diyclient/internal/gateway"
	"diyclient/internal/model"
	"diyclient/internal/profile"
	"diyclient/internal/projectform"
	"diyclient/internal/saved"
	"diyclient/internal/session"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage error")

// failure carries the message a screen would show next to the error that
// caused it.
type failure struct {
	msg string
	err error
}

func (f *failure) Error() string { return f.msg }
func (f *failure) Unwrap() error { return f.err }

func fail(msg string, err error) error {
	if msg == "" || err == nil {
		return err
	}
	return &failure{msg: msg, err: err}
}

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, args []string) error
}

// App dispatches diyctl subcommands.
type App struct {
	api      *gateway.Client
	sessions *session.Manager
	term     *Terminal
	out      io.Writer
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an App. The terminal must be the navigator the session manager
// was built with.
func New(api *gateway.Client, sessions *session.Manager, term *Terminal, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		api:      api,
		sessions: sessions,
		term:     term,
		out:      out,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *App) commands() []command {
	return []command{
		{"register", "-username U -email E -password P [-confirm P]", "create an account", a.register},
		{"login", "-email E -password P", "sign in", a.login},
		{"logout", "", "sign out", a.logout},
		{"whoami", "", "show the signed-in user", a.whoami},
		{"feed", "[-page N] [-category C] [-difficulty D] [-search S] [-sort F] [-order asc|desc]", "browse projects", a.feed},
		{"categories", "", "list categories", a.categories},
		{"stats", "", "show platform counters", a.stats},
		{"show", "ID", "show one project", a.show},
		{"like", "ID", "like or unlike a project", a.like},
		{"save", "ID", "save or unsave a project", a.save},
		{"comment", "ID TEXT...", "comment on a project", a.comment},
		{"delete", "[-yes] ID", "delete one of your projects", a.delete},
		{"create", "-f DRAFT.yaml", "create a project from a draft", a.create},
		{"edit", "(-f DRAFT.yaml | -dump) ID", "edit one of your projects", a.edit},
		{"publish", "-f DRAFTS.yaml", "create every project listed in a file", a.publish},
		{"profile", "[-page N] [-tab projects|recent|categories] [USER_ID]", "show a profile, yours by default", a.profile},
		{"saved", "", "list your saved projects", a.saved},
		{"unsave", "ID", "remove a project from your saved list", a.unsave},
	}
}

// Run executes the subcommand named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}
	name, rest := args[0], args[1:]
	switch name {
	case "help", "-h", "-help", "--help":
		a.usage()
		return nil
	}
	for _, cmd := range a.commands() {
		if cmd.name == name {
			err := cmd.run(ctx, rest)
			if errors.Is(err, ErrUsage) {
				fmt.Fprintln(a.out, err)
			}
			return err
		}
	}
	fmt.Fprintf(a.out, "unknown command %q\n\n", name)
	a.usage()
	return ErrUsage
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "usage: diyctl <command> [flags] [args]")
	fmt.Fprintln(a.out)
	tw := newTable(a.out)
	for _, cmd := range a.commands() {
		fmt.Fprintf(tw, "  %s %s\t%s\n", cmd.name, cmd.args, cmd.summary)
	}
	tw.Flush()
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string, positional int) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), ErrUsage)
	}
	if positional >= 0 && fs.NArg() != positional {
		return fmt.Errorf("%s: expected %d argument(s), got %d: %w", fs.Name(), positional, fs.NArg(), ErrUsage)
	}
	return nil
}

func (a *App) authController() *auth.Controller {
	return auth.NewController(a.api, a.sessions, a.term, a.term, a.logger)
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var form auth.RegisterForm
	fs.StringVar(&form.Username, "username", "", "username")
	fs.StringVar(&form.Email, "email", "", "email address")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation (defaults to -password)")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if form.ConfirmPassword == "" {
		form.ConfirmPassword = form.Password
	}
	c := a.authController()
	if err := c.Register(ctx, form); err != nil {
		return fail(c.State().Error, err)
	}
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	c := a.authController()
	if err := c.Login(ctx, *email, *password); err != nil {
		return fail(c.State().Error, err)
	}
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	if err := parse(a.flags("logout"), args, 0); err != nil {
		return err
	}
	return a.authController().Logout(ctx)
}

func (a *App) whoami(ctx context.Context, args []string) error {
	if err := parse(a.flags("whoami"), args, 0); err != nil {
		return err
	}
	sess, err := a.sessions.Require(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> (%s)\n", sess.User.Username, sess.User.Email, sess.User.ID)
	info, err := auth.InspectToken(sess.Token)
	if err != nil {
		a.logger.Debug("inspect token", "error", err)
		return nil
	}
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Fprintln(a.out, "Token has no expiry.")
	case info.Expired(a.now()):
		fmt.Fprintf(a.out, "Token expired at %s; sign in again.\n", info.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(a.out, "Token expires at %s.\n", info.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) feed(ctx context.Context, args []string) error {
	fs := a.flags("feed")
	f := feed.DefaultFilters()
	page := fs.Int("page", 1, "page number")
	fs.StringVar(&f.Category, "category", f.Category, "category or "+feed.All)
	fs.StringVar(&f.Difficulty, "difficulty", f.Difficulty, "difficulty or "+feed.All)
	fs.StringVar(&f.Search, "search", "", "text search")
	fs.StringVar(&f.SortBy, "sort", f.SortBy, "one of "+strings.Join(feed.SortOptions, ", "))
	fs.StringVar(&f.SortOrder, "order", f.SortOrder, "asc or desc")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	c := feed.NewController(a.api, a.sessions, a.term, a.logger)
	if err := c.Apply(ctx, f, *page); err != nil {
		return fail(c.State().Error, err)
	}
	s := c.State()
	if s.Empty() {
		fmt.Fprintln(a.out, "No projects found.")
		return nil
	}
	renderProjects(a.out, s.Projects)
	renderPagination(a.out, s.Pagination)
	return nil
}

func (a *App) categories(ctx context.Context, args []string) error {
	if err := parse(a.flags("categories"), args, 0); err != nil {
		return err
	}
	cats, err := a.api.Categories(ctx)
	if err != nil {
		return err
	}
	renderCategories(a.out, cats)
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	if err := parse(a.flags("stats"), args, 0); err != nil {
		return err
	}
	st, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	renderStats(a.out, *st)
	return nil
}

func (a *App) detailController() *detail.Controller {
	return detail.NewController(a.api, a.sessions, a.term, a.term, a.term, a.logger)
}

func (a *App) loadDetail(ctx context.Context, id string) (*detail.Controller, error) {
	c := a.detailController()
	if err := c.Load(ctx, id); err != nil {
		return nil, fail(c.State().Error, err)
	}
	return c, nil
}

func (a *App) show(ctx context.Context, args []string) error {
	fs := a.flags("show")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	c, err := a.loadDetail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	renderProject(a.out, c.State().Project)
	return nil
}

func (a *App) toggler() *engage.Toggler {
	return engage.NewToggler(a.api, a.sessions, a.term, a.logger)
}

func (a *App) like(ctx context.Context, args []string) error {
	fs := a.flags("like")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	p := model.Project{ID: fs.Arg(0)}
	patch, err := a.toggler().Like(ctx, p.ID)
	if err != nil {
		return err
	}
	patch(&p)
	verb := "Unliked"
	if p.IsLiked {
		verb = "Liked"
	}
	fmt.Fprintf(a.out, "%s (%d likes)\n", verb, p.LikeCount)
	return nil
}

func (a *App) save(ctx context.Context, args []string) error {
	fs := a.flags("save")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	p := model.Project{ID: fs.Arg(0)}
	patch, err := a.toggler().Save(ctx, p.ID)
	if err != nil {
		return err
	}
	patch(&p)
	if p.IsSaved {
		fmt.Fprintln(a.out, "Saved.")
	} else {
		fmt.Fprintln(a.out, "Removed from saved.")
	}
	return nil
}

func (a *App) comment(ctx context.Context, args []string) error {
	fs := a.flags("comment")
	if err := parse(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("comment: missing project id: %w", ErrUsage)
	}
	c, err := a.loadDetail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	added, err := c.AddComment(ctx, strings.Join(fs.Args()[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Comment added as %s (%d comments).\n", added.User.Username, c.State().Project.CommentCount)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	fs := a.flags("delete")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	c, err := a.loadDetail(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	a.term.SetAssumeYes(*yes)
	defer a.term.SetAssumeYes(false)

	err = c.Delete(ctx)
	if errors.Is(err, apperrors.ErrCancelled) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	return err
}

func (a *App) formController() *projectform.Controller {
	return projectform.NewController(a.api, a.sessions, a.term, a.logger)
}

func (a *App) submit(ctx context.Context, c *projectform.Controller, draft projectform.Form) (*model.Project, error) {
	if err := applyDraft(c, draft); err != nil {
		return nil, err
	}
	p, err := c.Submit(ctx)
	if err != nil {
		return nil, fail(c.State().Error, err)
	}
	return p, nil
}

func (a *App) create(ctx context.Context, args []string) error {
	fs := a.flags("create")
	path := fs.String("f", "", "YAML draft file")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("create: -f is required: %w", ErrUsage)
	}

	c := a.formController()
	if err := c.MountCreate(ctx); err != nil {
		return fail(c.State().Error, err)
	}
	draft, err := readDraft(*path, *c.State().Form)
	if err != nil {
		return err
	}
	p, err := a.submit(ctx, c, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created %q (%s).\n", p.Title, p.ID)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	fs := a.flags("edit")
	path := fs.String("f", "", "YAML draft file; keys it leaves out keep their current values")
	dump := fs.Bool("dump", false, "print the current form as a YAML draft")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	if *path == "" && !*dump {
		return fmt.Errorf("edit: one of -f or -dump is required: %w", ErrUsage)
	}

	c := a.formController()
	if err := c.MountEdit(ctx, fs.Arg(0)); err != nil {
		return fail(c.State().Error, err)
	}
	current := c.State().Form
	if *dump {
		return dumpDraft(a.out, current)
	}
	draft, err := readDraft(*path, *current)
	if err != nil {
		return err
	}
	p, err := a.submit(ctx, c, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %q.\n", p.Title)
	return nil
}

func (a *App) publish(ctx context.Context, args []string) error {
	fs := a.flags("publish")
	path := fs.String("f", "", "YAML file with a projects list")
	if err := parse(fs, args, 0); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("publish: -f is required: %w", ErrUsage)
	}

	nodes, err := readDraftFile(*path)
	if err != nil {
		return err
	}
	a.logger.Info("publishing drafts", "file", *path, "count", len(nodes))

	created, skipped := 0, 0
	for i, node := range nodes {
		c := a.formController()
		if err := c.MountCreate(ctx); err != nil {
			return fail(c.State().Error, err)
		}
		draft := *c.State().Form
		if err := node.Decode(&draft); err != nil {
			a.logger.Warn("skipping draft", "index", i, "error", err)
			skipped++
			continue
		}
		p, err := a.submit(ctx, c, draft)
		if err != nil {
			a.logger.Warn("skipping draft", "index", i, "title", draft.Title, "error", err)
			fmt.Fprintf(a.out, "skipped #%d %q: %v\n", i+1, draft.Title, err)
			skipped++
			continue
		}
		fmt.Fprintf(a.out, "created %q (%s)\n", p.Title, p.ID)
		created++
	}

	fmt.Fprintf(a.out, "Publish completed: %d created, %d skipped.\n", created, skipped)
	if skipped > 0 {
		return fmt.Errorf("%d of %d drafts were not published", skipped, len(nodes))
	}
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	fs := a.flags("profile")
	page := fs.Int("page", 1, "projects page")
	tab := fs.String("tab", string(profile.TabProjects), "projects, recent or categories")
	if err := parse(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("profile: at most one user id: %w", ErrUsage)
	}

	c := profile.NewController(a.api, a.sessions, a.term, a.term, a.term, a.logger)
	if err := c.SetTab(profile.Tab(*tab)); err != nil {
		return fmt.Errorf("profile: %v: %w", err, ErrUsage)
	}
	if err := c.Mount(ctx, fs.Arg(0)); err != nil {
		return fail(c.State().Error, err)
	}
	if *page > 1 {
		if err := c.LoadProjects(ctx, *page); err != nil {
			return fail(c.State().Error, err)
		}
	}
	renderProfile(a.out, c.State())
	return nil
}

func (a *App) savedController(ctx context.Context) (*saved.Controller, error) {
	c := saved.NewController(a.api, a.sessions, a.term, a.logger)
	if err := c.Mount(ctx); err != nil {
		return nil, fail(c.State().Error, err)
	}
	return c, nil
}

func (a *App) saved(ctx context.Context, args []string) error {
	if err := parse(a.flags("saved"), args, 0); err != nil {
		return err
	}
	c, err := a.savedController(ctx)
	if err != nil {
		return err
	}
	s := c.State()
	if s.Empty() {
		fmt.Fprintln(a.out, "You haven't saved any projects yet.")
		return nil
	}
	renderProjects(a.out, s.Projects)
	return nil
}

func (a *App) unsave(ctx context.Context, args []string) error {
	fs := a.flags("unsave")
	if err := parse(fs, args, 1); err != nil {
		return err
	}
	c, err := a.savedController(ctx)
	if err != nil {
		return err
	}
	id := fs.Arg(0)
	if _, ok := model.FindByID(c.State().Projects, id); !ok {
		return fmt.Errorf("project %s is not in your saved list", id)
	}
	if err := c.Unsave(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Removed from saved.")
	return nil
}
