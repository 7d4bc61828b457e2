package views

import (
	"context"

	"graphlearn/internal/router"
	"graphlearn/internal/session"
	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

// Nav is the navigation bar. It lives outside the view container and follows
// session changes.
type Nav struct {
	page      *ui.Page
	session   SessionStore
	navigator router.Navigator
	logger    *zap.Logger
}

// NewNav parses the navigation bar markup.
func NewNav(markup string, store SessionStore, navigator router.Navigator, logger *zap.Logger) (*Nav, error) {
	page, err := ui.ParsePage("nav", markup)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Nav{page: page, session: store, navigator: navigator, logger: logger}
	for id, path := range map[string]string{
		"nav-home-link":         "/",
		"nav-graphs-link":       "/graphs",
		"nav-create-graph-link": "/graphs/create",
	} {
		path := path
		page.On(id, ui.EventClick, func(ctx context.Context, _ ui.Event) {
			n.navigator.Navigate(ctx, path)
		})
	}
	return n, nil
}

// Page returns the navigation bar page.
func (n *Nav) Page() *ui.Page {
	return n.page
}

// Follow re-renders the bar whenever the session changes.
func (n *Nav) Follow(store *session.Store) {
	store.Subscribe(func(_ session.Session, ok bool) {
		n.Render(ok)
	})
}

// Refresh renders the bar for the current session.
func (n *Nav) Refresh(ctx context.Context) {
	n.Render(n.session.IsAuthenticated(ctx))
}

// Render shows the profile and logout links to signed-in users and the login
// and register links to everyone else.
func (n *Nav) Render(authenticated bool) {
	if authenticated {
		n.page.SetHTML("nav-auth-links",
			`<li class="nav-item"><a id="nav-profile-link" class="nav-link" href="/profile">Profile</a></li>`+
				`<li class="nav-item"><a id="nav-logout-link" class="nav-link" href="#">Log out</a></li>`)
		n.page.Show("nav-create-graph-link")
		n.page.On("nav-profile-link", ui.EventClick, func(ctx context.Context, _ ui.Event) {
			n.navigator.Navigate(ctx, "/profile")
		})
		n.page.On("nav-logout-link", ui.EventClick, func(ctx context.Context, _ ui.Event) {
			n.logout(ctx)
		})
		return
	}

	n.page.SetHTML("nav-auth-links",
		`<li class="nav-item"><a id="nav-login-link" class="nav-link" href="/login">Log in</a></li>`+
			`<li class="nav-item"><a id="nav-register-link" class="nav-link" href="/register">Register</a></li>`)
	n.page.Hide("nav-create-graph-link")
	n.page.On("nav-login-link", ui.EventClick, func(ctx context.Context, _ ui.Event) {
		n.navigator.Navigate(ctx, "/login")
	})
	n.page.On("nav-register-link", ui.EventClick, func(ctx context.Context, _ ui.Event) {
		n.navigator.Navigate(ctx, "/register")
	})
}

func (n *Nav) logout(ctx context.Context) {
	if err := n.session.Logout(ctx); err != nil {
		n.logger.Error("Failed to clear session", zap.Error(err))
	}
	n.navigator.Navigate(ctx, "/")
}
