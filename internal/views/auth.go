package views

import (
	"context"
	"strings"

	"graphlearn/internal/domain"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"

	"go.uber.org/zap"
)

const errorMessageID = "error-message"

// Login initializes /login.
func (v *Views) Login(ctx context.Context, view router.ViewContext) {
	page := view.Page
	busy := false
	page.On("login-form", ui.EventSubmit, func(ctx context.Context, ev ui.Event) {
		if busy {
			return
		}
		creds := domain.Credentials{
			Username: strings.TrimSpace(ev.Form["username"]),
			Password: ev.Form["password"],
		}
		if creds.Username == "" || creds.Password == "" {
			showError(page, errorMessageID, "Username and password are required.")
			return
		}
		busy = true
		page.Hide(errorMessageID)

		var token *domain.Token
		v.deps.Loop.Go(ctx, func(ctx context.Context) error {
			t, err := v.deps.API.Login(ctx, creds)
			token = t
			return err
		}, func(err error) {
			busy = false
			if err == nil {
				err = v.deps.Session.Login(ctx, token.AccessToken)
			}
			if err != nil {
				v.deps.Logger.Info("Login failed", zap.String("username", creds.Username), zap.Error(err))
				showError(page, errorMessageID, ui.Present(err))
				return
			}
			v.deps.Navigator.Navigate(ctx, "/")
		})
	})
}

// Register initializes /register. A successful registration signs the new
// user in.
func (v *Views) Register(ctx context.Context, view router.ViewContext) {
	page := view.Page
	busy := false
	page.On("register-form", ui.EventSubmit, func(ctx context.Context, ev ui.Event) {
		if busy {
			return
		}
		creds := domain.Credentials{
			Username: strings.TrimSpace(ev.Form["username"]),
			Password: ev.Form["password"],
		}
		if err := v.checkCredentials(creds); err != nil {
			showError(page, errorMessageID, ui.Present(err))
			return
		}
		busy = true
		page.Hide(errorMessageID)

		var token *domain.Token
		v.deps.Loop.Go(ctx, func(ctx context.Context) error {
			if _, err := v.deps.API.Register(ctx, creds); err != nil {
				return err
			}
			t, err := v.deps.API.Login(ctx, creds)
			token = t
			return err
		}, func(err error) {
			busy = false
			if err == nil {
				err = v.deps.Session.Login(ctx, token.AccessToken)
			}
			if err != nil {
				v.deps.Logger.Info("Registration failed", zap.String("username", creds.Username), zap.Error(err))
				showError(page, errorMessageID, ui.Present(err))
				return
			}
			v.deps.Navigator.Navigate(ctx, "/")
		})
	})
}

func (v *Views) checkCredentials(creds domain.Credentials) error {
	if err := v.validate.Var(creds.Username, "required,min=3,max=50"); err != nil {
		return pkgerrors.NewValidationError("Username must be between 3 and 50 characters.")
	}
	if err := v.validate.Var(creds.Password, "required,min=6"); err != nil {
		return pkgerrors.NewValidationError("Password must be at least 6 characters.")
	}
	return nil
}
