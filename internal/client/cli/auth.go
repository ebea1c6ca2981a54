package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/careercompass/internal/client/models"
	"github.com/dmitrijs2005/careercompass/internal/client/oauth"
	"github.com/dmitrijs2005/careercompass/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Wiping the terminal buffer is best effort only: the request payloads take
// the password as a string, and that copy lives until it is collected.

// Register prompts for username, email and password and creates the
// account. It does not log in; the session notifier tells the user to do so.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.auth.Register(ctx, models.RegisterRequest{
		Username: username,
		Email:    email,
		Password: string(password),
	})
}

// Login prompts for credentials and logs in. Success and failure are
// reported by the session notifier.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.auth.Login(ctx, username, string(password))
}

// GoogleLogin prints the consent URL, reads back the code (or the whole
// redirect URL) and exchanges it through the backend.
func (a *App) GoogleLogin(ctx context.Context) error {
	var clientID, redirectURL string
	if a.config != nil {
		clientID, redirectURL = a.config.GoogleClientID, a.config.GoogleRedirectURL
	}

	flow, err := oauth.NewFlow(clientID, redirectURL)
	if err != nil {
		fmt.Fprintln(a.out, "Google login is not configured (set CAREER_GOOGLE_CLIENT_ID)")
		return err
	}

	fmt.Fprintln(a.out, "Open this URL in your browser and sign in:")
	fmt.Fprintln(a.out, flow.AuthCodeURL())

	input, err := getSimpleText(a.reader, "Paste the code or the URL you were redirected to", a.out)
	if err != nil {
		return err
	}
	code, err := flow.ExtractCode(input)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
		return err
	}

	return a.auth.GoogleLogin(ctx, code)
}

// Logout always succeeds.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	s := a.auth.Session()
	if s.User == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s) <%s>\n", s.User.DisplayName(), s.User.Username, s.User.Email)
	return nil
}
