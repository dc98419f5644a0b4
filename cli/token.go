// ABOUTME: GHL OAuth token CLI commands
// ABOUTME: Stores the initial token pair, shows expiry, and forces a refresh
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harperreed/hireos/ghl"
	"github.com/harperreed/hireos/models"
	"golang.org/x/term"
)

// stdin is read for secrets when they are not passed as flags.
var stdin io.Reader = os.Stdin

// GHLTokenSetCommand stores an access/refresh token pair obtained from the GHL
// authorization flow.
func GHLTokenSetCommand(ctx context.Context, svc *ghl.Service, args []string) error {
	fs := flag.NewFlagSet("token set", flag.ExitOnError)
	accessToken := fs.String("access-token", "", "OAuth access token (required)")
	refreshToken := fs.String("refresh-token", "", "OAuth refresh token (prompted when omitted)")
	expiresIn := fs.Duration("expires-in", 24*time.Hour, "Access token lifetime from now")
	locationID := fs.String("location-id", "", "GHL location ID")
	_ = fs.Parse(args)

	if *accessToken == "" {
		return fmt.Errorf("--access-token is required")
	}

	refresh := *refreshToken
	if refresh == "" {
		var err error
		if refresh, err = readSecret("Refresh token: "); err != nil {
			return err
		}
	}

	tok := &models.OAuthToken{
		UserType:     models.UserTypeLocation,
		AccessToken:  *accessToken,
		RefreshToken: refresh,
		LocationID:   *locationID,
		ExpiresAt:    time.Now().Add(*expiresIn),
	}
	if err := svc.StoreToken(ctx, tok); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Stored GHL token (expires %s)\n", tok.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// GHLTokenShowCommand prints token metadata without the secrets.
func GHLTokenShowCommand(ctx context.Context, svc *ghl.Service, _ []string) error {
	tokens, err := svc.TokenManager()
	if err != nil {
		return err
	}

	tok, err := tokens.Token(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, titleStyle.Render("GHL OAuth Token"))
	_, _ = fmt.Fprintf(stdout, "%s %s\n", labelStyle.Render("User type"), tok.UserType)
	if tok.LocationID != "" {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", labelStyle.Render("Location"), tok.LocationID)
	}

	expiry := tok.ExpiresAt.Local().Format(time.RFC1123)
	if remaining := time.Until(tok.ExpiresAt); remaining > ghl.DefaultExpiryMargin {
		expiry = okStyle.Render(expiry + fmt.Sprintf(" (in %s)", remaining.Round(time.Minute)))
	} else {
		expiry = warnStyle.Render(expiry + " (refreshes on next use)")
	}
	_, _ = fmt.Fprintf(stdout, "%s %s\n", labelStyle.Render("Expires"), expiry)
	_, _ = fmt.Fprintf(stdout, "%s %s\n", labelStyle.Render("Access token"), mask(tok.AccessToken))
	return nil
}

// GHLTokenRefreshCommand forces a refresh and persists the rotated pair.
func GHLTokenRefreshCommand(ctx context.Context, svc *ghl.Service, _ []string) error {
	tokens, err := svc.TokenManager()
	if err != nil {
		return err
	}

	access, err := tokens.RefreshAccessToken(ctx)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "✓ Refreshed GHL token %s\n", mask(access))
	return nil
}

func readSecret(prompt string) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(os.Stderr, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
