// internal/common/auth/gate.go
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"

	"claimcheck/internal/common/config"
	stderrors "claimcheck/internal/common/errors"
)

// Gate reports whether the caller holds a session. Flows that need a signed-in
// user check it before doing any work; client components never see it.
type Gate interface {
	SignedIn(ctx context.Context) bool
}

// Static is a fixed answer, for tests and unattended runs.
type Static bool

func (s Static) SignedIn(context.Context) bool { return bool(s) }

// EnvToken is signed in when the named environment variable is non-blank.
type EnvToken struct {
	Var string
}

func (e EnvToken) SignedIn(context.Context) bool {
	return strings.TrimSpace(os.Getenv(e.Var)) != ""
}

// Token returns the session token, if any.
func (e EnvToken) Token() string {
	return strings.TrimSpace(os.Getenv(e.Var))
}

// Require returns SESSION_REQUIRED unless gate reports a session.
func Require(ctx context.Context, gate Gate) error {
	if gate == nil || !gate.SignedIn(ctx) {
		return stderrors.NewSessionRequiredError()
	}
	return nil
}

// FromConfig builds the gate selected by cfg.Mode.
func FromConfig(cfg config.AuthConfig) (Gate, error) {
	switch cfg.Mode {
	case config.AuthModeStatic:
		return Static(cfg.SignedIn), nil
	case config.AuthModeEnv, "":
		return EnvToken{Var: cfg.TokenEnv}, nil
	case config.AuthModeIntrospection:
		return NewIntrospectionGate(cfg.IntrospectionURL, cfg.ClientID, cfg.ClientSecret, EnvToken{Var: cfg.TokenEnv}), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
