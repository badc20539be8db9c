// internal/common/auth/gate_test.go
package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimcheck/internal/common/config"
	stderrors "claimcheck/internal/common/errors"
)

type fixedToken string

func (f fixedToken) Token() string { return string(f) }

func TestRequire(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Require(ctx, Static(true)))

	err := Require(ctx, Static(false))
	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeSessionRequired))

	err = Require(ctx, nil)
	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeSessionRequired))
}

func TestEnvToken(t *testing.T) {
	gate := EnvToken{Var: "CLAIMCHECK_TEST_TOKEN"}

	t.Setenv("CLAIMCHECK_TEST_TOKEN", "  ")
	assert.False(t, gate.SignedIn(context.Background()))

	t.Setenv("CLAIMCHECK_TEST_TOKEN", "abc")
	assert.True(t, gate.SignedIn(context.Background()))
	assert.Equal(t, "abc", gate.Token())
}

func TestFromConfig(t *testing.T) {
	g, err := FromConfig(config.AuthConfig{Mode: config.AuthModeStatic, SignedIn: true})
	require.NoError(t, err)
	assert.Equal(t, Static(true), g)

	g, err = FromConfig(config.AuthConfig{Mode: config.AuthModeEnv, TokenEnv: "X"})
	require.NoError(t, err)
	assert.Equal(t, EnvToken{Var: "X"}, g)

	g, err = FromConfig(config.AuthConfig{Mode: config.AuthModeIntrospection, IntrospectionURL: "http://idp"})
	require.NoError(t, err)
	assert.IsType(t, &IntrospectionGate{}, g)

	_, err = FromConfig(config.AuthConfig{Mode: "bogus"})
	assert.Error(t, err)
}

func TestIntrospectionGate(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client", r.PostForm.Get("client_id"))
		switch r.PostForm.Get("token") {
		case "good":
			w.Write([]byte(`{"active":true,"username":"ana"}`))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"active":false}`))
		}
	}))
	defer server.Close()

	tests := []struct {
		token string
		want  bool
	}{
		{"good", true},
		{"revoked", false},
		{"broken", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("token="+tt.token, func(t *testing.T) {
			gate := NewIntrospectionGate(server.URL, "client", "secret", fixedToken(tt.token))
			assert.Equal(t, tt.want, gate.SignedIn(context.Background()))
		})
	}
}

func TestIntrospectionGate_CachesActiveToken(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"active":true}`))
	}))
	defer server.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gate := NewIntrospectionGate(server.URL, "c", "s", fixedToken("good"))
	gate.now = func() time.Time { return now }

	assert.True(t, gate.SignedIn(context.Background()))
	assert.True(t, gate.SignedIn(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Minute)
	assert.True(t, gate.SignedIn(context.Background()))
	assert.Equal(t, int32(2), calls.Load())
}
