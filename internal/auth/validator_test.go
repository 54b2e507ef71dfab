package auth

import (
	"testing"

	"fde/internal/deployconfig"

	"github.com/stretchr/testify/require"
)

func cfgWith(envs map[string]*deployconfig.Environment, topToken string) *deployconfig.ResolvedConfig {
	return &deployconfig.ResolvedConfig{Token: topToken, Environments: envs}
}

func TestValidateMissingEnv(t *testing.T) {
	r := Validate("", "tok", cfgWith(nil, "x"))
	require.False(t, r.Valid)
	require.Equal(t, "missing environment", r.Error)
}

func TestValidateUnknownEnv(t *testing.T) {
	r := Validate("prod", "tok", cfgWith(map[string]*deployconfig.Environment{}, "x"))
	require.False(t, r.Valid)
	require.Equal(t, "unknown environment", r.Error)
}

func TestValidateNoTokenConfigured(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod"}}
	r := Validate("prod", "tok", cfgWith(envs, ""))
	require.False(t, r.Valid)
	require.Equal(t, "no token configured for environment", r.Error)
}

func TestValidateMissingAuthToken(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod", Token: "secret"}}
	r := Validate("prod", "", cfgWith(envs, ""))
	require.False(t, r.Valid)
	require.Equal(t, "missing authorization token", r.Error)
}

func TestValidateWrongToken(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod", Token: "secret"}}
	r := Validate("prod", "nope", cfgWith(envs, ""))
	require.False(t, r.Valid)
	require.Equal(t, "invalid token", r.Error)
}

func TestValidateSuccessEnvToken(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod", Token: "secret"}}
	r := Validate("prod", "secret", cfgWith(envs, ""))
	require.True(t, r.Valid)
	require.NotNil(t, r.Env)
}

func TestValidateSuccessTopLevelFallback(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod"}}
	r := Validate("prod", "top-secret", cfgWith(envs, "top-secret"))
	require.True(t, r.Valid)
}

func TestValidateDifferentLengthTokensRejected(t *testing.T) {
	envs := map[string]*deployconfig.Environment{"prod": {Name: "prod", Token: "a-much-longer-secret"}}
	r := Validate("prod", "short", cfgWith(envs, ""))
	require.False(t, r.Valid)
	require.Equal(t, "invalid token", r.Error)
}
