package account_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/internal/account"
)

func TestCachedTokensPresentRequiresBothFields(t *testing.T) {
	now := time.Now()

	require.False(t, (account.CachedTokens{}).Present(now))
	require.False(t, account.CachedTokens{AccessToken: "AT1"}.Present(now))
	require.False(t, account.CachedTokens{AccessToken: "AT1", ExpiresAt: now.Add(-time.Second)}.Present(now))
	require.True(t, account.CachedTokens{AccessToken: "AT1", ExpiresAt: now.Add(time.Second)}.Present(now))
}

func TestPasswordLifetimeWipesOnExpiry(t *testing.T) {
	now := time.Now()
	a := account.New(account.Identity{Name: "acct"})
	a.Credentials.Username = "alice"
	a.Credentials.Password = account.SensitiveString("hunter2")
	a.Lifetime.HasPassword = true
	a.Lifetime.PasswordDeath = now.Add(2 * time.Second)

	pw, ok := a.Password(now.Add(1 * time.Second))
	require.True(t, ok)
	require.Equal(t, "hunter2", pw.String())

	pw, ok = a.Password(now.Add(3 * time.Second))
	require.False(t, ok)
	require.False(t, pw.Present())
	require.False(t, a.HasCredentials(now.Add(3*time.Second)))
}

func TestHasCredentialsRequiresUsernameAndPassword(t *testing.T) {
	now := time.Now()
	a := account.New(account.Identity{Name: "acct"})
	require.False(t, a.HasCredentials(now))

	a.Credentials.Username = "alice"
	require.False(t, a.HasCredentials(now))

	a.Credentials.Password = account.SensitiveString("hunter2")
	a.Lifetime.HasPassword = true
	require.True(t, a.HasCredentials(now))
}

func TestDeadChecksDeathTTL(t *testing.T) {
	now := time.Now()
	a := account.New(account.Identity{Name: "acct"})
	require.False(t, a.Dead(now))

	a.Lifetime.Death = now.Add(-time.Second)
	require.True(t, a.Dead(now))
}

func TestEffectiveFlowOrderPrecedence(t *testing.T) {
	explicit, _ := account.NewFlowOrder(account.FlowDevice)
	configured, _ := account.NewFlowOrder(account.FlowPassword, account.FlowRefresh)

	require.Equal(t, explicit, account.EffectiveFlowOrder(explicit, configured))
	require.Equal(t, configured, account.EffectiveFlowOrder(nil, configured))
	require.Equal(t, account.DefaultFlowOrder, account.EffectiveFlowOrder(nil, nil))
}

func TestNewFlowOrderRejectsDuplicatesAndUnknown(t *testing.T) {
	_, err := account.NewFlowOrder(account.FlowRefresh, account.FlowRefresh)
	require.Error(t, err)

	_, err = account.NewFlowOrder(account.Flow("bogus"))
	require.Error(t, err)
}

func TestFlowOrderUnmarshalAcceptsBareNameOrArray(t *testing.T) {
	var bare account.FlowOrder
	require.NoError(t, bare.UnmarshalJSON([]byte(`"device"`)))
	require.Equal(t, account.FlowOrder{account.FlowDevice}, bare)

	var arr account.FlowOrder
	require.NoError(t, arr.UnmarshalJSON([]byte(`["refresh","password"]`)))
	require.Equal(t, account.FlowOrder{account.FlowRefresh, account.FlowPassword}, arr)

	var dup account.FlowOrder
	require.Error(t, dup.UnmarshalJSON([]byte(`["refresh","refresh"]`)))
}

func TestWipeClearsSensitiveFields(t *testing.T) {
	a := account.New(account.Identity{Name: "acct"})
	a.Tokens.RefreshToken = account.SensitiveString("RT1")
	a.Credentials.Password = account.SensitiveString("hunter2")
	a.Lifetime.HasPassword = true

	a.Wipe()

	require.False(t, a.Tokens.RefreshToken.Present())
	require.False(t, a.Credentials.Password.Present())
	require.False(t, a.Lifetime.HasPassword)
}
