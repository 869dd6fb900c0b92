package ipc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/internal/ipc"
)

func TestFakeRequestPasswordReturnsQueuedValuesInOrder(t *testing.T) {
	f := ipc.NewFake("first", "second")

	pw, err := f.RequestPassword(context.Background(), "acct")
	require.NoError(t, err)
	require.Equal(t, "first", pw)

	pw, err = f.RequestPassword(context.Background(), "acct")
	require.NoError(t, err)
	require.Equal(t, "second", pw)

	pw, err = f.RequestPassword(context.Background(), "acct")
	require.NoError(t, err)
	require.Equal(t, "", pw)
}

func TestFakeDeliverDeviceCodeRecordsMessage(t *testing.T) {
	f := ipc.NewFake()
	auth := ipc.DeviceAuthorization{
		VerificationURI: "https://issuer.example/device",
		UserCode:        "ABCD-EFGH",
		ExpiresIn:       10 * time.Minute,
	}

	err := f.DeliverDeviceCode(context.Background(), "acct", auth)
	require.NoError(t, err)
	require.Len(t, f.Delivered, 1)
	require.Equal(t, ipc.KindAuthorizationRequiredWithMessage, f.Delivered[0].Kind)
	require.Equal(t, "acct", f.Delivered[0].AccountName)
	require.Contains(t, f.Delivered[0].Text, "ABCD-EFGH")
}

func TestFakeDeliverCodeRecordsMessage(t *testing.T) {
	f := ipc.NewFake()

	err := f.DeliverCode(context.Background(), "acct", "https://issuer.example/authorize?...")
	require.NoError(t, err)
	require.Len(t, f.Delivered, 1)
	require.Equal(t, ipc.KindAuthorizationRequiredWithMessage, f.Delivered[0].Kind)
	require.Contains(t, f.Delivered[0].Text, "https://issuer.example/authorize")
}

func TestDeviceAuthorizationTextPrefersCompleteURI(t *testing.T) {
	auth := ipc.DeviceAuthorization{
		VerificationURI:         "https://issuer.example/device",
		VerificationURIComplete: "https://issuer.example/device?user_code=ABCD-EFGH",
		UserCode:                "ABCD-EFGH",
	}
	require.Contains(t, auth.Text(), "https://issuer.example/device?user_code=ABCD-EFGH")
}
