package ipc

import (
	"context"
	"sync"
)

// Fake is an in-memory PromptChannel for tests: passwords to hand back from
// RequestPassword are queued in advance, and every delivered message is
// recorded for assertions.
type Fake struct {
	mu         sync.Mutex
	passwords  []string
	Delivered  []Message
	DeviceAuth []DeviceAuthorization
}

// NewFake returns a Fake that answers successive RequestPassword calls with
// passwords in order, then "" once exhausted.
func NewFake(passwords ...string) *Fake {
	return &Fake{passwords: passwords}
}

func (f *Fake) RequestPassword(ctx context.Context, accountName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.passwords) == 0 {
		return "", nil
	}
	pw := f.passwords[0]
	f.passwords = f.passwords[1:]
	return pw, nil
}

func (f *Fake) DeliverCode(ctx context.Context, accountName, authorizationURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Delivered = append(f.Delivered, Message{
		Kind:        KindAuthorizationRequiredWithMessage,
		AccountName: accountName,
		Text:        "Visit " + authorizationURL + " to finish signing in.",
	})
	return nil
}

func (f *Fake) DeliverDeviceCode(ctx context.Context, accountName string, auth DeviceAuthorization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Delivered = append(f.Delivered, Message{
		Kind:        KindAuthorizationRequiredWithMessage,
		AccountName: accountName,
		Text:        auth.Text(),
	})
	f.DeviceAuth = append(f.DeviceAuth, auth)
	return nil
}
