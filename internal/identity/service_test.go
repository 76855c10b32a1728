package identity

import (
	"context"
	"testing"
)

type fakeRepo struct {
	users map[string]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]User)}
}

func (f *fakeRepo) Insert(_ context.Context, u User) error {
	if _, ok := f.users[u.Username]; ok {
		return ErrDuplicateUsername
	}
	f.users[u.Username] = u
	return nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (User, error) {
	u, ok := f.users[username]
	if !ok {
		return User{}, ErrUnknownUser
	}
	return u, nil
}

func TestCreateAccountAndVerify(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	user, err := svc.CreateAccount(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if string(user.PasswordHash) == "admin123" {
		t.Fatalf("password must not be stored in the clear")
	}

	ok, err := svc.Verify(ctx, "admin", "admin123")
	if err != nil || !ok {
		t.Fatalf("expected correct password to verify, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify(ctx, "admin", "wrong")
	if err != nil || ok {
		t.Fatalf("expected wrong password to fail, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Verify(ctx, "nosuchuser", "x")
	if err != nil || ok {
		t.Fatalf("expected unknown user to be false without error, ok=%v err=%v", ok, err)
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "admin", "one"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateAccount(ctx, "admin", "two"); err != ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestCreateAccountRequiresCredentials(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.CreateAccount(ctx, "", "pw"); err == nil {
		t.Fatalf("expected empty username to error")
	}
	if _, err := svc.CreateAccount(ctx, "user", ""); err == nil {
		t.Fatalf("expected empty password to error")
	}
	if _, err := svc.CreateAccount(ctx, "  ", "pw"); err == nil {
		t.Fatalf("expected blank username to error")
	}
}
