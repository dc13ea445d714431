package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tasknest/tasknest-backend/internal/auth"
)

func newUserService() (*UserService, *fakeUsers, *fakeSessions) {
	users := newFakeUsers()
	sessions := newFakeSessions()
	tm := auth.NewTokenManager("test-secret", "tasknest-test", time.Hour)
	return NewUserService(users, sessions, tm), users, sessions
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Username:        "alice",
		Password:        "Sup3rsecret",
		PasswordConfirm: "Sup3rsecret",
		FirstName:       "Alice",
		LastName:        "Smith",
		Email:           "alice@example.com",
	}
}

func TestRegister(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	u, token, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	if token == "" {
		t.Error("no token issued")
	}
	if u.Username != "alice" || u.FullName() != "Alice Smith" {
		t.Errorf("user = %q / %q", u.Username, u.FullName())
	}
	if u.PasswordHash == "Sup3rsecret" {
		t.Error("password stored in the clear")
	}

	// The token authenticates immediately.
	got, _, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID {
		t.Errorf("authenticated as %q, want %q", got.ID, u.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		wantField string
	}{
		{"weak password", func(in *RegisterInput) { in.Password, in.PasswordConfirm = "short", "short" }, "password"},
		{"password mismatch", func(in *RegisterInput) { in.PasswordConfirm = "Other3rsecret" }, "password_confirm"},
		{"bad username chars", func(in *RegisterInput) { in.Username = "al ice!" }, "username"},
		{"missing first name", func(in *RegisterInput) { in.FirstName = " " }, "first_name"},
		{"missing last name", func(in *RegisterInput) { in.LastName = "" }, "last_name"},
		{"bad email", func(in *RegisterInput) { in.Email = "nope" }, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newUserService()
			in := validRegistration()
			tt.mutate(&in)
			_, _, err := svc.Register(context.Background(), in)
			errs := fieldErrs(t, err)
			if !hasField(errs, tt.wantField) {
				t.Errorf("errors %v missing field %q", errs, tt.wantField)
			}
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, _, err := svc.Register(ctx, dup)
	if !hasField(fieldErrs(t, err), "username") {
		t.Errorf("duplicate username not reported: %v", err)
	}

	dup = validRegistration()
	dup.Username = "bob"
	_, _, err = svc.Register(ctx, dup)
	if !hasField(fieldErrs(t, err), "email") {
		t.Errorf("duplicate email not reported: %v", err)
	}
}

func TestRegisterEmailOptional(t *testing.T) {
	svc, _, _ := newUserService()
	in := validRegistration()
	in.Email = ""
	if _, _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("registration without email failed: %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, users, _ := newUserService()
	ctx := context.Background()
	if _, _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}

	t.Run("success stamps last_login", func(t *testing.T) {
		u, token, err := svc.Login(ctx, "alice", "Sup3rsecret")
		if err != nil {
			t.Fatal(err)
		}
		if token == "" {
			t.Error("no token issued")
		}
		if u.LastLogin == nil {
			t.Error("last_login not stamped")
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody", "Sup3rsecret")
		var authFail *AuthenticationError
		if !errors.As(err, &authFail) || !hasField(authFail.Fields, "username") {
			t.Errorf("err = %v, want username-level AuthenticationError", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice", "Wr0ngsecret")
		var authFail *AuthenticationError
		if !errors.As(err, &authFail) || !hasField(authFail.Fields, "password") {
			t.Errorf("err = %v, want password-level AuthenticationError", err)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		u, _ := users.GetByUsername(ctx, "alice")
		u.IsActive = false
		users.mu.Lock()
		users.users[u.ID] = u
		users.mu.Unlock()
		defer func() {
			u.IsActive = true
			users.mu.Lock()
			users.users[u.ID] = u
			users.mu.Unlock()
		}()

		_, _, err := svc.Login(ctx, "alice", "Sup3rsecret")
		var authFail *AuthenticationError
		if !errors.As(err, &authFail) {
			t.Errorf("err = %v, want AuthenticationError", err)
		}
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	_, token, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	_, sessionID, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, sessionID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("token still valid after logout: %v", err)
	}
	// Logging out twice fails: the session is gone.
	if err := svc.Logout(ctx, sessionID); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("second logout: err = %v, want ErrInvalidSession", err)
	}
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _, _ := newUserService()
	if _, _, err := svc.Authenticate(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
}

func TestUpdateProfileUsernameCooldown(t *testing.T) {
	ctx := context.Background()
	name := func(s string) *string { return &s }

	t.Run("first change allowed and stamped", func(t *testing.T) {
		svc, users, _ := newUserService()
		u, _, err := svc.Register(ctx, validRegistration())
		if err != nil {
			t.Fatal(err)
		}

		got, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_2")})
		if err != nil {
			t.Fatal(err)
		}
		if got.Username != "alice_2" {
			t.Errorf("username = %q", got.Username)
		}
		stored, _ := users.GetByID(ctx, u.ID)
		if stored.LastUsernameChange == nil {
			t.Error("last_username_change not stamped")
		}
	})

	t.Run("second change within cooldown locked", func(t *testing.T) {
		svc, _, _ := newUserService()
		u, _, err := svc.Register(ctx, validRegistration())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_2")}); err != nil {
			t.Fatal(err)
		}

		_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_3")})
		var locked *UsernameLockedError
		if !errors.As(err, &locked) {
			t.Fatalf("err = %v, want UsernameLockedError", err)
		}
		if locked.DaysLeft != 14 {
			t.Errorf("DaysLeft = %d, want 14", locked.DaysLeft)
		}
	})

	t.Run("change allowed at exactly fourteen days", func(t *testing.T) {
		svc, users, _ := newUserService()
		u, _, err := svc.Register(ctx, validRegistration())
		if err != nil {
			t.Fatal(err)
		}
		past := time.Now().Add(-14 * 24 * time.Hour)
		users.mu.Lock()
		stored := users.users[u.ID]
		stored.LastUsernameChange = &past
		users.users[u.ID] = stored
		users.mu.Unlock()

		if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_2")}); err != nil {
			t.Fatalf("change at exactly 14 days rejected: %v", err)
		}
	})

	t.Run("same value is not a change", func(t *testing.T) {
		svc, _, _ := newUserService()
		u, _, err := svc.Register(ctx, validRegistration())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_2")}); err != nil {
			t.Fatal(err)
		}
		// Re-sending the current username during cooldown must pass.
		got, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("alice_2")})
		if err != nil {
			t.Fatalf("no-op username update rejected: %v", err)
		}
		if got.Username != "alice_2" {
			t.Errorf("username = %q", got.Username)
		}
	})
}

func TestUpdateProfileUsernameRules(t *testing.T) {
	ctx := context.Background()
	name := func(s string) *string { return &s }

	svc, _, _ := newUserService()
	u, _, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	other := validRegistration()
	other.Username = "bob"
	other.Email = "bob@example.com"
	if _, _, err := svc.Register(ctx, other); err != nil {
		t.Fatal(err)
	}

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("bob")})
	if !hasField(fieldErrs(t, err), "username") {
		t.Errorf("duplicate username not reported: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Username: name("bad name")})
	if !hasField(fieldErrs(t, err), "username") {
		t.Errorf("invalid charset not reported: %v", err)
	}
}

func TestUpdateProfileEmail(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }

	svc, _, _ := newUserService()
	u, _, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	other := validRegistration()
	other.Username = "bob"
	other.Email = "bob@example.com"
	if _, _, err := svc.Register(ctx, other); err != nil {
		t.Fatal(err)
	}

	// Unchanged email skips uniqueness checks entirely.
	if _, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Email: str("alice@example.com")}); err != nil {
		t.Errorf("no-op email update rejected: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Email: str("bob@example.com")})
	if !hasField(fieldErrs(t, err), "email") {
		t.Errorf("duplicate email not reported: %v", err)
	}

	got, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{Email: str("new@example.com")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Email != "new@example.com" {
		t.Errorf("email = %q", got.Email)
	}
}

func TestUpdateProfileNames(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }

	svc, _, _ := newUserService()
	u, _, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{
		FirstName: str("  Alicia "),
		LastName:  str("Keys"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName() != "Alicia Keys" {
		t.Errorf("full name = %q", got.FullName())
	}

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileUpdateInput{FirstName: str("  ")})
	if !hasField(fieldErrs(t, err), "first_name") {
		t.Errorf("blank first name not reported: %v", err)
	}
}

func TestTokensAreOpaquePerSession(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	_, t1, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}
	_, t2, err := svc.Login(ctx, "alice", "Sup3rsecret")
	if err != nil {
		t.Fatal(err)
	}
	if t1 == t2 {
		t.Error("distinct sessions produced identical tokens")
	}
	if strings.TrimSpace(t1) == "" || strings.TrimSpace(t2) == "" {
		t.Error("empty token issued")
	}
}
