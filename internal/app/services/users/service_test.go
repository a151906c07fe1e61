package users

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/DariaKalinichenko/Yatube/internal/app/storage/memory"
	svcerrors "github.com/DariaKalinichenko/Yatube/internal/errors"
	"github.com/DariaKalinichenko/Yatube/pkg/logger"
)

func newService() *Service {
	return New(memory.New(), logger.NewDiscard(), WithBcryptCost(bcrypt.MinCost))
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	created, err := svc.Register(ctx, Registration{Username: "leo", Email: "leo@example.com", FirstName: "Leo", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.ID == 0 || created.PasswordHash == "secret-pass" {
		t.Fatalf("unexpected user: %+v", created)
	}

	got, err := svc.Authenticate(ctx, "leo", "secret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, got.ID)
	}

	if _, err := svc.Authenticate(ctx, "leo", "wrong"); !svcerrors.IsCode(err, svcerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "secret-pass"); !svcerrors.IsCode(err, svcerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	if _, err := svc.Register(ctx, Registration{Username: "leo", Password: "secret-pass"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, Registration{Username: "leo", Password: "other-pass"})
	if !svcerrors.IsCode(err, svcerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLookups(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	created, _ := svc.Register(ctx, Registration{Username: "leo", Password: "secret-pass"})

	if _, err := svc.Get(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.GetByUsername(ctx, "leo"); err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if _, err := svc.GetByUsername(ctx, "ghost"); !svcerrors.IsCode(err, svcerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Get(ctx, 99); !svcerrors.IsCode(err, svcerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
}
