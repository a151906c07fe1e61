package follows

import (
	"context"
	"testing"

	"github.com/DariaKalinichenko/Yatube/internal/app/domain/user"
	"github.com/DariaKalinichenko/Yatube/internal/app/storage/memory"
)

func TestFollowLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	reader, _ := store.CreateUser(ctx, user.User{Username: "reader"})
	author, _ := store.CreateUser(ctx, user.User{Username: "author"})

	svc := New(store, nil)

	if err := svc.Follow(ctx, reader, author); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := svc.Follow(ctx, reader, author); err != nil {
		t.Fatalf("repeat follow: %v", err)
	}
	ok, err := svc.IsFollowing(ctx, reader.ID, author.ID)
	if err != nil || !ok {
		t.Fatalf("expected following, got %v %v", ok, err)
	}

	counts, err := svc.Counts(ctx, author.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts.Followers != 1 || counts.Following != 0 {
		t.Fatalf("unexpected counts %+v", counts)
	}

	if err := svc.Unfollow(ctx, reader, author); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := svc.Unfollow(ctx, reader, author); err != nil {
		t.Fatalf("repeat unfollow: %v", err)
	}
	ok, _ = svc.IsFollowing(ctx, reader.ID, author.ID)
	if ok {
		t.Fatalf("expected no subscription after unfollow")
	}
}

func TestSelfFollowIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	u, _ := store.CreateUser(ctx, user.User{Username: "narcissus"})

	svc := New(store, nil)
	if err := svc.Follow(ctx, u, u); err != nil {
		t.Fatalf("self follow: %v", err)
	}
	ok, _ := svc.IsFollowing(ctx, u.ID, u.ID)
	if ok {
		t.Fatalf("self follow must not be stored")
	}
}
