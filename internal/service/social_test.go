package service

import (
	"context"
	"sync"
	"testing"

	"github.com/storyverse/realtime-platform/internal/model"
	"github.com/storyverse/realtime-platform/internal/store"
)

func TestFollowCreditsOnlyOnCreation(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")
	ctx := context.Background()

	res, events, err := env.social.Follow(ctx, ann, "u2")
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if res.Status != model.StatusSuccess || res.Message != "You are now following this user" {
		t.Fatalf("result = %+v", res)
	}
	if res.FollowersCount != 1 {
		t.Fatalf("followers = %d, want 1", res.FollowersCount)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1 notification event", len(events))
	}
	if events[0].Topic != "notifications:u2" {
		t.Fatalf("event topic = %s", events[0].Topic)
	}
	if got := env.points(t, "u2"); got != 5 {
		t.Fatalf("points = %d, want 5", got)
	}

	// Repeat follow: info result, no second record, no point change,
	// no notification.
	res, events, err = env.social.Follow(ctx, ann, "u2")
	if err != nil {
		t.Fatalf("repeat follow: %v", err)
	}
	if res.Status != model.StatusInfo || res.Message != "You are already following this user" {
		t.Fatalf("repeat result = %+v", res)
	}
	if res.FollowersCount != 1 {
		t.Fatalf("followers = %d, want 1", res.FollowersCount)
	}
	if len(events) != 0 {
		t.Fatalf("repeat events = %d, want 0", len(events))
	}
	if got := env.points(t, "u2"); got != 5 {
		t.Fatalf("points after repeat = %d, want 5", got)
	}
	if got := len(env.notificationsFor(t, "u2")); got != 1 {
		t.Fatalf("notifications = %d, want 1", got)
	}
}

func TestUnfollowNotFollowing(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")

	res, _, err := env.social.Unfollow(context.Background(), ann, "u2")
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if res.Status != model.StatusInfo || res.Message != "You are not following this user" {
		t.Fatalf("result = %+v", res)
	}
	if got := env.points(t, "u2"); got != 0 {
		t.Fatalf("points = %d, want 0", got)
	}
}

func TestFollowUnfollowRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")
	ctx := context.Background()

	if _, _, err := env.social.Follow(ctx, ann, "u2"); err != nil {
		t.Fatalf("follow: %v", err)
	}
	res, _, err := env.social.Unfollow(ctx, ann, "u2")
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if res.Status != model.StatusSuccess || res.Message != "You have unfollowed this user" {
		t.Fatalf("result = %+v", res)
	}
	if res.FollowersCount != 0 {
		t.Fatalf("followers = %d, want 0", res.FollowersCount)
	}
	if got := env.points(t, "u2"); got != 0 {
		t.Fatalf("points = %d, want 0 after round trip", got)
	}
}

func TestFollowUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")

	_, _, err := env.social.Follow(context.Background(), ann, "ghost")
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v, want KindNotFound", KindOf(err))
	}
	if err.Error() != "User not found" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestLikeUnlikeNeverGoesNegative(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedUser(t, "u2", "bob")
	env.seedPost(t, "p1", "u2")
	ctx := context.Background()

	steps := []struct {
		op         func() (*model.LikeResult, error)
		status     string
		message    string
		likes      int
		points     int
	}{
		{func() (*model.LikeResult, error) { r, _, err := env.social.Like(ctx, ann, "p1"); return r, err },
			model.StatusSuccess, "You liked this post", 1, 2},
		{func() (*model.LikeResult, error) { r, _, err := env.social.Like(ctx, ann, "p1"); return r, err },
			model.StatusInfo, "You already liked this post", 1, 2},
		{func() (*model.LikeResult, error) { r, _, err := env.social.Unlike(ctx, ann, "p1"); return r, err },
			model.StatusSuccess, "You unliked this post", 0, 0},
		{func() (*model.LikeResult, error) { r, _, err := env.social.Unlike(ctx, ann, "p1"); return r, err },
			model.StatusInfo, "You did not like this post", 0, 0},
		{func() (*model.LikeResult, error) { r, _, err := env.social.Like(ctx, ann, "p1"); return r, err },
			model.StatusSuccess, "You liked this post", 1, 2},
	}
	for i, step := range steps {
		res, err := step.op()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if res.Status != step.status || res.Message != step.message {
			t.Fatalf("step %d result = %+v", i, res)
		}
		if res.LikesCount != step.likes {
			t.Fatalf("step %d likes = %d, want %d", i, res.LikesCount, step.likes)
		}
		if got := env.points(t, "u2"); got != step.points {
			t.Fatalf("step %d points = %d, want %d", i, got, step.points)
		}
	}
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")

	_, _, err := env.social.Like(context.Background(), ann, "ghost")
	if KindOf(err) != KindNotFound || err.Error() != "Post not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestSelfLikeSuppressedNotification(t *testing.T) {
	env := newTestEnv(t)
	ann := env.seedUser(t, "u1", "ann")
	env.seedPost(t, "p1", "u1")

	res, events, err := env.social.Like(context.Background(), ann, "p1")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if res.Status != model.StatusSuccess {
		t.Fatalf("result = %+v", res)
	}
	// The like and the points still land; only the notification is
	// suppressed.
	if got := env.points(t, "u1"); got != 2 {
		t.Fatalf("points = %d, want 2", got)
	}
	if len(events) != 0 {
		t.Fatalf("events = %d, want 0", len(events))
	}
	if got := len(env.notificationsFor(t, "u1")); got != 0 {
		t.Fatalf("notifications = %d, want 0", got)
	}
}

func TestConcurrentLikesBothPersist(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "author", "carol")
	env.seedPost(t, "p1", "author")
	ann := env.seedUser(t, "u1", "ann")
	bob := env.seedUser(t, "u2", "bob")
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, actor := range []Actor{ann, bob} {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			_, _, err := env.social.Like(ctx, a, "p1")
			errs <- err
		}(actor)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("like: %v", err)
		}
	}

	if got := env.points(t, "author"); got != 4 {
		t.Fatalf("points = %d, want 4", got)
	}
	env.store.View(func(tx *store.Txn) error {
		n, err := tx.LikesCount("p1")
		if err != nil {
			t.Fatalf("likes count: %v", err)
		}
		if n != 2 {
			t.Fatalf("likes = %d, want 2", n)
		}
		return nil
	})
}
