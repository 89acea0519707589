package service

import (
	"context"
	"sync"
	"testing"

	"filmmate/internal/model"
	"filmmate/internal/testutil"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[uint][]Event
}

func (n *recordingNotifier) SendToUser(userID uint, msg []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var e Event
	if err := json.Unmarshal(msg, &e); err != nil {
		return
	}
	if n.sent == nil {
		n.sent = make(map[uint][]Event)
	}
	n.sent[userID] = append(n.sent[userID], e)
}

func (n *recordingNotifier) events(userID uint) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[userID]
}

func TestFriendRequestLifecycle(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	notifier := &recordingNotifier{}
	svc := NewFriendService(store, notifier)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")

	req, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, notifier.events(bob.ID), 1)
	assert.Equal(t, EventFriendRequest, notifier.events(bob.ID)[0].Type)
	assert.Equal(t, "alice", notifier.events(bob.ID)[0].Username)

	requests, err := svc.Requests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, requests.Incoming, 1)
	assert.Equal(t, "alice", requests.Incoming[0].FromUser.Username)
	assert.Empty(t, requests.Outgoing)

	// 只有接收人能接受
	_, err = svc.Accept(ctx, alice.ID, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	from, err := svc.Accept(ctx, bob.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, from.ID)
	require.Len(t, notifier.events(alice.ID), 1)
	assert.Equal(t, EventFriendAccepted, notifier.events(alice.ID)[0].Type)

	ab, err := svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	ba, err := svc.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	var pending int64
	gdb.Model(&model.FriendRequest{}).Count(&pending)
	assert.Zero(t, pending)

	friends, err := svc.Friends(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].User.Username)
	assert.False(t, friends[0].Online)

	_, err = svc.Send(ctx, bob.ID, alice.ID)
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "already")

	require.NoError(t, svc.Remove(ctx, bob.ID, alice.ID))
	ab, err = svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ab)
	assert.ErrorIs(t, svc.Remove(ctx, alice.ID, bob.ID), ErrNotFound)
}

func TestSendRejectsDuplicates(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewFriendService(store, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")

	_, err := svc.Send(ctx, alice.ID, alice.ID)
	var cerr *ConflictError
	assert.ErrorAs(t, err, &cerr)

	_, err = svc.Send(ctx, alice.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendByUsername(ctx, alice.ID, "bob")
	require.NoError(t, err)

	_, err = svc.Send(ctx, alice.ID, bob.ID)
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "already sent")

	_, err = svc.Send(ctx, bob.ID, alice.ID)
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Message, "already sent you")

	var count int64
	gdb.Model(&model.FriendRequest{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = svc.SendByUsername(ctx, alice.ID, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeclineAndCancelAreScoped(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	svc := NewFriendService(store, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")
	carol := testutil.CreateUser(t, gdb, "carol")

	req, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// 发起人不能拒绝，接收人不能撤回，第三方都不行
	assert.ErrorIs(t, svc.Decline(ctx, alice.ID, req.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Cancel(ctx, bob.ID, req.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Decline(ctx, carol.ID, req.ID), ErrNotFound)

	require.NoError(t, svc.Decline(ctx, bob.ID, req.ID))
	friends, err := svc.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	req, err = svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, alice.ID, req.ID))

	requests, err := svc.Requests(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, requests.Outgoing)
}

func TestRelationshipsInSearchAndProfile(t *testing.T) {
	store, gdb := testutil.NewStore(t)
	friends := NewFriendService(store, nil)
	users := NewUserService(store, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, gdb, "alice")
	bob := testutil.CreateUser(t, gdb, "bob")
	carl := testutil.CreateUser(t, gdb, "carl")
	dan := testutil.CreateUser(t, gdb, "dan")

	req, err := friends.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = friends.Accept(ctx, bob.ID, req.ID)
	require.NoError(t, err)
	_, err = friends.Send(ctx, alice.ID, carl.ID)
	require.NoError(t, err)
	_, err = friends.Send(ctx, dan.ID, alice.ID)
	require.NoError(t, err)

	matches, err := users.Search(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = users.Search(ctx, alice.ID, "A")
	require.NoError(t, err)
	got := map[string]Relationship{}
	for _, m := range matches {
		got[m.User.Username] = m.Relationship
	}
	assert.Equal(t, map[string]Relationship{
		"carl": RelationshipPendingOut,
		"dan":  RelationshipPendingIn,
	}, got)

	profile, err := users.Profile(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationshipFriends, profile.Relationship)
	assert.Equal(t, int64(1), profile.FriendCount)

	profile, err = users.Profile(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationshipSelf, profile.Relationship)

	profile, err = users.Profile(ctx, 0, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, RelationshipNone, profile.Relationship)
}
