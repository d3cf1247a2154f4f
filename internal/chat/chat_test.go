package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tenant-portal/internal/mocks"
	"tenant-portal/internal/models"
)

// memoryMessages is an in-memory MessageRepository.
type memoryMessages struct {
	mu     sync.Mutex
	nextID int
	rows   []models.ChatMessage
}

func (m *memoryMessages) CreateMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	m.rows = append(m.rows, msg)
	return msg, nil
}

func (m *memoryMessages) ListRoomMessages(ctx context.Context, chatID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ChatMessage
	for _, r := range m.rows {
		if r.ChatID == chatID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryMessages) LatestRoomMessages(ctx context.Context, chatID string, limit int) ([]models.ChatMessage, error) {
	all, _ := m.ListRoomMessages(ctx, chatID)
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *memoryMessages) DeleteMessages(ctx context.Context, ids []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[int]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.rows[:0]
	for _, r := range m.rows {
		if !drop[r.ID] {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *memoryMessages) count(chatID string) int {
	msgs, _ := m.ListRoomMessages(context.Background(), chatID)
	return len(msgs)
}

type recordingBroadcaster struct {
	mu   sync.Mutex
	sent []models.ChatMessage
}

func (b *recordingBroadcaster) BroadcastChatMessage(chatID string, msg models.ChatMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, msg)
}

// tickingClock hands out strictly increasing timestamps.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestService(users *mocks.UserRepositoryMock, msgs *memoryMessages, b Broadcaster) *Service {
	svc := NewService(users, msgs, b, DefaultRetention, DefaultRetention, zap.NewNop().Sugar())
	svc.now = tickingClock()
	return svc
}

func TestRoomIDIsOrderIndependent(t *testing.T) {
	assert.Equal(t, RoomID("tenant1", "landlord1"), RoomID("landlord1", "tenant1"))
	assert.Equal(t, "landlord1_tenant1", RoomID("tenant1", "landlord1"))
}

func TestPeer(t *testing.T) {
	room := RoomID("t1", "l1")

	peer, err := Peer(room, "t1")
	require.NoError(t, err)
	assert.Equal(t, "l1", peer)

	peer, err = Peer(room, "l1")
	require.NoError(t, err)
	assert.Equal(t, "t1", peer)

	_, err = Peer(room, "x9")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestParticipantsRejectsMalformedIDs(t *testing.T) {
	for _, id := range []string{"", "abc", "_a", "a_", "a_a", "z_a"} {
		_, _, err := Participants(id)
		assert.ErrorIs(t, err, ErrInvalidRoom, id)
	}
}

func TestAppendKeepsAtMostTenMessages(t *testing.T) {
	msgs := &memoryMessages{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, nil)
	room := RoomID("t1", "l1")

	for i := 0; i < 25; i++ {
		_, err := svc.Send(context.Background(), room, "t1@example.com", fmt.Sprintf("m%d", i), "")
		require.NoError(t, err)
		assert.LessOrEqual(t, msgs.count(room), DefaultRetention)
	}

	assert.Equal(t, DefaultRetention, msgs.count(room))
	history, err := svc.History(context.Background(), room)
	require.NoError(t, err)
	require.Len(t, history, DefaultRetention)
	assert.Equal(t, "m15", history[0].Message)
	assert.Equal(t, "m24", history[len(history)-1].Message)
}

func TestAppendConcurrentWritersStayWithinCap(t *testing.T) {
	msgs := &memoryMessages{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, nil)
	room := RoomID("t1", "l1")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Send(context.Background(), room, "l1@example.com", fmt.Sprintf("m%d", i), "")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, DefaultRetention, msgs.count(room))
}

func TestRetentionIsPerRoom(t *testing.T) {
	msgs := &memoryMessages{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, nil)
	a, b := RoomID("t1", "l1"), RoomID("t2", "l1")

	for i := 0; i < 12; i++ {
		_, _ = svc.Send(context.Background(), a, "x", "hello", "")
	}
	_, _ = svc.Send(context.Background(), b, "y", "hi", "")

	assert.Equal(t, 10, msgs.count(a))
	assert.Equal(t, 1, msgs.count(b))
}

func TestHistoryIsOldestFirst(t *testing.T) {
	msgs := &memoryMessages{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, nil)
	room := RoomID("t1", "l1")

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Send(context.Background(), room, "t1@example.com", text, "")
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), room)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{history[0].Message, history[1].Message, history[2].Message})
}

func TestSendBroadcastsAndRejectsEmpty(t *testing.T) {
	msgs := &memoryMessages{}
	b := &recordingBroadcaster{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, b)
	room := RoomID("t1", "l1")

	_, err := svc.Send(context.Background(), room, "t1@example.com", "   ", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, b.sent)

	stored, err := svc.Send(context.Background(), room, "t1@example.com", "leak", "")
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, models.MessageTypeText, stored.Type)
	require.Len(t, b.sent, 1)
	assert.Equal(t, "leak", b.sent[0].Message)
}

func TestSendRejectsSystemType(t *testing.T) {
	msgs := &memoryMessages{}
	b := &recordingBroadcaster{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, b)
	room := RoomID("t1", "l1")

	_, err := svc.Send(context.Background(), room, "t1@example.com", "l1@example.com has joined the chat.", models.MessageTypeSystem)

	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, b.sent)
	assert.Zero(t, msgs.count(room))

	stored, err := svc.Send(context.Background(), room, "t1@example.com", "hello", "Text")
	require.NoError(t, err)
	assert.Equal(t, models.MessageTypeText, stored.Type)
}

func TestJoinNoticeIsNotPersisted(t *testing.T) {
	msgs := &memoryMessages{}
	b := &recordingBroadcaster{}
	svc := newTestService(&mocks.UserRepositoryMock{}, msgs, b)
	room := RoomID("t1", "l1")

	notice := svc.JoinNotice(room, "t1@example.com")

	assert.Equal(t, "t1@example.com has joined the chat.", notice.Message)
	assert.Equal(t, "System", notice.Sender)
	assert.Len(t, b.sent, 1)
	assert.Zero(t, msgs.count(room))
}

func TestAuthorize(t *testing.T) {
	users := &mocks.UserRepositoryMock{}
	svc := newTestService(users, &memoryMessages{}, nil)
	room := RoomID("t1", "l1")

	users.On("IsAttached", mock.Anything, "l1", "t1").Return(true, nil).Twice()

	peer, err := svc.Authorize(context.Background(), room, "t1", models.RoleTenant)
	require.NoError(t, err)
	assert.Equal(t, "l1", peer)

	peer, err = svc.Authorize(context.Background(), room, "l1", models.RoleLandlord)
	require.NoError(t, err)
	assert.Equal(t, "t1", peer)

	_, err = svc.Authorize(context.Background(), room, "x1", models.RoleTenant)
	assert.ErrorIs(t, err, ErrNotParticipant)

	users.AssertExpectations(t)
}

func TestAuthorizeUnlinkedPair(t *testing.T) {
	users := &mocks.UserRepositoryMock{}
	svc := newTestService(users, &memoryMessages{}, nil)

	users.On("IsAttached", mock.Anything, "l2", "t1").Return(false, nil).Once()

	_, err := svc.Authorize(context.Background(), RoomID("t1", "l2"), "t1", models.RoleTenant)
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestRoomsForTenantAndLandlord(t *testing.T) {
	users := &mocks.UserRepositoryMock{}
	svc := newTestService(users, &memoryMessages{}, nil)

	rooms, err := svc.Rooms(context.Background(), models.User{UID: "t1", Role: models.RoleTenant})
	require.NoError(t, err)
	assert.Empty(t, rooms)

	rooms, err = svc.Rooms(context.Background(), models.User{UID: "t1", Role: models.RoleTenant, LandlordUID: "l1", LandlordEmail: "l@example.com"})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, RoomID("t1", "l1"), rooms[0].ChatID)

	users.On("ListTenants", mock.Anything, "l1").Return([]models.AttachedTenant{
		{LandlordUID: "l1", TenantUID: "t1", Email: "a@example.com"},
		{LandlordUID: "l1", TenantUID: "t2", Email: "b@example.com"},
	}, nil).Once()

	rooms, err = svc.Rooms(context.Background(), models.User{UID: "l1", Role: models.RoleLandlord})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "t2", rooms[1].PeerUID)
}
