package service

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

type fakeMessages struct {
	users    map[int]bool
	messages map[int]*model.MessageContent
	marked   [][2]int
	page     [3]int
	query    string
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		users:    map[int]bool{1: true, 3: true, 7: true, 8: true},
		messages: map[int]*model.MessageContent{},
	}
}

func (f *fakeMessages) ListReceived(_ context.Context, userID, offset, limit int) ([]model.ReceivedMessageHeader, error) {
	f.page = [3]int{userID, offset, limit}
	return []model.ReceivedMessageHeader{}, nil
}

func (f *fakeMessages) ListSent(_ context.Context, authorID, offset, limit int) ([]model.SentMessageHeader, error) {
	f.page = [3]int{authorID, offset, limit}
	return []model.SentMessageHeader{}, nil
}

func (f *fakeMessages) GetContent(_ context.Context, id int) (*model.MessageContent, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	cp.Receivers = append([]model.MessageReceiver(nil), m.Receivers...)
	return &cp, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, messageID, userID int) error {
	f.marked = append(f.marked, [2]int{messageID, userID})
	for i := range f.messages[messageID].Receivers {
		if f.messages[messageID].Receivers[i].UserID == userID {
			f.messages[messageID].Receivers[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeMessages) Create(_ context.Context, m *model.Message, receivers []int) error {
	content := &model.MessageContent{Title: m.Title, Content: m.Content, SenderID: m.AuthorID}
	for _, id := range receivers {
		if !f.users[id] {
			return repository.ErrInvalidReference
		}
		content.Receivers = append(content.Receivers, model.MessageReceiver{UserID: id})
	}
	m.ID = len(f.messages) + 1
	content.ID = m.ID
	f.messages[m.ID] = content
	return nil
}

func (f *fakeMessages) AuthorID(_ context.Context, id int) (int, error) {
	m, ok := f.messages[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return m.SenderID, nil
}

func (f *fakeMessages) Delete(_ context.Context, id int) error {
	if _, ok := f.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeMessages) SearchUsers(_ context.Context, query string, limit int) ([]model.UserSummary, error) {
	f.query = query
	return []model.UserSummary{{ID: 7, FirstName: "Jan", Role: ability.RoleStudent}}, nil
}

func newMessaging() (*MessageService, *fakeMessages) {
	store := newFakeMessages()
	return NewMessageService(store, zerolog.New(io.Discard)), store
}

func TestMessagePaging(t *testing.T) {
	svc, store := newMessaging()
	ctx := context.Background()
	me := &model.User{ID: 7}

	_, err := svc.Inbox(ctx, me, 7, 40)
	require.NoError(t, err)
	assert.Equal(t, [3]int{7, 40, MessagePageSize}, store.page)

	_, err = svc.Outbox(ctx, me, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, [3]int{7, 0, MessagePageSize}, store.page)

	_, err = svc.Inbox(ctx, me, 8, 0)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Outbox(ctx, me, 8, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Inbox(ctx, me, 7, -5)
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = svc.Outbox(ctx, me, 7, -1)
	assert.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMessageDelivery(t *testing.T) {
	svc, store := newMessaging()
	ctx := context.Background()
	teacher := &model.User{ID: 3}
	student := &model.User{ID: 7}
	outsider := &model.User{ID: 8}

	_, err := svc.Send(ctx, teacher, &model.SendMessageRequest{Title: "Hi", Content: "x", Receivers: []int{7, 404}})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.messages)

	m, err := svc.Send(ctx, teacher, &model.SendMessageRequest{Title: "Trip", Content: "Bring lunch", Receivers: []int{8, 7, 7}})
	require.NoError(t, err)
	assert.Equal(t, 3, m.AuthorID)
	require.Len(t, store.messages[m.ID].Receivers, 2, "repeated receivers get one copy")

	got, err := svc.ReadReceived(ctx, student, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bring lunch", got.Content)
	assert.Equal(t, [][2]int{{m.ID, 7}}, store.marked)
	for _, r := range got.Receivers {
		assert.Equal(t, r.UserID == 7, r.IsRead)
	}

	// Reading again does not write.
	_, err = svc.ReadReceived(ctx, student, m.ID)
	require.NoError(t, err)
	assert.Len(t, store.marked, 1)

	_, err = svc.ReadReceived(ctx, teacher, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ReadReceived(ctx, student, 99)
	assert.ErrorIs(t, err, ErrForbidden)

	sent, err := svc.ReadSent(ctx, teacher, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", sent.Title)
	_, err = svc.ReadSent(ctx, student, m.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.ReadSent(ctx, teacher, 99)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, outsider, m.ID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, student, m.ID), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, teacher, m.ID))
	assert.ErrorIs(t, svc.Delete(ctx, teacher, m.ID), ErrNotFound)
}

func TestSearchReceivers(t *testing.T) {
	svc, store := newMessaging()
	ctx := context.Background()

	_, err := svc.SearchReceivers(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)

	users, err := svc.SearchReceivers(ctx, " jan ")
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "jan", store.query)
}
