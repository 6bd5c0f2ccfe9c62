package analytics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/serroba/shorty/internal/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const iphoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) " +
	"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockStore) SaveVisit(ctx context.Context, visit *analytics.Visit) error {
	return m.Called(ctx, visit).Error(0)
}

func (m *mockStore) SaveLinkDeleted(ctx context.Context, event *analytics.LinkDeletedEvent) error {
	return m.Called(ctx, event).Error(0)
}

func TestHandlers_LinkVisited(t *testing.T) {
	t.Run("stores enriched visit", func(t *testing.T) {
		st := &mockStore{}
		h := analytics.NewHandlers(st, analytics.NewUserAgentParser())

		st.On("SaveVisit", mock.Anything, mock.MatchedBy(func(v *analytics.Visit) bool {
			return v.ShortID == "abc123" &&
				v.Device == analytics.DeviceMobile &&
				v.OS == "iOS" &&
				v.Browser == "Mobile Safari"
		})).Return(nil).Once()

		err := h.LinkVisited(context.Background(), &analytics.LinkVisitedEvent{
			ShortID:   "abc123",
			Views:     1,
			VisitedAt: time.Now(),
			UserAgent: iphoneUA,
		})

		require.NoError(t, err)
		st.AssertExpectations(t)
	})

	t.Run("wraps store failures", func(t *testing.T) {
		st := &mockStore{}
		h := analytics.NewHandlers(st, analytics.NewUserAgentParser())
		cause := errors.New("db down")

		st.On("SaveVisit", mock.Anything, mock.Anything).Return(cause)

		err := h.LinkVisited(context.Background(), &analytics.LinkVisitedEvent{ShortID: "abc123"})

		require.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "abc123")
	})
}

func TestHandlers_LinkCreatedAndDeleted(t *testing.T) {
	st := &mockStore{}
	h := analytics.NewHandlers(st, analytics.NewUserAgentParser())

	created := &analytics.LinkCreatedEvent{ShortID: "abc123", AccountID: "default"}
	deleted := &analytics.LinkDeletedEvent{ShortID: "abc123", AccountID: "default"}

	st.On("SaveLinkCreated", mock.Anything, created).Return(nil).Once()
	st.On("SaveLinkDeleted", mock.Anything, deleted).Return(errors.New("boom")).Once()

	require.NoError(t, h.LinkCreated(context.Background(), created))
	require.Error(t, h.LinkDeleted(context.Background(), deleted))

	st.AssertExpectations(t)
}
