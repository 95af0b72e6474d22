package sched

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

type fakeSyncService struct {
	accounts       map[int][]*models.BrokerageAccount
	accountsErr    map[int]error
	blockUser      int
	portfolioCalls []string
	portfolioErr   error
}

func (s *fakeSyncService) GetAccounts(ctx context.Context, user *models.User) ([]*models.BrokerageAccount, error) {
	if s.blockUser == user.ID && user.ID != 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.accountsErr[user.ID]; err != nil {
		return nil, err
	}
	return s.accounts[user.ID], nil
}

func (s *fakeSyncService) GetPortfolio(ctx context.Context, user *models.User, accountID string) (*models.PortfolioSnapshot, error) {
	s.portfolioCalls = append(s.portfolioCalls, fmt.Sprintf("%d:%s", user.ID, accountID))
	if s.portfolioErr != nil {
		return nil, s.portfolioErr
	}
	return &models.PortfolioSnapshot{Status: "success"}, nil
}

type fakeUserLister struct {
	users []*models.User
	err   error
}

func (l *fakeUserLister) ListUsersWithTinkoffToken() ([]*models.User, error) {
	return l.users, l.err
}

func syncUser(id int) *models.User {
	token := "t.token"
	return &models.User{ID: id, TinkoffToken: &token}
}

func TestPortfolioSyncJob(t *testing.T) {
	t.Run("warms every account of every eligible user", func(t *testing.T) {
		svc := &fakeSyncService{
			accounts: map[int][]*models.BrokerageAccount{
				1: {{AccountID: "a1", UserID: 1}, {AccountID: "a2", UserID: 1}},
				2: {{AccountID: "b1", UserID: 2}},
			},
		}
		lister := &fakeUserLister{users: []*models.User{syncUser(1), syncUser(2)}}
		job := NewPortfolioSyncJob(svc, lister, zerolog.Nop())

		require.NoError(t, job.Run())
		assert.Equal(t, []string{"1:a1", "1:a2", "2:b1"}, svc.portfolioCalls)
	})

	t.Run("one failing user does not abort the sweep", func(t *testing.T) {
		svc := &fakeSyncService{
			accounts: map[int][]*models.BrokerageAccount{
				2: {{AccountID: "b1", UserID: 2}},
			},
			accountsErr: map[int]error{1: fmt.Errorf("remote down")},
		}
		lister := &fakeUserLister{users: []*models.User{syncUser(1), syncUser(2)}}
		job := NewPortfolioSyncJob(svc, lister, zerolog.Nop())

		require.NoError(t, job.Run())
		assert.Equal(t, []string{"2:b1"}, svc.portfolioCalls)
	})

	t.Run("listing failure is returned", func(t *testing.T) {
		lister := &fakeUserLister{err: fmt.Errorf("db down")}
		job := NewPortfolioSyncJob(&fakeSyncService{}, lister, zerolog.Nop())

		require.Error(t, job.Run())
	})

	t.Run("a slow user does not starve later users", func(t *testing.T) {
		svc := &fakeSyncService{
			blockUser: 1,
			accounts: map[int][]*models.BrokerageAccount{
				2: {{AccountID: "b1", UserID: 2}},
			},
		}
		lister := &fakeUserLister{users: []*models.User{syncUser(1), syncUser(2)}}
		job := NewPortfolioSyncJob(svc, lister, zerolog.Nop())
		job.timeout = 20 * time.Millisecond

		require.NoError(t, job.Run())
		assert.Equal(t, []string{"2:b1"}, svc.portfolioCalls)
	})

	t.Run("portfolio failures are tolerated per account", func(t *testing.T) {
		svc := &fakeSyncService{
			accounts: map[int][]*models.BrokerageAccount{
				1: {{AccountID: "a1", UserID: 1}, {AccountID: "a2", UserID: 1}},
			},
			portfolioErr: fmt.Errorf("remote down"),
		}
		lister := &fakeUserLister{users: []*models.User{syncUser(1)}}
		job := NewPortfolioSyncJob(svc, lister, zerolog.Nop())

		require.NoError(t, job.Run())
		assert.Len(t, svc.portfolioCalls, 2)
	})
}
