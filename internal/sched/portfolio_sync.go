package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkazakov/invest-aggregator/internal/models"
)

// SyncService is the slice of the aggregation service the sync job uses.
type SyncService interface {
	GetAccounts(ctx context.Context, user *models.User) ([]*models.BrokerageAccount, error)
	GetPortfolio(ctx context.Context, user *models.User, accountID string) (*models.PortfolioSnapshot, error)
}

// UserLister enumerates users eligible for syncing.
type UserLister interface {
	ListUsersWithTinkoffToken() ([]*models.User, error)
}

// PortfolioSyncJob walks every user with a stored invest token, refreshes
// their accounts and warms each account's portfolio snapshot. A failure for
// one user never aborts the sweep.
type PortfolioSyncJob struct {
	service SyncService
	users   UserLister
	timeout time.Duration
	log     zerolog.Logger
}

// NewPortfolioSyncJob creates the sync job.
func NewPortfolioSyncJob(service SyncService, users UserLister, log zerolog.Logger) *PortfolioSyncJob {
	return &PortfolioSyncJob{
		service: service,
		users:   users,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "portfolio-sync").Logger(),
	}
}

// Name implements Job.
func (j *PortfolioSyncJob) Name() string { return "portfolio-sync" }

// Run implements Job.
func (j *PortfolioSyncJob) Run() error {
	users, err := j.users.ListUsersWithTinkoffToken()
	if err != nil {
		return err
	}

	for _, user := range users {
		if err := j.syncUser(user); err != nil {
			j.log.Warn().Err(err).Int("user_id", user.ID).Msg("user sync failed")
		}
	}
	return nil
}

// syncUser runs under its own timeout so one slow user cannot eat the
// remaining users' share of the sweep.
func (j *PortfolioSyncJob) syncUser(user *models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	accounts, err := j.service.GetAccounts(ctx, user)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		if _, err := j.service.GetPortfolio(ctx, user, account.AccountID); err != nil {
			j.log.Warn().Err(err).
				Int("user_id", user.ID).
				Str("account_id", account.AccountID).
				Msg("portfolio sync failed")
		}
	}
	return nil
}
