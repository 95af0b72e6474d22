// Package invest orchestrates the aggregation pipeline: remote invest API →
// normalization → cache → persisted accounts and positions.
package invest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dkazakov/invest-aggregator/internal/cache"
	"github.com/dkazakov/invest-aggregator/internal/models"
	"github.com/dkazakov/invest-aggregator/internal/tinkoff"
)

const (
	// snapshotTTL bounds every cached snapshot (portfolio, positions,
	// instrument lookups).
	snapshotTTL = 3 * time.Hour

	// positionStaleHours is the persisted-position refresh threshold.
	positionStaleHours = 12
)

// RemoteClient issues RPC-style calls to the invest API.
type RemoteClient interface {
	Call(ctx context.Context, token, method string, payload, out any) error
}

// AccountStore persists brokerage accounts.
type AccountStore interface {
	UpsertAccount(accountID string, userID int) (*models.BrokerageAccount, bool, error)
}

// PositionStore persists figi-keyed positions with staleness-gated refresh.
type PositionStore interface {
	UpsertPositionIfStale(figi string, attrs models.PositionAttrs, staleHours *int) (*models.Position, bool, error)
}

// EventPublisher emits pipeline lifecycle events. A nil publisher disables
// publishing.
type EventPublisher interface {
	PublishAccountLinked(ctx context.Context, userID int, accountID string) error
	PublishPositionRefreshed(ctx context.Context, userID int, accountID string, pos *models.Position) error
}

// Service aggregates a user's brokerage data. All operations take the acting
// user explicitly; nothing is bound to ambient session state.
type Service struct {
	client    RemoteClient
	accounts  AccountStore
	positions PositionStore
	cache     cache.Store
	events    EventPublisher
	group     singleflight.Group
	log       zerolog.Logger
}

// NewService creates the aggregation service. events may be nil.
func NewService(client RemoteClient, accounts AccountStore, positions PositionStore, store cache.Store, events EventPublisher, log zerolog.Logger) *Service {
	return &Service{
		client:    client,
		accounts:  accounts,
		positions: positions,
		cache:     store,
		events:    events,
		log:       log,
	}
}

func userToken(user *models.User) (string, error) {
	if user.TinkoffToken == nil || *user.TinkoffToken == "" {
		return "", ErrNoTinkoffToken
	}
	return *user.TinkoffToken, nil
}

// GetAccounts fetches the user's brokerage accounts and records each on
// first sight. Returned rows follow the remote response order.
func (s *Service) GetAccounts(ctx context.Context, user *models.User) ([]*models.BrokerageAccount, error) {
	token, err := userToken(user)
	if err != nil {
		return nil, err
	}

	var resp tinkoff.GetAccountsResponse
	if err := s.client.Call(ctx, token, tinkoff.MethodGetAccounts, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Accounts == nil {
		return nil, &FormatError{Field: "accounts"}
	}

	accounts := make([]*models.BrokerageAccount, 0, len(*resp.Accounts))
	for _, remote := range *resp.Accounts {
		account, created, err := s.accounts.UpsertAccount(remote.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if created && s.events != nil {
			if err := s.events.PublishAccountLinked(ctx, user.ID, account.AccountID); err != nil {
				s.log.Warn().Err(err).Str("account_id", account.AccountID).Msg("publish account linked failed")
			}
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

// GetPortfolio returns the portfolio snapshot for one account, cached for 3
// hours. On a miss it fetches the portfolio, persists every position through
// the 12h stale-read-through upsert, and caches the result.
func (s *Service) GetPortfolio(ctx context.Context, user *models.User, accountID string) (*models.PortfolioSnapshot, error) {
	token, err := userToken(user)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("instrument_%s", accountID)
	var cached models.PortfolioSnapshot
	if found := s.cacheGet(ctx, key, &cached); found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		snap, err := s.fetchPortfolio(ctx, token, user.ID, accountID)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.PortfolioSnapshot), nil
}

func (s *Service) fetchPortfolio(ctx context.Context, token string, userID int, accountID string) (*models.PortfolioSnapshot, error) {
	req := tinkoff.GetPortfolioRequest{AccountID: accountID, Currency: defaultCurrency}
	var resp tinkoff.GetPortfolioResponse
	if err := s.client.Call(ctx, token, tinkoff.MethodGetPortfolio, req, &resp); err != nil {
		return nil, err
	}

	snap := &models.PortfolioSnapshot{
		TotalAmount: tinkoff.DecimalFromMoney(resp.TotalAmountPortfolio),
		Currency:    defaultCurrency,
		Positions:   make([]*models.Position, 0, len(resp.Positions)),
		Status:      "success",
	}
	if resp.TotalAmountPortfolio != nil && resp.TotalAmountPortfolio.Currency != "" {
		snap.Currency = resp.TotalAmountPortfolio.Currency
	}

	staleHours := positionStaleHours
	for i := range resp.Positions {
		attrs, err := portfolioAttrs(&resp.Positions[i])
		if err != nil {
			return nil, err
		}
		stored, written, err := s.positions.UpsertPositionIfStale(resp.Positions[i].Figi, attrs, &staleHours)
		if err != nil {
			return nil, err
		}
		if written && s.events != nil {
			if err := s.events.PublishPositionRefreshed(ctx, userID, accountID, stored); err != nil {
				s.log.Warn().Err(err).Str("figi", stored.Figi).Msg("publish position refreshed failed")
			}
		}
		snap.Positions = append(snap.Positions, stored)
	}
	return snap, nil
}

// GetPositions returns the raw positions listing for one account as a flat
// typed sequence, cached for 3 hours.
func (s *Service) GetPositions(ctx context.Context, user *models.User, accountID string) (models.PositionsSnapshot, error) {
	token, err := userToken(user)
	if err != nil {
		return models.PositionsSnapshot{}, err
	}

	key := fmt.Sprintf("position_%s", accountID)
	var cached models.PositionsSnapshot
	if found := s.cacheGet(ctx, key, &cached); found {
		return cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		req := tinkoff.GetPositionsRequest{AccountID: accountID}
		var resp tinkoff.GetPositionsResponse
		if err := s.client.Call(ctx, token, tinkoff.MethodGetPositions, req, &resp); err != nil {
			return nil, err
		}
		snap := normalizePositions(&resp)
		s.cacheSet(ctx, key, snap)
		return snap, nil
	})
	if err != nil {
		return models.PositionsSnapshot{}, err
	}
	return v.(models.PositionsSnapshot), nil
}

// GetInstrumentByFigi looks up instrument details, cached for 3 hours.
func (s *Service) GetInstrumentByFigi(ctx context.Context, user *models.User, figi string) (*models.InstrumentInfo, error) {
	token, err := userToken(user)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("instrument_%s", figi)
	var cached models.InstrumentInfo
	if found := s.cacheGet(ctx, key, &cached); found {
		return &cached, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		req := tinkoff.GetInstrumentByRequest{
			IDType:    tinkoff.InstrumentIDTypeFigi,
			ID:        figi,
			ClassCode: "",
		}
		var resp tinkoff.GetInstrumentByResponse
		if err := s.client.Call(ctx, token, tinkoff.MethodGetInstrumentBy, req, &resp); err != nil {
			return nil, err
		}
		info := instrumentInfo(&resp)
		s.cacheSet(ctx, key, info)
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.InstrumentInfo), nil
}

// cacheGet treats cache failures as misses: a broken cache degrades to
// recomputation, it never fails a request.
func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return false
	}
	return found
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, snapshotTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
