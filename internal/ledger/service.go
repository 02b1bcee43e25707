package ledger

import (
	"context"
	"strings"

	"golang.org/x/sync/singleflight"
)

// SourcePort loads the raw event streams for a party kind.
type SourcePort interface {
	Events(ctx context.Context, kind PartyKind) (documents, payments []Event, err error)
}

// Service derives party balances on demand, caching the result and
// collapsing concurrent recomputes of the same view.
type Service struct {
	source SourcePort
	cache  *Cache
	group  singleflight.Group
}

// NewService builds Service.
func NewService(source SourcePort, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Parties returns the derived balance rows for one relationship direction.
func (s *Service) Parties(ctx context.Context, kind PartyKind) ([]PartyBalance, error) {
	key, err := s.cache.BuildKey(ctx, "ledger", "parties", string(kind))
	if err != nil {
		return nil, err
	}
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var balances []PartyBalance
		err := s.cache.FetchJSON(ctx, key, &balances, func(ctx context.Context) (interface{}, error) {
			documents, payments, err := s.source.Events(ctx, kind)
			if err != nil {
				return nil, err
			}
			return ComputeParties(documents, payments), nil
		})
		return balances, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]PartyBalance), nil
}

// Balance returns one party's balance, 0 when the party is unknown.
func (s *Service) Balance(ctx context.Context, kind PartyKind, name, phone string) (float64, error) {
	balances, err := s.Parties(ctx, kind)
	if err != nil {
		return 0, err
	}
	for _, pb := range balances {
		if strings.EqualFold(pb.Name, name) && pb.PhoneNumber == phone {
			return pb.Balance, nil
		}
	}
	return 0, nil
}

// Invalidate drops every cached ledger view. Billing calls it after each
// successful write.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
