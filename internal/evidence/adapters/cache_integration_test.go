//go:build integration

package adapters_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veridex/internal/evidence"
	"veridex/internal/evidence/adapters"
	"veridex/internal/listing"
	"veridex/pkg/testutil/containers"
)

type countingAdapter struct {
	outcome evidence.Outcome
	calls   atomic.Int32
}

func (c *countingAdapter) Name() string        { return "counting" }
func (c *countingAdapter) Weight() float64     { return 0.9 }
func (c *countingAdapter) Authoritative() bool { return false }

func (c *countingAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	c.calls.Add(1)
	switch c.outcome {
	case evidence.OutcomeFound:
		return evidence.Found("counting", 0.9, false, map[listing.Field]string{listing.FieldName: "acme"})
	case evidence.OutcomeNotFound:
		return evidence.NotFound("counting", 0.9, false)
	default:
		return evidence.Errored("counting", 0.9, false, errors.New("upstream down"))
	}
}

type CachedAdapterSuite struct {
	suite.Suite
	redis *containers.RedisContainer
}

func TestCachedAdapterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedAdapterSuite))
}

func (s *CachedAdapterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CachedAdapterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *CachedAdapterSuite) TestSecondQueryServedFromCache() {
	inner := &countingAdapter{outcome: evidence.OutcomeFound}
	cached := adapters.NewCachedAdapter(inner, s.redis.Client, time.Minute, nil)
	rec := listing.Record{ID: uuid.New(), Name: "Acme"}

	first := cached.Query(context.Background(), rec)
	second := cached.Query(context.Background(), rec)

	s.Equal(evidence.OutcomeFound, first.Outcome)
	s.Equal(first.Fields, second.Fields)
	s.Equal(int32(1), inner.calls.Load())
}

func (s *CachedAdapterSuite) TestErrorsAreNotCached() {
	inner := &countingAdapter{outcome: evidence.OutcomeError}
	cached := adapters.NewCachedAdapter(inner, s.redis.Client, time.Minute, nil)
	rec := listing.Record{ID: uuid.New(), Name: "Acme"}

	cached.Query(context.Background(), rec)
	cached.Query(context.Background(), rec)

	s.Equal(int32(2), inner.calls.Load())
}

func (s *CachedAdapterSuite) TestDistinctRecordsMiss() {
	inner := &countingAdapter{outcome: evidence.OutcomeFound}
	cached := adapters.NewCachedAdapter(inner, s.redis.Client, time.Minute, nil)

	cached.Query(context.Background(), listing.Record{ID: uuid.New()})
	cached.Query(context.Background(), listing.Record{ID: uuid.New()})

	s.Equal(int32(2), inner.calls.Load())
}

func (s *CachedAdapterSuite) TestCorruptPayloadFallsThrough() {
	inner := &countingAdapter{outcome: evidence.OutcomeFound}
	cached := adapters.NewCachedAdapter(inner, s.redis.Client, time.Minute, nil)
	rec := listing.Record{ID: uuid.New(), Name: "Acme"}

	key := "veridex:evidence:counting:" + rec.ID.String()
	s.Require().NoError(s.redis.Client.Set(context.Background(), key, "{broken", time.Minute).Err())

	entry := cached.Query(context.Background(), rec)

	s.Equal(evidence.OutcomeFound, entry.Outcome)
	s.Equal(int32(1), inner.calls.Load())
}
