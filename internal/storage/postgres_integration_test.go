//go:build integration

package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veridex/internal/decision"
	"veridex/internal/listing"
	"veridex/internal/pipeline"
	"veridex/internal/storage"
	dErrors "veridex/pkg/domain-errors"
	"veridex/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *storage.PostgresStore
	now      time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.store = storage.NewPostgresStore(s.postgres.DB, storage.WithClock(func() time.Time {
		t := s.now
		s.now = s.now.Add(time.Second)
		return t
	}))
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "reconciliation_runs"))
}

func (s *PostgresStoreSuite) newState(recordID uuid.UUID) pipeline.RunState {
	runID := uuid.New()
	return pipeline.RunState{
		RunID:     runID,
		Record:    listing.Record{ID: recordID, Name: "acme clinic", RegistryID: "ORG-1"},
		StartedAt: time.Date(2026, 9, 1, 11, 59, 0, 0, time.UTC),
		Errors:    []string{"web_search: upstream down"},
		Decision: &decision.Decision{
			RunID:      runID,
			RecordID:   recordID,
			Confidence: 74,
			Action:     decision.ActionNeedsReview,
			Priority:   20,
		},
	}
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()
	state := s.newState(uuid.New())

	s.Require().NoError(s.store.SaveRun(ctx, state))

	got, err := s.store.FindRun(ctx, state.RunID)
	s.Require().NoError(err)
	s.Equal(state.RunID, got.RunID)
	s.Equal(state.Record.ID, got.Record.ID)
	s.Equal(state.Errors, got.Errors)
	s.Require().NotNil(got.Decision)
	s.Equal(74, got.Decision.Confidence)
	s.Equal(decision.ActionNeedsReview, got.Decision.Action)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindRun(context.Background(), uuid.New())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestListByRecordOrdersByCreation() {
	ctx := context.Background()
	recordID := uuid.New()

	first := s.newState(recordID)
	second := s.newState(recordID)
	s.Require().NoError(s.store.SaveRun(ctx, first))
	s.Require().NoError(s.store.SaveRun(ctx, second))
	s.Require().NoError(s.store.SaveRun(ctx, s.newState(uuid.New())))

	runs, err := s.store.ListByRecord(ctx, recordID)
	s.Require().NoError(err)
	s.Require().Len(runs, 2)
	s.Equal(first.RunID, runs[0].RunID)
	s.Equal(second.RunID, runs[1].RunID)
}

func (s *PostgresStoreSuite) TestSaveIsIdempotentPerRun() {
	ctx := context.Background()
	state := s.newState(uuid.New())

	s.Require().NoError(s.store.SaveRun(ctx, state))
	s.Require().NoError(s.store.SaveRun(ctx, state))

	runs, err := s.store.ListByRecord(ctx, state.Record.ID)
	s.Require().NoError(err)
	s.Len(runs, 1)
}
