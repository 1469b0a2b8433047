package outboxrepo_test

import (
	"context"
	"testing"
	"time"

	"ordermgmt/internal/adapters/out/postgres/outboxrepo"
	"ordermgmt/internal/adapters/out/postgres/pgtest"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/outbox"
	"ordermgmt/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type OutboxRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *outboxrepo.GormOutboxRepository
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
	suite.repository = outboxrepo.NewGormOutboxRepository(suite.pg.DB)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestListPending_OldestFirstAndLimited() {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	third := suite.message(base.Add(2 * time.Second))
	first := suite.message(base)
	second := suite.message(base.Add(time.Second))

	for _, m := range []*outbox.Message{third, first, second} {
		suite.Require().NoError(suite.repository.Add(ctx, m))
	}

	pending, err := suite.repository.ListPending(ctx, 2)

	suite.Require().NoError(err)
	suite.Require().Len(pending, 2)
	suite.True(first.ID().IsEqual(pending[0].ID()))
	suite.True(second.ID().IsEqual(pending[1].ID()))
	suite.JSONEq(`{"hello":"world"}`, string(pending[0].Payload()))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestMarkSent_RemovesFromPending() {
	ctx := context.Background()
	m := suite.message(time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, m))

	m.MarkSent(time.Now())
	suite.Require().NoError(suite.repository.MarkSent(ctx, m))

	pending, err := suite.repository.ListPending(ctx, 10)
	suite.Require().NoError(err)
	suite.Empty(pending)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestMarkSent_Unknown_NotFound() {
	m := suite.message(time.Now())
	m.MarkSent(time.Now())

	err := suite.repository.MarkSent(context.Background(), m)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestListPending_InvalidLimit() {
	_, err := suite.repository.ListPending(context.Background(), 0)

	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}

func (suite *OutboxRepositoryIntegrationTestSuite) message(at time.Time) *outbox.Message {
	m, err := outbox.RestoreMessage(kernel.NewUUID(), kernel.NewUUID(), outbox.EventTypeOrderStatusChanged,
		[]byte(`{"hello":"world"}`), at, nil)
	suite.Require().NoError(err)
	return m
}

func TestOutboxRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(OutboxRepositoryIntegrationTestSuite))
}
