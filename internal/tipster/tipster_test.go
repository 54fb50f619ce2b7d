package tipster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/internal/tipster"
	"github.com/radieske/betx-platform/pkg/contracts/events"
)

var ctx = context.Background()

func draft() tipster.Draft {
	return tipster.Draft{
		Address:  "0x1234abcd",
		Name:     "AlphaEdge",
		Bio:      "Tennis totals since 2019",
		Sports:   "Tennis, Football",
		Strategy: "Serve-hold models",
		Contacts: "@alphaedge",
		Agree:    true,
	}
}

func TestSubmit(t *testing.T) {
	mem := store.NewMemory()
	s := tipster.NewService(mem, nil, zap.NewNop())

	a, err := s.Submit(ctx, draft())
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, tipster.Pending, a.Status)
	assert.Equal(t, tipster.NotStarted, a.StakeStatus)
	assert.True(t, a.BaseFee.Equal(decimal.NewFromInt(10)))
	assert.True(t, a.BonusFee.Equal(decimal.NewFromInt(15)))
	assert.True(t, a.MinStake.Equal(decimal.NewFromInt(500)))
	assert.False(t, a.Listable())

	d := draft()
	d.Name = "CourtIQ"
	d.MinStake = decimal.NewFromInt(750)
	b, err := s.Submit(ctx, d)
	require.NoError(t, err)
	assert.True(t, b.MinStake.Equal(decimal.NewFromInt(750)))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "most recent first")

	var stored []tipster.Application
	ok, err := store.LoadJSON(ctx, mem, tipster.Key, &stored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, stored, 2)
}

func TestSubmit_Validation(t *testing.T) {
	s := tipster.NewService(store.NewMemory(), nil, zap.NewNop())

	d := draft()
	d.Address = ""
	_, err := s.Submit(ctx, d)
	assert.ErrorIs(t, err, tipster.ErrMissingField)
	assert.ErrorContains(t, err, "address")

	d = draft()
	d.Bio, d.Contacts = " ", ""
	_, err = s.Submit(ctx, d)
	assert.ErrorIs(t, err, tipster.ErrMissingField)
	assert.ErrorContains(t, err, "bio, contacts")

	d = draft()
	d.Agree = false
	_, err = s.Submit(ctx, d)
	assert.ErrorIs(t, err, tipster.ErrTermsNotAccepted)

	d = draft()
	d.BaseFee = decimal.NewFromInt(-1)
	_, err = s.Submit(ctx, d)
	assert.ErrorIs(t, err, tipster.ErrInvalidFee)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTwoStageReview(t *testing.T) {
	s := tipster.NewService(store.NewMemory(), nil, zap.NewNop())
	var reviews []string
	s.OnReview = func(stage string, approved bool) {
		if approved {
			reviews = append(reviews, stage+":approved")
		} else {
			reviews = append(reviews, stage+":rejected")
		}
	}

	a, err := s.Submit(ctx, draft())
	require.NoError(t, err)

	_, err = s.ReviewStake(ctx, a.ID, true)
	assert.ErrorIs(t, err, tipster.ErrInvalidTransition, "no stake submitted yet")

	_, err = s.SubmitStake(ctx, a.ID, "")
	assert.ErrorIs(t, err, tipster.ErrMissingField)

	a, err = s.SubmitStake(ctx, a.ID, "0xstake1")
	require.NoError(t, err)
	assert.Equal(t, tipster.Pending, a.StakeStatus)

	_, err = s.SubmitStake(ctx, a.ID, "0xstake2")
	assert.ErrorIs(t, err, tipster.ErrInvalidTransition)

	a, err = s.ReviewStake(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, tipster.Rejected, a.StakeStatus)

	// stake rejeitado pode ser reenviado
	a, err = s.SubmitStake(ctx, a.ID, "0xstake2")
	require.NoError(t, err)
	assert.Equal(t, "0xstake2", a.StakeTxHash)
	a, err = s.ReviewStake(ctx, a.ID, true)
	require.NoError(t, err)
	assert.False(t, a.Listable(), "application itself still pending")

	a, err = s.Review(ctx, a.ID, true, "solid track record")
	require.NoError(t, err)
	assert.Equal(t, tipster.Verified, a.Status)
	assert.Equal(t, "solid track record", a.ReviewNote)
	require.NotNil(t, a.ReviewedAt)
	assert.True(t, a.Listable())

	_, err = s.Review(ctx, a.ID, false, "")
	assert.ErrorIs(t, err, tipster.ErrInvalidTransition)

	listable, err := s.Listable(ctx)
	require.NoError(t, err)
	require.Len(t, listable, 1)
	assert.Equal(t, a.ID, listable[0].ID)

	assert.Equal(t, []string{"stake:rejected", "stake:approved", "application:approved"}, reviews)
}

func TestReview_RejectAndNotFound(t *testing.T) {
	s := tipster.NewService(store.NewMemory(), nil, zap.NewNop())
	a, err := s.Submit(ctx, draft())
	require.NoError(t, err)

	a, err = s.Review(ctx, a.ID, false, "not enough history")
	require.NoError(t, err)
	assert.Equal(t, tipster.Rejected, a.Status)

	listable, err := s.Listable(ctx)
	require.NoError(t, err)
	assert.Empty(t, listable)

	_, err = s.Review(ctx, "missing", true, "")
	assert.ErrorIs(t, err, tipster.ErrNotFound)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, tipster.ErrNotFound)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, tipster.Rejected, got.Status)
}

func TestLoadsExistingApplications(t *testing.T) {
	mem := store.NewMemory()
	// formato antigo: sem status de stake
	require.NoError(t, mem.Save(ctx, tipster.Key, []byte(`[{"id":"a1","address":"0xabc","name":"Old","status":"pending"}]`)))

	s := tipster.NewService(mem, nil, zap.NewNop())
	a, err := s.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, tipster.NotStarted, a.StakeStatus)

	b, err := s.Submit(ctx, draft())
	require.NoError(t, err)
	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID, "a1"}, []string{all[0].ID, all[1].ID})
}

type failingStore struct{ *store.Memory }

func (failingStore) Save(context.Context, string, []byte) error { return errors.New("disk full") }

func TestSaveFailure(t *testing.T) {
	s := tipster.NewService(failingStore{store.NewMemory()}, nil, zap.NewNop())
	_, err := s.Submit(ctx, draft())
	assert.ErrorContains(t, err, "disk full")

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishApplicationUpdated(ctx context.Context, e events.ApplicationUpdated) error {
	return m.Called(ctx, e).Error(0)
}

func TestEvents(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishApplicationUpdated", mock.Anything, mock.MatchedBy(func(e events.ApplicationUpdated) bool {
		return e.Status == "pending" && e.StakeStatus == "not_started" && !e.Listable
	})).Return(nil).Once()
	pub.On("PublishApplicationUpdated", mock.Anything, mock.MatchedBy(func(e events.ApplicationUpdated) bool {
		return e.Status == "verified"
	})).Return(errors.New("broker down")).Once()

	s := tipster.NewService(store.NewMemory(), pub, zap.NewNop())
	var changed int
	s.OnChange = func(tipster.Application) { changed++ }

	a, err := s.Submit(ctx, draft())
	require.NoError(t, err)
	_, err = s.Review(ctx, a.ID, true, "")
	require.NoError(t, err, "publish failure does not undo the review")

	assert.Equal(t, 2, changed)
	pub.AssertExpectations(t)
}

func TestApplicationProfile(t *testing.T) {
	a := tipster.Application{ID: "a1", Name: "AlphaEdge", Bio: "Tennis totals", MinStake: decimal.NewFromInt(750)}
	p := a.Profile()
	assert.Equal(t, "a1", p.ID)
	assert.Equal(t, "AlphaEdge", p.Name)
	assert.Equal(t, "Tennis totals", p.Bio)
	assert.True(t, p.Staked.Equal(decimal.NewFromInt(750)))
	assert.True(t, p.Verified)
	assert.Zero(t, p.TipsCount)
	assert.NotNil(t, p.Recent)
}
