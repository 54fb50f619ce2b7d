package slip_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/ledger"
	"github.com/radieske/betx-platform/internal/payout"
	"github.com/radieske/betx-platform/internal/slip"
	"github.com/radieske/betx-platform/internal/store"
	"github.com/radieske/betx-platform/pkg/contracts/events"
	"github.com/radieske/betx-platform/pkg/currency"
)

var ctx = context.Background()

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func match(t *testing.T, id string) catalog.Match {
	t.Helper()
	m, err := catalog.Demo(time.Now()).Match(id)
	require.NoError(t, err)
	return m
}

func fundedWallet(t *testing.T, user string, amount string) *ledger.Ledger[currency.Wallet] {
	t.Helper()
	l := ledger.NewWallet(store.NewMemory(), zap.NewNop())
	_, err := l.Credit(ctx, user, currency.USDT, dec(amount))
	require.NoError(t, err)
	return l
}

func TestAddPick(t *testing.T) {
	s := slip.New()
	m1 := match(t, "m1")

	added, err := s.AddPick(m1, slip.Home)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddPick(m1, slip.Home)
	require.NoError(t, err)
	assert.False(t, added, "duplicate pick is a no-op")

	_, err = s.AddPick(m1, slip.Draw)
	require.NoError(t, err)
	_, err = s.AddPick(m1, slip.Away)
	require.NoError(t, err)

	picks := s.Picks()
	require.Len(t, picks, 3)
	assert.Equal(t, "m1-A", picks[0].ID)
	assert.Equal(t, "Arsenal", picks[0].Label)
	assert.Equal(t, "Draw", picks[1].Label)
	assert.True(t, picks[1].Odds.Equal(dec("3.6")))
	assert.Equal(t, "Newcastle", picks[2].Label)
}

func TestAddPick_NoDrawMarket(t *testing.T) {
	s := slip.New()
	_, err := s.AddPick(match(t, "m3"), slip.Draw)
	assert.ErrorIs(t, err, slip.ErrInvalidOutcome)
	assert.Zero(t, s.Len())

	_, err = s.AddPick(match(t, "m3"), slip.Outcome("X2"))
	assert.ErrorIs(t, err, slip.ErrInvalidOutcome)
}

func TestRemoveAndClear(t *testing.T) {
	s := slip.New()
	_, _ = s.AddPick(match(t, "m1"), slip.Home)
	_, _ = s.AddPick(match(t, "m2"), slip.Away)

	assert.False(t, s.RemovePick("m9-A"))
	assert.True(t, s.RemovePick("m1-A"))
	require.Len(t, s.Picks(), 1)
	assert.Equal(t, "m2-B", s.Picks()[0].ID)

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestModeAndView(t *testing.T) {
	s := slip.New()
	assert.Equal(t, payout.Parlay, s.Mode())
	assert.ErrorIs(t, s.SetMode("teaser"), slip.ErrInvalidMode)

	m1 := match(t, "m1")
	_, _ = s.AddPick(m1, slip.Home)
	_, _ = s.AddPick(m1, slip.Draw)
	_, _ = s.AddPick(m1, slip.Away)

	v := s.View(dec("50"))
	assert.Equal(t, "1372.68", v.Payout.Potential.StringFixed(2))
	assert.Len(t, v.Picks, 3)

	require.NoError(t, s.SetMode(payout.Single))
	assert.Equal(t, "286.80", s.Payout(dec("90")).Potential.StringFixed(2))
}

func TestPlaceBet_Validation(t *testing.T) {
	l := fundedWallet(t, "u1", "100")
	s := slip.New()

	_, err := s.PlaceBet(ctx, l, "u1", currency.USDT, dec("10"))
	assert.ErrorIs(t, err, slip.ErrNoSelections)

	_, _ = s.AddPick(match(t, "m1"), slip.Home)
	_, err = s.PlaceBet(ctx, l, "u1", currency.USDT, decimal.Zero)
	assert.ErrorIs(t, err, slip.ErrInvalidStake)
	_, err = s.PlaceBet(ctx, l, "u1", currency.USDT, dec("-5"))
	assert.ErrorIs(t, err, slip.ErrInvalidStake)

	_, err = s.PlaceBet(ctx, l, "u1", currency.USDT, dec("100.01"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	// nada muda em caso de falha
	assert.Equal(t, 1, s.Len())
	bal, err := l.Balance(ctx, "u1", currency.USDT)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("100")))
}

func TestPlaceBet_StakeIsRoundedBeforeDebit(t *testing.T) {
	l := fundedWallet(t, "u1", "100")
	s := slip.New()
	_, _ = s.AddPick(match(t, "m1"), slip.Home)

	_, err := s.PlaceBet(ctx, l, "u1", currency.USDT, dec("0.004"))
	assert.ErrorIs(t, err, slip.ErrInvalidStake)
	assert.Equal(t, 1, s.Len())

	r, err := s.PlaceBet(ctx, l, "u1", currency.USDT, dec("10.005"))
	require.NoError(t, err)
	assert.Equal(t, "10.01", r.Stake.StringFixed(2))
	assert.True(t, r.Stake.Equal(dec("10.01")), "ticket stake equals debited amount")
	assert.True(t, r.Balance.Equal(dec("89.99")))
}

func TestPlaceBet_Success(t *testing.T) {
	l := fundedWallet(t, "u1", "100")
	s := slip.New()
	m1 := match(t, "m1")
	_, _ = s.AddPick(m1, slip.Home)
	_, _ = s.AddPick(m1, slip.Draw)
	_, _ = s.AddPick(m1, slip.Away)

	r, err := s.PlaceBet(ctx, l, "u1", currency.USDT, dec("50"))
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9A-Z]{6}$`, r.Ticket)
	assert.Equal(t, payout.Parlay, r.Mode)
	assert.Equal(t, "1372.68", r.Potential.StringFixed(2))
	assert.Len(t, r.Picks, 3)
	assert.True(t, r.Balance.Equal(dec("50")))
	assert.Zero(t, s.Len(), "slip is cleared after placement")

	bal, err := l.Balance(ctx, "u1", currency.USDT)
	require.NoError(t, err)
	assert.True(t, bal.Equal(dec("50")))
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	return m.Called(ctx, e).Error(0)
}

func TestBook_Place(t *testing.T) {
	l := fundedWallet(t, "u1", "100")
	pub := &mockPublisher{}
	pub.On("PublishBetPlaced", mock.Anything, mock.MatchedBy(func(e events.BetPlaced) bool {
		return e.UserKey == "u1" && e.Stake == "20" && e.Mode == "parlay" && len(e.Picks) == 1
	})).Return(errors.New("broker down")).Once()

	b := slip.NewBook(l, pub, zap.NewNop())
	var placed []slip.Receipt
	b.OnPlaced = func(r slip.Receipt) { placed = append(placed, r) }

	assert.Same(t, b.Slip("u1"), b.Slip("u1"))
	assert.NotSame(t, b.Slip("u1"), b.Slip("u2"))

	_, err := b.Slip("u1").AddPick(match(t, "m3"), slip.Away)
	require.NoError(t, err)

	r, err := b.Place(ctx, "u1", currency.USDT, dec("20"))
	require.NoError(t, err, "publish failure does not undo the bet")
	assert.Equal(t, "42.00", r.Potential.StringFixed(2))
	require.Len(t, placed, 1)
	pub.AssertExpectations(t)

	_, err = b.Place(ctx, "u1", currency.USDT, dec("20"))
	assert.ErrorIs(t, err, slip.ErrNoSelections)
	assert.Len(t, placed, 1)
}

func TestParseOutcome(t *testing.T) {
	for in, want := range map[string]slip.Outcome{"A": slip.Home, "home": slip.Home, "Draw": slip.Draw, " b ": slip.Away} {
		got, err := slip.ParseOutcome(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := slip.ParseOutcome("over")
	assert.ErrorIs(t, err, slip.ErrInvalidOutcome)
}
