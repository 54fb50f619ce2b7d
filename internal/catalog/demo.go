package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

func odd(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func drawOdd(s string) *decimal.Decimal {
	d := odd(s)
	return &d
}

// Demo monta o catálogo fixo das páginas de apostas, de tips e do diretório
// de tipsters, com horários relativos a now
func Demo(now time.Time) *Catalog {
	h := time.Hour
	matches := []Match{
		{ID: "m1", Sport: Football, League: "EPL", StartsAt: now.Add(1 * h), TeamA: "Arsenal", TeamB: "Newcastle", Market: Market1x2, Odds: Odds{A: odd("1.86"), Draw: drawOdd("3.6"), B: odd("4.1")}, Trending: true},
		{ID: "m2", Sport: Football, League: "La Liga", StartsAt: now.Add(2 * h), TeamA: "Real Madrid", TeamB: "Sevilla", Market: Market1x2, Odds: Odds{A: odd("1.92"), Draw: drawOdd("3.9"), B: odd("4.8")}},
		{ID: "m3", Sport: Tennis, League: "ATP 500", StartsAt: now.Add(90 * time.Minute), TeamA: "Ruud", TeamB: "De Minaur", Market: MarketMoneyline, Odds: Odds{A: odd("1.72"), B: odd("2.1")}, Trending: true},
		{ID: "m4", Sport: Tennis, League: "WTA 250", StartsAt: now.Add(3 * h), TeamA: "Gauff", TeamB: "Kalinina", Market: MarketMoneyline, Odds: Odds{A: odd("1.48"), B: odd("2.55")}},
		{ID: "m5", Sport: Basketball, League: "EuroLeague", StartsAt: now.Add(150 * time.Minute), TeamA: "Madrid", TeamB: "Fenerbahçe", Market: MarketMoneyline, Odds: Odds{A: odd("1.7"), B: odd("2.15")}, Trending: true},
		{ID: "m6", Sport: Basketball, League: "NBA (Preseason)", StartsAt: now.Add(4 * h), TeamA: "Warriors", TeamB: "Lakers", Market: MarketMoneyline, Odds: Odds{A: odd("1.9"), B: odd("1.95")}},
		{ID: "m7", Sport: Cricket, League: "T20 Series", StartsAt: now.Add(5 * h), TeamA: "India", TeamB: "Australia", Market: MarketMoneyline, Odds: Odds{A: odd("1.75"), B: odd("2.05")}, Trending: true},
		{ID: "m8", Sport: Cricket, League: "ODI", StartsAt: now.Add(7 * h), TeamA: "England", TeamB: "Pakistan", Market: MarketMoneyline, Odds: Odds{A: odd("1.8"), B: odd("2.0")}},
	}

	tips := []Tip{
		{
			ID: "t1", League: "Tennis • ATP", Match: "Ruud vs De Minaur",
			HiddenMarket: "Over 22.5 games", HiddenOdds: odd("1.78"),
			Cutoff:  now.Add(1 * h),
			Tipster: Tipster{Name: "AlphaEdge", WinRate: 64, ROI: 12.4, Streak: 4},
			Price:   decimal.NewFromInt(25),
			Reveal:  "Over 22.5 games @1.78 (enter live if tied late Set 1)",
		},
		{
			ID: "t2", League: "Football • EPL", Match: "Arsenal vs Newcastle",
			HiddenMarket: "1st Half Under 1.5", HiddenOdds: odd("1.52"),
			Cutoff:  now.Add(2 * h),
			Tipster: Tipster{Name: "xGWizard", WinRate: 68, ROI: 15.1, Streak: 6},
			Price:   decimal.NewFromInt(18),
			Reveal:  "1H Under 1.5 @1.52 (hedge if early yellow cluster)",
		},
		{
			ID: "t3", League: "Basketball • EuroLeague", Match: "Real Madrid vs Fenerbahçe",
			HiddenMarket: "Home -4.5 (AH)", HiddenOdds: odd("1.70"),
			Cutoff:  now.Add(3 * h),
			Tipster: Tipster{Name: "CourtIQ", WinRate: 61, ROI: 9.3, Streak: -1},
			Price:   decimal.NewFromInt(16),
			Reveal:  "Real Madrid -4.5 @1.70 (pace-up angle, bench edge)",
		},
	}
	c := New(matches, tips)
	c.profiles = demoProfiles()
	return c
}
