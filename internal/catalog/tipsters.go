package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ProfileSort ordena o diretório de tipsters (sempre decrescente)
type ProfileSort string

const (
	ByROI     ProfileSort = "roi"
	ByWinRate ProfileSort = "winrate"
	ByTips    ProfileSort = "tips"
)

type RecentResult struct {
	Match  string `json:"match"`
	Result string `json:"result"` // "W" | "L"
}

// Profile é o cartão do diretório de tipsters.
// Streak positivo é sequência de vitórias, negativo de derrotas.
type Profile struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Bio       string          `json:"bio"`
	WinRate   float64         `json:"winRate"`
	ROI       float64         `json:"roi"`
	TipsCount int             `json:"tipsCount"`
	Streak    int             `json:"streak"`
	Staked    decimal.Decimal `json:"stakedBETX"`
	Recent    []RecentResult  `json:"recent"`
	Verified  bool            `json:"verified,omitempty"` // veio de candidatura aprovada
}

// StreakLabel formata como a UI: W4, L1
func (p Profile) StreakLabel() string {
	if p.Streak < 0 {
		return fmt.Sprintf("L%d", -p.Streak)
	}
	return fmt.Sprintf("W%d", p.Streak)
}

// Tipsters busca no diretório demo
func (c *Catalog) Tipsters(query string, by ProfileSort) []Profile {
	return SearchProfiles(c.profiles, query, by)
}

// SearchProfiles filtra por nome ou bio e ordena; sort desconhecido usa ROI
func SearchProfiles(profiles []Profile, query string, by ProfileSort) []Profile {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []Profile{}
	for _, p := range profiles {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Bio), q) {
			out = append(out, p)
		}
	}
	switch by {
	case ByWinRate:
		sort.SliceStable(out, func(i, j int) bool { return out[i].WinRate > out[j].WinRate })
	case ByTips:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TipsCount > out[j].TipsCount })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ROI > out[j].ROI })
	}
	return out
}

func demoProfiles() []Profile {
	return []Profile{
		{
			ID: "s1", Name: "AlphaEdge",
			Bio:     "Tennis macro + live entry edges. Focus on totals and momentum swings.",
			WinRate: 64, ROI: 12.4, TipsCount: 382, Streak: 4, Staked: decimal.NewFromInt(1200),
			Recent: []RecentResult{
				{Match: "Ruud vs De Minaur", Result: "W"},
				{Match: "Hurkacz vs Fritz", Result: "W"},
				{Match: "Sinner vs Rublev", Result: "W"},
				{Match: "Tiafoe vs Paul", Result: "L"},
			},
		},
		{
			ID: "s2", Name: "xGWizard",
			Bio:     "Football modeler. xG-based unders and early-card tempo reads.",
			WinRate: 68, ROI: 15.1, TipsCount: 521, Streak: 6, Staked: decimal.NewFromInt(1500),
			Recent: []RecentResult{
				{Match: "Arsenal vs Newcastle", Result: "W"},
				{Match: "City vs Villa", Result: "W"},
				{Match: "Liverpool vs Spurs", Result: "W"},
				{Match: "Chelsea vs Wolves", Result: "W"},
			},
		},
		{
			ID: "s3", Name: "CourtIQ",
			Bio:     "Basketball pace & lineup edges. Asian handicaps and late steam.",
			WinRate: 61, ROI: 9.3, TipsCount: 244, Streak: -1, Staked: decimal.NewFromInt(800),
			Recent: []RecentResult{
				{Match: "Madrid vs Fenerbahçe", Result: "L"},
				{Match: "Barça vs Monaco", Result: "W"},
				{Match: "PAO vs OLY", Result: "W"},
			},
		},
	}
}
