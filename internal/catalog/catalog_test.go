package catalog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/betx-platform/internal/catalog"
)

func TestDemoMatches(t *testing.T) {
	c := catalog.Demo(time.Now())

	assert.Len(t, c.Matches(""), 8)
	assert.Len(t, c.Matches(catalog.Tennis), 2)
	assert.Len(t, c.Trending(), 4)

	m, err := c.Match("m1")
	require.NoError(t, err)
	require.NotNil(t, m.Odds.Draw)
	assert.Equal(t, "3.6", m.Odds.Draw.String())

	m3, err := c.Match("m3")
	require.NoError(t, err)
	assert.Nil(t, m3.Odds.Draw)

	_, err = c.Match("m99")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestTipsSearchAndSort(t *testing.T) {
	c := catalog.Demo(time.Now())

	ids := func(tips []catalog.Tip) []string {
		var out []string
		for _, t := range tips {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(c.Tips("", catalog.SortSoon)))
	assert.Equal(t, []string{"t2", "t1", "t3"}, ids(c.Tips("", catalog.SortWinRate)))
	assert.Equal(t, []string{"t3", "t2", "t1"}, ids(c.Tips("", catalog.SortPrice)))
	assert.Equal(t, []string{"t2"}, ids(c.Tips("xgwiz", "")))
	assert.Empty(t, c.Tips("cricket", catalog.SortSoon))
}

func TestTipOpen(t *testing.T) {
	now := time.Now()
	tip, err := catalog.Demo(now).Tip("t1")
	require.NoError(t, err)
	assert.True(t, tip.Open(now))
	assert.False(t, tip.Open(now.Add(2*time.Hour)))
}

func TestTipsterDirectory(t *testing.T) {
	c := catalog.Demo(time.Now())

	names := func(ps []catalog.Profile) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"xGWizard", "AlphaEdge", "CourtIQ"}, names(c.Tipsters("", catalog.ByROI)))
	assert.Equal(t, []string{"xGWizard", "AlphaEdge", "CourtIQ"}, names(c.Tipsters("", catalog.ByWinRate)))
	assert.Equal(t, []string{"xGWizard", "AlphaEdge", "CourtIQ"}, names(c.Tipsters("", "")))
	assert.Equal(t, []string{"CourtIQ"}, names(c.Tipsters("ASIAN handicaps", catalog.ByTips)))
	assert.Equal(t, []string{"AlphaEdge"}, names(c.Tipsters("alpha", catalog.ByTips)))
	assert.Empty(t, c.Tipsters("cricket", catalog.ByROI))
}

func TestSearchProfiles_SortByTips(t *testing.T) {
	ps := []catalog.Profile{
		{Name: "Few", TipsCount: 10, ROI: 30},
		{Name: "Many", TipsCount: 900, ROI: 1},
		{Name: "Mid", TipsCount: 100, ROI: 5},
	}
	got := catalog.SearchProfiles(ps, "", catalog.ByTips)
	require.Len(t, got, 3)
	assert.Equal(t, "Many", got[0].Name)
	assert.Equal(t, "Mid", got[1].Name)
	assert.Equal(t, "Few", got[2].Name)
}

func TestStreakLabel(t *testing.T) {
	assert.Equal(t, "W4", catalog.Profile{Streak: 4}.StreakLabel())
	assert.Equal(t, "L1", catalog.Profile{Streak: -1}.StreakLabel())
	assert.Equal(t, "W0", catalog.Profile{}.StreakLabel())
}
