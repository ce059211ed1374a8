package recommend

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/domain/entity"
	wfmodel "scholar-rec-api/internal/workflow/model"
)

func paperFixture(n int, mutate func(i int, p *entity.Paper)) []*entity.Paper {
	papers := make([]*entity.Paper, n)
	for i := range papers {
		papers[i] = &entity.Paper{
			ContentHash:     fmt.Sprintf("hash-%d", i),
			ExternalID:      fmt.Sprintf("W%d", i),
			Title:           fmt.Sprintf("paper %d", i),
			PublicationDate: time.Date(2020+i, 1, 1, 0, 0, 0, 0, time.UTC),
			CitationCount:   i * 10,
			FWCI:            float64(i),
		}
		if mutate != nil {
			mutate(i, papers[i])
		}
	}
	return papers
}

func TestApplyFilterSpec_CitationThreshold(t *testing.T) {
	papers := paperFixture(5, nil) // citation counts 0,10,20,30,40
	spec := wfmodel.FilterSpec{
		"citation_count": {Operator: ">=", Threshold: "20"},
	}

	kept := ApplyFilterSpec(papers, spec, 10)

	require.Len(t, kept, 3)
	assert.Equal(t, "hash-2", kept[0].ContentHash)
	assert.Equal(t, "hash-4", kept[2].ContentHash)
}

func TestApplyFilterSpec_DateThreshold(t *testing.T) {
	papers := paperFixture(4, nil) // years 2020..2023
	spec := wfmodel.FilterSpec{
		"publication_date": {Operator: ">=", Threshold: "2022"},
	}

	kept := ApplyFilterSpec(papers, spec, 10)

	require.Len(t, kept, 2)
	assert.Equal(t, "hash-2", kept[0].ContentHash)
}

func TestApplyFilterSpec_MissingDateFailsDateFilter(t *testing.T) {
	papers := paperFixture(2, func(i int, p *entity.Paper) {
		if i == 0 {
			p.PublicationDate = time.Time{}
		}
	})
	spec := wfmodel.FilterSpec{
		"publication_date": {Operator: ">=", Threshold: "2000-01-01"},
	}

	kept := ApplyFilterSpec(papers, spec, 10)

	require.Len(t, kept, 1)
	assert.Equal(t, "hash-1", kept[0].ContentHash)
}

func TestApplyFilterSpec_PreservesOrderAndCap(t *testing.T) {
	papers := paperFixture(8, nil)
	kept := ApplyFilterSpec(papers, wfmodel.FilterSpec{}, 3)

	require.Len(t, kept, 3)
	assert.Equal(t, []string{"hash-0", "hash-1", "hash-2"},
		[]string{kept[0].ContentHash, kept[1].ContentHash, kept[2].ContentHash})
}

func TestApplyFilterSpec_UnknownMetricIgnored(t *testing.T) {
	papers := paperFixture(3, nil)
	spec := wfmodel.FilterSpec{
		"h_index": {Operator: ">=", Threshold: "1000"},
	}

	assert.Len(t, ApplyFilterSpec(papers, spec, 10), 3)
}

func TestApplyFilterSpec_UnparsableThresholdIgnored(t *testing.T) {
	papers := paperFixture(3, nil)
	spec := wfmodel.FilterSpec{
		"citation_count": {Operator: ">=", Threshold: "many"},
	}

	assert.Len(t, ApplyFilterSpec(papers, spec, 10), 3)
}

func TestApplyFilterSpec_CombinedConditions(t *testing.T) {
	papers := paperFixture(6, nil)
	spec := wfmodel.FilterSpec{
		"citation_count": {Operator: ">", Threshold: "10"},
		"fwci":           {Operator: "<=", Threshold: "4"},
	}

	kept := ApplyFilterSpec(papers, spec, 10)

	require.Len(t, kept, 3) // fwci 2,3,4 且引用 > 10
	assert.Equal(t, "hash-2", kept[0].ContentHash)
	assert.Equal(t, "hash-4", kept[2].ContentHash)
}

func TestClosestMiss(t *testing.T) {
	papers := paperFixture(3, nil) // citations 0,10,20; years 2020..2022
	spec := wfmodel.FilterSpec{
		"citation_count":   {Operator: ">=", Threshold: "1000"},
		"publication_date": {Operator: ">=", Threshold: "2025"},
	}

	miss := ClosestMiss(papers, spec)

	require.Len(t, miss, 2)
	assert.Contains(t, miss["citation_count"], "best available is 20")
	assert.Contains(t, miss["publication_date"], "newest available is 2022-01-01")
}

func TestClosestMiss_UpperBoundReportsMinimum(t *testing.T) {
	papers := paperFixture(3, func(i int, p *entity.Paper) {
		p.CitationCount = []int{40, 900, 120}[i]
	})
	spec := wfmodel.FilterSpec{
		"citation_count":   {Operator: "<=", Threshold: "10"},
		"publication_date": {Operator: "<", Threshold: "2019"},
	}

	miss := ClosestMiss(papers, spec)

	require.Len(t, miss, 2)
	assert.Contains(t, miss["citation_count"], "lowest available is 40")
	assert.Contains(t, miss["publication_date"], "oldest available is 2020-01-01")
}

func TestClosestMiss_NoCandidates(t *testing.T) {
	spec := wfmodel.FilterSpec{"fwci": {Operator: ">=", Threshold: "2"}}
	assert.Nil(t, ClosestMiss(nil, spec))
}
