package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdValue_UnmarshalStringAndNumber(t *testing.T) {
	var spec FilterSpec
	raw := `{
		"publication_date": {"operator": ">=", "threshold": "2022-06-01"},
		"citation_count":   {"operator": ">",  "threshold": 100},
		"fwci":             {"operator": ">=", "threshold": 1.5}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))

	assert.Equal(t, ThresholdValue("2022-06-01"), spec["publication_date"].Threshold)
	assert.Equal(t, ThresholdValue("100"), spec["citation_count"].Threshold)
	assert.Equal(t, ThresholdValue("1.5"), spec["fwci"].Threshold)
}

func TestThresholdValue_Float(t *testing.T) {
	f, ok := ThresholdValue("42.5").Float()
	require.True(t, ok)
	assert.Equal(t, 42.5, f)

	f, ok = ThresholdValue(" 10 ").Float()
	require.True(t, ok)
	assert.Equal(t, 10.0, f)

	_, ok = ThresholdValue("2022-01-01").Float()
	assert.False(t, ok)

	_, ok = ThresholdValue("").Float()
	assert.False(t, ok)
}

func TestThresholdValue_Date(t *testing.T) {
	d, ok := ThresholdValue("2022-06-01").Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC), d)

	// 纯年份按当年 1 月 1 日处理
	d, ok = ThresholdValue("2020").Date()
	require.True(t, ok)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), d)

	_, ok = ThresholdValue("42").Date()
	assert.False(t, ok)

	_, ok = ThresholdValue("recently").Date()
	assert.False(t, ok)
}

func TestValidQCAction(t *testing.T) {
	for _, a := range []QCAction{
		QCActionAccept, QCActionReformulate, QCActionNarrow,
		QCActionBroaden, QCActionSplit, QCActionOutOfScope,
	} {
		assert.True(t, ValidQCAction(a))
	}
	assert.False(t, ValidQCAction("retry"))
	assert.False(t, ValidQCAction(""))
}

func TestQCAction_NeedsRefinement(t *testing.T) {
	assert.True(t, QCActionReformulate.NeedsRefinement())
	assert.True(t, QCActionNarrow.NeedsRefinement())
	assert.True(t, QCActionBroaden.NeedsRefinement())
	assert.False(t, QCActionAccept.NeedsRefinement())
	assert.False(t, QCActionSplit.NeedsRefinement())
	assert.False(t, QCActionOutOfScope.NeedsRefinement())
}

func TestQCDecision_Unmarshal(t *testing.T) {
	var d QCDecision
	require.NoError(t, json.Unmarshal([]byte(`{"qc_decision": "split", "reason": "two topics"}`), &d))
	assert.Equal(t, QCActionSplit, d.Action)
	assert.Equal(t, "two topics", d.Reason)
}
