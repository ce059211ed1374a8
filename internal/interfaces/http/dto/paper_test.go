package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-rec-api/internal/domain/entity"
)

func strPtr(s string) *string { return &s }

func TestUpdatePaperRequest_Apply(t *testing.T) {
	paper := &entity.Paper{
		Title:    "old title",
		Abstract: "old abstract",
		Authors:  []string{"a"},
	}
	req := &UpdatePaperRequest{
		Title:           strPtr("new title"),
		PublicationDate: strPtr("2023-04-15"),
	}

	require.NoError(t, req.Apply(paper))

	assert.Equal(t, "new title", paper.Title)
	assert.Equal(t, "old abstract", paper.Abstract)
	assert.Equal(t, []string{"a"}, paper.Authors)
	assert.Equal(t, time.Date(2023, 4, 15, 0, 0, 0, 0, time.UTC), paper.PublicationDate)
}

func TestUpdatePaperRequest_Apply_ClearDate(t *testing.T) {
	paper := &entity.Paper{PublicationDate: time.Now()}

	require.NoError(t, (&UpdatePaperRequest{PublicationDate: strPtr("")}).Apply(paper))

	assert.True(t, paper.PublicationDate.IsZero())
}

func TestUpdatePaperRequest_Apply_BadDate(t *testing.T) {
	paper := &entity.Paper{}
	err := (&UpdatePaperRequest{PublicationDate: strPtr("April 2023")}).Apply(paper)
	assert.Error(t, err)
}

func TestToPaperResponse(t *testing.T) {
	paper := &entity.Paper{
		ContentHash:     "abc123",
		ExternalID:      "W42",
		Title:           "A Paper",
		PublicationDate: time.Date(2021, 9, 1, 0, 0, 0, 0, time.UTC),
	}

	resp := ToPaperResponse(paper)

	require.NotNil(t, resp)
	assert.Equal(t, "abc123", resp.ContentHash)
	assert.Equal(t, "2021-09-01", resp.PublicationDate)

	assert.Nil(t, ToPaperResponse(nil))
}

func TestToPaperResponse_ZeroDateOmitted(t *testing.T) {
	resp := ToPaperResponse(&entity.Paper{ContentHash: "x", Title: "t"})
	assert.Empty(t, resp.PublicationDate)
}
