// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoLabAI/AutoLabDrive/services/research/datatypes"
)

func TestCorpusSearch_Deterministic(t *testing.T) {
	producer := NewCorpusProducer()
	query := Query{Keywords: []string{"pedestrian", "safety"}, YearWindow: [2]int{2020, 2024}}

	first, err := producer.Search(context.Background(), query)
	require.NoError(t, err)
	second, err := producer.Search(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestCorpusSearch_YearWindowFilter(t *testing.T) {
	producer := NewCorpusProducer()

	papers, err := producer.Search(context.Background(), Query{YearWindow: [2]int{2023, 2023}, Limit: 20})
	require.NoError(t, err)
	require.NotEmpty(t, papers)
	for _, paper := range papers {
		assert.Equal(t, 2023, paper.Year)
	}
}

func TestCorpusSearch_MethodCategoryFilter(t *testing.T) {
	producer := NewCorpusProducer()

	papers, err := producer.Search(context.Background(), Query{
		MethodCategories: []string{"Safety_Verification"},
		Limit:            20,
	})
	require.NoError(t, err)
	require.NotEmpty(t, papers)
	for _, paper := range papers {
		assert.Equal(t, "safety_verification", paper.MethodCategory)
	}
}

func TestCorpusSearch_RanksByKeywordOverlap(t *testing.T) {
	producer := NewCorpusProducerWith([]datatypes.Paper{
		{Title: "Braking Control", Year: 2022, Abstract: "lead vehicle braking", MethodCategory: "model_based_control"},
		{Title: "Pedestrian Braking", Year: 2021, Abstract: "pedestrian crossing with emergency braking"},
		{Title: "Unrelated Survey", Year: 2023, Abstract: "mapping overview"},
	})

	papers, err := producer.Search(context.Background(), Query{Keywords: []string{"pedestrian", "braking"}})
	require.NoError(t, err)
	require.Len(t, papers, 3)

	assert.Equal(t, "Pedestrian Braking", papers[0].Title)
	assert.Equal(t, 2.0, papers[0].RelevanceScore)
	assert.Equal(t, "Braking Control", papers[1].Title)
	// Zero-overlap papers stay in the result set at relevance 0.
	assert.Equal(t, "Unrelated Survey", papers[2].Title)
	assert.Equal(t, 0.0, papers[2].RelevanceScore)
}

func TestCorpusSearch_AppliesLimit(t *testing.T) {
	producer := NewCorpusProducer()

	papers, err := producer.Search(context.Background(), Query{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, papers, 3)

	all, err := producer.Search(context.Background(), Query{Limit: 100})
	require.NoError(t, err)
	assert.Greater(t, len(all), DefaultLimit)

	defaulted, err := producer.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, defaulted, DefaultLimit)
}

func TestCorpusSearch_CanceledContext(t *testing.T) {
	producer := NewCorpusProducer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := producer.Search(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
}
