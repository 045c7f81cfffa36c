package testkit

import (
	"testing"

	"plato/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func TestSurveyDataGenerator_Basic(t *testing.T) {
	config := SurveyGeneratorConfig{
		RowCount:      50,
		MissingRate:   0.1,
		DuplicateRate: 0.1,
		Seed:          42,
	}

	ds, err := NewSurveyDataGenerator(config).Generate()
	assert.NoError(t, err)

	assert.GreaterOrEqual(t, ds.Rows(), config.RowCount, "duplicates only add rows")
	assert.Equal(t, []string{"age", "income", "score", "group", "color"}, ds.ColumnNames())

	age, _ := ds.Column("age")
	assert.Equal(t, dataset.KindNumeric, age.Kind)
	group, _ := ds.Column("group")
	assert.Equal(t, dataset.KindCategorical, group.Kind)
}

func TestSurveyDataGenerator_Deterministic(t *testing.T) {
	config := DefaultSurveyConfig()

	a, err := NewSurveyDataGenerator(config).Generate()
	assert.NoError(t, err)
	b, err := NewSurveyDataGenerator(config).Generate()
	assert.NoError(t, err)

	assert.Equal(t, a.Rows(), b.Rows())
	for i := range a.Columns {
		for j := range a.Columns[i].Values {
			assert.True(t, a.Columns[i].Values[j].Equal(b.Columns[i].Values[j]),
				"column %s row %d differs between seeded runs", a.Columns[i].Name, j)
		}
	}
}

func TestSurveyDataGenerator_InjectsMissingValues(t *testing.T) {
	config := SurveyGeneratorConfig{RowCount: 500, MissingRate: 0.2, Seed: 7}

	ds, err := NewSurveyDataGenerator(config).Generate()
	assert.NoError(t, err)

	missing := 0
	for i := range ds.Columns {
		missing += ds.Columns[i].MissingCount()
	}
	assert.Greater(t, missing, 0)
}

func TestSurveyDataGenerator_RejectsNonPositiveRowCount(t *testing.T) {
	_, err := NewSurveyDataGenerator(SurveyGeneratorConfig{RowCount: 0}).Generate()
	assert.Error(t, err)
}
