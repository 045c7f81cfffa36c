package ingest

import (
	"strings"
	"testing"

	"plato/domain/dataset"

	"github.com/stretchr/testify/assert"
)

func TestReadCSV_InfersColumnKinds(t *testing.T) {
	csv := strings.NewReader(
		"name,age,score\n" +
			"alice,20,1.5\n" +
			"bob,30,2.5\n" +
			"carol,NA,3.5\n")

	ds, err := ReadCSV(csv)
	assert.NoError(t, err)
	assert.Equal(t, 3, ds.Rows())

	name, _ := ds.Column("name")
	assert.Equal(t, dataset.KindCategorical, name.Kind)

	age, _ := ds.Column("age")
	assert.Equal(t, dataset.KindNumeric, age.Kind)
	assert.Equal(t, []float64{20, 30}, age.NumericValues())
	assert.True(t, age.Values[2].Missing, "NA becomes a missing marker")

	score, _ := ds.Column("score")
	assert.Equal(t, dataset.KindNumeric, score.Kind)
}

func TestReadCSV_MostlyNumericColumnCoercesStragglers(t *testing.T) {
	rows := []string{"v"}
	for i := 0; i < 9; i++ {
		rows = append(rows, "1.0")
	}
	rows = append(rows, "oops")

	ds, err := ReadCSV(strings.NewReader(strings.Join(rows, "\n")))
	assert.NoError(t, err)

	col, _ := ds.Column("v")
	assert.Equal(t, dataset.KindNumeric, col.Kind, "90% parseable clears the numeric threshold")
	assert.Equal(t, 1, col.MissingCount(), "the unparseable cell becomes missing")
}

func TestReadCSV_MixedColumnStaysCategorical(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("v\n1\nred\nblue\n2\n"))
	assert.NoError(t, err)

	col, _ := ds.Column("v")
	assert.Equal(t, dataset.KindCategorical, col.Kind)
	assert.Equal(t, []string{"1", "red", "blue", "2"}, col.Categories())
}

func TestReadCSV_MissingMarkerSpellings(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("v\n1\nna\nNaN\nnull\nNone\n\n2\n"))
	assert.NoError(t, err)

	col, _ := ds.Column("v")
	assert.Equal(t, 5, col.MissingCount())
	assert.Equal(t, []float64{1, 2}, col.NumericValues())
}

func TestReadCSV_RaggedRowsPadWithMissing(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("a,b\n1,2\n3\n"))
	assert.NoError(t, err)

	b, _ := ds.Column("b")
	assert.True(t, b.Values[1].Missing)
}

func TestReadCSV_EmptyInput(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestBuildDataset_NoHeader(t *testing.T) {
	_, err := BuildDataset(nil, nil)
	assert.Error(t, err)
}
