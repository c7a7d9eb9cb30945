package store

import (
	"testing"

	"github.com/openml/openml-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qualityValue(t *testing.T, qualities []model.Quality, name string) *float64 {
	dq := model.DataQuality{Qualities: qualities}
	q, ok := dq.Get(name)
	require.True(t, ok, "quality %s missing", name)
	v, ok, err := q.Float()
	require.NoError(t, err)
	if !ok {
		return nil
	}
	return &v
}

func TestAnalyzeIris(t *testing.T) {
	a, err := AnalyzeARFF(readFile(t, "iris.arff"), "class", "", []string{"petalwidth"})
	require.NoError(t, err)

	assert.Equal(t, "iris", a.Relation)
	require.Len(t, a.Features, 5)
	assert.Equal(t, "sepalwidth", a.Features[1].Name)
	assert.Equal(t, "numeric", a.Features[1].DataType)
	assert.True(t, a.Features[3].IsIgnore)
	assert.Equal(t, "nominal", a.Features[4].DataType)
	assert.Equal(t, []string{"Iris-setosa", "Iris-versicolor", "Iris-virginica"}, a.Features[4].NominalValues)

	require.Len(t, a.Qualities, len(QualityNames))
	expected := map[string]float64{
		QualityNumberOfInstances:                  10,
		QualityNumberOfFeatures:                   5,
		QualityNumberOfNumericFeatures:            4,
		QualityNumberOfSymbolicFeatures:           1,
		QualityNumberOfMissingValues:              1,
		QualityNumberOfInstancesWithMissingValues: 1,
		QualityNumberOfClasses:                    3,
		QualityMajorityClassSize:                  4,
		QualityMinorityClassSize:                  3,
		QualityDimensionality:                     0.5,
	}
	for name, want := range expected {
		got := qualityValue(t, a.Qualities, name)
		require.NotNil(t, got, name)
		assert.InDelta(t, want, *got, 1e-9, name)
	}
	assert.NotNil(t, qualityValue(t, a.Qualities, QualityMeanOfMeansOfNumericAtts))
}

func TestAnalyzeQuotedValues(t *testing.T) {
	a, err := AnalyzeARFF(readFile(t, "cpu.arff"), "class", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "cpu", a.Relation)
	assert.Equal(t, "string", a.Features[2].DataType)
	assert.Nil(t, qualityValue(t, a.Qualities, QualityNumberOfClasses))
	assert.Nil(t, qualityValue(t, a.Qualities, QualityMajorityClassSize))
	assert.Equal(t, 3.0, *qualityValue(t, a.Qualities, QualityNumberOfInstances))
}

func TestAnalyzeErrors(t *testing.T) {
	cases := map[string]string{
		"no data":       "@relation r\n@attribute a numeric\n",
		"no attributes": "@relation r\n@data\n",
		"wrong arity":   "@relation r\n@attribute a numeric\n@data\n1,2\n",
		"short row":     "@relation r\n@attribute a numeric\n@attribute b numeric\n@data\n1,2\n3\n",
		"not numeric":   "@relation r\n@attribute a numeric\n@data\nx\n",
		"not nominal":   "@relation r\n@attribute a {x,y}\n@data\nz\n",
		"bad type":      "@relation r\n@attribute a relational\n@data\n",
		"sparse":        "@relation r\n@attribute a numeric\n@data\n{0 1}\n",
		"unterminated":  "@relation r\n@attribute a string\n@data\n'abc\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := AnalyzeARFF([]byte(doc), "", "", nil)
			assert.Error(t, err)
		})
	}
}

func TestSplitValues(t *testing.T) {
	values, err := splitValues(` 1, 'a b' ,"c,d",?, '?'`)
	require.NoError(t, err)
	require.Len(t, values, 5)
	assert.Equal(t, value{text: "1"}, values[0])
	assert.Equal(t, value{text: "a b", quoted: true}, values[1])
	assert.Equal(t, value{text: "c,d", quoted: true}, values[2])
	assert.Equal(t, value{text: "?"}, values[3])
	assert.Equal(t, value{text: "?", quoted: true}, values[4])
}
