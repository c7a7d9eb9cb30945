package pipeline

import (
	"os"
	"testing"

	"github.com/openml/openml-go/api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, name string) []byte {
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestScoreFolds(t *testing.T) {
	evaluations, err := Score([]*store.File{{Name: "predictions.arff", Data: readFile(t, "predictions.arff")}})
	require.NoError(t, err)
	require.Len(t, evaluations, 3)

	assert.Equal(t, MeasurePredictiveAccuracy, evaluations[0].Name)
	assert.Nil(t, evaluations[0].Fold)
	assert.Equal(t, "0.75", *evaluations[0].Value)

	assert.Equal(t, 0, *evaluations[1].Repeat)
	assert.Equal(t, 0, *evaluations[1].Fold)
	assert.Equal(t, "0.5", *evaluations[1].Value)
	assert.Equal(t, 1, *evaluations[2].Fold)
	assert.Equal(t, "1", *evaluations[2].Value)
}

func TestScoreAcrossFiles(t *testing.T) {
	part := []byte("@relation p\n@attribute prediction {a,b}\n@attribute correct {a,b}\n@data\na,a\nb,a\n")
	evaluations, err := Score([]*store.File{{Name: "p0", Data: part}, {Name: "p1", Data: part}})
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	assert.Equal(t, "0.5", *evaluations[0].Value)
}

func TestScoreErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not arff", "hello"},
		{"no correct column", "@relation p\n@attribute prediction {a}\n@data\na\n"},
		{"no rows", "@relation p\n@attribute prediction {a}\n@attribute correct {a}\n@data\n"},
		{"bad fold", "@relation p\n@attribute fold string\n@attribute prediction {a}\n@attribute correct {a}\n@data\nx,a,a\n"},
		{"short row", "@relation p\n@attribute repeat numeric\n@attribute fold numeric\n@attribute prediction {a}\n@attribute correct {a}\n@data\n0,0,a,a\n1,0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score([]*store.File{{Name: "p", Data: []byte(tt.data)}})
			assert.Error(t, err)
		})
	}
}
