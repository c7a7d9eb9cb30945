package pipeline

import (
	"sort"
	"strconv"

	"github.com/openml/openml-go/api/store"
	"github.com/openml/openml-go/model"
	"github.com/pkg/errors"
)

// MeasurePredictiveAccuracy is the evaluation measure computed from prediction files.
const MeasurePredictiveAccuracy = "predictive_accuracy"

type foldKey struct {
	repeat int
	fold   int
}

type tally struct {
	correct int
	total   int
}

func (t tally) accuracy() *string {
	v := strconv.FormatFloat(float64(t.correct)/float64(t.total), 'f', -1, 64)
	return &v
}

// Score computes predictive accuracy over prediction files. Each file needs prediction
// and correct columns; repeat and fold columns, when present, also produce per-fold
// accuracies.
func Score(files []*store.File) ([]model.Evaluation, error) {
	var overall tally
	folds := map[foldKey]*tally{}
	for _, f := range files {
		records, err := store.ARFFRecords(f.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f.Name)
		}
		columns := map[string]int{}
		for i, name := range records[0] {
			columns[name] = i
		}
		prediction, okP := columns["prediction"]
		correct, okC := columns["correct"]
		if !okP || !okC {
			return nil, errors.Errorf("%s has no prediction and correct columns", f.Name)
		}
		repeatCol, hasRepeat := columns["repeat"]
		foldCol, hasFold := columns["fold"]

		for _, row := range records[1:] {
			hit := row[prediction] != "" && row[prediction] == row[correct]
			overall.total++
			if hit {
				overall.correct++
			}
			if !hasFold {
				continue
			}
			key := foldKey{}
			if key.fold, err = strconv.Atoi(row[foldCol]); err != nil {
				return nil, errors.Errorf("%s has a non numeric fold %q", f.Name, row[foldCol])
			}
			if hasRepeat {
				if key.repeat, err = strconv.Atoi(row[repeatCol]); err != nil {
					return nil, errors.Errorf("%s has a non numeric repeat %q", f.Name, row[repeatCol])
				}
			}
			t, ok := folds[key]
			if !ok {
				t = &tally{}
				folds[key] = t
			}
			t.total++
			if hit {
				t.correct++
			}
		}
	}
	if overall.total == 0 {
		return nil, errors.New("no predictions to score")
	}

	evaluations := []model.Evaluation{{Name: MeasurePredictiveAccuracy, Value: overall.accuracy()}}
	keys := make([]foldKey, 0, len(folds))
	for k := range folds {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].repeat != keys[j].repeat {
			return keys[i].repeat < keys[j].repeat
		}
		return keys[i].fold < keys[j].fold
	})
	for _, k := range keys {
		repeat, fold := k.repeat, k.fold
		evaluations = append(evaluations, model.Evaluation{
			Name:   MeasurePredictiveAccuracy,
			Repeat: &repeat,
			Fold:   &fold,
			Value:  folds[k].accuracy(),
		})
	}
	return evaluations, nil
}
