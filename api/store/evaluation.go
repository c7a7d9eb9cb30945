package store

import (
	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/model"
)

// NextPendingRun takes the oldest queued run that still exists.
func (s *Store) NextPendingRun() (queue.PendingRun, bool, error) {
	for {
		pending, ok, err := s.queue.Dequeue()
		if err != nil || !ok {
			return queue.PendingRun{}, false, err
		}
		s.mutex.RLock()
		_, exists := s.runs[pending.RunID]
		s.mutex.RUnlock()
		if exists {
			return pending, true, nil
		}
		s.logger.Debugw("skipping deleted run", "id", pending.RunID)
	}
}

// Predictions returns the prediction files of run id: the uploaded predictions output
// followed by attached parts in index order.
func (s *Store) Predictions(id int) ([]*File, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fail(CodeRunUnknown, "Unknown run")
	}
	var files []*File
	if r.run.OutputData != nil {
		for _, f := range r.run.OutputData.Files {
			if f.Name == "predictions" {
				if file, ok := s.files[f.FileID]; ok {
					files = append(files, file)
				}
			}
		}
	}
	for _, i := range sortedKeys(r.attachments) {
		if file, ok := s.files[r.attachments[i]]; ok {
			files = append(files, file)
		}
	}
	return files, nil
}

// AddEvaluations records evaluations computed for run id. An evaluation replaces an
// earlier one with the same name, repeat and fold.
func (s *Store) AddEvaluations(id int, evaluations []model.Evaluation) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return fail(CodeRunUnknown, "Unknown run")
	}
	if r.run.OutputData == nil {
		r.run.OutputData = &model.OutputData{}
	}
	for _, e := range evaluations {
		replaced := false
		for i, old := range r.run.OutputData.Evaluations {
			if old.Name == e.Name && sameOptInt(old.Repeat, e.Repeat) && sameOptInt(old.Fold, e.Fold) {
				r.run.OutputData.Evaluations[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			r.run.OutputData.Evaluations = append(r.run.OutputData.Evaluations, e)
		}
	}
	return nil
}

func sameOptInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
