package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/openml/openml-go/api/queue"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
)

// RunUpload is a run upload as received by the service.
type RunUpload struct {
	Description []byte
	// Outputs maps output names, such as predictions, to file contents.
	Outputs map[string][]byte
	BaseURL string
}

// UploadRun stores a run with its output files, queues it for evaluation and returns
// its id.
func (s *Store) UploadRun(u *User, upload RunUpload) (int, error) {
	if u == nil {
		return 0, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	if err := s.validate("openml.run.upload", upload.Description, CodeRunDescription); err != nil {
		return 0, err
	}
	desc, err := model.RunTable.Unmarshal(upload.Description)
	if err != nil {
		return 0, fail(CodeRunDescription, "Problem validating uploaded description file", err.Error())
	}
	for name, data := range upload.Outputs {
		if _, err := ARFFRecords(data); err != nil {
			return 0, fail(CodeRunOutputUnreadable, "Problem reading uploaded output file", name+": "+err.Error())
		}
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	t, ok := s.tasks[desc.TaskID]
	if !ok {
		return 0, fail(CodeRunUnknownTask, "Unknown task", strconv.Itoa(desc.TaskID))
	}

	id := s.next("run")
	r := model.Run{
		RunID:             intPtr(id),
		Uploader:          intPtr(u.ID),
		UploaderName:      xmlmap.String(u.Name),
		TaskID:            desc.TaskID,
		TaskType:          xmlmap.String(t.task.TaskType),
		FlowID:            desc.FlowID,
		FlowName:          desc.FlowName,
		SetupID:           intPtr(s.setup(desc)),
		SetupString:       desc.SetupString,
		ErrorMessage:      desc.ErrorMessage,
		Tags:              model.NormalizeTags(desc.Tags),
		ParameterSettings: append([]model.ParameterSetting(nil), desc.ParameterSettings...),
	}
	if measure, ok := t.task.Input(model.InputEvaluationMeasures); ok {
		r.TaskEvaluationMeasure = xmlmap.String(measure)
	}
	if did, ok := s.taskInputs(desc.TaskID).SourceData(); ok {
		if d, ok := s.datasets[did]; ok {
			r.InputData = &model.InputData{Datasets: []model.InputDataset{{DID: did, Name: d.desc.Name, URL: xmlmap.StringValue(d.desc.URL)}}}
		}
	}

	names := make([]string, 0, len(upload.Outputs))
	for name := range upload.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	output := &model.OutputData{}
	for _, name := range names {
		f := s.addFile(name+".arff", upload.Outputs[name])
		output.Files = append(output.Files, model.OutputFile{
			FileID: f.ID,
			Name:   name,
			URL:    downloadURL(upload.BaseURL, f),
		})
	}
	if desc.OutputData != nil {
		output.Evaluations = append(output.Evaluations, desc.OutputData.Evaluations...)
	}
	if len(output.Files) > 0 || len(output.Evaluations) > 0 {
		r.OutputData = output
	}

	uploaded := s.now()
	s.runs[id] = &run{run: r, uploadTime: uploaded, attachments: map[int]int{}}

	queued, err := s.queue.Enqueue(queue.PendingRun{RunID: id, TaskID: desc.TaskID, Enqueued: uploaded})
	if err != nil {
		s.logger.Errorw("failed to queue run for evaluation", "id", id, "err", err)
	} else if !queued {
		s.logger.Warnw("evaluation queue is full", "id", id, "size", s.queue.Size())
	}
	s.logger.Infow("run uploaded", "id", id, "task", desc.TaskID, "flow", desc.FlowID, "user", u.ID, "outputs", len(names))
	return id, nil
}

// Run returns run id.
func (s *Store) Run(id int) (*model.Run, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fail(CodeRunUnknown, "Unknown run")
	}
	out := r.run
	out.Tags = copyTags(r.run.Tags)
	if r.run.OutputData != nil {
		output := *r.run.OutputData
		output.Files = append([]model.OutputFile(nil), output.Files...)
		output.Evaluations = append([]model.Evaluation(nil), output.Evaluations...)
		out.OutputData = &output
	}
	return &out, nil
}

// ListRuns returns the runs matching filters. task, setup, flow and uploader hold
// comma separated ids.
func (s *Store) ListRuns(filters map[string]string) (*model.RunList, error) {
	sets := map[string]map[int]bool{}
	tag := ""
	for k, v := range filters {
		switch k {
		case "task", "setup", "flow", "uploader":
			ids := map[int]bool{}
			for _, part := range strings.Split(v, ",") {
				id, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
				}
				ids[id] = true
			}
			sets[k] = ids
		case "tag":
			tag = v
		default:
			return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
		}
	}
	if len(sets) == 0 && tag == "" {
		return nil, fail(CodeRunListFilter, "Please provide at least one filter")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	match := func(name string, id *int) bool {
		ids, ok := sets[name]
		return !ok || (id != nil && ids[*id])
	}
	list := &model.RunList{}
	for _, id := range sortedKeys(s.runs) {
		r := s.runs[id]
		switch {
		case !match("task", &r.run.TaskID):
		case !match("setup", r.run.SetupID):
		case !match("flow", &r.run.FlowID):
		case !match("uploader", r.run.Uploader):
		case tag != "" && !contains(r.run.Tags, tag):
		default:
			list.Runs = append(list.Runs, r.summary(id))
		}
	}
	if len(list.Runs) == 0 {
		return nil, fail(CodeRunNoResults, "No results")
	}
	return list, nil
}

// AttachPredictions stores the predictions of part index of run id, replacing an
// earlier upload for the same index, and returns the run's prediction files.
func (s *Store) AttachPredictions(u *User, id int, index int, data []byte) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	if _, err := ARFFRecords(data); err != nil {
		return nil, fail(CodeRunAttachUnreadable, "Problem reading uploaded predictions", err.Error())
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fail(CodeRunAttachUnknown, "Unknown run")
	}
	if !canModify(u, *r.run.Uploader) {
		return nil, fail(CodeRunAttachForbidden, "Run is not owned by you")
	}
	if old, ok := r.attachments[index]; ok {
		delete(s.files, old)
	}
	f := s.addFile(fmt.Sprintf("predictions_%d.arff", index), data)
	r.attachments[index] = f.ID

	var files []string
	for _, i := range sortedKeys(r.attachments) {
		files = append(files, s.files[r.attachments[i]].Name)
	}
	return files, nil
}

// DeleteRun removes run id and its files.
func (s *Store) DeleteRun(u *User, id int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return fail(CodeRunDeleteUnknown, "Run does not exist")
	}
	if !canModify(u, *r.run.Uploader) {
		return fail(CodeRunDeleteForbidden, "Run is not owned by you")
	}
	if r.run.OutputData != nil {
		for _, f := range r.run.OutputData.Files {
			delete(s.files, f.FileID)
		}
	}
	for _, fileID := range r.attachments {
		delete(s.files, fileID)
	}
	delete(s.runs, id)
	s.logger.Infow("run deleted", "id", id, "user", u.ID)
	return nil
}

// TagRun adds tag to run id and returns the resulting tags.
func (s *Store) TagRun(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, added := addTag(r.run.Tags, tag)
	if !added {
		return nil, fail(CodeTagAlreadyPresent, "Entity already tagged by this tag")
	}
	r.run.Tags = tags
	return copyTags(tags), nil
}

// UntagRun removes tag from run id and returns the remaining tags.
func (s *Store) UntagRun(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, removed := removeTag(r.run.Tags, tag)
	if !removed {
		return nil, fail(CodeTagNotFound, "Tag not found")
	}
	r.run.Tags = tags
	return copyTags(tags), nil
}

// EvaluationRequest hands up to num queued runs to evaluation engine engineID. Runs
// deleted while queued are skipped. Both modes hand out runs in queue order.
func (s *Store) EvaluationRequest(u *User, engineID int, num int) (*model.EvaluationRequest, error) {
	if u == nil || !u.Admin {
		return nil, fail(CodeAdminRequired, "Admin rights are required")
	}

	req := &model.EvaluationRequest{}
	for len(req.Runs) < num {
		pending, ok, err := s.queue.Dequeue()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		s.mutex.RLock()
		r, exists := s.runs[pending.RunID]
		if exists {
			req.Runs = append(req.Runs, r.summary(pending.RunID))
		}
		s.mutex.RUnlock()
	}
	if len(req.Runs) == 0 {
		return nil, fail(CodeNoPendingRuns, "No unevaluated runs according to the criteria")
	}
	s.logger.Infow("runs handed out for evaluation", "engine", engineID, "count", len(req.Runs))
	return req, nil
}

// setup returns the id of the setup a run describes, registering it when new. Callers
// hold the lock.
func (s *Store) setup(r *model.Run) int {
	params := make([]string, 0, len(r.ParameterSettings))
	for _, p := range r.ParameterSettings {
		params = append(params, xmlmap.StringValue(p.Component)+"/"+p.Name+"="+p.Value)
	}
	sort.Strings(params)
	key := strconv.Itoa(r.FlowID) + "|" + xmlmap.StringValue(r.SetupString) + "|" + strings.Join(params, ";")
	if id, ok := s.setups[key]; ok {
		return id
	}
	id := s.next("setup")
	s.setups[key] = id
	return id
}

func (r *run) summary(id int) model.RunSummary {
	return model.RunSummary{
		RunID:        id,
		TaskID:       r.run.TaskID,
		SetupID:      r.run.SetupID,
		FlowID:       r.run.FlowID,
		Uploader:     r.run.Uploader,
		UploadTime:   r.uploadTime.UTC().Format(time.DateTime),
		ErrorMessage: r.run.ErrorMessage,
	}
}

func downloadURL(base string, f *File) string {
	return strings.TrimSuffix(base, "/") + "/data/v1/download/" + strconv.Itoa(f.ID) + "/" + f.Name
}
