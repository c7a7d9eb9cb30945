package store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/model"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

// Fetcher reads a dataset the service is asked to import by url.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// DataUpload is a dataset upload as received by the service.
type DataUpload struct {
	Description []byte
	// Data is nil when the description names a url instead.
	Data []byte
	// BaseURL is the service root used to build download urls.
	BaseURL string
}

// UploadDataset stores a new dataset and returns its id.
func (s *Store) UploadDataset(ctx context.Context, u *User, upload DataUpload) (int, error) {
	if u == nil {
		return 0, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	if err := s.validate("openml.data.upload", upload.Description, CodeDataDescription); err != nil {
		return 0, err
	}
	dsd, err := model.DatasetDescriptionTable.Unmarshal(upload.Description)
	if err != nil {
		return 0, fail(CodeDataDescription, "Problem validating uploaded description file", err.Error())
	}

	data := upload.Data
	source := strings.TrimSpace(xmlmap.StringValue(dsd.URL))
	hasURL := source != ""
	switch {
	case data == nil && !hasURL:
		return 0, fail(CodeDataFileMissing, "Problem with file uploading", "no dataset file and no url")
	case data != nil && hasURL:
		return 0, fail(CodeDataFileMissing, "Problem with file uploading", "both a dataset file and a url were given")
	case data == nil:
		if s.fetch == nil {
			return 0, fail(CodeDataURLFetchFailed, "Problem fetching dataset from url", source)
		}
		data, err = s.fetch(ctx, source)
		if err != nil {
			s.logger.Warnw("failed to fetch dataset", "url", source, "err", err)
			return 0, fail(CodeDataURLFetchFailed, "Problem fetching dataset from url", err.Error())
		}
		if dsd.OriginalDataURL == nil {
			dsd.OriginalDataURL = xmlmap.String(source)
		}
	}

	var features []model.Feature
	qualities := emptyQualities()
	if strings.EqualFold(dsd.Format, "arff") {
		analysis, err := AnalyzeARFF(data, xmlmap.StringValue(dsd.DefaultTargetAttribute), xmlmap.StringValue(dsd.RowIDAttribute), dsd.IgnoreAttributes)
		if err != nil {
			return 0, fail(CodeDataFileUnreadable, "Problem parsing dataset file", err.Error())
		}
		features, qualities = analysis.Features, analysis.Qualities
	}

	sum := md5.Sum(data)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.next("data")
	version := 1
	for _, d := range s.datasets {
		if d.desc.Name == dsd.Name {
			version++
		}
	}

	fileName := dsd.Name + "." + strings.ToLower(dsd.Format)
	file := s.addFile(fileName, data)

	dsd.ID = intPtr(id)
	dsd.FileID = intPtr(file.ID)
	dsd.Version = xmlmap.String(strconv.Itoa(version))
	dsd.URL = xmlmap.String(downloadURL(upload.BaseURL, file))
	dsd.UploadDate = xmlmap.String(s.timestamp())
	dsd.ProcessingDate = xmlmap.String(s.timestamp())
	dsd.Status = xmlmap.String(config.StatusInPreparation)
	dsd.MD5Checksum = xmlmap.String(hex.EncodeToString(sum[:]))
	dsd.Tags = model.NormalizeTags(dsd.Tags)
	if xmlmap.StringValue(dsd.Visibility) == "" {
		dsd.Visibility = xmlmap.String("public")
	}

	s.datasets[id] = &dataset{
		desc:      *dsd,
		owner:     u.ID,
		features:  features,
		qualities: qualities,
		processed: map[int]bool{},
	}
	s.logger.Infow("dataset uploaded", "id", id, "name", dsd.Name, "user", u.ID, "size", len(data))
	return id, nil
}

// Dataset returns the description of dataset id.
func (s *Store) Dataset(id int) (*model.DatasetDescription, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, fail(CodeUnknownDataset, "Unknown dataset")
	}
	desc := d.desc
	desc.Tags = append([]string(nil), d.desc.Tags...)
	if len(desc.Tags) == 0 {
		desc.Tags = nil
	}
	return &desc, nil
}

// Features returns the features of dataset id.
func (s *Store) Features(id int) (*model.DataFeature, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, fail(CodeUnknownDataset, "Unknown dataset")
	}
	if len(d.features) == 0 {
		return nil, fail(CodeNoFeatures, "No features found. Dataset not processed.")
	}
	return &model.DataFeature{Features: append([]model.Feature(nil), d.features...)}, nil
}

// Qualities returns the qualities of dataset id.
func (s *Store) Qualities(id int) (*model.DataQuality, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, fail(CodeUnknownDataset, "Unknown dataset")
	}
	return &model.DataQuality{DID: id, Qualities: append([]model.Quality(nil), d.qualities...)}, nil
}

// QualityList returns the names of the computed qualities.
func (s *Store) QualityList() *model.DataQualityList {
	return &model.DataQualityList{Qualities: append([]string(nil), QualityNames...)}
}

// DeleteDataset removes dataset id and its file. Datasets used by a task cannot be
// deleted.
func (s *Store) DeleteDataset(u *User, id int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return fail(CodeDataDeleteUnknown, "Dataset does not exist")
	}
	if !canModify(u, d.owner) {
		return fail(CodeDataDeleteForbidden, "Dataset is not owned by you")
	}
	for _, taskID := range sortedKeys(s.tasks) {
		if ref, ok := s.taskInputs(taskID).SourceData(); ok && ref == id {
			return fail(CodeDataDeleteInUse, "Dataset is in use by other content. Can not be deleted",
				"task "+strconv.Itoa(taskID))
		}
	}
	if d.desc.FileID != nil {
		delete(s.files, *d.desc.FileID)
	}
	delete(s.datasets, id)
	s.logger.Infow("dataset deleted", "id", id, "user", u.ID)
	return nil
}

// TagDataset adds tag to dataset id and returns the resulting tags.
func (s *Store) TagDataset(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, added := addTag(d.desc.Tags, tag)
	if !added {
		return nil, fail(CodeTagAlreadyPresent, "Entity already tagged by this tag")
	}
	d.desc.Tags = tags
	return append([]string(nil), tags...), nil
}

// UntagDataset removes tag from dataset id and returns the remaining tags.
func (s *Store) UntagDataset(u *User, id int, tag string) ([]string, error) {
	if u == nil {
		return nil, fail(CodeAuthenticationFailed, "Authentication failed")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, fail(CodeTagEntityUnknown, "Entity not found")
	}
	tags, removed := removeTag(d.desc.Tags, tag)
	if !removed {
		return nil, fail(CodeTagNotFound, "Tag not found")
	}
	d.desc.Tags = tags
	return append([]string(nil), tags...), nil
}

// ResetDataset forgets which evaluation engines processed dataset id.
func (s *Store) ResetDataset(u *User, id int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return fail(CodeUnknownDataset, "Unknown dataset")
	}
	if !canModify(u, d.owner) {
		return fail(CodeAdminRequired, "Dataset is not owned by you")
	}
	d.processed = map[int]bool{}
	d.desc.ProcessingDate = nil
	return nil
}

// UpdateStatus sets the status of dataset id. Only admins activate datasets; owners
// may deactivate their own.
func (s *Store) UpdateStatus(u *User, id int, status string) error {
	if !config.ValidStatus(status) {
		return fail(CodeStatusInvalid, "Illegal status", status)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return fail(CodeStatusUnknownData, "Dataset does not exist")
	}
	switch {
	case u == nil:
		return fail(CodeAuthenticationFailed, "Authentication failed")
	case u.Admin:
	case status == config.StatusDeactivated && u.ID == d.owner:
	default:
		return fail(CodeStatusForbidden, "Insufficient rights to change the dataset status")
	}
	d.desc.Status = xmlmap.String(status)
	s.logger.Infow("dataset status updated", "id", id, "status", status, "user", u.ID)
	return nil
}

// ListDatasets returns the datasets matching filters. Without a status filter only
// active datasets are listed.
func (s *Store) ListDatasets(filters map[string]string) (*model.DataList, error) {
	status := config.StatusActive
	limit, offset := -1, 0
	var (
		tag, name string
		ids       map[int]bool
		ranges    = map[string][2]float64{}
	)
	for k, v := range filters {
		switch k {
		case "status":
			status = v
		case "tag":
			tag = v
		case "data_name":
			name = v
		case "data_id":
			ids = map[int]bool{}
			for _, part := range strings.Split(v, ",") {
				id, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
				}
				ids[id] = true
			}
		case "limit", "offset":
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
			}
			if k == "limit" {
				limit = n
			} else {
				offset = n
			}
		default:
			quality, ok := qualityFilters[k]
			if !ok {
				return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
			}
			min, max, err := parseRange(v)
			if err != nil {
				return nil, fail(CodeIllegalFilter, "Illegal filter specified", k)
			}
			ranges[quality] = [2]float64{min, max}
		}
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	list := &model.DataList{}
	for _, id := range sortedKeys(s.datasets) {
		d := s.datasets[id]
		if status != "all" && xmlmap.StringValue(d.desc.Status) != status {
			continue
		}
		if tag != "" && !contains(d.desc.Tags, tag) {
			continue
		}
		if name != "" && d.desc.Name != name {
			continue
		}
		if ids != nil && !ids[id] {
			continue
		}
		if !inRanges(d.qualities, ranges) {
			continue
		}
		list.Datasets = append(list.Datasets, d.summary(id))
	}

	if offset >= len(list.Datasets) {
		list.Datasets = nil
	} else {
		list.Datasets = list.Datasets[offset:]
	}
	if limit >= 0 && limit < len(list.Datasets) {
		list.Datasets = list.Datasets[:limit]
	}
	if len(list.Datasets) == 0 {
		return nil, fail(CodeDataNoResults, "No results")
	}
	return list, nil
}

// Unprocessed returns up to one dataset that evaluation engine engineID has not
// processed yet and marks it as processed. In random mode the pick is random.
func (s *Store) Unprocessed(u *User, engineID int, mode string, pick func(n int) int) (*model.DataUnprocessed, error) {
	if u == nil || !u.Admin {
		return nil, fail(CodeAdminRequired, "Admin rights are required")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var candidates []int
	for _, id := range sortedKeys(s.datasets) {
		if !s.datasets[id].processed[engineID] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, fail(CodeNoUnprocessed, "No unprocessed datasets")
	}
	chosen := candidates[0]
	if mode == "random" && pick != nil {
		chosen = candidates[pick(len(candidates))]
	}
	d := s.datasets[chosen]
	d.processed[engineID] = true
	return &model.DataUnprocessed{Datasets: []model.DatasetSummary{d.summary(chosen)}}, nil
}

func (d *dataset) summary(id int) model.DatasetSummary {
	summary := model.DatasetSummary{
		DID:     id,
		Name:    d.desc.Name,
		Version: xmlmap.StringValue(d.desc.Version),
		Status:  xmlmap.StringValue(d.desc.Status),
		Format:  d.desc.Format,
		FileID:  d.desc.FileID,
	}
	for _, q := range d.qualities {
		if q.Value != nil {
			summary.Qualities = append(summary.Qualities, model.NamedValue{Name: q.Name, Value: *q.Value})
		}
	}
	return summary
}

func inRanges(qualities []model.Quality, ranges map[string][2]float64) bool {
	for name, r := range ranges {
		found := false
		for _, q := range qualities {
			if q.Name != name {
				continue
			}
			v, ok, err := q.Float()
			if err != nil || !ok || v < r[0] || v > r[1] {
				return false
			}
			found = true
		}
		if !found {
			return false
		}
	}
	return true
}

func parseRange(value string) (float64, float64, error) {
	parts := strings.SplitN(value, "..", 2)
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %s", value)
	}
	if len(parts) == 1 {
		return min, min, nil
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range %s", value)
	}
	return min, max, nil
}

func emptyQualities() []model.Quality {
	qualities := make([]model.Quality, 0, len(QualityNames))
	for _, name := range QualityNames {
		qualities = append(qualities, model.Quality{Name: name})
	}
	return qualities
}

// DatasetRecords returns the contents of an ARFF data file as CSV records, header
// first.
func (s *Store) DatasetRecords(fileID int) ([][]string, error) {
	f, err := s.File(fileID)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(f.Name, ".arff") {
		return nil, fail(CodeDataFileUnreadable, "Only ARFF files can be converted", f.Name)
	}
	records, err := ARFFRecords(f.Data)
	if err != nil {
		return nil, fail(CodeDataFileUnreadable, "Problem parsing dataset file", err.Error())
	}
	return records, nil
}

// datasetName returns the name of dataset id. Callers hold the lock.
func (s *Store) datasetName(id int) string {
	if d, ok := s.datasets[id]; ok {
		return d.desc.Name
	}
	return ""
}
