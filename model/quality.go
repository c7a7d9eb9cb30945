package model

import (
	"strconv"
	"strings"

	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
)

// Quality is a named dataset statistic. A nil Value means the server has no value for
// it, which is distinct from a value of zero.
type Quality struct {
	Name  string
	Value *string
}

// Float parses the value. ok is false when the quality has no value; an empty
// element counts as no value.
func (q Quality) Float() (value float64, ok bool, err error) {
	if q.Value == nil || strings.TrimSpace(*q.Value) == "" {
		return 0, false, nil
	}
	value, err = strconv.ParseFloat(strings.TrimSpace(*q.Value), 64)
	if err != nil {
		return 0, false, errors.Wrapf(err, "quality %s is not numeric", q.Name)
	}
	return value, true, nil
}

// DataQuality holds the qualities of one dataset. DID is not part of the document;
// the client fills it in from the request.
type DataQuality struct {
	DID       int
	Qualities []Quality
}

// QualitiesMap returns the parsed quality values by name; qualities without a value
// map to nil.
func (d *DataQuality) QualitiesMap() (map[string]*float64, error) {
	m := make(map[string]*float64, len(d.Qualities))
	for _, q := range d.Qualities {
		v, ok, err := q.Float()
		if err != nil {
			return nil, err
		}
		if ok {
			m[q.Name] = &v
		} else {
			m[q.Name] = nil
		}
	}
	return m, nil
}

// Get returns the quality with the given name.
func (d *DataQuality) Get(name string) (Quality, bool) {
	for _, q := range d.Qualities {
		if q.Name == name {
			return q, true
		}
	}
	return Quality{}, false
}

// checkQualities requires unique names and numeric values where a value is present.
func checkQualities(d *DataQuality) error {
	seen := make(map[string]bool, len(d.Qualities))
	for _, q := range d.Qualities {
		if seen[q.Name] {
			return errors.Errorf("duplicate quality %s", q.Name)
		}
		seen[q.Name] = true
		if _, _, err := q.Float(); err != nil {
			return err
		}
	}
	return nil
}

// QualityTable binds Quality to oml:quality.
var QualityTable = xmlmap.NewTable("quality",
	xmlmap.Required("name", func(q *Quality) *string { return &q.Name }),
	xmlmap.OptText("value", func(q *Quality) **string { return &q.Value }),
)

// DataQualityTable binds DataQuality to oml:data_qualities.
var DataQualityTable = xmlmap.NewTable("data_qualities",
	xmlmap.Nested(func(d *DataQuality) *[]Quality { return &d.Qualities }, QualityTable),
).WithCheck(checkQualities)

// DataQualityList lists the names of all qualities the server computes.
type DataQualityList struct {
	Qualities []string
}

// DataQualityListTable binds DataQualityList to oml:data_qualities_list.
var DataQualityListTable = xmlmap.NewTable("data_qualities_list",
	xmlmap.Texts("quality", func(d *DataQualityList) *[]string { return &d.Qualities }),
)
