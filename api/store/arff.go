package store

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/openml/openml-go/model"
	"github.com/pkg/errors"
)

// Quality names computed for every dataset, in listing order.
const (
	QualityNumberOfInstances                  = "NumberOfInstances"
	QualityNumberOfFeatures                   = "NumberOfFeatures"
	QualityNumberOfNumericFeatures            = "NumberOfNumericFeatures"
	QualityNumberOfSymbolicFeatures           = "NumberOfSymbolicFeatures"
	QualityNumberOfMissingValues              = "NumberOfMissingValues"
	QualityNumberOfInstancesWithMissingValues = "NumberOfInstancesWithMissingValues"
	QualityNumberOfClasses                    = "NumberOfClasses"
	QualityMajorityClassSize                  = "MajorityClassSize"
	QualityMinorityClassSize                  = "MinorityClassSize"
	QualityMeanOfMeansOfNumericAtts           = "MeanOfMeansOfNumericAtts"
	QualityDimensionality                     = "Dimensionality"
)

// QualityNames lists the qualities the service computes.
var QualityNames = []string{
	QualityNumberOfInstances,
	QualityNumberOfFeatures,
	QualityNumberOfNumericFeatures,
	QualityNumberOfSymbolicFeatures,
	QualityNumberOfMissingValues,
	QualityNumberOfInstancesWithMissingValues,
	QualityNumberOfClasses,
	QualityMajorityClassSize,
	QualityMinorityClassSize,
	QualityMeanOfMeansOfNumericAtts,
	QualityDimensionality,
}

// filter parameters of data/list that select on a quality range
var qualityFilters = map[string]string{
	"number_instances":        QualityNumberOfInstances,
	"number_features":         QualityNumberOfFeatures,
	"number_classes":          QualityNumberOfClasses,
	"number_missing_values":   QualityNumberOfMissingValues,
	"number_numeric_features": QualityNumberOfNumericFeatures,
}

const (
	typeNumeric = "numeric"
	typeNominal = "nominal"
	typeString  = "string"
	typeDate    = "date"
)

type attribute struct {
	name    string
	kind    string
	nominal []string
}

// Analysis is what the service derives from a dataset file.
type Analysis struct {
	Relation  string
	Features  []model.Feature
	Qualities []model.Quality
}

// AnalyzeARFF reads an ARFF document and computes its features and qualities. target,
// rowID and ignore name attributes of the dataset description.
func AnalyzeARFF(data []byte, target string, rowID string, ignore []string) (*Analysis, error) {
	relation, attrs, rows, err := parseARFF(data)
	if err != nil {
		return nil, err
	}

	ignored := map[string]bool{}
	for _, name := range ignore {
		ignored[name] = true
	}

	analysis := &Analysis{Relation: relation}
	missing := make([]int, len(attrs))
	sums := make([]float64, len(attrs))
	counts := make([]int, len(attrs))
	classSizes := map[string]int{}
	targetIndex := -1
	missingTotal, rowsWithMissing := 0, 0

	for i, a := range attrs {
		if a.name == target {
			targetIndex = i
		}
	}

	for r, row := range rows {
		rowMissing := false
		for i, v := range row {
			if v == nil {
				missing[i]++
				missingTotal++
				rowMissing = true
				continue
			}
			switch attrs[i].kind {
			case typeNumeric:
				f, err := strconv.ParseFloat(*v, 64)
				if err != nil {
					return nil, errors.Errorf("row %d: value %q of %s is not numeric", r+1, *v, attrs[i].name)
				}
				sums[i] += f
				counts[i]++
			case typeNominal:
				if !contains(attrs[i].nominal, *v) {
					return nil, errors.Errorf("row %d: value %q is not a value of %s", r+1, *v, attrs[i].name)
				}
			}
			if i == targetIndex {
				classSizes[*v]++
			}
		}
		if rowMissing {
			rowsWithMissing++
		}
	}

	numeric, symbolic := 0, 0
	var means []float64
	for i, a := range attrs {
		analysis.Features = append(analysis.Features, model.Feature{
			Index:                 i,
			Name:                  a.name,
			DataType:              a.kind,
			NominalValues:         a.nominal,
			IsTarget:              i == targetIndex,
			IsIgnore:              ignored[a.name],
			IsRowIdentifier:       a.name == rowID && rowID != "",
			NumberOfMissingValues: missing[i],
		})
		switch a.kind {
		case typeNumeric:
			numeric++
			if counts[i] > 0 {
				means = append(means, sums[i]/float64(counts[i]))
			}
		case typeNominal:
			symbolic++
		}
	}

	values := map[string]*string{
		QualityNumberOfInstances:                  intValue(len(rows)),
		QualityNumberOfFeatures:                   intValue(len(attrs)),
		QualityNumberOfNumericFeatures:            intValue(numeric),
		QualityNumberOfSymbolicFeatures:           intValue(symbolic),
		QualityNumberOfMissingValues:              intValue(missingTotal),
		QualityNumberOfInstancesWithMissingValues: intValue(rowsWithMissing),
	}
	if targetIndex >= 0 && attrs[targetIndex].kind == typeNominal {
		values[QualityNumberOfClasses] = intValue(len(attrs[targetIndex].nominal))
		if len(classSizes) > 0 {
			major, minor := -1, -1
			for _, size := range classSizes {
				if major < 0 || size > major {
					major = size
				}
				if minor < 0 || size < minor {
					minor = size
				}
			}
			values[QualityMajorityClassSize] = intValue(major)
			values[QualityMinorityClassSize] = intValue(minor)
		}
	}
	if len(means) > 0 {
		total := 0.0
		for _, m := range means {
			total += m
		}
		values[QualityMeanOfMeansOfNumericAtts] = floatValue(total / float64(len(means)))
	}
	if len(rows) > 0 {
		values[QualityDimensionality] = floatValue(float64(len(attrs)) / float64(len(rows)))
	}

	for _, name := range QualityNames {
		analysis.Qualities = append(analysis.Qualities, model.Quality{Name: name, Value: values[name]})
	}
	return analysis, nil
}

func parseARFF(data []byte) (string, []attribute, [][]*string, error) {
	var (
		relation string
		attrs    []attribute
		rows     [][]*string
		inData   bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		if inData {
			if strings.HasPrefix(text, "{") {
				return "", nil, nil, errors.Errorf("line %d: sparse data is not supported", line)
			}
			values, err := splitValues(text)
			if err != nil {
				return "", nil, nil, errors.Wrapf(err, "line %d", line)
			}
			if len(values) != len(attrs) {
				return "", nil, nil, errors.Errorf("line %d has %d values, expected %d", line, len(values), len(attrs))
			}
			row := make([]*string, len(values))
			for i, v := range values {
				if v.text == "?" && !v.quoted {
					continue
				}
				s := v.text
				row[i] = &s
			}
			rows = append(rows, row)
			continue
		}

		keyword, rest := splitKeyword(text)
		switch strings.ToLower(keyword) {
		case "@relation":
			name, _, err := readName(rest)
			if err != nil {
				return "", nil, nil, errors.Wrapf(err, "line %d", line)
			}
			relation = name
		case "@attribute":
			a, err := parseAttribute(rest)
			if err != nil {
				return "", nil, nil, errors.Wrapf(err, "line %d", line)
			}
			attrs = append(attrs, a)
		case "@data":
			inData = true
		default:
			return "", nil, nil, errors.Errorf("line %d: unexpected %q in header", line, keyword)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", nil, nil, errors.Wrap(err, "failed to read arff")
	}
	if !inData {
		return "", nil, nil, errors.New("arff has no @data section")
	}
	if len(attrs) == 0 {
		return "", nil, nil, errors.New("arff declares no attributes")
	}
	return relation, attrs, rows, nil
}

func splitKeyword(text string) (string, string) {
	i := strings.IndexAny(text, " \t")
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i+1:])
}

func parseAttribute(text string) (attribute, error) {
	name, rest, err := readName(text)
	if err != nil {
		return attribute{}, err
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return attribute{}, errors.Errorf("attribute %s has no type", name)
	}
	if strings.HasPrefix(rest, "{") {
		end := strings.LastIndex(rest, "}")
		if end < 0 {
			return attribute{}, errors.Errorf("attribute %s has an unterminated value list", name)
		}
		values, err := splitValues(rest[1:end])
		if err != nil {
			return attribute{}, errors.Wrapf(err, "attribute %s", name)
		}
		nominal := make([]string, 0, len(values))
		for _, v := range values {
			nominal = append(nominal, v.text)
		}
		return attribute{name: name, kind: typeNominal, nominal: nominal}, nil
	}

	kind, _ := splitKeyword(rest)
	switch strings.ToLower(kind) {
	case "numeric", "real", "integer":
		return attribute{name: name, kind: typeNumeric}, nil
	case "string":
		return attribute{name: name, kind: typeString}, nil
	case "date":
		return attribute{name: name, kind: typeDate}, nil
	default:
		return attribute{}, errors.Errorf("attribute %s has unsupported type %s", name, kind)
	}
}

// readName reads a possibly quoted name and returns the remaining text.
func readName(text string) (string, string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", errors.New("missing name")
	}
	if q := text[0]; q == '\'' || q == '"' {
		end := strings.IndexByte(text[1:], q)
		if end < 0 {
			return "", "", errors.Errorf("unterminated name %s", text)
		}
		return text[1 : end+1], text[end+2:], nil
	}
	name, rest := splitKeyword(text)
	return name, rest, nil
}

type value struct {
	text   string
	quoted bool
}

func splitValues(text string) ([]value, error) {
	var (
		values  []value
		current strings.Builder
		quote   byte
		quoted  bool
	)
	flush := func() {
		t := current.String()
		if !quoted {
			t = strings.TrimSpace(t)
		}
		values = append(values, value{text: t, quoted: quoted})
		current.Reset()
		quoted = false
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			switch {
			case c == '\\' && i+1 < len(text):
				i++
				current.WriteByte(text[i])
			case c == quote:
				quote = 0
			default:
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			if strings.TrimSpace(current.String()) == "" {
				current.Reset()
			}
			quote = c
			quoted = true
		case c == ',':
			flush()
		default:
			if quoted && c != ' ' && c != '\t' {
				return nil, errors.Errorf("unexpected %q after quoted value", c)
			}
			if !quoted {
				current.WriteByte(c)
			}
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quoted value")
	}
	flush()
	return values, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func intValue(i int) *string {
	s := strconv.Itoa(i)
	return &s
}

func floatValue(f float64) *string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return &s
}

// ARFFRecords returns the attribute names of an ARFF document followed by its rows.
// Missing values are empty.
func ARFFRecords(data []byte) ([][]string, error) {
	_, attrs, rows, err := parseARFF(data)
	if err != nil {
		return nil, err
	}
	records := make([][]string, 0, len(rows)+1)
	header := make([]string, len(attrs))
	for i, a := range attrs {
		header[i] = a.name
	}
	records = append(records, header)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = *v
			}
		}
		records = append(records, record)
	}
	return records, nil
}
