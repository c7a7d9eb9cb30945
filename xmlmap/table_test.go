package xmlmap

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Name  string
	Value *string
}

type labelled struct {
	Label string
	Text  string
}

type sample struct {
	ID      *int
	Name    string
	Count   int
	Active  bool
	Tags    []string
	Sizes   []int
	Pairs   []pair
	Labels  []labelled
	Comment *string
}

var pairTable = NewTable("pair",
	Required("name", func(p *pair) *string { return &p.Name }),
	OptText("value", func(p *pair) **string { return &p.Value }),
)

var labelledTable = NewTable("label",
	Attribute("name", func(l *labelled) *string { return &l.Label }),
	Content(func(l *labelled) *string { return &l.Text }),
)

var sampleTable = NewTable("sample",
	OptInt("id", func(s *sample) **int { return &s.ID }),
	Required("name", func(s *sample) *string { return &s.Name }),
	Int("count", func(s *sample) *int { return &s.Count }),
	Bool("active", func(s *sample) *bool { return &s.Active }),
	Texts("tag", func(s *sample) *[]string { return &s.Tags }),
	Ints("size", func(s *sample) *[]int { return &s.Sizes }),
	Nested(func(s *sample) *[]pair { return &s.Pairs }, pairTable),
	Nested(func(s *sample) *[]labelled { return &s.Labels }, labelledTable),
	OptText("comment", func(s *sample) **string { return &s.Comment }),
).WithCheck(func(s *sample) error {
	if s.Count < 0 {
		return errors.New("negative count")
	}
	return nil
})

const rawSample = `<?xml version="1.0" encoding="UTF-8"?>
<oml:sample xmlns:oml="http://openml.org/openml">
  <oml:id>7</oml:id>
  <oml:name>iris &amp; friends</oml:name>
  <oml:count>0</oml:count>
  <oml:active>true</oml:active>
  <oml:tag>b</oml:tag>
  <oml:tag>a</oml:tag>
  <oml:size>3</oml:size>
  <oml:pair>
    <oml:name>NumberOfClasses</oml:name>
    <oml:value>3.0</oml:value>
  </oml:pair>
  <oml:pair>
    <oml:name>Dimensionality</oml:name>
  </oml:pair>
  <oml:label name="NumberOfInstances">150.0</oml:label>
</oml:sample>
`

func strPtr(s string) *string { return &s }

func TestDecodeSample(t *testing.T) {
	s, err := sampleTable.Unmarshal([]byte(rawSample))
	require.NoError(t, err)

	require.NotNil(t, s.ID)
	assert.Equal(t, 7, *s.ID)
	assert.Equal(t, "iris & friends", s.Name)
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Active)
	assert.Equal(t, []string{"b", "a"}, s.Tags)
	assert.Equal(t, []int{3}, s.Sizes)
	assert.Equal(t, []pair{
		{Name: "NumberOfClasses", Value: strPtr("3.0")},
		{Name: "Dimensionality"},
	}, s.Pairs)
	assert.Equal(t, []labelled{{Label: "NumberOfInstances", Text: "150.0"}}, s.Labels)
	assert.Nil(t, s.Comment)
}

func TestRoundTripIsTextual(t *testing.T) {
	s, err := sampleTable.Unmarshal([]byte(rawSample))
	require.NoError(t, err)

	out, err := sampleTable.Marshal(s)
	require.NoError(t, err)

	same, err := Equivalent([]byte(rawSample), out)
	require.NoError(t, err)
	assert.True(t, same, string(out))

	again, err := sampleTable.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestUnknownElementsIgnored(t *testing.T) {
	doc := `<oml:sample xmlns:oml="http://openml.org/openml"><oml:name>x</oml:name><oml:extra><oml:deep>1</oml:deep></oml:extra><oml:count>2</oml:count></oml:sample>`
	s, err := sampleTable.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, 2, s.Count)
	assert.Nil(t, s.ID)
	assert.Empty(t, s.Tags)
}

func TestDecodeErrors(t *testing.T) {
	_, err := sampleTable.Unmarshal([]byte(`<oml:other xmlns:oml="http://openml.org/openml"/>`))
	assert.Error(t, err)

	_, err = sampleTable.Unmarshal([]byte(`<oml:sample xmlns:oml="http://openml.org/openml"><oml:count>many</oml:count></oml:sample>`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sample/count")

	_, err = sampleTable.Unmarshal([]byte(`<oml:sample xmlns:oml="http://openml.org/openml"><oml:count>-1</oml:count></oml:sample>`))
	assert.EqualError(t, err, "invalid sample: negative count")

	_, err = sampleTable.Unmarshal([]byte(`<oml:sample>`))
	assert.Error(t, err)
}

func TestMarshalDeclaresNamespace(t *testing.T) {
	out, err := sampleTable.Marshal(&sample{Name: "a<b", Count: 1})
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, text, `<oml:sample xmlns:oml="http://openml.org/openml">`)
	assert.Contains(t, text, `<oml:name>a&lt;b</oml:name>`)
	assert.Contains(t, text, `<oml:count>1</oml:count>`)
	assert.Contains(t, text, `<oml:active>false</oml:active>`)
	assert.NotContains(t, text, "oml:id")
	assert.NotContains(t, text, "oml:comment")
}

func TestAbsentAndEmptyOptionalText(t *testing.T) {
	empty := ""
	out, err := sampleTable.Marshal(&sample{Comment: &empty})
	require.NoError(t, err)
	s, err := sampleTable.Unmarshal(out)
	require.NoError(t, err)
	require.NotNil(t, s.Comment)
	assert.Equal(t, "", *s.Comment)
}

func TestCanonical(t *testing.T) {
	a := `<oml:x xmlns:oml="http://openml.org/openml">
	<oml:y>1</oml:y>
</oml:x>`
	b := `<?xml version="1.0"?><oml:x xmlns:oml="http://openml.org/openml"><oml:y>1</oml:y></oml:x>`
	c := `<oml:x xmlns:oml="http://openml.org/openml"><oml:y> 1</oml:y></oml:x>`

	same, err := Equivalent([]byte(a), []byte(b))
	require.NoError(t, err)
	assert.True(t, same)

	same, err = Equivalent([]byte(a), []byte(c))
	require.NoError(t, err)
	assert.False(t, same)

	canonical, err := Canonical([]byte(a))
	require.NoError(t, err)
	assert.Equal(t, `<oml:x><oml:y>1</oml:y></oml:x>`, canonical)
}

func TestRootName(t *testing.T) {
	name, err := RootName([]byte(`<?xml version="1.0"?><!-- c --><oml:error xmlns:oml="http://openml.org/openml"><oml:code>1</oml:code></oml:error>`))
	require.NoError(t, err)
	assert.Equal(t, "error", name)

	_, err = RootName([]byte("not xml"))
	assert.Error(t, err)
}
