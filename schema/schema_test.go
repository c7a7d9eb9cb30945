package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openml/openml-go/api/xsd"
	"github.com/openml/openml-go/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileNamed(t *testing.T, name string) *Schema {
	t.Helper()
	doc, ok := xsd.Get(name)
	require.True(t, ok, name)
	s, err := Compile(doc)
	require.NoError(t, err)
	return s
}

func TestCompileAll(t *testing.T) {
	names := xsd.Names()
	assert.NotEmpty(t, names)
	for _, name := range names {
		doc, ok := xsd.Get(name)
		require.True(t, ok)
		_, err := Compile(doc)
		assert.NoError(t, err, name)
	}
}

func TestServerDocumentsValidate(t *testing.T) {
	tests := []struct {
		schema string
		file   string
	}{
		{"openml.data.upload", "data_set_description.xml"},
		{"openml.data.features", "data_features.xml"},
		{"openml.data.qualities", "data_qualities.xml"},
		{"openml.run.upload", "run.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.schema, func(t *testing.T) {
			s := compileNamed(t, tt.schema)
			doc, err := os.ReadFile(filepath.Join("..", "model", "testdata", tt.file))
			require.NoError(t, err)
			assert.NoError(t, s.Validate(doc))
		})
	}
}

func TestUploadDocumentsValidate(t *testing.T) {
	dsd, err := model.DatasetDescriptionTable.Marshal(model.NewDatasetDescription("test", "Unit test should be deleted", "arff", "class"))
	require.NoError(t, err)
	assert.NoError(t, compileNamed(t, "openml.data.upload").Validate(dsd))

	inputs, err := model.TaskInputsTable.Marshal(model.NewTaskInputs(5, []model.Input{
		{Name: model.InputEstimationProcedure, Value: "17"},
		{Name: model.InputSourceData, Value: "1"},
	}, nil))
	require.NoError(t, err)
	assert.NoError(t, compileNamed(t, "openml.task.upload").Validate(inputs))

	run, err := model.RunTable.Marshal(model.NewRun(67, "", 10, "", nil, []string{"first_tag", "another_tag"}))
	require.NoError(t, err)
	assert.NoError(t, compileNamed(t, "openml.run.upload").Validate(run))
}

func TestReencodedEmptyDescriptionIsValid(t *testing.T) {
	raw := []byte(`<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:name>zoo</oml:name>
  <oml:description></oml:description>
  <oml:format>ARFF</oml:format>
  <oml:row_id_attribute/>
</oml:data_set_description>`)
	s := compileNamed(t, "openml.data.upload")
	require.NoError(t, s.Validate(raw))

	dsd, err := model.DatasetDescriptionTable.Unmarshal(raw)
	require.NoError(t, err)
	out, err := model.DatasetDescriptionTable.Marshal(dsd)
	require.NoError(t, err)
	assert.NoError(t, s.Validate(out))
}

func TestInvalidDocuments(t *testing.T) {
	s := compileNamed(t, "openml.data.upload")

	tests := []struct {
		name string
		doc  string
	}{
		{"wrong root", `<oml:data xmlns:oml="http://openml.org/openml"/>`},
		{"missing name", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:description>d</oml:description>
  <oml:format>arff</oml:format>
</oml:data_set_description>`},
		{"wrong order", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:description>d</oml:description>
  <oml:name>n</oml:name>
  <oml:format>arff</oml:format>
</oml:data_set_description>`},
		{"bad id", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:id>0</oml:id>
  <oml:name>n</oml:name>
  <oml:description>d</oml:description>
  <oml:format>arff</oml:format>
</oml:data_set_description>`},
		{"bad status", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:name>n</oml:name>
  <oml:description>d</oml:description>
  <oml:format>arff</oml:format>
  <oml:status>gone</oml:status>
</oml:data_set_description>`},
		{"bad tag", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:name>n</oml:name>
  <oml:description>d</oml:description>
  <oml:format>arff</oml:format>
  <oml:tag>two words</oml:tag>
</oml:data_set_description>`},
		{"unknown element", `<oml:data_set_description xmlns:oml="http://openml.org/openml">
  <oml:name>n</oml:name>
  <oml:description>d</oml:description>
  <oml:format>arff</oml:format>
  <oml:colour>red</oml:colour>
</oml:data_set_description>`},
		{"not xml", `data_set_description`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			vErr := err.(*ValidationError)
			assert.NotEmpty(t, vErr.Problems)
		})
	}
}

func TestRequiredAttribute(t *testing.T) {
	s := compileNamed(t, "openml.task.upload")

	err := s.Validate([]byte(`<oml:task_inputs xmlns:oml="http://openml.org/openml">
  <oml:task_type_id>1</oml:task_type_id>
  <oml:input>61</oml:input>
</oml:task_inputs>`))
	assert.True(t, IsValidationError(err))

	err = s.Validate([]byte(`<oml:task_inputs xmlns:oml="http://openml.org/openml">
  <oml:task_type_id>1</oml:task_type_id>
</oml:task_inputs>`))
	assert.True(t, IsValidationError(err))
}

func TestChoiceAndAll(t *testing.T) {
	s, err := Compile([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="pair">
    <xs:complexType>
      <xs:all>
        <xs:element name="left" type="xs:int"/>
        <xs:element name="right" type="xs:int" minOccurs="0"/>
      </xs:all>
    </xs:complexType>
  </xs:element>
  <xs:element name="either">
    <xs:complexType>
      <xs:choice maxOccurs="unbounded">
        <xs:element name="a" type="xs:string"/>
        <xs:sequence>
          <xs:element name="b" type="xs:boolean"/>
          <xs:element name="a" type="xs:double"/>
        </xs:sequence>
      </xs:choice>
    </xs:complexType>
  </xs:element>
</xs:schema>`))
	require.NoError(t, err)

	assert.NoError(t, s.Validate([]byte(`<pair><right>2</right><left>1</left></pair>`)))
	assert.NoError(t, s.Validate([]byte(`<pair><left>1</left></pair>`)))
	assert.Error(t, s.Validate([]byte(`<pair><right>1</right></pair>`)))
	assert.Error(t, s.Validate([]byte(`<pair><left>1</left><left>1</left></pair>`)))

	assert.NoError(t, s.Validate([]byte(`<either><a>x</a><b>true</b><a>1.5</a><a>y</a></either>`)))
	assert.Error(t, s.Validate([]byte(`<either><b>yes</b><a>1.5</a></either>`)))
	assert.Error(t, s.Validate([]byte(`<either/>`)))
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile([]byte(`<root/>`))
	assert.Error(t, err)

	_, err = Compile([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"/>`))
	assert.Error(t, err)

	_, err = Compile([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="a">
    <xs:complexType><xs:sequence><xs:element name="b" minOccurs="2" maxOccurs="1"/></xs:sequence></xs:complexType>
  </xs:element>
</xs:schema>`))
	assert.Error(t, err)
}

func TestBuiltins(t *testing.T) {
	assert.NoError(t, checkBuiltin("positiveInteger", " 12 "))
	assert.Error(t, checkBuiltin("positiveInteger", "0"))
	assert.NoError(t, checkBuiltin("nonNegativeInteger", "0"))
	assert.Error(t, checkBuiltin("integer", "1.5"))
	assert.NoError(t, checkBuiltin("double", "1e-3"))
	assert.NoError(t, checkBuiltin("double", "NaN"))
	assert.Error(t, checkBuiltin("boolean", "yes"))
	assert.NoError(t, checkBuiltin("dateTime", "2014-04-06T23:23:39"))
	assert.Error(t, checkBuiltin("date", "06-04-2014"))
	assert.NoError(t, checkBuiltin("string", ""))
}
