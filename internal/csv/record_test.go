package csv

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRecord_Get(t *testing.T) {
	rec := Parse("Industry,Status\nSteel,Compliant").Records[0]

	v, ok := rec.Get("Status")
	assert.True(t, ok)
	assert.Equal(t, "Compliant", v)

	_, ok = rec.Get("Deadline")
	assert.False(t, ok)
	assert.Equal(t, "", rec.Value("Deadline"))
	assert.Equal(t, 2, rec.Len())
}

func TestRecord_KeysAreCopied(t *testing.T) {
	rec := Parse("a,b\n1,2").Records[0]

	keys := rec.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, rec.Keys())
}

func TestRecord_MarshalJSON_KeepsHeaderOrder(t *testing.T) {
	rec := Parse("zeta,alpha,mid\n\"q\",1,x").Records[0]

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"\"q\"","alpha":"1","mid":"x"}`, string(b))
}

func TestRecord_MarshalJSON_Empty(t *testing.T) {
	b, err := json.Marshal(Record{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(b))
}

func TestRecord_MarshalYAML_KeepsHeaderOrder(t *testing.T) {
	rec := Parse("zeta,alpha\ntrue,010").Records[0]

	b, err := yaml.Marshal(rec)
	require.NoError(t, err)

	out := string(b)
	assert.Less(t, strings.Index(out, "zeta"), strings.Index(out, "alpha"))

	var decoded map[string]string
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	assert.Equal(t, map[string]string{"zeta": "true", "alpha": "010"}, decoded)
}

func TestRecord_Equal(t *testing.T) {
	a := Parse("x,y\n1,2").Records[0]
	b := Parse("x,y\n1,2").Records[0]
	c := Parse("y,x\n2,1").Records[0]

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}
