package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"asset:Foo",
		"assetver:Foo/1",
		"asset:Foo?name",
		"assetver:Foo/1/2?attrib.value",
	}
	for _, s := range cases {
		u, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, s, u.String(), "round trip of %q", s)
	}
}

func TestParseProtocolAndPath(t *testing.T) {
	u, err := Parse("assetver:Foo/1?env.name")
	require.NoError(t, err)
	assert.Equal(t, "assetver", u.Protocol())
	assert.Equal(t, "Foo/1", u.Path())
	assert.Equal(t, []string{"Foo", "1"}, u.PathElements())
	q, ok := u.Query()
	assert.True(t, ok)
	assert.Equal(t, "env.name", q)
}

func TestParseNoQuery(t *testing.T) {
	u, err := Parse("asset:Foo")
	require.NoError(t, err)
	_, ok := u.Query()
	assert.False(t, ok)
}

func TestParseMissingProtocol(t *testing.T) {
	_, err := Parse("Foo/1")
	require.Error(t, err)
}
