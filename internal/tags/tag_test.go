package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizes(t *testing.T) {
	tag := New("genre", "classical")
	assert.Equal(t, Tag{Key: "genre", Value: "classical"}, tag)

	assert.Equal(t, DefaultKey, New("", "favorite").Key)
	assert.Equal(t, DefaultKey, New("tags", "favorite").Key)
	assert.Equal(t, DefaultKey, New("  tags ", "favorite").Key)

	tag = New("  new \t key ", "\n two   words ")
	assert.Equal(t, "new key", tag.Key)
	assert.Equal(t, "two words", tag.Value)
}

func TestQuoteValue(t *testing.T) {
	assert.Equal(t, "plain", QuoteValue("plain"))
	assert.Equal(t, "'two words'", QuoteValue(" two\t words "))
	assert.Equal(t, "", QuoteValue(""))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Tag
	}{
		{
			name: "simple tag",
			in:   "simple-tag",
			want: []Tag{{Key: "", Value: "simple-tag"}},
		},
		{
			name: "default key alias",
			in:   "tags:simple-tag",
			want: []Tag{{Key: "", Value: "simple-tag"}},
		},
		{
			name: "key and value",
			in:   "genre:classical",
			want: []Tag{{Key: "genre", Value: "classical"}},
		},
		{
			name: "multiple values with whitespace",
			in:   "genre:classical;   rock;\n bluegrass\tstuff",
			want: []Tag{
				{Key: "genre", Value: "classical"},
				{Key: "genre", Value: "rock"},
				{Key: "genre", Value: "bluegrass stuff"},
			},
		},
		{
			name: "multi part key splits on last colon",
			in:   "multi:part:key:v1;v2",
			want: []Tag{
				{Key: "multi:part:key", Value: "v1"},
				{Key: "multi:part:key", Value: "v2"},
			},
		},
		{
			name: "trailing colon is the wildcard",
			in:   "genre:",
			want: []Tag{{Key: "genre", Value: ""}},
		},
		{
			name: "bare colon is the default key wildcard",
			in:   ":",
			want: []Tag{{Key: "", Value: ""}},
		},
		{
			name: "default key values",
			in:   "a;b",
			want: []Tag{{Key: "", Value: "a"}, {Key: "", Value: "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParseAll(t *testing.T) {
	got := ParseAll([]string{"tag", "two words", "key:value", "key2:value1;value2"})
	require.Len(t, got, 5)
	assert.Equal(t, Tag{Key: "", Value: "tag"}, got[0])
	assert.Equal(t, Tag{Key: "", Value: "two words"}, got[1])
	assert.Equal(t, Tag{Key: "key", Value: "value"}, got[2])
	assert.Equal(t, Tag{Key: "key2", Value: "value1"}, got[3])
	assert.Equal(t, Tag{Key: "key2", Value: "value2"}, got[4])
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "simple-tag", New("", "simple-tag").String())
	assert.Equal(t, "genre:classical", New("genre", "classical").String())
	assert.Equal(t, "genre:", New("genre", "").String())
}

func TestTagEquality(t *testing.T) {
	assert.Equal(t, New("", "tag"), New("tags", "tag"))
	assert.Equal(t, New("key", "val"), New("key", " val "))
	assert.NotEqual(t, New("", "tag"), New("key", "val"))
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, "tags", DisplayKey(DefaultKey))
	assert.Equal(t, "genre", DisplayKey("genre"))
}
