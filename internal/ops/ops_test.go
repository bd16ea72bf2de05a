package ops

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohspite/xatag/internal/codec"
	"github.com/ohspite/xatag/internal/tags"
	"github.com/ohspite/xatag/internal/xattr"
)

const (
	defaultAttr = "user.org.xatag.tags"
	genreAttr   = "user.org.xatag.tags.genre"
	artistAttr  = "user.org.xatag.tags.artist"
	otherAttr   = "user.other.tag"
)

type recorder struct {
	errs []error
}

func (r *recorder) Report(err error) { r.errs = append(r.errs, err) }

func newTestOperator(t *testing.T) (*Operator, *xattr.MemStore, *recorder) {
	t.Helper()
	store := xattr.NewMemStore()
	store.Touch("test.txt", map[string]string{
		otherAttr:   "something",
		defaultAttr: "tag1;tag2;tag3;tag4;tag5",
		genreAttr:   "indie;pop",
		artistAttr:  "The XX",
	})
	rec := &recorder{}
	c := codec.Codec{Prefix: codec.DefaultPrefix, UserPrefix: codec.LinuxUserNamespace, Separator: codec.FieldSeparator}
	return New(store, c, rec), store, rec
}

func TestRead(t *testing.T) {
	op, _, _ := newTestOperator(t)

	d, err := op.Read("test.txt")
	require.NoError(t, err)
	assert.True(t, d.Equal(tags.Dict{
		"":       {"tag1", "tag2", "tag3", "tag4", "tag5"},
		"genre":  {"indie", "pop"},
		"artist": {"The XX"},
	}))

	keys, err := op.Keys("test.txt")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"", "genre", "artist"}, keys)
}

func TestAdd(t *testing.T) {
	op, store, rec := newTestOperator(t)

	err := op.Add("test.txt", []tags.Tag{
		tags.New("", "another"),
		tags.New("", "zanother"),
		tags.New("genre", "awesome"),
		tags.New("artist", ""),
	})
	require.NoError(t, err)

	attrs := store.Attrs("test.txt")
	assert.Equal(t, "another;tag1;tag2;tag3;tag4;tag5;zanother", attrs[defaultAttr])
	assert.Equal(t, "The XX", attrs[artistAttr])
	assert.Equal(t, "awesome;indie;pop", attrs[genreAttr])
	assert.Equal(t, "something", attrs[otherAttr])

	require.Len(t, rec.errs, 1)
	var missing *ValueMissingError
	require.ErrorAs(t, rec.errs[0], &missing)
	assert.Equal(t, "tag is missing value: artist:", missing.Error())

	rec.errs = nil
	require.NoError(t, op.Add("test.txt", []tags.Tag{tags.New("", "")}))
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "tag is missing value: tags:", rec.errs[0].Error())

	require.NoError(t, op.Add("test.txt", []tags.Tag{tags.New("unused", "")}))
	_, ok := store.Attrs("test.txt")["user.org.xatag.tags.unused"]
	assert.False(t, ok)
}

func TestAddToEmptyFile(t *testing.T) {
	op, store, _ := newTestOperator(t)
	store.Touch("empty.txt", nil)

	require.NoError(t, op.Add("empty.txt", []tags.Tag{tags.New("", "a"), tags.New("", "b")}))
	assert.Equal(t, map[string]string{defaultAttr: "a;b"}, store.Attrs("empty.txt"))
}

func TestSet(t *testing.T) {
	op, store, _ := newTestOperator(t)

	require.NoError(t, op.Set("test.txt", []tags.Tag{
		tags.New("", "another"),
		tags.New("", "zanother"),
		tags.New("genre", "awesome"),
	}))
	attrs := store.Attrs("test.txt")
	assert.Equal(t, "another;zanother", attrs[defaultAttr])
	assert.Equal(t, "The XX", attrs[artistAttr])
	assert.Equal(t, "awesome", attrs[genreAttr])

	require.NoError(t, op.Set("test.txt", []tags.Tag{tags.New("artist", "")}))
	attrs = store.Attrs("test.txt")
	assert.Equal(t, "another;zanother", attrs[defaultAttr])
	assert.Equal(t, "awesome", attrs[genreAttr])
	assert.NotContains(t, attrs, artistAttr)

	// removing a key that is already gone is not an error
	require.NoError(t, op.Set("test.txt", []tags.Tag{tags.New("artist", "")}))
}

func TestSetAll(t *testing.T) {
	op, store, _ := newTestOperator(t)
	ts := []tags.Tag{tags.New("", "another"), tags.New("", "zanother"), tags.New("genre", "awesome")}

	require.NoError(t, op.SetAll("test.txt", ts))
	once := store.Attrs("test.txt")
	assert.Equal(t, map[string]string{
		otherAttr:   "something",
		defaultAttr: "another;zanother",
		genreAttr:   "awesome",
	}, once)

	require.NoError(t, op.SetAll("test.txt", ts))
	assert.Equal(t, once, store.Attrs("test.txt"))
}

func TestDeleteThese(t *testing.T) {
	op, store, rec := newTestOperator(t)

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("", "tag4")}, DeleteOptions{}))
	attrs := store.Attrs("test.txt")
	assert.Equal(t, "tag1;tag2;tag3;tag5", attrs[defaultAttr])
	assert.Equal(t, "The XX", attrs[artistAttr])
	assert.Equal(t, "indie;pop", attrs[genreAttr])

	require.NoError(t, op.Delete("test.txt", tags.ParseAll([]string{"tag2", "tag4", "tag5"}), DeleteOptions{}))
	assert.Equal(t, "tag1;tag3", store.Attrs("test.txt")[defaultAttr])

	// tag4 was already gone
	require.Len(t, rec.errs, 0)

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("notakey", "tag")}, DeleteOptions{}))

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("genre", "pop")}, DeleteOptions{}))
	assert.Equal(t, "indie", store.Attrs("test.txt")[genreAttr])

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("genre", "")}, DeleteOptions{}))
	assert.NotContains(t, store.Attrs("test.txt"), genreAttr)

	require.NoError(t, op.Delete("test.txt", tags.ParseAll([]string{"tag1", "tag3"}), DeleteOptions{}))
	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("artist", "The XX")}, DeleteOptions{}))
	attrs = store.Attrs("test.txt")
	assert.NotContains(t, attrs, artistAttr)
	assert.NotContains(t, attrs, defaultAttr)
	assert.Equal(t, map[string]string{otherAttr: "something"}, attrs)
}

func TestDeleteReportsUnchangedKey(t *testing.T) {
	op, store, rec := newTestOperator(t)

	// tag9 was never set
	require.NoError(t, op.Delete("test.txt", tags.Parse("tag9"), DeleteOptions{}))
	require.Len(t, rec.errs, 1)
	var unchanged *KeyUnchangedWarning
	require.ErrorAs(t, rec.errs[0], &unchanged)
	assert.Equal(t, "test.txt: tag key unchanged: tags", unchanged.Error())
	assert.Equal(t, "tag1;tag2;tag3;tag4;tag5", store.Attrs("test.txt")[defaultAttr])

	rec.errs = nil
	require.NoError(t, op.Delete("test.txt", tags.Parse("tag9"), DeleteOptions{Quiet: true}))
	assert.Empty(t, rec.errs)
}

func TestDeleteFromAbsentKeyIsSilent(t *testing.T) {
	op, store, rec := newTestOperator(t)
	before := store.Attrs("test.txt")

	require.NoError(t, op.Delete("test.txt", tags.ParseAll([]string{"mood:calm", "year:"}), DeleteOptions{}))
	assert.Empty(t, rec.errs)
	assert.Equal(t, before, store.Attrs("test.txt"))
}

func TestDeleteReportsEmptiedKey(t *testing.T) {
	op, _, rec := newTestOperator(t)

	require.NoError(t, op.Delete("test.txt", tags.Parse("artist:The XX"), DeleteOptions{}))
	require.Len(t, rec.errs, 1)
	var removed *EmptyKeyRemovedWarning
	require.ErrorAs(t, rec.errs[0], &removed)
	assert.Equal(t, "artist", removed.Key)
}

func TestDeleteOthers(t *testing.T) {
	op, store, _ := newTestOperator(t)

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("", "tag4"), tags.New("genre", "")}, DeleteOptions{Complement: true}))
	attrs := store.Attrs("test.txt")
	assert.NotContains(t, attrs, artistAttr)
	assert.Equal(t, "tag4", attrs[defaultAttr])
	assert.Equal(t, "indie;pop", attrs[genreAttr])
	assert.Equal(t, "something", attrs[otherAttr])

	require.NoError(t, op.Delete("test.txt", []tags.Tag{tags.New("", "tag3"), tags.New("genre", "indie")}, DeleteOptions{Complement: true}))
	attrs = store.Attrs("test.txt")
	assert.Equal(t, "indie", attrs[genreAttr])
	assert.NotContains(t, attrs, defaultAttr)
}

func TestDeleteAll(t *testing.T) {
	op, store, _ := newTestOperator(t)

	require.NoError(t, op.DeleteAll("test.txt"))
	assert.Equal(t, map[string]string{otherAttr: "something"}, store.Attrs("test.txt"))
}

func TestCopy(t *testing.T) {
	op, store, _ := newTestOperator(t)
	store.Touch("test2.txt", map[string]string{
		defaultAttr:                 "tag1;tag6",
		genreAttr:                   "good",
		"user.org.xatag.tags.other": "yes",
	})

	source, err := op.Read("test.txt")
	require.NoError(t, err)

	require.NoError(t, op.Copy(source, "test2.txt", SubsetOptions{}))
	attrs := store.Attrs("test2.txt")
	assert.Equal(t, "tag1;tag2;tag3;tag4;tag5;tag6", attrs[defaultAttr])
	assert.Equal(t, "good;indie;pop", attrs[genreAttr])
	assert.Equal(t, "The XX", attrs[artistAttr])
	assert.Equal(t, "yes", attrs["user.org.xatag.tags.other"])
}

func TestCopySelected(t *testing.T) {
	op, store, _ := newTestOperator(t)
	store.Touch("test2.txt", map[string]string{defaultAttr: "tag2;tag3", genreAttr: "classical"})
	source, err := op.Read("test.txt")
	require.NoError(t, err)

	sel := tags.FromTags(tags.Parse("tag1"))
	require.NoError(t, op.Copy(source, "test2.txt", SubsetOptions{Selector: sel}))
	assert.Equal(t, map[string]string{defaultAttr: "tag1;tag2;tag3", genreAttr: "classical"}, store.Attrs("test2.txt"))

	store.Touch("test3.txt", map[string]string{defaultAttr: "tag2;tag3", genreAttr: "classical"})
	require.NoError(t, op.Copy(source, "test3.txt", SubsetOptions{Selector: sel, Complement: true}))
	assert.Equal(t, map[string]string{
		defaultAttr: "tag2;tag3;tag4;tag5",
		genreAttr:   "classical;indie;pop",
		artistAttr:  "The XX",
	}, store.Attrs("test3.txt"))
}

func TestCopyOver(t *testing.T) {
	op, store, _ := newTestOperator(t)
	store.Touch("test2.txt", map[string]string{defaultAttr: "tag2;tag3", genreAttr: "classical"})
	source, err := op.Read("test.txt")
	require.NoError(t, err)

	require.NoError(t, op.CopyOver(source, "test2.txt", SubsetOptions{Selector: tags.FromTags(tags.Parse("genre:"))}))
	assert.Equal(t, map[string]string{genreAttr: "indie;pop"}, store.Attrs("test2.txt"))

	require.NoError(t, op.CopyOver(source, "test2.txt", SubsetOptions{Selector: tags.FromTags(tags.Parse("genre:")), Complement: true}))
	assert.Equal(t, map[string]string{
		defaultAttr: "tag1;tag2;tag3;tag4;tag5",
		artistAttr:  "The XX",
	}, store.Attrs("test2.txt"))
}

func TestScenarios(t *testing.T) {
	c := codec.Codec{Prefix: codec.DefaultPrefix, UserPrefix: codec.LinuxUserNamespace, Separator: codec.FieldSeparator}

	t.Run("add to empty file", func(t *testing.T) {
		store := xattr.NewMemStore()
		store.Touch("f", nil)
		op := New(store, c, nil)
		require.NoError(t, op.Add("f", []tags.Tag{tags.New("", "a"), tags.New("", "b")}))
		assert.Equal(t, "a;b", store.Attrs("f")[defaultAttr])
	})

	t.Run("delete one default value", func(t *testing.T) {
		store := xattr.NewMemStore()
		store.Touch("f", map[string]string{defaultAttr: "a;b;c"})
		op := New(store, c, nil)
		require.NoError(t, op.Delete("f", []tags.Tag{tags.New("", "b")}, DeleteOptions{}))
		assert.Equal(t, "a;c", store.Attrs("f")[defaultAttr])
	})

	t.Run("complement delete keeps wildcard key", func(t *testing.T) {
		store := xattr.NewMemStore()
		store.Touch("f", map[string]string{defaultAttr: "a;b", genreAttr: "rock;pop"})
		op := New(store, c, nil)
		require.NoError(t, op.Delete("f", []tags.Tag{tags.New("genre", "")}, DeleteOptions{Complement: true}))
		assert.Equal(t, map[string]string{genreAttr: "pop;rock"}, store.Attrs("f"))
	})

	t.Run("copy merges into destination", func(t *testing.T) {
		store := xattr.NewMemStore()
		store.Touch("dest", map[string]string{defaultAttr: "y;z"})
		op := New(store, c, nil)
		source := tags.Dict{"": {"x", "y"}, "genre": {"rock"}}
		require.NoError(t, op.Copy(source, "dest", SubsetOptions{}))
		assert.Equal(t, map[string]string{defaultAttr: "x;y;z", genreAttr: "rock"}, store.Attrs("dest"))
	})
}

func TestSubset(t *testing.T) {
	d := tags.Dict{"": {"a", "b"}, "genre": {"rock"}}
	assert.Equal(t, d, Subset(d, SubsetOptions{}))
	assert.Equal(t, tags.Dict{"": {"a"}}, Subset(d, SubsetOptions{Selector: tags.Dict{"": {"a"}}}))
	assert.Equal(t, tags.Dict{"": {"b"}, "genre": {"rock"}}, Subset(d, SubsetOptions{Selector: tags.Dict{"": {"a"}}, Complement: true}))
}

func TestAttributeIOErrors(t *testing.T) {
	op, store, _ := newTestOperator(t)
	store.Deny("test.txt")

	err := op.Add("test.txt", tags.Parse("x"))
	var ioErr *AttributeIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "read", ioErr.Op)
	assert.True(t, errors.Is(err, xattr.ErrPermission))
	assert.Equal(t, "could not read extended attributes: test.txt", err.Error())

	_, err = op.Read("missing.txt")
	assert.True(t, errors.Is(err, xattr.ErrNoFile))
}
