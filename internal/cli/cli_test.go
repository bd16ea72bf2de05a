package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohspite/xatag/internal/codec"
	"github.com/ohspite/xatag/internal/config"
	"github.com/ohspite/xatag/internal/recoll"
	"github.com/ohspite/xatag/internal/xattr"
)

type testEnv struct {
	t          *testing.T
	store      *xattr.MemStore
	home       string
	configDir  string
	reindexed  [][]string
	reindexErr error
}

// newTestEnv points the CLI at an in-memory store holding test.txt and
// test2.txt and a config dir in a temp home.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	e := &testEnv{
		t:         t,
		store:     xattr.NewMemStore(),
		home:      home,
		configDir: filepath.Join(home, ".xatag"),
	}
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))

	c := codec.Default()
	e.store.Touch("test.txt", map[string]string{
		"user.other.tag":     "something",
		c.AttrName(""):       "tag1;tag2;two words",
		c.AttrName("genre"):  "indie;pop",
		c.AttrName("artist"): "The XX",
	})
	e.store.Touch("test2.txt", map[string]string{
		c.AttrName(""):      "tag2;tag3",
		c.AttrName("genre"): "classical",
	})

	origStore, origExists, origEnv, origReindex := newStore, pathExists, readEnv, triggerReindex
	t.Cleanup(func() {
		newStore, pathExists, readEnv, triggerReindex = origStore, origExists, origEnv, origReindex
	})
	newStore = func() xattr.Store { return e.store }
	pathExists = e.store.Exists
	readEnv = func() config.Env {
		return config.Env{Home: home, Lookup: func(string) (string, bool) { return "", false }}
	}
	triggerReindex = func(_ *recoll.Indexer, files []string) error {
		e.reindexed = append(e.reindexed, files)
		return e.reindexErr
	}
	return e
}

func (e *testEnv) writeConfigFile(name, content string) {
	e.t.Helper()
	require.NoError(e.t, os.WriteFile(filepath.Join(e.configDir, name), []byte(content), 0o644))
}

// run executes xatag with args and returns stdout, stderr and the error.
func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--config-dir", e.configDir, "--no-color"))
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, stderr, err := e.run(args...)
	require.NoError(e.t, err, "stderr: %s", stderr)
	return standardize(out)
}

func (e *testEnv) runJSON(args ...string) Response {
	e.t.Helper()
	out, _, _ := e.run(append(args, "--json")...)
	var resp Response
	require.NoError(e.t, json.Unmarshal([]byte(out), &resp), "stdout: %s", out)
	return resp
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

var (
	multiSpace    = regexp.MustCompile(` +`)
	trailingSpace = regexp.MustCompile(`(?m) $`)
)

// standardize collapses the column padding so expectations stay readable.
func standardize(s string) string {
	return trailingSpace.ReplaceAllString(multiSpace.ReplaceAllString(s, " "), "")
}

func TestAdd(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, `test.txt: tags: tag1 tag2 tag4 'two words'
test2.txt: tags: tag2 tag3 tag4
`, e.mustRun("add", "-T", "tag4", "test.txt", "test2.txt"))

	assert.Equal(t, `test.txt: tags: tag1 tag2 tag4 tag5 'two words'
test.txt: artist: 'The XX'
test.txt: genre: indie pop
test2.txt: tags: tag2 tag3 tag4 tag5
test2.txt: genre: classical
`, e.mustRun("tag5", "test.txt", "test2.txt"))

	assert.Empty(t, e.mustRun("add", "-q", "tag6", "test.txt", "test2.txt"))

	assert.Equal(t, `test.txt: tags: tag1 tag2 tag4 tag5 tag6 'two words'
test.txt: artist: 'The XX'
test.txt: genre: indie pop
test.txt: new key: tag1 tag2
test2.txt: tags: tag2 tag3 tag4 tag5 tag6
test2.txt: genre: classical
test2.txt: new key: tag1 tag2
`, e.mustRun("add", "new key:tag1;tag2", "test.txt", "test2.txt"))

	assert.Equal(t, "something", e.store.Attrs("test.txt")["user.other.tag"])
}

func TestAddWarnsAboutUnknownTags(t *testing.T) {
	e := newTestEnv(t)
	e.writeConfigFile("known_tags", "tags: tag1; tag2\ntag3 ; tag\n  key1  : val1   ;  val2  \n")

	_, stderr, err := e.run("add", "tag4", "test.txt")
	require.NoError(t, err)
	assert.Equal(t, "unknown tags: tags: tag4\n", standardize(stderr))

	_, stderr, err = e.run("add", "-w", "tag4", "test.txt")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	_, stderr, err = e.run("add", "-W", "tag4", "test.txt")
	require.NoError(t, err)
	assert.Equal(t, "adding new tags: tags: tag4\n", standardize(stderr))

	_, stderr, err = e.run("add", "tag4", "test2.txt")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	known, err := os.ReadFile(filepath.Join(e.configDir, "known_tags"))
	require.NoError(t, err)
	assert.Contains(t, string(known), "tag4")
}

func TestAddWithoutKnownTags(t *testing.T) {
	e := newTestEnv(t)

	_, stderr, err := e.run("add", "tag4", "test.txt")
	require.NoError(t, err)
	assert.Equal(t, "xatag known_tags file is missing.\n", stderr)

	_, stderr, err = e.run("add", "-q", "tag4", "test.txt")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestList(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"plain", []string{"list"}, `test.txt: tags: tag1 tag2 'two words'
test.txt: artist: 'The XX'
test.txt: genre: indie pop
test2.txt: tags: tag2 tag3
test2.txt: genre: classical
`},
		{"selected key", []string{"list", "-t", "genre:"}, `test.txt: genre: indie pop
test2.txt: genre: classical
`},
		{"complement", []string{"ls", "-nt", "genre:"}, `test.txt: tags: tag1 tag2 'two words'
test.txt: artist: 'The XX'
test2.txt: tags: tag2 tag3
`},
		{"separators", []string{"list", "-F:::", "-K::"}, `test.txt::: tags:: tag1 tag2 'two words'
test.txt::: artist:: 'The XX'
test.txt::: genre:: indie pop
test2.txt::: tags:: tag2 tag3
test2.txt::: genre:: classical
`},
		{"value separator", []string{"list", "-V,"}, `test.txt: tags: tag1,tag2,two words
test.txt: artist: The XX
test.txt: genre: indie,pop
test2.txt: tags: tag2,tag3
test2.txt: genre: classical
`},
		{"key value pairs", []string{"list", "-k"}, `test.txt: tags: tag1
test.txt: tags: tag2
test.txt: tags: 'two words'
test.txt: artist: 'The XX'
test.txt: genre: indie
test.txt: genre: pop
test2.txt: tags: tag2
test2.txt: tags: tag3
test2.txt: genre: classical
`},
		{"one line", []string{"list", "-o"}, `test.txt: tags:"tag1 tag2 'two words'" artist:"'The XX'" genre:"indie pop"
test2.txt: tags:"tag2 tag3" genre:"classical"
`},
		{"one line pairs", []string{"list", "-ko"}, `test.txt: tags:tag1 tags:tag2 tags:'two words' artist:'The XX' genre:indie genre:pop
test2.txt: tags:tag2 tags:tag3 genre:classical
`},
		{"one line pairs with commas", []string{"list", "-ko", "-V,"}, `test.txt: tags:tag1,tags:tag2,tags:two words,artist:The XX,genre:indie,genre:pop
test2.txt: tags:tag2,tags:tag3,genre:classical
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			got := e.mustRun(append(tt.args, "test.txt", "test2.txt")...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSingleArgumentLists(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, "test2.txt: tags: tag2 tag3\ntest2.txt: genre: classical\n", e.mustRun("test2.txt"))
}

func TestSet(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, `test.txt: tags: tag
test.txt: artist: 'The XX'
test.txt: genre: awesome
test2.txt: tags: tag
test2.txt: genre: awesome
`, e.mustRun("set", "tag", "genre:awesome", "-f", "test.txt", "-f", "test2.txt"))
}

func TestSetAll(t *testing.T) {
	e := newTestEnv(t)
	assert.Equal(t, `test.txt: tags: tag
test.txt: genre: awesome
test2.txt: tags: tag
test2.txt: genre: awesome
`, e.mustRun("set-all", "tag", "genre:awesome", "-f", "test.txt", "-f", "test2.txt"))
	assert.Equal(t, "something", e.store.Attrs("test.txt")["user.other.tag"])
}

func TestCopy(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"everything", []string{"copy"}, `test2.txt: tags: tag1 tag2 tag3 'two words'
test2.txt: artist: 'The XX'
test2.txt: genre: classical indie pop
`},
		{"one tag", []string{"copy", "-t", "tag1"}, `test2.txt: tags: tag1 tag2 tag3
test2.txt: genre: classical
`},
		{"default key by alias", []string{"copy", "-t", "tags:"}, `test2.txt: tags: tag1 tag2 tag3 'two words'
test2.txt: genre: classical
`},
		{"default key by colon", []string{"copy", "-t", ":"}, `test2.txt: tags: tag1 tag2 tag3 'two words'
test2.txt: genre: classical
`},
		{"complement", []string{"copy", "-nt", "tag1"}, `test2.txt: tags: tag2 tag3 'two words'
test2.txt: artist: 'The XX'
test2.txt: genre: classical indie pop
`},
		{"over", []string{"copy-over"}, `test2.txt: tags: tag1 tag2 'two words'
test2.txt: artist: 'The XX'
test2.txt: genre: indie pop
`},
		{"over one key", []string{"copy-over", "-t", "genre:"}, `test2.txt: genre: indie pop
`},
		{"over complement", []string{"copy-over", "-nt", "genre:"}, `test2.txt: tags: tag1 tag2 'two words'
test2.txt: artist: 'The XX'
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			got := e.mustRun(append(tt.args, "test.txt", "test2.txt")...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCopyMissingSourceFails(t *testing.T) {
	e := newTestEnv(t)

	_, _, err := e.run("copy", "nope.txt", "test2.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source path does not exist: nope.txt")

	resp := e.runJSON("copy", "nope.txt", "test2.txt")
	assert.False(t, resp.OK)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrFileNotFound, resp.Error.Code)
}

func TestCopyMissingDestinationWarns(t *testing.T) {
	e := newTestEnv(t)

	out, stderr, err := e.run("copy", "-t", "tag1", "test.txt", "nope.txt", "test2.txt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "destination path does not exist: nope.txt")
	assert.Equal(t, "test2.txt: tags: tag1 tag2 tag3\ntest2.txt: genre: classical\n", standardize(out))
}

func TestDelete(t *testing.T) {
	e := newTestEnv(t)

	out, stderr, err := e.run("delete", "tag1", "test.txt", "test2.txt")
	require.NoError(t, err)
	assert.Equal(t, `test.txt: tags: tag2 'two words'
test.txt: artist: 'The XX'
test.txt: genre: indie pop
test2.txt: tags: tag2 tag3
test2.txt: genre: classical
`, standardize(out))
	assert.Contains(t, stderr, "test2.txt: tag key unchanged: tags")

	assert.Equal(t, `test.txt: tags: tag2 'two words'
test2.txt: tags: tag2 tag3
`, e.mustRun("delete", "-nt", ":", "test.txt", "test2.txt"))

	assert.Equal(t, `test.txt: tags: 'two words'
test2.txt:
`, e.mustRun("delete", "-nt", "two words", "test.txt", "test2.txt"))
}

func TestDeleteAll(t *testing.T) {
	e := newTestEnv(t)

	assert.Empty(t, e.mustRun("delete-all", "test.txt", "test2.txt"))
	assert.Equal(t, "test.txt:\ntest2.txt:\n", e.mustRun("list", "test.txt", "test2.txt"))
	assert.Equal(t, map[string]string{"user.other.tag": "something"}, e.store.Attrs("test.txt"))
}

func TestMissingArguments(t *testing.T) {
	e := newTestEnv(t)

	resp := e.runJSON("add", "tag")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrMissingArgument, resp.Error.Code)

	resp = e.runJSON("copy", "test.txt")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrMissingArgument, resp.Error.Code)
}

func TestJSONEnvelope(t *testing.T) {
	e := newTestEnv(t)

	resp := e.runJSON("add", "tag4", "test2.txt", "nope.txt")
	require.True(t, resp.OK)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Count)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var got struct {
		Files []fileTags `json:"files"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, []string{"tag2", "tag3", "tag4"}, got.Files[0].Tags["tags"])

	var codes []string
	for _, w := range resp.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, WarnPathNotFound)
	assert.Contains(t, codes, WarnKnownTagsMissing)
}

func TestReindex(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun("add", "-q", "tag4", "test.txt", "nope.txt", "test2.txt")
	assert.Equal(t, [][]string{{"test.txt", "test2.txt"}}, e.reindexed)

	e.mustRun("add", "-q", "--no-index", "tag5", "test.txt")
	assert.Len(t, e.reindexed, 1)

	e.reindexErr = errors.New("recollindex not found")
	_, stderr, err := e.run("add", "-w", "tag6", "test.txt")
	require.NoError(t, err)
	assert.Contains(t, stderr, "There was a problem updating the Recoll index.")
}

func TestIndexMirrorsChanges(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun("add", "-q", "favorite", "test.txt", "test2.txt")
	e.mustRun("delete", "-q", "favorite", "test2.txt")

	out := e.mustRun("index", "files", "favorite")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, filepath.IsAbs(lines[0]))
	assert.Equal(t, "test.txt", filepath.Base(lines[0]))

	out = e.mustRun("index", "values", "genre")
	assert.Equal(t, "classical\nindie\npop\n", out)

	resp := e.runJSON("index", "stats")
	require.True(t, resp.OK)
	assert.Equal(t, 2, resp.Meta.Count)
}

func TestUseAndUsedTags(t *testing.T) {
	e := newTestEnv(t)
	e.writeConfigFile("known_tags", "tags: tag1\n")

	out := e.mustRun("use", "tag2", "colour:red")
	assert.Equal(t, "adding new keys: colour\nadding new tags: tags: tag2\nadding new tags: colour: red\n", out)

	assert.Equal(t, "tags: tag1 tag2\ncolour: red\n", e.mustRun("used-tags"))
	assert.Equal(t, "unknown tags: tags: tag3\n", e.mustRun("used-tags", "tag1", "tag3"))

	fields, err := os.ReadFile(filepath.Join(e.configDir, "recoll", "fields"))
	require.NoError(t, err)
	assert.Contains(t, string(fields), "xa:colour")
}

func TestNewConfig(t *testing.T) {
	e := newTestEnv(t)
	dir := filepath.Join(e.home, "fresh")

	out := e.mustRun("new-config", dir)
	assert.Contains(t, out, "config dir created at: "+dir)
	for _, name := range []string{"config.toml", "known_tags", "ignored_keys", "recoll/recoll.conf", "recoll/fields"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	resp := e.runJSON("new-config", dir)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrConfigExists, resp.Error.Code)
}

func TestRecollTags(t *testing.T) {
	e := newTestEnv(t)
	out, _, err := e.run("recoll-tags", "test.txt")
	require.NoError(t, err)
	assert.Equal(t, "xa:tags= tag1; tag2; two words\nxa:artist= The XX\nxa:genre= indie; pop\n", standardize(out))
}

func TestRegenerateRespectsHandEditedFields(t *testing.T) {
	e := newTestEnv(t)
	e.writeConfigFile("known_tags", "genre: rock\n")
	require.NoError(t, os.MkdirAll(filepath.Join(e.configDir, "recoll"), 0o755))
	e.writeConfigFile("recoll/fields", "# mine\n[prefixes]\n")

	_, stderr, err := e.run("regenerate")
	require.NoError(t, err)
	assert.Contains(t, stderr, "not regenerating")

	e.writeConfigFile("recoll/fields", "# "+recoll.RegenerateMarker+"\n")
	_, _, err = e.run("regenerate")
	require.NoError(t, err)
	fields, err := os.ReadFile(filepath.Join(e.configDir, "recoll", "fields"))
	require.NoError(t, err)
	assert.Contains(t, string(fields), "xa:genre")
}

func TestExecuteIsNotImplemented(t *testing.T) {
	e := newTestEnv(t)
	_, stderr, err := e.run("execute", "genre:rock")
	require.NoError(t, err)
	assert.Equal(t, "the execute command is not implemented yet\n", stderr)
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t)
	src := filepath.Join(e.home, "music", "a.mp3")
	e.store.Touch(src, map[string]string{codec.Default().AttrName("genre"): "rock;indie"})
	manifest := filepath.Join(e.home, "tags.yaml")

	e.mustRun("export", "-o", manifest, src)
	data, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "path: music/a.mp3")

	e.store.Touch(src, map[string]string{codec.Default().AttrName("genre"): "jazz"})
	e.mustRun("import", "-q", manifest)
	assert.Equal(t, "indie;rock", e.store.Attrs(src)[codec.Default().AttrName("genre")])

	e.store.Touch(src, map[string]string{codec.Default().AttrName("genre"): "jazz"})
	e.mustRun("import", "-q", "--merge", manifest)
	assert.Equal(t, "indie;jazz;rock", e.store.Attrs(src)[codec.Default().AttrName("genre")])
}

func TestConfigSetAndShow(t *testing.T) {
	e := newTestEnv(t)

	e.mustRun("config", "set", "--value-separator", ",", "--audit", "true")
	cfg, err := config.Load(config.Dir{Path: e.configDir})
	require.NoError(t, err)
	assert.Equal(t, ",", cfg.Output.ValueSeparator)
	assert.True(t, cfg.Audit.Enabled)

	assert.Equal(t, "test2.txt: tags: tag2,tag3\ntest2.txt: genre: classical\n", e.mustRun("list", "test2.txt"))

	resp := e.runJSON("config", "set", "--index", "maybe")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrInvalidInput, resp.Error.Code)

	e.mustRun("config", "unset", "--value-separator")
	assert.Contains(t, e.mustRun("config"), `output.value_separator = " "`)
}

func TestAuditLogRecordsChanges(t *testing.T) {
	e := newTestEnv(t)
	e.writeConfigFile("config.toml", "[audit]\nenabled = true\n")

	e.mustRun("add", "-q", "tag4", "test2.txt")
	data, err := os.ReadFile(filepath.Join(e.configDir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cmd":"add"`)
	assert.Contains(t, string(data), `"path":"test2.txt"`)
}
