//go:build integration

package cli_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohspite/xatag/internal/testutil"
	"github.com/ohspite/xatag/internal/xattr"
)

// TestIntegration_TagLifecycle adds, lists, replaces and removes tags on real files.
func TestIntegration_TagLifecycle(t *testing.T) {
	w := testutil.NewWorkspace(t).
		WithFile("music/song.mp3", "").
		WithFile("music/other.mp3", "").
		WithKnownTags("tags: favorite\ngenre: indie; pop\n").
		Build()

	w.RunCLI("add", "favorite", "music/song.mp3").MustSucceed(t)
	w.RunCLI("add", "genre:indie;pop", "music/song.mp3", "music/other.mp3").MustSucceed(t)
	assert.Equal(t, map[string][]string{
		"tags":  {"favorite"},
		"genre": {"indie", "pop"},
	}, w.Tags("music/song.mp3"))

	result := w.RunCLI("list", "music/song.mp3", "music/other.mp3")
	result.MustSucceed(t)
	assert.Len(t, result.DataList("files"), 2)

	w.RunCLI("set", "genre:rock", "music/other.mp3").MustSucceed(t)
	assert.Equal(t, map[string][]string{"genre": {"rock"}}, w.Tags("music/other.mp3"))

	w.RunCLI("delete", "genre:", "music/song.mp3").MustSucceed(t)
	assert.Equal(t, map[string][]string{"tags": {"favorite"}}, w.Tags("music/song.mp3"))

	w.RunCLI("delete-all", "music/song.mp3").MustSucceed(t)
	assert.Empty(t, w.Tags("music/song.mp3"))
}

// TestIntegration_ForeignAttributesSurvive checks that attributes outside the
// xatag namespace are never touched.
func TestIntegration_ForeignAttributesSurvive(t *testing.T) {
	w := testutil.NewWorkspace(t).
		WithFile("a.txt", "").
		WithFile("b.txt", "").
		Build()
	w.SetAttr("a.txt", "user.other.tag", "keep me")

	w.RunCLI("add", "tag1", "a.txt").MustSucceed(t)
	w.RunCLI("set-all", "tag2", "-f", "a.txt").MustSucceed(t)
	w.RunCLI("copy-over", "b.txt", "a.txt").MustSucceed(t)
	assert.Empty(t, w.Tags("a.txt"))

	other, err := xattr.NewOSStore().Get(w.Path("a.txt"), "user.other.tag")
	require.NoError(t, err)
	assert.Equal(t, "keep me", other)

	out := w.RunText("list", "a.txt")
	assert.True(t, out.OK)
	assert.Equal(t, "a.txt:", strings.TrimSpace(out.Raw))
}

func TestIntegration_MissingFiles(t *testing.T) {
	w := testutil.NewWorkspace(t).WithFile("a.txt", "").Build()

	result := w.RunCLI("add", "tag1", "a.txt", "missing.txt")
	result.MustSucceed(t)
	assert.True(t, result.HasWarning("PATH_NOT_FOUND"))
	assert.True(t, result.HasWarning("KNOWN_TAGS_MISSING"))

	w.RunCLI("copy", "missing.txt", "a.txt").MustFail(t, "FILE_NOT_FOUND")
}

func TestIntegration_KnownTags(t *testing.T) {
	w := testutil.NewWorkspace(t).
		WithFile("a.txt", "").
		WithKnownTags("tags: tag1\n").
		Build()

	result := w.RunCLI("add", "tag9", "a.txt")
	result.MustSucceed(t)
	assert.True(t, result.HasWarning("UNKNOWN_TAGS"))

	w.RunCLI("add", "-W", "genre:jazz", "a.txt").MustSucceed(t)
	assert.Contains(t, w.ReadFile(".xatag/known_tags"), "jazz")

	result = w.RunCLI("add", "genre:jazz", "a.txt")
	result.MustSucceed(t)
	assert.False(t, result.HasWarning("UNKNOWN_TAGS"))
	assert.Contains(t, w.ReadFile(".xatag/recoll/fields"), "xa:genre")
}

func TestIntegration_IndexFollowsChanges(t *testing.T) {
	w := testutil.NewWorkspace(t).
		WithFile("a.txt", "").
		WithFile("b.txt", "").
		Build()

	w.RunCLI("add", "-q", "favorite", "a.txt", "b.txt").MustSucceed(t)
	w.RunCLI("delete", "favorite", "b.txt").MustSucceed(t)

	result := w.RunCLI("index", "files", "favorite")
	result.MustSucceed(t)
	files := result.DataList("files")
	require.Len(t, files, 1)
	assert.Equal(t, "a.txt", filepath.Base(files[0].(string)))

	w.SetAttr("b.txt", "user.org.xatag.tags", "outside")
	result = w.RunCLI("index", "update", "b.txt")
	result.MustSucceed(t)

	result = w.RunCLI("index", "files", "outside")
	result.MustSucceed(t)
	assert.Len(t, result.DataList("files"), 1)
}

func TestIntegration_ExportImport(t *testing.T) {
	w := testutil.NewWorkspace(t).
		WithFile("music/a.mp3", "").
		Build()

	w.RunCLI("add", "-q", "artist:The XX", "music/a.mp3").MustSucceed(t)
	w.RunCLI("export", "-o", "tags.yaml", "music/a.mp3").MustSucceed(t)
	assert.Contains(t, w.ReadFile("tags.yaml"), "path: music/a.mp3")

	w.RunCLI("delete-all", "music/a.mp3").MustSucceed(t)
	w.RunCLI("import", "-q", "tags.yaml").MustSucceed(t)
	assert.Equal(t, map[string][]string{"artist": {"The XX"}}, w.Tags("music/a.mp3"))
}

func TestIntegration_NewConfig(t *testing.T) {
	w := testutil.NewWorkspace(t).Build()

	result := w.RunCLI("new-config", "fresh")
	result.MustSucceed(t)
	assert.Equal(t, "fresh", filepath.Base(result.DataString("config_dir")))
	assert.Contains(t, w.ReadFile("fresh/recoll/recoll.conf"), "xatag recoll-tags")

	w.RunCLI("new-config", "fresh").MustFail(t, "CONFIG_DIR_EXISTS")
}
