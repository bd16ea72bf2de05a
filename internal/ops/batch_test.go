package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohspite/xatag/internal/tags"
)

func TestBatchContinuesAfterFailures(t *testing.T) {
	op, store, rec := newTestOperator(t)
	store.Touch("ok.txt", nil)
	store.Touch("denied.txt", nil)
	store.Deny("denied.txt")

	b := Batch{Reporter: rec, Exists: store.Exists}
	results := b.Run([]string{"missing.txt", "denied.txt", "ok.txt"}, func(path string) error {
		return op.Add(path, tags.Parse("new"))
	})

	require.Len(t, results, 3)
	assert.Equal(t, Unmodified, results[0].State)
	assert.Equal(t, Failed, results[1].State)
	assert.Equal(t, Written, results[2].State)
	assert.Equal(t, 2, Failures(results))
	assert.Equal(t, "new", store.Attrs("ok.txt")[defaultAttr])

	require.Len(t, rec.errs, 2)
	assert.Equal(t, "path does not exist: missing.txt", rec.errs[0].Error())
	assert.Equal(t, "could not read extended attributes: denied.txt", rec.errs[1].Error())
}

func TestBatchExisting(t *testing.T) {
	_, store, rec := newTestOperator(t)
	b := Batch{Reporter: rec, Exists: store.Exists, Role: "destination"}

	got := b.Existing([]string{"test.txt", "gone.txt"})
	assert.Equal(t, []string{"test.txt"}, got)
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "destination path does not exist: gone.txt", rec.errs[0].Error())
}

func TestIsDiagnostic(t *testing.T) {
	assert.True(t, IsDiagnostic(&KeyUnchangedWarning{}))
	assert.True(t, IsDiagnostic(&ValueMissingError{}))
	assert.False(t, IsDiagnostic(&PathNotFoundError{}))
}
