package objfind

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objfind/objfind/match"
)

func tempRefDB(t *testing.T) (*RefDB, string) {
	t.Helper()

	dir, err := ioutil.TempDir("", "objfind")
	require.NoError(t, err)

	db, err := NewRefDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	return db, dir
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "reference.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportCSV(t *testing.T) {
	db, dir := tempRefDB(t)
	defer os.RemoveAll(dir)
	defer db.Close()

	require.NoError(t, db.ImportCSV(writeCSV(t, dir, "1,10,20\n2,30,40\n")))

	p, err := db.FindReferenceByID(1)
	require.NoError(t, err)
	assert.Equal(t, &match.Point{X: 10, Y: 20}, p)

	p, err = db.FindReferenceByID(2)
	require.NoError(t, err)
	assert.Equal(t, &match.Point{X: 30, Y: 40}, p)
}

func TestFindReferenceByIDMissing(t *testing.T) {
	db, dir := tempRefDB(t)
	defer os.RemoveAll(dir)
	defer db.Close()

	p, err := db.FindReferenceByID(99)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportCSVReplaces(t *testing.T) {
	db, dir := tempRefDB(t)
	defer os.RemoveAll(dir)
	defer db.Close()

	require.NoError(t, db.ImportCSV(writeCSV(t, dir, "1,10,20\n")))
	require.NoError(t, db.ImportCSV(writeCSV(t, dir, "5,50,60\n")))

	// A fresh import drops the previous records.
	p, err := db.FindReferenceByID(1)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = db.FindReferenceByID(5)
	require.NoError(t, err)
	assert.Equal(t, &match.Point{X: 50, Y: 60}, p)
}

func TestImportCSVBadRecord(t *testing.T) {
	db, dir := tempRefDB(t)
	defer os.RemoveAll(dir)
	defer db.Close()

	require.NoError(t, db.ImportCSV(writeCSV(t, dir, "1,10,20\n")))

	// A failed import leaves the previous fixture intact.
	assert.Error(t, db.ImportCSV(writeCSV(t, dir, "2,not-a-number,40\n")))

	p, err := db.FindReferenceByID(1)
	require.NoError(t, err)
	assert.Equal(t, &match.Point{X: 10, Y: 20}, p)
}
