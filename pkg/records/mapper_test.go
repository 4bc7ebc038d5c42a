package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablematch/tablematch/pkg/errors"
	"github.com/tablematch/tablematch/pkg/schema"
)

func testMapping(t *testing.T) *schema.Mapping {
	t.Helper()
	m := &schema.Mapping{
		Fields: []schema.Field{
			{Name: "code", Required: true},
			{Name: "title"},
			{Name: "notes"},
		},
		Keys:      []string{"code"},
		Signature: []string{"title"},
		Position: map[string]string{
			"code":  "Position Code",
			"title": "Job Title",
			"notes": "Notes",
		},
		Candidate: map[string]string{
			"code":  "Applied Code",
			"title": "Applied Title",
		},
	}
	require.NoError(t, m.Validate())
	return m
}

func TestMapRows(t *testing.T) {
	m := testMapping(t)
	rows := []Row{
		{"Position Code": " P1 ", "Job Title": "Engineer", "Notes": "x"},
		{"Position Code": "P2", "Job Title": "", "Notes": "y"},
	}

	recs, err := MapRows(rows, m, schema.RolePosition)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, schema.RolePosition, recs[0].Role())
	assert.Equal(t, 0, recs[0].Index())
	assert.Equal(t, 1, recs[1].Index())

	// Values are trimmed; blanks become null.
	assert.Equal(t, Value{Raw: "P1"}, recs[0].Value("code"))
	assert.Equal(t, Value{Raw: "Engineer"}, recs[0].Value("title"))
	assert.True(t, recs[1].Value("title").Null)

	// Unknown fields report null.
	assert.True(t, recs[0].Value("no_such_field").Null)
}

func TestMapRowsPreservesRaw(t *testing.T) {
	m := testMapping(t)
	rows := []Row{{"Position Code": "P1", "Job Title": "Engineer", "Notes": "", "Extra": "kept"}}

	recs, err := MapRows(rows, m, schema.RolePosition)
	require.NoError(t, err)

	raw := recs[0].Raw()
	assert.Equal(t, "kept", raw["Extra"])

	// Mutating the returned copy must not touch the record.
	raw["Extra"] = "changed"
	assert.Equal(t, "kept", recs[0].Raw()["Extra"])
}

func TestMapRowsMissingDeclaredColumn(t *testing.T) {
	m := testMapping(t)
	rows := []Row{{"Wrong Header": "P1"}}

	_, err := MapRows(rows, m, schema.RolePosition)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingRequiredColumn)

	var mce *errors.MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "position", mce.Table)
}

func TestMapRowsMissingOptionalBoundColumn(t *testing.T) {
	m := testMapping(t)
	// "notes" is optional but bound for the position table; a bound column
	// absent from every header still fails fast, and the message must not
	// claim the field is required.
	rows := []Row{{"Position Code": "P1", "Job Title": "Engineer"}}

	_, err := MapRows(rows, m, schema.RolePosition)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrMissingRequiredColumn)

	var mce *errors.MissingColumnError
	require.ErrorAs(t, err, &mce)
	assert.Equal(t, "notes", mce.Field)
	assert.Equal(t, "Notes", mce.Column)
	assert.NotContains(t, err.Error(), "required field")
}

func TestMapRowsUnboundOptionalFieldIsNull(t *testing.T) {
	m := testMapping(t)
	// The candidate table declares no column for "notes".
	rows := []Row{{"Applied Code": "P1", "Applied Title": "Engineer"}}

	recs, err := MapRows(rows, m, schema.RoleCandidate)
	require.NoError(t, err)
	assert.True(t, recs[0].Value("notes").Null)
}

func TestMapRowsEmptyInput(t *testing.T) {
	m := testMapping(t)

	recs, err := MapRows(nil, m, schema.RoleCandidate)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
