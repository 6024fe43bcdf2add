package spreadsheet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/massmailer/pkg/spreadsheet"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		"Email,Name,CC,Order ID,Amount",
		"alice@example.com,Alice,lead@example.com,1042,19.90",
		"bob@example.com,Bob,,1043,5.00",
	}, "\n")

	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	alice := recipients[0]
	require.Equal(t, "alice@example.com", alice.Email)
	require.Equal(t, "Alice", alice.Name)
	require.Equal(t, []string{"lead@example.com"}, alice.CC)
	require.Equal(t, map[string]string{"order_id": "1042", "amount": "19.90"}, alice.Variables)

	// Blank cc cells produce no entries.
	require.Nil(t, recipients[1].CC)
}

func TestLoad_EmailColumnVariants(t *testing.T) {
	t.Parallel()

	data := "Work Email,Name\ncarol@example.com,Carol\n"
	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", recipients[0].Email)
}

func TestLoad_MultipleCCColumns(t *testing.T) {
	t.Parallel()

	data := "email,cc1,cc2\na@example.com,x@example.com,y@example.com\n"
	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []string{"x@example.com", "y@example.com"}, recipients[0].CC)
}

func TestLoad_PreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	data := strings.Join([]string{
		"email",
		"b@example.com",
		"a@example.com",
		"b@example.com",
	}, "\n")

	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, recipients, 3)
	require.Equal(t, "b@example.com", recipients[0].Email)
	require.Equal(t, "a@example.com", recipients[1].Email)
	require.Equal(t, "b@example.com", recipients[2].Email)
}

// Malformed addresses survive the load; the engine's validator decides
// their fate so the run report can show a per-row outcome.
func TestLoad_DoesNotValidateRows(t *testing.T) {
	t.Parallel()

	data := "email,name\nnot-an-address,Broken\n"
	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "not-an-address", recipients[0].Email)
}

func TestLoad_EmptyCells(t *testing.T) {
	t.Parallel()

	data := "email,name,team\ndave@example.com,Dave,\n"
	recipients, err := spreadsheet.Load(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "", recipients[0].Variables["team"])
}

func TestLoad_NoHeader(t *testing.T) {
	t.Parallel()

	_, err := spreadsheet.Load(strings.NewReader(""))
	require.ErrorIs(t, err, spreadsheet.ErrNoHeader)
}

func TestLoad_NoEmailColumn(t *testing.T) {
	t.Parallel()

	_, err := spreadsheet.Load(strings.NewReader("name,team\nAlice,Core\n"))
	require.ErrorIs(t, err, spreadsheet.ErrNoEmailColumn)
}

func TestLoad_HeaderOnly(t *testing.T) {
	t.Parallel()

	recipients, err := spreadsheet.Load(strings.NewReader("email,name\n"))
	require.NoError(t, err)
	require.Empty(t, recipients)
}
