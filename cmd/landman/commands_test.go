package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const exhibit = "EXHIBIT A\n" +
	"1. JOHN SMITH, 123 MAIN ST, AUSTIN, TX 78701\n" +
	"2. John Smith, 123 Main St, Austin, TX 78701\n" +
	"3. ACME OIL COMPANY, PO BOX 9, MIDLAND, TX 79702"

func TestExhibitCommand(t *testing.T) {
	path := writeFile(t, "exhibit.txt", exhibit)

	out, err := runCLI(t, "exhibit-a", path, "--pretty")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n  "), "pretty output is indented")
	var result struct {
		Document string `json:"document"`
		Total    int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "exhibit.txt", result.Document)
	assert.Equal(t, 3, result.Total)
}

func TestResolveCommand_Exhibit(t *testing.T) {
	path := writeFile(t, "exhibit.txt", exhibit)

	out, err := runCLI(t, "resolve", path)

	require.NoError(t, err)
	var report ResolveReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Matched)
}

func TestResolveCommand_Workbook(t *testing.T) {
	path := writeFile(t, "owners.csv", strings.Join([]string{
		"Owner Name,Address,City,State,Zip,Interest,Legal Description",
		"SMITH FAMILY TRUST,PO BOX 12,MIDLAND,TX,79701,1/8,SEC 12 BLK 4",
	}, "\n"))

	out, err := runCLI(t, "resolve", path)

	require.NoError(t, err)
	var report ResolveReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.OwnershipRecords)
}

func TestCommands_Errors(t *testing.T) {
	_, err := runCLI(t, "title")
	assert.Error(t, err, "a file argument is required")

	_, err = runCLI(t, "revenue", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "failed to read")

	_, err = runCLI(t, "title", writeFile(t, "owners.docx", "x"))
	assert.ErrorContains(t, err, "unsupported file type")
}
