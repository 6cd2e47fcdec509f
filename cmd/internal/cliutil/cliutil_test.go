package cliutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	v := map[string]any{"id": 1, "name": "x"}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, v))
	assert.JSONEq(t, `{"id":1,"name":"x"}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, v))
	assert.Equal(t, "id: 1\nname: x\n", buf.String())

	assert.Error(t, Encode(&buf, "xml", v))
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, CheckFormat("json", FormatJSON, FormatYAML))
	assert.Error(t, CheckFormat("csv", FormatJSON, FormatYAML))
}

func TestGetOutput(t *testing.T) {
	f, closeFn, err := GetOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)
	closeFn()

	path := filepath.Join(t.TempDir(), "out.json")
	f, closeFn, err = GetOutput(path)
	require.NoError(t, err)
	_, err = f.WriteString("{}")
	require.NoError(t, err)
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
