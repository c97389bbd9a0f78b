package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { Init("info", "json") })

	LogError("import", "run", "insert customers", map[string]int{"row": 3}, errors.New("duplicate mobile"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "import", entry["module"])
	assert.Equal(t, "run", entry["funcName"])
	assert.Equal(t, "insert customers", entry["context"])
	assert.Equal(t, "duplicate mobile", entry["msg"])
	assert.Equal(t, "error", entry["level"])
	assert.NotNil(t, entry["data"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	l := New("nonsense", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}
