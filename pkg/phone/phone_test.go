package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("81234 56789", "IN")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got)

	got, err = Normalize("+91 8123456789", "US")
	require.NoError(t, err)
	assert.Equal(t, "+918123456789", got, "explicit country code wins over region")
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	_, err := Normalize("", "IN")
	assert.Error(t, err)

	_, err = Normalize("12345", "IN")
	assert.Error(t, err)
}
