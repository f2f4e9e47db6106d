package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z]{4}$`)
	for range 200 {
		assert.Regexp(t, pattern, GenerateRoomCode())
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABCD", NormalizeRoomID(" abCd "))
	assert.Equal(t, "MURCIÉLAGO", NormalizeAnswer("  murciélago \n"))
	assert.Equal(t, "", NormalizeAnswer("   "))
}

func TestLettersSkipKAndW(t *testing.T) {
	assert.Len(t, Letters, 24)
	assert.NotContains(t, Letters, "K")
	assert.NotContains(t, Letters, "W")
}

func TestRandomPickerDrawsFromTables(t *testing.T) {
	p := NewRandomPicker(nil, []string{"Animal"})
	for range 50 {
		assert.Contains(t, Letters, p.RandomLetter())
		assert.Equal(t, "Animal", p.RandomCategory())
	}
}

func TestReadCsvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	content := "Animal,easy\n\n  Fruta  \nAnimal\nColor,extra,columns\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	categories, err := ReadCsvFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Animal", "Fruta", "Color"}, categories)
}

func TestReadCsvFileErrors(t *testing.T) {
	_, err := ReadCsvFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("\n\n"), 0o600))
	_, err = ReadCsvFile(empty)
	assert.Error(t, err)
}
