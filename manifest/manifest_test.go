package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlattensNestedEntries(t *testing.T) {
	data := []byte(`{
		"Entries": {
			"abc123": {
				"Attributes": {
					"SongName": "Test Song",
					"ArtistName": "Test Artist",
					"SongYear": 2014,
					"ArrangementType": 3,
					"Tuning": {"String0": -2, "String1": -2, "String2": 0, "String3": 0, "String4": 0, "String5": 0},
					"CapoFret": 255,
					"SongAsset": "urn:application:musicgamesong:test_bass",
					"UnknownField": "ignored"
				}
			}
		}
	}`)

	attrs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, attrs, 1)

	a := attrs[0]
	assert.Equal(t, "Test Song", a.SongName)
	assert.Equal(t, "Test Artist", a.ArtistName)
	assert.Equal(t, 2014, a.SongYear)
	assert.Equal(t, 3, a.ArrangementType)
	assert.Equal(t, [6]int{-2, -2, 0, 0, 0, 0}, a.Tuning)
	assert.Equal(t, 255, a.CapoFret)
	assert.Equal(t, "urn:application:musicgamesong:test_bass", a.SongAsset)
}

func TestParseMissingFieldsDefaultToZeroValue(t *testing.T) {
	data := []byte(`{"Entries": {"x": {"y": {}}}}`)
	attrs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "", attrs[0].SongName)
	assert.Equal(t, 0, attrs[0].SongYear)
}

func TestParseBonusArrSetsBonus(t *testing.T) {
	data := []byte(`{
		"Entries": {
			"abc123": {
				"Attributes": {
					"SongName": "Test Song",
					"ArrangementProperties": {"BonusArr": 1}
				}
			}
		}
	}`)
	attrs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.True(t, attrs[0].Bonus)
}

func TestParseMissingArrangementPropertiesLeavesBonusFalse(t *testing.T) {
	data := []byte(`{"Entries": {"x": {"y": {"SongName": "A"}}}}`)
	attrs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.False(t, attrs[0].Bonus)
}

func TestParseMultipleOuterAndInnerKeys(t *testing.T) {
	data := []byte(`{
		"Entries": {
			"outer1": {"inner1": {"SongName": "A"}, "inner2": {"SongName": "B"}},
			"outer2": {"inner3": {"SongName": "C"}}
		}
	}`)
	attrs, err := Parse(data)
	require.NoError(t, err)
	assert.Len(t, attrs, 3)
}
