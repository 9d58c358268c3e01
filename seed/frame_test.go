// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) *Frame {
	t.Helper()
	frame, err := ParseCSV(strings.NewReader(content))
	require.NoError(t, err)
	return frame
}

func TestIsMissing(t *testing.T) {
	for _, cell := range []string{"", "NA", "N/A", "nan", "NaN", "NULL", "null", "None", "<NA>", "#N/A", "-1.#IND"} {
		assert.True(t, IsMissing(cell), "%q should be missing", cell)
	}
	for _, cell := range []string{"0", " ", "na ", "Nan", "none", "Namibia"} {
		assert.False(t, IsMissing(cell), "%q should not be missing", cell)
	}
}

func TestParseCSV_ShortRowsPadded(t *testing.T) {
	frame := parse(t, "a,b,c\n1,2\n4,5,6\n")

	require.Equal(t, 2, frame.Len())
	assert.Len(t, frame.Rows[0], 3)
	assert.False(t, frame.Rows[0][2].Valid)
	assert.Equal(t, "6", frame.Rows[1][2].String)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"empty file", "", ErrEmptyFile},
		{"long row", "a,b\n1,2,3\n", ErrMalformedRow},
		{"bad quoting", "a,b\n\"1,2\n", ErrMalformedRow},
		{"duplicate header", "a,b,a\n1,2,3\n", ErrBadHeader},
		{"empty header", "a,,c\n1,2,3\n", ErrBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.content))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCSV_StripsBOM(t *testing.T) {
	frame := parse(t, "\ufeffregion\nFrance\n")
	assert.Equal(t, 0, frame.Column("region"))
}

func TestFrame_SelectDropDedupe(t *testing.T) {
	frame := parse(t, "NOC,region,notes\nAUS,Australia,\nANZ,Australia,x\nROT,,y\nFRA,France,\n")

	sel, err := frame.Select("region")
	require.NoError(t, err)
	assert.Equal(t, []string{"region"}, sel.Header)

	deduped, err := sel.DropMissing().DedupeBy("region")
	require.NoError(t, err)

	var got []string
	for _, row := range deduped.Rows {
		got = append(got, row[0].String)
	}
	assert.Equal(t, []string{"Australia", "France"}, got)

	_, err = frame.Select("nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
	_, err = frame.DedupeBy("nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestFrame_DropMissing(t *testing.T) {
	frame := parse(t, "a,b\n1,2\n3,NA\n,4\n5,6\n").DropMissing()

	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "1", frame.Rows[0][0].String)
	assert.Equal(t, "5", frame.Rows[1][0].String)
}

func TestFrame_Kind(t *testing.T) {
	frame := parse(t, "int,real,text,mixed,empty\n1,1.5,a,1,\n-2,3,b,x,\n,1e3,c,2.5,\n")

	assert.Equal(t, KindInteger, frame.Kind(0))
	assert.Equal(t, KindReal, frame.Kind(1))
	assert.Equal(t, KindText, frame.Kind(2))
	assert.Equal(t, KindText, frame.Kind(3))
	assert.Equal(t, KindText, frame.Kind(4))
}

func TestValue(t *testing.T) {
	frame := parse(t, "a,b,c\n7,2.5,x\n")
	row := frame.Rows[0]

	assert.Equal(t, int64(7), Value(row[0], KindInteger))
	assert.Equal(t, 2.5, Value(row[1], KindReal))
	assert.Equal(t, "x", Value(row[2], KindText))
	assert.Nil(t, Value(sql.NullString{}, KindText))
}
