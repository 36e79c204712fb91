package tabular

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/llm/llmtest"
	"ai-knowledge-router-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("comma", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader("cabang,karyawan\nJakarta,120\n,\nBandung,45\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"cabang", "karyawan"}, table.Header)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("semicolon with bom", func(t *testing.T) {
		table, err := ReadCSV(strings.NewReader("\ufeffcabang;karyawan\nJakarta;120\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"cabang", "karyawan"}, table.Header)
		assert.Equal(t, []string{"Jakarta", "120"}, table.Rows[0])
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyTable)
	})
}

func TestTableRender(t *testing.T) {
	table := &Table{Header: []string{"a", "b"}, Rows: [][]string{{"1", "2"}, {"3", "4"}, {"5", "6"}}}
	out := table.Render(2)
	assert.Contains(t, out, "a | b\n1 | 2\n3 | 4\n")
	assert.Contains(t, out, "(1 more rows)")
}

func TestIsTabularQuestion(t *testing.T) {
	assert.True(t, IsTabularQuestion("Berapa jumlah karyawan cabang Bandung?"))
	assert.True(t, IsTabularQuestion("penjualan 2023"))
	assert.True(t, IsTabularQuestion("What is the average salary?"))
	assert.False(t, IsTabularQuestion("Apa visi perusahaan?"))
}

func TestSelectSpreadsheet(t *testing.T) {
	sheets := []store.Spreadsheet{
		{ID: "1", Title: "Penjualan", Description: "Data penjualan bulanan per cabang"},
		{ID: "2", Title: "Karyawan", Description: "Jumlah karyawan per cabang dan divisi"},
	}

	got := SelectSpreadsheet(sheets, "berapa karyawan divisi IT?")
	require.NotNil(t, got)
	assert.Equal(t, "2", got.ID)

	assert.Nil(t, SelectSpreadsheet(sheets, "resep rendang"))
	assert.Nil(t, SelectSpreadsheet(nil, "karyawan"))
}

func TestAgent_Answer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "karyawan.csv"), []byte("cabang,karyawan\nJakarta,120\nBandung,45\n"), 0o600))
	sheet := store.Spreadsheet{Title: "Karyawan", StoragePath: "karyawan.csv"}

	t.Run("answers from the table", func(t *testing.T) {
		fake := llmtest.New().On("Bandung | 45", "Cabang Bandung memiliki 45 karyawan.")
		agent := NewAgent(fake, dir, logger.NewNopLogger())

		answer, err := agent.Answer(context.Background(), sheet, "berapa karyawan Bandung?")

		require.NoError(t, err)
		assert.Equal(t, "Cabang Bandung memiliki 45 karyawan.", answer)
		assert.Contains(t, fake.Prompts()[0], "You are a data analyst")
	})

	t.Run("missing file", func(t *testing.T) {
		agent := NewAgent(llmtest.New(), dir, logger.NewNopLogger())
		_, err := agent.Answer(context.Background(), store.Spreadsheet{StoragePath: "missing.csv"}, "x")
		assert.Error(t, err)
	})

	t.Run("provider failure", func(t *testing.T) {
		fake := llmtest.New()
		fake.DefaultErr = llm.ErrRateLimited
		agent := NewAgent(fake, dir, logger.NewNopLogger())

		_, err := agent.Answer(context.Background(), sheet, "x")
		assert.True(t, errors.Is(err, llm.ErrRateLimited))
	})
}
