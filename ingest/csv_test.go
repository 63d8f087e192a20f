package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `time,ticker,isBuyer,expiration,averagePrice,filledAmount,orderId
2024-03-15 09:00:00,BTCUSDT,True,"{'reduceOnly': False}",100,10,a1
2024-03-15 10:00:00,BTCUSDT,False,"{'reduceOnly': True}",110,4,a2
2024-03-15 10:30:00,BTCUSDT,False,"{'reduceOnly': True}",,4,a3

2024-03-15 11:00:00,ETHUSDT,maybe,,50,1,a4
2024-03-15 12:00:00,BTCUSDT,False,"{'reduceOnly': True}",120,6,a5
`

func TestCSVReaderColumnsByName(t *testing.T) {
	t.Parallel()

	in := "filledAmount,TICKER,Time,isbuyer,price\n2,ETHUSDT,2024-01-01T00:00:00Z,false,3000\n"
	r, err := NewCSVReader(strings.NewReader(in))
	require.NoError(t, err)

	row, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, row.Index)
	assert.Equal(t, "ETHUSDT", row.Ticker.Value)
	assert.Equal(t, "3000", row.Price.Value)
	assert.False(t, row.AveragePrice.Present)
	assert.False(t, row.Expiration.Present)

	_, ok, err = r.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCSVReaderMissingColumns(t *testing.T) {
	t.Parallel()

	_, err := NewCSVReader(strings.NewReader("time,ticker,isBuyer,averagePrice\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filledAmount")

	_, err = NewCSVReader(strings.NewReader("time,ticker,isBuyer,filledAmount\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "averagePrice")

	_, err = NewCSVReader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	b, err := Load(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 5, b.Rows)
	require.Len(t, b.Records, 3)
	assert.Equal(t, []int{0, 1, 4}, []int{b.Records[0].Row, b.Records[1].Row, b.Records[2].Row})
	assert.True(t, b.Records[1].ReduceOnly)
	assert.False(t, b.Records[0].ReduceOnly)

	require.Len(t, b.Dropped, 2)
	assert.Equal(t, 2, b.Dropped[0].Row)
	assert.Equal(t, "missing_price", b.Dropped[0].Reason)
	assert.Equal(t, 3, b.Dropped[1].Row)
	assert.Equal(t, "parse", b.Dropped[1].Reason)
	assert.ErrorIs(t, b.Dropped[1].Err, ErrParse)
}

func TestLoadEmpty(t *testing.T) {
	t.Parallel()

	in := "time,ticker,isBuyer,averagePrice,filledAmount\n2024-01-01T00:00:00Z,BTCUSDT,true,,1\n"
	b, err := Load(strings.NewReader(in))
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Len(t, b.Dropped, 1)
	assert.Equal(t, 1, b.Rows)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "acct-1.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	b, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, b.Records, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
