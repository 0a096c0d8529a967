package simulator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisdamba/bagsim/internal/cloudwriter"
	"github.com/chrisdamba/bagsim/internal/models"
)

func sampleSettledEvent(t *testing.T, day int) []byte {
	t.Helper()
	res := models.NewReservation(3, 11, 2, models.NewTimestamp(9, 30))
	res.Confirm(2)
	ev := newReservationSettledEvent(EventHeader{
		RunID:     "run1",
		Strategy:  "baseline",
		Day:       day,
		EventType: models.EventReservationSettled,
		SimTime:   MarketClose,
	}, res, 80)
	msg, err := json.Marshal(ev)
	require.NoError(t, err)
	return msg
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	out := NewConsoleOutput(&buf)

	require.NoError(t, out.WriteMessage(TopicDaySummary, []byte(`{"day":1}`)))
	assert.Equal(t, "[day_summary_events] {\"day\":1}\n", buf.String())
	assert.NoError(t, out.Close())
}

func TestJSONOutputPartitionsByRunAndDay(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "events")

	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 1)))
	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 1)))
	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 2)))
	require.NoError(t, out.Close())

	path := filepath.Join(dir, "events", TopicReservationSettled, "run=run1", "day=01", "data.json")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []ReservationSettledEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev ReservationSettledEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		lines = append(lines, ev)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, int64(2), lines[0].BagsReceived)
	assert.Equal(t, 160.0, lines[0].Revenue)
	assert.Equal(t, string(models.StatusConfirmed), lines[0].Status)

	assert.FileExists(t, filepath.Join(dir, "events", TopicReservationSettled, "run=run1", "day=02", "data.json"))
}

func TestJSONOutputRejectsUnpartitionedEvent(t *testing.T) {
	out := NewJSONOutput(t.TempDir(), "events")
	assert.Error(t, out.WriteMessage(TopicDaySummary, []byte(`{"day":1}`)))
	assert.Error(t, out.WriteMessage(TopicDaySummary, []byte(`not json`)))
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	out := NewCSVOutput(dir, "events")

	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 1)))
	require.NoError(t, out.Close())

	f, err := os.Open(filepath.Join(dir, "events", TopicReservationSettled, "run=run1", "day=01", "data.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	header := records[0]
	assert.IsIncreasing(t, header)
	assert.Contains(t, header, "reservationId")
	row := map[string]string{}
	for i, h := range header {
		row[h] = records[1][i]
	}
	assert.Equal(t, "3", row["reservationId"])
	assert.Equal(t, "CONFIRMED", row["status"])
}

func TestParquetOutputLocal(t *testing.T) {
	dir := t.TempDir()
	cfg := models.DefaultConfig()
	cfg.OutputPath = dir
	cfg.OutputFolder = "events"

	out := NewParquetOutput(cfg, nil)
	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 1)))
	require.NoError(t, out.Close())

	path := filepath.Join(dir, "events", TopicReservationSettled, "run=run1", "day=01", "data.parquet")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	require.NoError(t, CleanupParquet(dir, "events"))
	assert.NoFileExists(t, path)
}

type memoryObject struct {
	buf    bytes.Buffer
	closed bool
}

func (m *memoryObject) Write(p []byte) (int, error) { return m.buf.Write(p) }
func (m *memoryObject) Close() error                { m.closed = true; return nil }

type memoryFactory struct {
	objects map[string]*memoryObject
}

func (f *memoryFactory) NewWriter(bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	obj := &memoryObject{}
	f.objects[bucket+"/"+objectPath] = obj
	return obj, nil
}

func TestParquetOutputCloud(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.OutputFolder = "events"
	cfg.CloudStorage.BucketName = "bags"
	factory := &memoryFactory{objects: make(map[string]*memoryObject)}

	out := NewParquetOutput(cfg, factory)
	require.NoError(t, out.WriteMessage(TopicReservationSettled, sampleSettledEvent(t, 3)))
	require.NoError(t, out.Close())

	obj, ok := factory.objects["bags/events/"+TopicReservationSettled+"/run=run1/day=03/data.parquet"]
	require.True(t, ok)
	assert.True(t, obj.closed)
	assert.True(t, bytes.HasPrefix(obj.buf.Bytes(), []byte("PAR1")))
}

func TestGetSchema(t *testing.T) {
	for _, topic := range []string{TopicReservationCreated, TopicReservationSettled, TopicDaySummary} {
		sh, err := GetSchema(topic)
		require.NoError(t, err, topic)
		assert.NotNil(t, sh)
	}
	_, err := GetSchema("orders")
	assert.Error(t, err)
}

func TestNewOutputDestination(t *testing.T) {
	cfg := models.DefaultConfig()
	cfg.OutputPath = t.TempDir()

	tests := []struct {
		format string
		want   interface{}
	}{
		{models.OutputNone, NoopOutput{}},
		{models.OutputConsole, &ConsoleOutput{}},
		{models.OutputJSON, &JSONOutput{}},
		{models.OutputCSV, &CSVOutput{}},
		{models.OutputParquet, &ParquetOutput{}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg.OutputFormat = tt.format
			out, err := NewOutputDestination(context.Background(), cfg)
			require.NoError(t, err)
			assert.IsType(t, tt.want, out)
		})
	}

	cfg.OutputFormat = "carrier-pigeon"
	_, err := NewOutputDestination(context.Background(), cfg)
	assert.Error(t, err)
}
