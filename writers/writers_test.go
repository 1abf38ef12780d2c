package writers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	olc "github.com/google/open-location-code/go"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gosom/gmaps-favorites/favorites"
)

func sampleImport() *favorites.Import {
	start := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	return &favorites.Import{
		ID:         "0b7e7d4e-import",
		Source:     "구글맵",
		StartedAt:  start,
		FinishedAt: start.Add(4 * time.Second),
		Folders: []favorites.Folder{
			{Name: "맛집", Items: []favorites.Item{
				{Name: "광장시장", Description: "빈대떡, 마약김밥", LatLng: favorites.LatLng{Lat: 37.5701, Lng: 126.9996}},
			}},
			{Name: "Trips", Items: []favorites.Item{
				{Name: "Haeundae", LatLng: favorites.LatLng{Lat: 35.1587, Lng: 129.1604}},
			}},
		},
	}
}

func TestTableRow(t *testing.T) {
	row := tableRow(favorites.Row{
		Folder: "Trips",
		Item:   favorites.Item{Name: "Seoul", Description: "home", LatLng: favorites.LatLng{Lat: 37.5, Lng: 127}},
	})

	require.Len(t, row, len(tableHeaders))
	require.Equal(t, []string{"Trips", "Seoul", "home", "37.5", "127"}, row[:5])

	area, err := olc.Decode(row[5])
	require.NoError(t, err)
	require.InDelta(t, 37.5, area.LatLo, 0.001)
	require.InDelta(t, 127.0, area.LngLo, 0.001)
}

func TestRecords(t *testing.T) {
	imp := sampleImport()

	all := Records(imp)
	require.Len(t, all, 3)
	require.Equal(t, tableHeaders, all[0])

	picked := Records(imp, "lat", " name ")
	require.Equal(t, [][]string{
		{"name", "lat"},
		{"광장시장", "37.5701"},
		{"Haeundae", "35.1587"},
	}, picked)

	require.Equal(t, all, Records(imp, "unknown"))
}

func TestOutputPath(t *testing.T) {
	p, err := outputPath("/data", "abc", "csv")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data", "abc.csv"), p)

	for _, id := range []string{"", "../x", "a/b", `a\b`} {
		_, err := outputPath("/data", id, "csv")
		require.Error(t, err, id)
	}
}

func TestJSONWriter(t *testing.T) {
	dir := t.TempDir()
	imp := sampleImport()

	require.NoError(t, (&JSONWriter{Dir: dir}).Write(context.Background(), imp))

	data, err := os.ReadFile(filepath.Join(dir, imp.ID+".json"))
	require.NoError(t, err)

	var got favorites.Import
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, imp.Folders, got.Folders)
	require.Contains(t, string(data), "빈대떡, 마약김밥")

	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{Out: &buf}).Write(context.Background(), imp))
	require.JSONEq(t, string(data), buf.String())
}

func TestCsvWriter(t *testing.T) {
	dir := t.TempDir()
	imp := sampleImport()

	require.NoError(t, (&CsvWriter{Dir: dir}).Write(context.Background(), imp))

	data, err := os.ReadFile(filepath.Join(dir, imp.ID+".csv"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, tableHeaders, records[0])
	require.Equal(t, "맛집", records[1][0])
	require.Equal(t, "빈대떡, 마약김밥", records[1][2])
	require.Equal(t, "Haeundae", records[2][1])
}

func TestCsvWriterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&CsvWriter{Dir: t.TempDir()}).Write(ctx, sampleImport())
	require.ErrorIs(t, err, context.Canceled)
}

func TestXLSXWriter(t *testing.T) {
	dir := t.TempDir()
	imp := sampleImport()

	require.NoError(t, (&XLSXWriter{Dir: dir}).Write(context.Background(), imp))

	f, err := excelize.OpenFile(filepath.Join(dir, imp.ID+".xlsx"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, tableHeaders, rows[0])
	require.Equal(t, "광장시장", rows[1][1])
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.in = in
	f.body, _ = io.ReadAll(in.Body)

	return &s3.PutObjectOutput{}, nil
}

func TestS3Writer(t *testing.T) {
	client := &fakeS3{}
	w := &S3Writer{client: client, bucket: "favorites", prefix: "exports"}
	imp := sampleImport()

	require.NoError(t, w.Write(context.Background(), imp))
	require.Equal(t, "favorites", *client.in.Bucket)
	require.Equal(t, "exports/"+imp.ID+".json", *client.in.Key)
	require.Equal(t, "application/json", *client.in.ContentType)

	var got favorites.Import
	require.NoError(t, json.Unmarshal(client.body, &got))
	require.Equal(t, imp.ID, got.ID)

	client.err = errors.New("access denied")
	require.ErrorIs(t, w.Write(context.Background(), imp), client.err)
}

func TestNewS3WriterRequiresBucket(t *testing.T) {
	_, err := NewS3Writer(context.Background(), S3Config{})
	require.Error(t, err)
}
