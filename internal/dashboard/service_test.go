package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/posto-dashboard/internal/aggregate"
	"github.com/dvloznov/posto-dashboard/internal/csvexport"
	"github.com/dvloznov/posto-dashboard/internal/domain"
	"github.com/dvloznov/posto-dashboard/internal/filter"
	"github.com/dvloznov/posto-dashboard/internal/gcs"
	"github.com/dvloznov/posto-dashboard/internal/insight"
	"github.com/dvloznov/posto-dashboard/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	fuelings   []domain.FuelingRecord
	attendants []domain.Attendant
	err        error
	pingErr    error

	gotStart, gotEnd civil.Date
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fuelings(ctx context.Context, start, end civil.Date) ([]domain.FuelingRecord, error) {
	f.gotStart, f.gotEnd = start, end
	return f.fuelings, f.err
}

func (f *fakeSource) Attendants(ctx context.Context) ([]domain.Attendant, error) {
	return f.attendants, f.err
}

func (f *fakeSource) Ping(ctx context.Context) error { return f.pingErr }

type fakeStorage struct {
	UploadFunc func(ctx context.Context, uri string, r io.Reader, contentType string) error
}

func (f *fakeStorage) Upload(ctx context.Context, uri string, r io.Reader, contentType string) error {
	return f.UploadFunc(ctx, uri, r, contentType)
}

func (f *fakeStorage) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

type fakeSuggester struct {
	text string
	err  error
	got  insight.Summary
}

func (f *fakeSuggester) Suggest(ctx context.Context, s insight.Summary) (string, error) {
	f.got = s
	return f.text, f.err
}

func fixedNow() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }

func record(card, nozzle, fuel, date, total, liters string) domain.FuelingRecord {
	return domain.FuelingRecord{
		AttendantCardID: card,
		NozzleCode:      nozzle,
		FuelType:        fuel,
		TransactionDate: date,
		UnitPrice:       domain.ParseAmount("5.00"),
		TotalAmount:     domain.ParseAmount(total),
		VolumeLiters:    domain.ParseAmount(liters),
	}
}

func sampleSource() *fakeSource {
	return &fakeSource{
		attendants: []domain.Attendant{
			{CardID: "1", Nickname: "Ana"},
			{CardID: "2", Nickname: "Bia"},
		},
		fuelings: []domain.FuelingRecord{
			record("1", "01", "ETANOL", "2024-03-05", "100.00", "20"),
			record("2", "02", "DIESEL S10", "2024-03-06", "300.00", "50"),
			record("1", "03", "ETANOL", "2024-03-07", "50.00", "10"),
			record("9", "04", "ETANOL", "not-a-date", "10.00", "2"),
		},
	}
}

func newLoadedService(t *testing.T, src *fakeSource, storage gcs.StorageService, suggester insight.Suggester) *Service {
	t.Helper()
	svc := NewService(src, storage, suggester, Options{
		LookbackDays:   7,
		Delimiter:      ';',
		FilenamePrefix: "vendas",
		Bucket:         "posto-exports",
		ObjectPrefix:   "exports",
		Now:            fixedNow,
	})
	require.NoError(t, svc.Reload(context.Background()))
	return svc
}

func TestService_Reload(t *testing.T) {
	src := sampleSource()
	svc := newLoadedService(t, src, nil, nil)

	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 1}, src.gotStart)
	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 7}, src.gotEnd)
	require.Len(t, svc.Records(), 4)
	assert.Equal(t, domain.DefaultUnknownAttendant, svc.Records()[3].AttendantNickname)
	assert.Len(t, svc.Attendants(), 2)

	src.err = errors.New("bridge down")
	require.Error(t, svc.Reload(context.Background()))
	assert.Len(t, svc.Records(), 4, "failed reload keeps the previous snapshot")
}

func TestService_EmptyBeforeReload(t *testing.T) {
	svc := NewService(sampleSource(), nil, nil, Options{})
	assert.Empty(t, svc.Records())

	ov, err := svc.Overview(context.Background(), filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, 0, ov.Stats.RecordCount)
	assert.Empty(t, ov.InvalidDates)
}

func TestService_Overview(t *testing.T) {
	svc := newLoadedService(t, sampleSource(), nil, nil)

	start := civil.Date{Year: 2024, Month: 3, Day: 5}
	ov, err := svc.Overview(context.Background(), filter.Spec{StartDate: &start})
	require.NoError(t, err)

	// The unparseable date is kept and reported.
	assert.Equal(t, 4, ov.Stats.RecordCount)
	assert.Equal(t, "460", ov.Stats.TotalRevenue.String())
	require.Len(t, ov.InvalidDates, 1)
	assert.Equal(t, "not-a-date", ov.InvalidDates[0].Raw)

	require.Len(t, ov.ByAttendant, 3)
	assert.Equal(t, "Bia", ov.ByAttendant[0].Name)
	assert.Equal(t, "Ana", ov.ByAttendant[1].Name)
	assert.Equal(t, "150", ov.ByAttendant[1].Total.String())

	require.Len(t, ov.ByFuel, 2)
	assert.Equal(t, "ETANOL", ov.ByFuel[0].Name)
	assert.Equal(t, "160", ov.ByFuel[0].Value.String())
}

func TestService_OverviewNonNumeric(t *testing.T) {
	src := sampleSource()
	src.fuelings[1].TotalAmount = domain.ParseAmount("abc")
	svc := newLoadedService(t, src, nil, nil)

	_, err := svc.Overview(context.Background(), filter.Spec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNonNumericAmount)

	var nn *aggregate.NonNumericError
	require.ErrorAs(t, err, &nn)
	assert.Equal(t, "abc", nn.Raw)
}

func TestService_Detailed(t *testing.T) {
	svc := newLoadedService(t, sampleSource(), nil, nil)

	groups, err := svc.Detailed(context.Background(), filter.Spec{Attendant: "Ana"},
		aggregate.SalesOrder{Key: aggregate.SortTotal})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
	require.Len(t, groups[0].Sales, 2)
	assert.Equal(t, "03", groups[0].Sales[0].NozzleCode)
}

func TestService_ExportCSV(t *testing.T) {
	svc := newLoadedService(t, sampleSource(), nil, nil)

	var buf bytes.Buffer
	n, err := svc.ExportCSV(context.Background(), &buf, filter.Spec{Nozzle: "02"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, csvexport.BOM))
	lines := strings.Split(strings.TrimPrefix(out, csvexport.BOM), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"dt_caixa";"seq_caixa"`)
	assert.Contains(t, lines[1], `"Bia"`)
}

func TestService_ExportFilename(t *testing.T) {
	svc := newLoadedService(t, sampleSource(), nil, nil)
	start := civil.Date{Year: 2024, Month: 3, Day: 1}
	end := civil.Date{Year: 2024, Month: 3, Day: 7}

	assert.Equal(t, "vendas_2024-03-01_a_2024-03-07.csv", svc.ExportFilename(filter.Spec{StartDate: &start, EndDate: &end}, ""))
	assert.Equal(t, "x_2024-03-07.csv", svc.ExportFilename(filter.Spec{}, "x"))

	uri, err := svc.ExportDestination(filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "gs://posto-exports/exports/vendas_2024-03-07.csv", uri)
}

func TestService_RunExportJob(t *testing.T) {
	var gotURI, gotType, gotBody string
	storage := &fakeStorage{
		UploadFunc: func(ctx context.Context, uri string, r io.Reader, contentType string) error {
			b, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			gotURI, gotType, gotBody = uri, contentType, string(b)
			return nil
		},
	}
	svc := newLoadedService(t, sampleSource(), storage, nil)

	job := &jobs.ExportJob{JobID: "j1", Query: "attendant=Ana", Delimiter: "comma"}
	require.NoError(t, svc.RunExportJob(context.Background(), job))

	assert.Equal(t, "gs://posto-exports/exports/vendas_2024-03-07.csv", gotURI)
	assert.Equal(t, CSVContentType, gotType)
	assert.True(t, strings.HasPrefix(gotBody, csvexport.BOM+`"dt_caixa","seq_caixa"`))
	assert.Equal(t, gotURI, job.ResultURI)
	assert.Equal(t, 2, job.RowCount)

	bad := &jobs.ExportJob{Query: "start_date=yesterday"}
	assert.Error(t, svc.RunExportJob(context.Background(), bad))
}

func TestService_RunExportJobWithoutStorage(t *testing.T) {
	svc := newLoadedService(t, sampleSource(), nil, nil)
	err := svc.RunExportJob(context.Background(), &jobs.ExportJob{})
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestService_Insight(t *testing.T) {
	sugg := &fakeSuggester{text: "Reforce o diesel."}
	svc := newLoadedService(t, sampleSource(), nil, sugg)

	res, err := svc.Insight(context.Background(), filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, "Reforce o diesel.", res.Text)
	assert.Equal(t, "Bia", sugg.got.TopAttendant)

	sugg.err = errors.New("timeout")
	res, err = svc.Insight(context.Background(), filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, insight.ErrorMessage, res.Text)
	assert.Error(t, res.Err)

	_, err = NewService(sampleSource(), nil, nil, Options{}).Insight(context.Background(), filter.Spec{})
	assert.ErrorIs(t, err, ErrInsightDisabled)
}

func TestService_SourceStatus(t *testing.T) {
	src := sampleSource()
	svc := newLoadedService(t, src, nil, nil)

	st := svc.SourceStatus(context.Background())
	assert.True(t, st.Online)
	assert.Equal(t, "fake", st.Source)
	assert.Equal(t, 4, st.Records)
	assert.Equal(t, "2024-03-01", st.Start)

	src.pingErr = errors.New("connection refused")
	st = svc.SourceStatus(context.Background())
	assert.False(t, st.Online)
	assert.Equal(t, "connection refused", st.Error)
}
