package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/mrzscan/internal/mrz"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
	"github.com/lehigh-university-libraries/mrzscan/internal/validation"
	"github.com/lehigh-university-libraries/mrzscan/internal/verify"
)

type fakeVerifier struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	reports  map[string]*verify.Report
	errs     map[string]error
}

func (f *fakeVerifier) VerifyFile(ctx context.Context, path string, page int) (*verify.Report, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	if err := f.errs[path]; err != nil {
		return &verify.Report{Source: path, Verdict: "error", Error: err.Error(), Duration: time.Millisecond}, err
	}
	return f.reports[path], nil
}

func report(path, verdict, docNum string, ocrConf float64, d time.Duration, codes ...string) *verify.Report {
	res := &validation.Result{
		State:      validation.Complete,
		Record:     &mrz.Record{Format: mrz.TD3, DocumentNumber: docNum},
		Confidence: validation.Confidence{Overall: 0.9},
	}
	for _, c := range codes {
		sev := validation.Warning
		if verdict == "fail" {
			sev = validation.Error
		}
		res.Issues = append(res.Issues, validation.Issue{Field: "x", Severity: sev, Code: c, Description: c})
	}
	return &verify.Report{
		Source:     path,
		Verdict:    verdict,
		OCR:        &ocr.Result{Confidence: ocrConf, ConfidenceKnown: true},
		Validation: res,
		Duration:   d,
	}
}

type RunnerSuite struct {
	suite.Suite
	verifier *fakeVerifier
	items    []Item
}

func (s *RunnerSuite) SetupTest() {
	s.verifier = &fakeVerifier{
		reports: map[string]*verify.Report{
			"a.png": report("a.png", "pass", "L898902C3", 0.8, 10*time.Millisecond),
			"b.png": report("b.png", "fail", "X1234567", 0.6, 30*time.Millisecond, validation.CodeCheckDigitMismatch),
			"c.png": report("c.png", "pass", "Z0000000", 0.7, 20*time.Millisecond, validation.CodeExpiringSoon),
		},
		errs: map[string]error{"d.pdf": errors.New("pdftoppm missing")},
	}
	s.items = []Item{
		{Path: "a.png", Expected: "L898902C3"},
		{Path: "b.png", Expected: "X7654321"},
		{Path: "c.png"},
		{Path: "d.pdf", Page: 2},
	}
}

func (s *RunnerSuite) TestResultsKeepInputOrder() {
	res, err := (&Runner{Verifier: s.verifier, Workers: 3}).Run(context.Background(), s.items)
	s.Require().NoError(err)
	s.Require().Len(res.Items, 4)
	for i, it := range res.Items {
		s.Equal(s.items[i].Path, it.Item.Path)
	}
	s.NotEmpty(res.RunID)
}

func (s *RunnerSuite) TestFailureDoesNotStopSiblings() {
	res, err := (&Runner{Verifier: s.verifier, Workers: 2}).Run(context.Background(), s.items)
	s.Require().NoError(err)
	s.Len(s.verifier.calls, 4)
	s.Equal("error", res.Items[3].Report.Verdict)
	s.Equal("pdftoppm missing", res.Items[3].Report.Error)
}

func (s *RunnerSuite) TestWorkerLimit() {
	_, err := (&Runner{Verifier: s.verifier, Workers: 2}).Run(context.Background(), s.items)
	s.Require().NoError(err)
	s.LessOrEqual(s.verifier.peak.Load(), int32(2))
}

func (s *RunnerSuite) TestExpectedMatches() {
	res, err := (&Runner{Verifier: s.verifier, Workers: 1}).Run(context.Background(), s.items)
	s.Require().NoError(err)
	s.Require().NotNil(res.Items[0].Match)
	s.True(*res.Items[0].Match)
	s.False(*res.Items[1].Match)
	s.Nil(res.Items[2].Match)
}

func (s *RunnerSuite) TestSummary() {
	res, err := (&Runner{Verifier: s.verifier, Workers: 4}).Run(context.Background(), s.items)
	s.Require().NoError(err)

	sum := res.Summary
	s.Equal(4, sum.Total)
	s.Equal(2, sum.Passed)
	s.Equal(1, sum.Failed)
	s.Equal(1, sum.Errored)
	s.InDelta(0.7, sum.MeanOCRConfidence, 1e-9)
	s.Equal(1, sum.IssueCodes[validation.CodeCheckDigitMismatch])
	s.Equal(1, sum.IssueCodes[validation.CodeExpiringSoon])
	s.Equal(time.Millisecond, sum.MinDuration)
	s.Equal(30*time.Millisecond, sum.MaxDuration)
	s.Equal(15*time.Millisecond, sum.MedianDuration)
	s.Equal(2, sum.Expected)
	s.Equal(1, sum.Matched)
	s.InDelta(0.5, sum.Accuracy, 1e-9)
}

func (s *RunnerSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := (&Runner{Verifier: s.verifier, Workers: 2}).Run(ctx, s.items)
	s.ErrorIs(err, context.Canceled)
	s.Equal(4, res.Summary.Errored)
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "scan.pdf", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0755))

	items, err := Load(dir)
	require.NoError(t, err)

	var names []string
	for _, it := range items {
		names = append(names, filepath.Base(it.Path))
	}
	assert.Equal(t, []string{"a.jpg", "b.PNG", "scan.pdf"}, names)
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.jsonl")
	require.NoError(t, os.WriteFile(manifest, []byte(
		`{"path":"scans/a.png","expected":"L898902C3"}`+"\n\n"+
			`{"path":"/abs/b.pdf","page":2}`+"\n"), 0644))

	items, err := Load(manifest)
	require.NoError(t, err)
	assert.Equal(t, []Item{
		{Path: filepath.Join(dir, "scans/a.png"), Expected: "L898902C3"},
		{Path: "/abs/b.pdf", Page: 2},
	}, items)
}

func TestLoadJSONLErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(bad, []byte("{\"path\":\"a\"}\n{oops\n"), 0644))
	_, err := Load(bad)
	assert.ErrorContains(t, err, "line 2")

	noPath := filepath.Join(dir, "nopath.jsonl")
	require.NoError(t, os.WriteFile(noPath, []byte(`{"page":1}`), 0644))
	_, err = Load(noPath)
	assert.ErrorContains(t, err, "no path")

	_, err = Load(filepath.Join(dir, "manifest.csv"))
	assert.Error(t, err)
}

func TestLoadParquet(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.parquet")
	rows := []Item{{Path: "a.png", Expected: "L898902C3"}, {Path: "b.pdf", Page: 3}}
	require.NoError(t, parquet.WriteFile(manifest, rows))

	items, err := Load(manifest)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, filepath.Join(dir, "a.png"), items[0].Path)
	assert.Equal(t, "L898902C3", items[0].Expected)
	assert.Equal(t, 3, items[1].Page)
}

func runFixture(t *testing.T) *Results {
	t.Helper()
	s := &RunnerSuite{}
	s.SetupTest()
	res, err := (&Runner{Verifier: s.verifier, Workers: 2}).Run(context.Background(), s.items)
	require.NoError(t, err)
	res.Source = "fixtures"
	res.Engine = "tesseract"
	return res
}

func TestWriteFormats(t *testing.T) {
	res := runFixture(t)

	var text bytes.Buffer
	require.NoError(t, Write(&text, "text", res))
	assert.Contains(t, text.String(), "Batch Summary")
	assert.Contains(t, text.String(), "Doc Number Match:   1/2")
	assert.Contains(t, text.String(), "Expected:        X7654321")

	var js bytes.Buffer
	require.NoError(t, Write(&js, "json", res))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Len(t, decoded["items"], 4)

	var out bytes.Buffer
	require.NoError(t, Write(&out, "csv", res))
	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "Path", records[0][0])
	assert.Equal(t, "fail", records[2][2])
	assert.Equal(t, validation.CodeCheckDigitMismatch, records[2][9])

	assert.Error(t, Write(&out, "xml", res))
}

func TestSaveYAMLAndParquet(t *testing.T) {
	res := runFixture(t)
	dir := t.TempDir()

	path, err := SaveYAML(dir, res)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "batch-"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "tesseract", decoded["engine"])

	pq, err := SaveParquet(filepath.Join(dir, "out", "results.parquet"), res)
	require.NoError(t, err)
	rows, err := parquet.ReadFile[Row](pq)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "L898902C3", rows[0].DocumentNumber)
	assert.True(t, rows[0].Match)
	assert.Equal(t, "pdftoppm missing", rows[3].Error)
}
