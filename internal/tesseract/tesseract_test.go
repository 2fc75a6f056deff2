package tesseract

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/mrzscan/internal/errs"
	"github.com/lehigh-university-libraries/mrzscan/internal/ocr"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1000\t200\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t10\t10\t900\t40\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t400\t40\t90.5\tP<UTOERIKSSON<<ANNA\n" +
	"5\t1\t1\t1\t1\t2\t420\t10\t400\t40\t80.5\t<MARIA<<<<<<<<<<<<<<<<<<<\n" +
	"4\t1\t1\t1\t2\t0\t10\t60\t900\t40\t-1\t\n" +
	"5\t1\t1\t1\t2\t1\t10\t60\t900\t40\t70\tL898902C36UTO7408122F1204159ZE184226B<<<<<10\n" +
	"5\t1\t1\t1\t2\t2\t910\t60\t10\t40\t-1\t \n"

func TestParseTSV(t *testing.T) {
	text, conf, known := ParseTSV([]byte(sampleTSV))

	assert.Equal(t, "P<UTOERIKSSON<<ANNA <MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10", text)
	assert.True(t, known)
	assert.InDelta(t, 0.8033, conf, 0.001)
}

func TestParseTSVWithoutWords(t *testing.T) {
	text, conf, known := ParseTSV([]byte("level\tpage_num\n1\t1\t0\t0\t0\t0\t0\t0\t10\t10\t-1\t\n"))
	assert.Empty(t, text)
	assert.Zero(t, conf)
	assert.False(t, known)
}

func TestClassify(t *testing.T) {
	err := classify(errors.New("exit status 1"), "Error opening data file /x/ocrb.traineddata\nFailed loading language 'ocrb'")
	assert.True(t, errors.Is(err, errs.ErrLanguageDataMissing))

	err = classify(errors.New("boom"), "segfault")
	assert.False(t, errors.Is(err, errs.ErrLanguageDataMissing))
}

func TestCLIMissingBinary(t *testing.T) {
	c := NewCLI("mrzscan-no-such-tesseract", "")
	_, err := c.Recognize(context.Background(), ocr.Input{Image: []byte{0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrEngineNotInstalled))
	assert.Equal(t, errs.KindExternalTool, errs.KindOf(err))
}

func TestCLIMissingLanguageData(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	c := &CLI{Binary: "tesseract", Locator: &ocr.Locator{Dirs: []string{t.TempDir()}}}
	_, err := c.Recognize(context.Background(), ocr.Input{Image: []byte{0}, Languages: []string{"ocrb"}})
	assert.True(t, errors.Is(err, errs.ErrLanguageDataMissing))
}

func TestGosseractName(t *testing.T) {
	assert.Equal(t, "gosseract", NewGosseract("").Name())
}
