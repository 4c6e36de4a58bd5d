package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"docverify/pkg/confidence"
)

const (
	defaultTesseractPath = "tesseract"
	defaultLanguage      = "eng"
)

// runner executes a command with stdin and returns its stdout.
type runner func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

// TesseractEngine shells out to the tesseract CLI and reads its TSV output,
// which carries a confidence per recognized word.
type TesseractEngine struct {
	path string
	lang string
	run  runner
}

type TesseractOption func(*TesseractEngine)

func WithTesseractPath(path string) TesseractOption {
	return func(e *TesseractEngine) {
		if path != "" {
			e.path = path
		}
	}
}

func WithLanguage(lang string) TesseractOption {
	return func(e *TesseractEngine) {
		if lang != "" {
			e.lang = lang
		}
	}
}

func withRunner(run runner) TesseractOption {
	return func(e *TesseractEngine) {
		e.run = run
	}
}

func NewTesseract(opts ...TesseractOption) *TesseractEngine {
	e := &TesseractEngine{
		path: defaultTesseractPath,
		lang: defaultLanguage,
		run:  execRunner,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TesseractEngine) Name() string {
	return EngineTesseract
}

// Recognize pipes data through `tesseract stdin stdout -l <lang> tsv`.
func (e *TesseractEngine) Recognize(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmptyInput
	}
	out, err := e.run(ctx, e.path, []string{"stdin", "stdout", "-l", e.lang, "tsv"}, data)
	if err != nil {
		return Result{}, fmt.Errorf("run tesseract: %w", err)
	}
	text, conf, err := parseTSV(out)
	if err != nil {
		return Result{}, fmt.Errorf("parse tesseract output: %w", err)
	}
	return Result{Text: text, Confidence: conf, Engine: EngineTesseract}, nil
}

func execRunner(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return nil, fmt.Errorf("exit code %d: %s", ee.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return out, nil
}

// TSV columns emitted by tesseract.
const (
	colPage  = 1
	colBlock = 2
	colPar   = 3
	colLine  = 4
	colConf  = 10
	colText  = 11
	tsvWidth = 12
)

// parseTSV rebuilds the page text line by line and averages the confidence
// of every recognized word. Rows with a negative confidence are layout rows.
func parseTSV(out []byte) (string, int, error) {
	rows := strings.Split(strings.TrimRight(string(out), "\r\n"), "\n")
	if len(rows) == 0 || !strings.HasPrefix(rows[0], "level") {
		return "", 0, errors.New("missing tsv header")
	}

	var (
		lines   []string
		current []string
		lineKey string
		confs   []float64
	)
	flush := func() {
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = nil
		}
	}

	for _, row := range rows[1:] {
		cols := strings.Split(strings.TrimRight(row, "\r"), "\t")
		if len(cols) < tsvWidth {
			continue
		}
		conf, err := strconv.ParseFloat(cols[colConf], 64)
		if err != nil || conf < 0 {
			continue
		}
		word := strings.TrimSpace(cols[colText])
		if word == "" {
			continue
		}
		key := strings.Join(cols[colPage:colLine+1], ".")
		if key != lineKey {
			flush()
			lineKey = key
		}
		current = append(current, word)
		confs = append(confs, conf)
	}
	flush()

	return strings.Join(lines, "\n"), confidence.Clamp(confidence.Average(confs...)), nil
}
