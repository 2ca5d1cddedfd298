package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/namuan/dev-boost-sub001/pkg/logging"
	"github.com/namuan/dev-boost-sub001/pkg/models"
	"github.com/namuan/dev-boost-sub001/pkg/settings"
)

const pdfTimeout = 120 * time.Second

var gsVersionPattern = regexp.MustCompile(`^\d+(\.\d+)+$`)

// gsCandidates are well-known install locations checked after PATH and
// environment lookups. Homebrew and MacPorts prefixes come first since
// they are the common case on macOS where PATH is often stripped for
// GUI-launched processes.
var gsCandidates = []string{
	"/opt/homebrew/bin/gs",
	"/usr/local/bin/gs",
	"/usr/bin/gs",
	"/opt/local/bin/gs",
	"gs",
	"ghostscript",
}

// pdfSettingsTiers maps quality presets to Ghostscript PDFSETTINGS
// profiles.
var pdfSettingsTiers = map[settings.QualityPreset]string{
	settings.PresetMaximum: "/prepress",
	settings.PresetHigh:    "/prepress",
	settings.PresetMedium:  "/printer",
	settings.PresetLow:     "/ebook",
	settings.PresetMinimum: "/screen",
}

// PDFEngine optimizes PDFs with Ghostscript. Ghostscript is discovered
// once per engine instance through a chain of configured path, PATH
// lookup, environment variables and well-known locations, and every
// candidate is verified to actually be Ghostscript before use.
type PDFEngine struct {
	runner Runner
	logger logging.Logger
	temps  TempRegistry

	// Overridable in tests.
	lookPath func(string) (string, error)
	getenv   func(string) string

	mu             sync.Mutex
	configuredPath string
	resolved       string
	discovered     bool
}

func NewPDFEngine(runner Runner, logger logging.Logger) *PDFEngine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &PDFEngine{
		runner:   runner,
		logger:   logger,
		lookPath: exec.LookPath,
		getenv:   os.Getenv,
	}
}

func (e *PDFEngine) Category() models.Category { return models.CategoryPDF }

// SetTempRegistry registers a sink for temp artifact paths.
func (e *PDFEngine) SetTempRegistry(r TempRegistry) {
	e.temps = r
}

// SetPath configures an explicit Ghostscript binary and resets the
// discovery cache so the next lookup verifies it.
func (e *PDFEngine) SetPath(path string) {
	e.mu.Lock()
	e.configuredPath = path
	e.resolved = ""
	e.discovered = false
	e.mu.Unlock()
}

func (e *PDFEngine) Available() bool {
	return e.ghostscript() != ""
}

// GhostscriptPath returns the resolved binary path, or "" when no
// working Ghostscript was found.
func (e *PDFEngine) GhostscriptPath() string {
	return e.ghostscript()
}

func (e *PDFEngine) ghostscript() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discovered {
		return e.resolved
	}
	e.resolved = e.discover()
	e.discovered = true
	return e.resolved
}

// discover walks the candidate chain and returns the first binary that
// verifies as Ghostscript. Callers hold e.mu.
func (e *PDFEngine) discover() string {
	var candidates []string
	if e.configuredPath != "" {
		candidates = append(candidates, e.configuredPath)
	}
	if found, err := e.lookPath("gs"); err == nil {
		candidates = append(candidates, found)
	}
	for _, env := range []string{"DEVBOOST_GS", "GHOSTSCRIPT_PATH"} {
		if v := e.getenv(env); v != "" {
			candidates = append(candidates, v)
		}
	}
	candidates = append(candidates, gsCandidates...)

	for _, candidate := range candidates {
		if e.verify(candidate) {
			return candidate
		}
	}
	return ""
}

// verify checks that the binary at path really is Ghostscript, first by
// the --version output shape and failing that by the help banner.
func (e *PDFEngine) verify(path string) bool {
	res := e.runner.Run(context.Background(), probeTimeout, path, "--version")
	if res.Success && gsVersionPattern.MatchString(strings.TrimSpace(res.Stdout)) {
		return true
	}
	res = e.runner.Run(context.Background(), probeTimeout, path, "-h")
	return res.Success && strings.Contains(res.Stdout, "Ghostscript")
}

func (e *PDFEngine) Optimize(ctx context.Context, inputPath, outputPath string, s *settings.OptimizationSettings) (*Result, error) {
	gs := e.ghostscript()
	if gs == "" {
		return nil, fmt.Errorf("Ghostscript is not installed; PDF optimization requires Ghostscript")
	}

	// Ghostscript cannot write over the file it is reading.
	target := outputPath
	inPlace := samePath(inputPath, outputPath)
	if inPlace {
		target = tempSibling(outputPath)
		if e.temps != nil {
			e.temps.Track(target)
		}
		defer os.Remove(target)
	}

	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + e.tier(s),
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
	}
	if s.PDFDPI != nil {
		dpi := strconv.Itoa(*s.PDFDPI)
		args = append(args,
			"-dDownsampleColorImages=true",
			"-dColorImageResolution="+dpi,
			"-dGrayImageResolution="+dpi,
			"-dMonoImageResolution="+dpi,
		)
	}
	args = append(args, "-sOutputFile="+target, inputPath)

	res := e.runner.Run(ctx, pdfTimeout, gs, args...)
	if !res.Success {
		return nil, toolError("ghostscript", res)
	}

	if inPlace {
		if err := os.Rename(target, outputPath); err != nil {
			return nil, fmt.Errorf("replacing %s: %w", outputPath, err)
		}
	}
	return &Result{Method: "ghostscript", Format: "pdf"}, nil
}

// tier picks the PDFSETTINGS profile. An explicit PDF quality override
// wins over the preset mapping.
func (e *PDFEngine) tier(s *settings.OptimizationSettings) string {
	if s.PDFQuality != nil {
		q := *s.PDFQuality
		switch {
		case q >= 90:
			return "/prepress"
		case q >= 70:
			return "/printer"
		case q >= 50:
			return "/ebook"
		default:
			return "/screen"
		}
	}
	if tier, ok := pdfSettingsTiers[s.QualityPreset]; ok {
		return tier
	}
	return "/printer"
}

// Info returns the Ghostscript version string for tool reporting.
func (e *PDFEngine) Info() (string, error) {
	gs := e.ghostscript()
	if gs == "" {
		return "", fmt.Errorf("Ghostscript is not installed")
	}
	res := e.runner.Run(context.Background(), probeTimeout, gs, "--version")
	if !res.Success {
		return "", toolError("ghostscript", res)
	}
	return strings.TrimSpace(res.Stdout), nil
}
