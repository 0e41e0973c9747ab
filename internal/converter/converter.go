package converter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/nconklindev/rentport/internal/classify"
	"github.com/nconklindev/rentport/internal/config"
	"github.com/nconklindev/rentport/internal/export"
	"github.com/nconklindev/rentport/internal/match"
	"github.com/nconklindev/rentport/internal/source"
	"github.com/nconklindev/rentport/internal/types"

	"github.com/rs/zerolog"
)

type Options struct {
	PropertiesInput string
	LeasesInput     string
	OutputDir       string
	Sheet           string

	Classify        classify.Config
	LeaseExtensions bool
	MatchMinScore   int
	// DiscoverLeases looks for the lease workbook next to the properties
	// input when no leases input is given.
	DiscoverLeases bool
}

func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		PropertiesInput: cfg.PropertiesInput,
		LeasesInput:     cfg.LeasesInput,
		OutputDir:       cfg.OutputDir,
		Sheet:           cfg.Sheet,
		Classify:        cfg.Classifier(),
		LeaseExtensions: cfg.LeaseExtensions,
		MatchMinScore:   cfg.MatchMinScore,
		DiscoverLeases:  true,
	}
}

type Converter struct {
	opts       Options
	log        zerolog.Logger
	classifier *classify.Classifier
}

func New(opts Options, log zerolog.Logger) *Converter {
	if opts.OutputDir == "" {
		opts.OutputDir = config.DefaultOutputDir
	}
	return &Converter{
		opts:       opts,
		log:        log,
		classifier: classify.New(opts.Classify, log),
	}
}

// progress maps per-row progress of one phase onto the overall [0, 1] range
// and reports it without blocking.
type progress struct {
	ch     chan<- float64
	phase  int
	phases int
}

func (p *progress) report(done, total int) {
	if p.ch == nil || p.phases == 0 || total == 0 {
		return
	}
	frac := (float64(p.phase) + float64(done)/float64(total)) / float64(p.phases)
	select {
	case p.ch <- frac:
	default:
	}
}

func (p *progress) next() { p.phase++ }

// Run converts the configured sources and writes the CSV files. Each source
// is handled on its own: a failure is recorded in its SourceResult and the
// other source still runs. The returned error is reserved for problems with
// the output directory.
func (c *Converter) Run(progressChan chan<- float64) (*types.ConversionResult, error) {
	c.discoverLeases()

	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	result := &types.ConversionResult{OutputDir: c.opts.OutputDir}

	p := &progress{ch: progressChan}
	if c.opts.PropertiesInput != "" {
		p.phases++
	}
	if c.opts.LeasesInput != "" {
		p.phases++
	}

	props, leases := c.load()

	if c.opts.PropertiesInput != "" {
		result.Properties, result.PropertySource = c.convertProperties(p, props)
		p.next()
	}
	if c.opts.LeasesInput != "" {
		result.Leases, result.LeaseSource = c.convertLeases(p, leases)
		p.next()
	}

	c.matchLeases(result)

	if progressChan != nil {
		select {
		case progressChan <- 1.0:
		default:
		}
	}
	return result, nil
}

func (c *Converter) discoverLeases() {
	if c.opts.LeasesInput != "" || c.opts.PropertiesInput == "" || !c.opts.DiscoverLeases {
		return
	}
	found, err := source.FindWorkbook(filepath.Dir(c.opts.PropertiesInput), source.LeaseWorkbookKeyword)
	if err != nil {
		c.log.Warn().Err(err).Msg("lease workbook discovery failed")
		return
	}
	if found == "" || sameFile(found, c.opts.PropertiesInput) {
		return
	}
	c.log.Info().Str("file", found).Msg("using discovered lease workbook")
	c.opts.LeasesInput = found
}

func sameFile(a, b string) bool {
	sa, errA := os.Stat(a)
	sb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return os.SameFile(sa, sb)
}

// loaded is one input file read into rows, or the error reading it.
type loaded struct {
	data *types.FileData
	err  error
}

// load reads both input files in parallel. Each keeps its own error;
// classification afterwards runs on one goroutine in document order.
func (c *Converter) load() (props, leases loaded) {
	var wg sync.WaitGroup
	if c.opts.PropertiesInput != "" {
		wg.Go(func() {
			props.data, props.err = source.ReadFileData(c.opts.PropertiesInput, source.Options{Sheet: c.opts.Sheet})
		})
	}
	if c.opts.LeasesInput != "" {
		wg.Go(func() {
			leases.data, leases.err = source.ReadFileData(c.opts.LeasesInput, source.Options{
				Sheet:         c.opts.Sheet,
				SheetKeywords: source.LeaseSheetKeywords,
			})
		})
	}
	wg.Wait()
	return props, leases
}

func (c *Converter) convertProperties(p *progress, in loaded) ([]types.PropertyRecord, types.SourceResult) {
	res := types.SourceResult{InputFile: c.opts.PropertiesInput}
	log := c.log.With().Str("source", "properties").Str("file", res.InputFile).Logger()

	if in.err != nil {
		return nil, c.fail(log, res, in.err)
	}
	data := in.data
	res.Sheet = data.Sheet

	total := len(data.Rows)
	properties, stats := c.classifier.Properties(data.Rows, func(done int) { p.report(done, total) })
	applyStats(&res, stats)

	res.OutputFile = filepath.Join(c.opts.OutputDir, export.PropertiesFile)
	if err := export.WriteProperties(res.OutputFile, properties); err != nil {
		res.OutputFile = ""
		return properties, c.fail(log, res, fmt.Errorf("write properties: %w", err))
	}

	log.Info().Int("rows", res.RowsRead).Int("properties", res.Extracted).Int("skipped", res.Skipped).
		Int("rowErrors", res.RowErrors).Str("output", res.OutputFile).Msg("properties converted")
	return properties, res
}

func (c *Converter) convertLeases(p *progress, in loaded) ([]types.LeaseRecord, types.SourceResult) {
	res := types.SourceResult{InputFile: c.opts.LeasesInput}
	log := c.log.With().Str("source", "leases").Str("file", res.InputFile).Logger()

	if in.err != nil {
		return nil, c.fail(log, res, in.err)
	}
	data := in.data
	res.Sheet = data.Sheet

	total := len(data.Rows)
	leases, stats, err := c.classifier.ForWorkbook(data).Leases(data.Rows, func(done int) { p.report(done, total) })
	applyStats(&res, stats)
	if err != nil {
		return nil, c.fail(log, res, err)
	}

	res.OutputFile = filepath.Join(c.opts.OutputDir, export.LeasesFile)
	if err := export.WriteLeases(res.OutputFile, leases, c.opts.LeaseExtensions); err != nil {
		res.OutputFile = ""
		return leases, c.fail(log, res, fmt.Errorf("write leases: %w", err))
	}

	log.Info().Int("rows", res.RowsRead).Int("leases", res.Extracted).Int("skipped", res.Skipped).
		Int("rowErrors", res.RowErrors).Str("output", res.OutputFile).Msg("leases converted")
	return leases, res
}

func (c *Converter) fail(log zerolog.Logger, res types.SourceResult, err error) types.SourceResult {
	log.Error().Err(err).Msg("source failed")
	res.Err = err
	return res
}

// matchLeases pairs leases with properties by address. When this run did not
// read a properties source, a properties file left in the output directory by
// an earlier run is used instead.
func (c *Converter) matchLeases(result *types.ConversionResult) {
	if len(result.Leases) == 0 {
		return
	}

	properties := result.Properties
	if c.opts.PropertiesInput == "" {
		path := filepath.Join(c.opts.OutputDir, export.PropertiesFile)
		previous, err := export.ReadProperties(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return
		case err != nil:
			c.log.Warn().Err(err).Str("file", path).Msg("could not load earlier properties for matching")
			return
		}
		c.log.Info().Str("file", path).Int("properties", len(previous)).Msg("matching against earlier properties")
		properties = previous
	}
	if len(properties) == 0 {
		return
	}

	minScore := c.opts.MatchMinScore
	if minScore <= 0 {
		minScore = match.DefaultMinScore
	}
	result.Matches = match.Match(result.Leases, properties, minScore)
	path := filepath.Join(c.opts.OutputDir, export.MatchesFile)
	if err := export.WriteMatches(path, result.Matches); err != nil {
		c.log.Error().Err(err).Msg("write matches")
		return
	}
	result.MatchesFile = path

	c.log.Info().Int("matched", len(result.Matches)).Int("leases", len(result.Leases)).Str("output", path).Msg("leases matched to properties")
	for _, l := range result.Leases {
		if _, score := match.Best(l, properties); score < minScore {
			c.log.Debug().Str("fileNumber", l.FileNumber).Str("address", l.PropertyAddress).Int("bestScore", score).Msg("lease not matched")
		}
	}
}

func applyStats(res *types.SourceResult, stats classify.Stats) {
	res.RowsRead = stats.RowsRead
	res.Extracted = stats.Extracted
	res.Skipped = stats.Skipped
	res.RowErrors = stats.RowErrors
}
