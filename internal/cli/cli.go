package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/boreimp/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// A -config file fills in every setting not given as a flag.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("boreimp", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
boreimp - Input impedance of wind instrument bores.

Usage:
  boreimp [options] [BORE_PATH]

Arguments:
  BORE_PATH
    Path to a .men or .xmen bore file, or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	def := app.DefaultConfig()
	valves := valveFlag{}

	boreFlag := flagSet.String("bore", "", "Path to the bore file or directory.")
	bFlag := flagSet.String("b", "", "Path to the bore file or directory (shorthand).")
	outFlag := flagSet.String("out", "", "Result file, or output directory for a bore directory. Default is stdout.")
	dumpFlag := flagSet.Bool("dump", false, "Print the resolved canonical segments instead of sweeping.")
	convertFlag := flagSet.String("convert", "", "Write the resolved bore as a canonical .men file to this path.")
	configFlag := flagSet.String("config", "", "YAML or .hcl file with sweep settings. Flags given explicitly win.")

	maxFreq := flagSet.Float64(app.FlagMaxFrequency, def.MaxFrequency, "Upper bound of the sweep in Hz.")
	step := flagSet.Float64(app.FlagStep, def.Step, "Frequency step in Hz, used when -points is 0.")
	points := flagSet.Int(app.FlagPoints, 0, "Number of evenly spaced points up to -max-freq. 0 uses -step.")
	temperature := flagSet.Float64(app.FlagTemperature, def.Temperature, "Air temperature in degrees Celsius.")
	radiation := flagSet.String(app.FlagRadiation, def.Radiation, "Open end radiation model. Options: 'pipe', 'baffle' or 'none'.")
	wallLoss := flagSet.Bool(app.FlagWallLoss, def.WallLoss, "Model viscothermal wall losses.")
	sectionVar := flagSet.Bool(app.FlagSectionVariation, def.SectionVariation, "Apply the cross-section variation correction.")
	subStep := flagSet.Float64(app.FlagSubdivisionStep, def.SubdivisionStep, "Maximum cell length in mm when subdividing tapers.")
	flagSet.Var(valves, app.FlagValve, "Engage or release a branch: NAME=on|off. May be repeated.")
	workers := flagSet.Int(app.FlagWorkers, 0, "Number of concurrent sweep workers. 0 uses all CPUs.")
	format := flagSet.String(app.FlagFormat, def.Format, "Bore dialect. Options: 'auto', 'canonical' (.men) or 'structured' (.xmen).")
	logFormatFlag := flagSet.String(app.FlagLogFormat, def.LogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String(app.FlagLogLevel, def.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *boreFlag != "" {
		path = *boreFlag
	} else if *bFlag != "" {
		path = *bFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Bore path determined.", "path", path)

	if path == "" {
		slog.Debug("No bore path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args()[1:], " "))}
	}

	cfg := app.Config{
		BorePath:         path,
		OutputPath:       *outFlag,
		ConvertPath:      *convertFlag,
		Dump:             *dumpFlag,
		MaxFrequency:     *maxFreq,
		Step:             *step,
		Points:           *points,
		Temperature:      *temperature,
		Radiation:        strings.ToLower(*radiation),
		WallLoss:         *wallLoss,
		SectionVariation: *sectionVar,
		SubdivisionStep:  *subStep,
		Valves:           valves,
		Workers:          *workers,
		Format:           strings.ToLower(*format),
		LogFormat:        strings.ToLower(*logFormatFlag),
		LogLevel:         strings.ToLower(*logLevelFlag),
	}

	if *configFlag != "" {
		fc, err := app.LoadConfigFile(*configFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		explicit := map[string]bool{}
		flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		fc.Apply(&cfg, func(name string) bool { return explicit[name] })
		slog.Debug("Config file applied.", "path", *configFlag)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
