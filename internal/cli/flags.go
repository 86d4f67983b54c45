package cli

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/errors"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitError        = 1
	ExitInvalidInput = 2
)

// Values accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	Output         string // text or json
	Verbose        bool   // debug logging
	Quiet          bool   // warnings only, no notifications
	Server         string // overrides server.base_url
	HistoryBackend string // overrides history.backend
}

// AddGlobalFlags registers the persistent flags on cmd.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "log debug detail")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "only log warnings and skip notifications")
	pf.StringVar(&flags.Server, "server", "", "processing service base URL")
	pf.StringVar(&flags.HistoryBackend, "history-backend", "", "history store (file|redis)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// envBoundFlags may also be set through MINUTES_<NAME>.
//
//nolint:gochecknoglobals // fixed list
var envBoundFlags = []string{"output", "verbose", "quiet"}

// BindGlobalFlags lets MINUTES_OUTPUT, MINUTES_VERBOSE and MINUTES_QUIET
// stand in for flags left unset on the command line.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	for _, name := range envBoundFlags {
		if err := v.BindPFlag(name, pf.Lookup(name)); err != nil {
			return err
		}
	}
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// applyBoundFlags fills flags from the environment. An explicit flag wins,
// and a verbose/quiet pair never ends up both set.
func applyBoundFlags(v *viper.Viper, cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.Root().PersistentFlags()
	if !pf.Changed("output") {
		flags.Output = v.GetString("output")
	}
	if !pf.Changed("verbose") && !flags.Quiet {
		flags.Verbose = v.GetBool("verbose")
	}
	if !pf.Changed("quiet") && !flags.Verbose {
		flags.Quiet = v.GetBool("quiet")
	}
}

// ValidOutputFormats lists the values --output accepts.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is accepted by --output.
func IsValidOutputFormat(format string) bool {
	return slices.Contains(ValidOutputFormats(), format)
}

// cobraUsageErrors are fragments of the messages cobra and pflag produce
// for bad invocations. They carry no sentinel, so matching text is all we have.
//
//nolint:gochecknoglobals // fixed list
var cobraUsageErrors = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"flag needs an argument",
	"invalid argument",
	"required flag",
	"if any flags in the group",
	"accepts ",
	"requires at least",
}

// ExitCodeForError maps err to the process exit code: 0 for nil, 2 for
// anything the user got wrong on the command line, 1 otherwise.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.IsExitCode2Error(err), stderrors.Is(err, errors.ErrInvalidOutputFormat), isUsageError(err):
		return ExitInvalidInput
	default:
		return ExitError
	}
}

func isUsageError(err error) bool {
	msg := err.Error()
	return slices.ContainsFunc(cobraUsageErrors, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}
