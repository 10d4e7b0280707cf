// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pilosa/edxdk"
	"github.com/pilosa/edxdk/prom"
	"github.com/pilosa/edxdk/termstat"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version of this software - filled in by ldflags in Makefile.
	Version string
	// BuildTime of this software - filled in by ldflags in Makefile.
	BuildTime string
)

func setupVersionBuild() {
	if Version == "" {
		Version = "v0.0.0"
	}
	if BuildTime == "" {
		BuildTime = "not recorded"
	}
}

var subcommandFns = map[string]func(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command{}

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	Config      string
	Verbose     bool
	Pretty      bool
	MetricsAddr string
	TermStats   bool
}

var global globals

// NewRootCommand reads the map of subcommandFns and creates a top level cobra
// command with each of them as subcommands.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	setupVersionBuild()
	rc := &cobra.Command{
		Use:   "edxdk",
		Short: "edxdk - edX data kit",
		Long: `Batch jobs turning edX research data exports into
analysis ready collections: course structure import
and per course tracking log extraction.

Version: ` + Version + `
Build Time: ` + BuildTime + "\n",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// arguments are valid by now; later failures are not usage errors
			cmd.SilenceUsage = true
			v := viper.New()
			return setAllConfig(v, cmd.Flags(), "EDXDK")
		},
		SilenceErrors: true,
	}
	pf := rc.PersistentFlags()
	pf.StringVar(&global.Config, "config", "", "TOML file holding values for any of the flags.")
	pf.BoolVar(&global.Verbose, "verbose", false, "Log debug output.")
	pf.BoolVar(&global.Pretty, "pretty", false, "Log human readable lines instead of JSON.")
	pf.StringVar(&global.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running.")
	pf.BoolVar(&global.TermStats, "term-stats", false, "Print running counts to stderr (ignored with --metrics-addr).")
	for _, subcomFn := range subcommandFns {
		rc.AddCommand(subcomFn(stdin, stdout, stderr))
	}
	rc.SetOutput(stderr)
	return rc
}

// observability builds the logger and statter for one run from the
// persistent flags. The returned func stops the metrics server or terminal
// output, if any.
func observability(stderr io.Writer, command string) (edxdk.Logger, edxdk.Statter, func(), error) {
	log := edxdk.NewLogger(edxdk.LogConfig{
		Out:     stderr,
		Verbose: global.Verbose,
		Pretty:  global.Pretty,
		RunID:   edxdk.NewRunID(),
	}).With("command", command)
	if global.MetricsAddr == "" {
		if global.TermStats {
			ts := termstat.NewCollector(stderr, 2*time.Second)
			return log, ts, func() { ts.Close() }, nil
		}
		return log, edxdk.NopStatter{}, func() {}, nil
	}
	stats := prom.NewStatter()
	srv, err := stats.Serve(global.MetricsAddr)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Printf("serving metrics on %s", global.MetricsAddr)
	return log, stats, func() {
		if err := srv.Close(); err != nil {
			log.Printf("closing metrics server: %v", err)
		}
	}, nil
}

// setAllConfig takes a FlagSet to be the definition of all configuration
// options, as well as their defaults. It then reads from the command line, the
// environment, and a config file (if specified), and applies the configuration
// in that priority order. Since each flag in the set contains a pointer to
// where its value should be stored, setAllConfig can directly modify the value
// of each config variable.
//
// setAllConfig looks for environment variables which are capitalized versions
// of the flag names with dashes replaced by underscores, and prefixed with
// envPrefix plus an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	// add cmd line flag def to viper
	err := v.BindPFlags(flags)
	if err != nil {
		return err
	}

	// add env to viper
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	c := v.GetString("config")

	// add config file to viper
	if c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("toml")
		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("error reading configuration file '%s': %v", c, err)
		}
	}

	// set all values from viper
	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil {
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			// special handling is needed for stringSlice as v.GetString will
			// always return "" in the case that the value is an actual string
			// slice from a config file rather than a comma separated string
			// from a flag or env var.
			vss := v.GetStringSlice(f.Name)
			value = strings.Join(vss, ",")
		} else {
			value = v.GetString(f.Name)
		}

		if f.Changed {
			// If f.Changed is true, that means the value has already been set
			// by a flag, and we don't need to ask viper for it since the flag
			// is the highest priority. This works around a problem with string
			// slices where f.Value.Set(csvString) would cause the elements of
			// csvString to be appended to the existing value rather than
			// replacing it.
			return
		}
		flagErr = f.Value.Set(value)
	})
	return flagErr
}
