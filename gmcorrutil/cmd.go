/*
Copyright © 2026 the GMCorr authors.
This file is part of GMCorr.

GMCorr is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GMCorr is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GMCorr.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package gmcorrutil contains the command-line interface and file
// input/output for GMCorr.
package gmcorrutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/gmcorr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to GMCorr.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "GridFile",
			usage: `
              GridFile is the path to a NetCDF file holding the ground-motion
              grid, with variables lon, lat, data, and uncertainty on dimensions
              (row, col). Rows are simulated in order, starting with row 0.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "StationFile",
			usage: `
              StationFile is the path to a point shapefile holding the locations
              of seismic stations, at which the residual is fixed at zero. If
              the shapefile has no .prj file it is assumed to be in longitude
              and latitude. Leave empty to simulate without stations.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Radius",
			usage: `
              Radius is the search radius in kilometers within which previously
              simulated cells and stations condition each cell.`,
			shorthand:  "r",
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "IMT",
			usage: `
              IMT is the intensity measure type of the grid data: PGA or SA(T)
              where T is the spectral period in seconds.`,
			defaultVal: "PGA",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "CorrelationModel",
			usage: `
              CorrelationModel is the spatial correlation model: JB2009 (Jayaram
              and Baker, 2009), GA2010 (the functional form of Goda and Atkinson,
              2010, with approximate coefficients rather than the published
              regression values), or exponential(r) where r is the correlation
              range in kilometers.`,
			defaultVal: "JB2009",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Vs30Clustered",
			usage: `
              Vs30Clustered specifies whether Vs30 values are spatially clustered.
              It only affects the JB2009 model.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "RowSpacing",
			usage: `
              RowSpacing specifies how the number of rows within the search radius
              is estimated: 'representative' assumes every row gap equals the
              second row gap of the grid; 'cumulative' adds up the actual gaps.`,
			defaultVal: "representative",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Lookahead",
			usage: `
              Lookahead is the number of row distance matrices that may be
              computed concurrently ahead of the row being simulated. Zero
              computes each one when it is needed.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed is the seed for the random number generator. Realization k of
              the resample command uses Seed+k.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "Realizations",
			usage: `
              Realizations is the number of residual fields to generate when
              resampling.`,
			shorthand:  "n",
			defaultVal: 10,
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the NetCDF file where results should be
              written.`,
			shorthand:  "o",
			defaultVal: "gmcorr_output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "OutputShapefile",
			usage: `
              OutputShapefile is the path to a point shapefile where the simulated
              field should additionally be written. Leave empty to skip.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SolutionFile",
			usage: `
              SolutionFile is the path to the file holding the conditioning weights
              of every cell. It is written by the run command (leave empty to skip)
              and read by the resample command.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be
              saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum severity of logged messages: debug, info,
              warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), resampleCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GMCORR")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(resampleCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("gmcorr: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// interruptible returns a context that is cancelled when the process
// receives an interrupt signal.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "gmcorr",
	Short: "Spatially correlated ground-motion fields.",
	Long: `GMCorr adds spatial correlation to gridded ground-motion estimates by
sequential conditional Gaussian simulation, optionally conditioned on seismic
station locations where the residual is known to be zero.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'GMCORR_var' where 'var' is the
name of the variable to be set. File paths are additionally allowed to contain
environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GMCorr.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GMCorr v%s\n", gmcorr.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd simulates a correlated field and saves the conditioning weights.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a spatially correlated field.",
	Long: `run simulates a spatially correlated residual field for the grid in
GridFile, conditioned on the stations in StationFile, and writes the residuals
and the perturbed ground motion to OutputFile. The conditioning weights of every
cell are written to SolutionFile so that further fields can be generated quickly
with the resample command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := OptionsFromConfig(Cfg)
		if err != nil {
			return err
		}
		ctx, cancel := interruptible()
		defer cancel()
		return Run(ctx, cmd, o)
	},
	DisableAutoGenTag: true,
}

// resampleCmd generates new fields from saved conditioning weights.
var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Generate more fields from a previous simulation.",
	Long: `resample generates Realizations new residual fields from the conditioning
weights in SolutionFile, which was written by the run command, without
recalculating any distances or covariances. The fields are written to OutputFile
along a 'realization' dimension.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := OptionsFromConfig(Cfg)
		if err != nil {
			return err
		}
		ctx, cancel := interruptible()
		defer cancel()
		return Resample(ctx, cmd, o)
	},
	DisableAutoGenTag: true,
}
