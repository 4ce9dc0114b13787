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

package gmcorrutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gmcorr"
	"github.com/spf13/cast"
)

// Options holds the settings for a simulation or resampling run.
type Options struct {
	GridFile, StationFile string

	Radius           float64
	IMT              string
	CorrelationModel string
	Vs30Clustered    bool
	RowSpacing       gmcorr.RowSpacingPolicy
	Lookahead        int

	Seed         uint64
	Realizations int

	OutputFile, OutputShapefile, SolutionFile, LogFile string
	LogLevel                                           logrus.Level
}

// OptionsFromConfig reads and checks the options in cfg. Environment
// variables in file paths are expanded.
func OptionsFromConfig(cfg *viper.Viper) (*Options, error) {
	o := &Options{
		GridFile:         os.ExpandEnv(cfg.GetString("GridFile")),
		StationFile:      os.ExpandEnv(cfg.GetString("StationFile")),
		IMT:              cfg.GetString("IMT"),
		CorrelationModel: cfg.GetString("CorrelationModel"),
		Vs30Clustered:    cfg.GetBool("Vs30Clustered"),
		OutputShapefile:  os.ExpandEnv(cfg.GetString("OutputShapefile")),
		SolutionFile:     os.ExpandEnv(cfg.GetString("SolutionFile")),
	}
	var err error
	if o.Radius, err = cast.ToFloat64E(cfg.Get("Radius")); err != nil {
		return nil, fmt.Errorf("gmcorr: invalid Radius: %v", err)
	}
	if o.Lookahead, err = cast.ToIntE(cfg.Get("Lookahead")); err != nil {
		return nil, fmt.Errorf("gmcorr: invalid Lookahead: %v", err)
	}
	if o.Lookahead < 0 {
		return nil, fmt.Errorf("gmcorr: Lookahead must not be negative; got %d", o.Lookahead)
	}
	if o.Realizations, err = cast.ToIntE(cfg.Get("Realizations")); err != nil {
		return nil, fmt.Errorf("gmcorr: invalid Realizations: %v", err)
	}
	if o.Realizations < 1 {
		return nil, fmt.Errorf("gmcorr: Realizations must be at least 1; got %d", o.Realizations)
	}
	seed, err := cast.ToInt64E(cfg.Get("Seed"))
	if err != nil {
		return nil, fmt.Errorf("gmcorr: invalid Seed: %v", err)
	}
	o.Seed = uint64(seed)
	if o.RowSpacing, err = gmcorr.ParseRowSpacing(cfg.GetString("RowSpacing")); err != nil {
		return nil, err
	}
	if o.LogLevel, err = logrus.ParseLevel(cfg.GetString("LogLevel")); err != nil {
		return nil, fmt.Errorf("gmcorr: invalid LogLevel: %v", err)
	}
	if o.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	o.LogFile = checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), o.OutputFile)
	return o, nil
}

// checkOutputFile expands any environment variables in f and makes sure
// that the directory it is in exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`gmcorr: you need to specify an output file configuration variable (for example: OutputFile="output.nc")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("gmcorr: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// checkInputFile makes sure that a required input file has been specified.
func checkInputFile(name, path string) error {
	if path == "" {
		return fmt.Errorf("gmcorr: you need to specify the %s configuration variable", name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("gmcorr: %s: %v", name, err)
	}
	return nil
}
