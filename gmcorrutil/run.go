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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/gmcorr"
	"github.com/spatialmodel/gmcorr/science/correlation"
	"github.com/spf13/cobra"
)

// newLogger returns a logger that writes to the command output and to
// logFile.
func newLogger(cmd *cobra.Command, logFile string, level logrus.Level) (*logrus.Logger, io.Closer, error) {
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("gmcorr: problem creating log file: %v", err)
	}
	log := logrus.New()
	log.Out = io.MultiWriter(cmd.OutOrStdout(), f)
	log.Level = level
	return log, f, nil
}

// Run simulates a spatially correlated residual field for the grid and
// stations specified in o and writes the results to o.OutputFile, and
// optionally to o.OutputShapefile and o.SolutionFile. If ctx is cancelled
// during the simulation, the cells simulated so far are written to
// o.SolutionFile.
func Run(ctx context.Context, cmd *cobra.Command, o *Options) error {
	log, logFile, err := newLogger(cmd, o.LogFile, o.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	start := time.Now()

	if err := checkInputFile("GridFile", o.GridFile); err != nil {
		return err
	}
	grid, err := ReadGrid(o.GridFile)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file": o.GridFile,
		"rows": grid.Rows,
		"cols": grid.Cols,
	}).Info("gmcorr: read grid")

	var stations []geom.Point
	if o.StationFile != "" {
		if stations, err = ReadStations(o.StationFile); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"file":     o.StationFile,
			"stations": len(stations),
		}).Info("gmcorr: read stations")
	}

	model, err := correlation.New(o.CorrelationModel, o.Vs30Clustered)
	if err != nil {
		return err
	}
	sim, err := gmcorr.NewSimulator(gmcorr.Config{
		Grid:       grid,
		Stations:   stations,
		Radius:     o.Radius,
		IMT:        o.IMT,
		Model:      model,
		RowSpacing: o.RowSpacing,
		Lookahead:  o.Lookahead,
	})
	if err != nil {
		return err
	}
	sim.Log = log

	r, err := sim.Simulate(ctx, gmcorr.StandardNormal(grid.Len(), o.Seed))
	if err != nil {
		if r != nil && r.Simulated > 0 && o.SolutionFile != "" {
			if saveErr := SaveRealization(o.SolutionFile, r); saveErr != nil {
				log.WithError(saveErr).Error("gmcorr: saving partial solution")
			} else {
				log.WithFields(logrus.Fields{
					"file":  o.SolutionFile,
					"cells": r.Simulated,
				}).Warn("gmcorr: saved partial solution")
			}
		}
		return err
	}

	field, err := r.Field(grid)
	if err != nil {
		return err
	}
	if err := WriteField(o.OutputFile, grid, field); err != nil {
		return err
	}
	if o.OutputShapefile != "" {
		if err := WriteShapefile(o.OutputShapefile, grid, field); err != nil {
			return err
		}
	}
	if o.SolutionFile != "" {
		if err := SaveRealization(o.SolutionFile, r); err != nil {
			return err
		}
	}
	log.WithFields(logrus.Fields{
		"output": o.OutputFile,
		"time":   time.Since(start),
	}).Info("gmcorr: " + r.Summary().String())
	return nil
}

// Resample generates o.Realizations residual fields from the solution in
// o.SolutionFile and writes them to o.OutputFile. Realization k uses the
// random seed o.Seed+k, so realization 0 reproduces a simulation run with
// the same seed.
func Resample(ctx context.Context, cmd *cobra.Command, o *Options) error {
	log, logFile, err := newLogger(cmd, o.LogFile, o.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()
	start := time.Now()

	if err := checkInputFile("GridFile", o.GridFile); err != nil {
		return err
	}
	if err := checkInputFile("SolutionFile", o.SolutionFile); err != nil {
		return err
	}
	grid, err := ReadGrid(o.GridFile)
	if err != nil {
		return err
	}
	r, err := LoadRealization(o.SolutionFile)
	if err != nil {
		return err
	}
	if err := r.CheckGrid(grid); err != nil {
		return fmt.Errorf("gmcorr: solution %s does not match grid %s: %w", o.SolutionFile, o.GridFile, err)
	}

	rands := make([][]float64, o.Realizations)
	for k := range rands {
		rands[k] = gmcorr.StandardNormal(grid.Len(), o.Seed+uint64(k))
	}
	eps, err := r.ResampleMany(ctx, rands)
	if err != nil {
		return err
	}
	if err := WriteRealizations(o.OutputFile, grid, eps); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"output":       o.OutputFile,
		"realizations": len(eps),
		"time":         time.Since(start),
	}).Info("gmcorr: resampling complete")
	return nil
}
