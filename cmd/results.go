package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/chrisdamba/bagsim/internal/models"
	"github.com/chrisdamba/bagsim/internal/report"
	"github.com/chrisdamba/bagsim/internal/repositories"
	"github.com/chrisdamba/bagsim/internal/repositories/postgres"
	"github.com/chrisdamba/bagsim/internal/simulator"
)

// publishResults writes the report and store CSVs, then optionally persists
// reservation logs and uploads the files.
func publishResults(ctx context.Context, stdout io.Writer, cfg *models.Config, results []*simulator.Result, logger *logrus.Entry) error {
	var files []string

	reportPath, err := writeReport(stdout, cfg, results)
	if err != nil {
		return err
	}
	if reportPath != "" {
		files = append(files, reportPath)
	}

	csvs, err := report.ExportStoreCSVs(cfg.ResultsDir, results)
	if err != nil {
		return err
	}
	files = append(files, csvs...)
	logger.WithField("files", len(csvs)).Info("exported store results")

	if cfg.PersistResults {
		if err := persistReservations(ctx, cfg, results, logger); err != nil {
			return err
		}
	}

	if cfg.OutputDestination == models.DestinationS3 {
		factory, err := simulator.NewCloudWriterFactory(ctx, cfg)
		if err != nil {
			return err
		}
		prefix := path.Join(cfg.OutputFolder, "results", results[0].RunID)
		if err := report.UploadFiles(factory, cfg.CloudStorage.BucketName, prefix, files); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"bucket": cfg.CloudStorage.BucketName,
			"prefix": prefix,
		}).Info("uploaded results")
	}
	return nil
}

func writeReport(stdout io.Writer, cfg *models.Config, results []*simulator.Result) (string, error) {
	w := stdout
	if cfg.ReportFile != "" {
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return "", fmt.Errorf("error creating report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch cfg.ReportFormat {
	case models.ReportYAML:
		err = report.WriteYAML(w, results)
	default:
		err = report.WriteText(w, results)
	}
	if err != nil {
		return "", fmt.Errorf("error writing report: %w", err)
	}
	return cfg.ReportFile, nil
}

func persistReservations(ctx context.Context, cfg *models.Config, results []*simulator.Result, logger *logrus.Entry) error {
	pool, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	repo := postgres.NewReservationRepository(pool)
	for _, res := range results {
		total := 0
		for _, day := range res.Days {
			run := repositories.RunRecord{RunID: res.RunID, Strategy: res.Strategy, Seed: res.Seed, Day: day.Day}
			if err := repo.BulkCreate(ctx, run, day.Reservations); err != nil {
				return fmt.Errorf("error persisting %s day %d: %w", res.Strategy, day.Day, err)
			}
			total += len(day.Reservations)
		}
		logger.WithFields(logrus.Fields{
			"run_id":       res.RunID,
			"strategy":     res.Strategy,
			"reservations": total,
		}).Info("persisted reservations")
	}
	return nil
}
