package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	recon "github.com/ena-imaging/recon_go/pkg"
)

var configuration recon.Configuration

var (
	logger         CmdLogger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := newConsoleHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = CmdLogger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = recon.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	recon.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		recon.PrintConfiguration(configuration, logger)
	}

	var cal *recon.Calibration
	if configuration.NoDB {
		cal = recon.DefaultCalibration()
	} else {
		dbConn, err := recon.ConnectToDatabase(configuration.User, configuration.Passwd,
			configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connection to database: %w", err)
			logger.Error(message.Error())
			return
		}
		defer dbConn.Close()

		cal, err = recon.LoadCalibration(dbConn, configuration.RunNumber, VerbosityLevel)
		if err != nil {
			message := fmt.Errorf("error loading calibration: %w", err)
			logger.Error(message.Error())
			return
		}
	}

	geo := recon.NewSpinGeometry(configuration)

	batches, err := LoadBatches(configuration.FileIn)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of batches: %d", len(batches))
		logger.Info(message, "main")
	}

	var writer *recon.Writer
	if configuration.WriteData {
		writer, err = recon.NewWriter(configuration.FileOut)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		defer writer.Close()
	}

	numWorkers := configuration.NumWorkers
	if !configuration.Parallel {
		numWorkers = 1
	}

	jobs := make(chan recon.WorkerData, numWorkers)
	results := make(chan recon.WorkerResult, len(batches))

	for w := 1; w <= numWorkers; w++ {
		go recon.Worker(w, cal, geo, jobs, results)
	}

	start := time.Now()
	go recon.SendBatchesToWorkers(batches, jobs, configuration.MaxEvents)

	toProcess := len(batches)
	if configuration.MaxEvents < toProcess {
		toProcess = configuration.MaxEvents
	}

	// Reconstruction errors are fatal per batch; an aborted batch produces
	// no partial output.
	processed := 0
	eventsWritten := 0
	for result := range results {
		if result.Err != nil {
			message := fmt.Errorf("batch %d aborted: %w", result.BatchID, result.Err)
			logger.Error(message.Error())
		} else if configuration.WriteData {
			if err := writer.WriteSet(result.Set); err != nil {
				logger.Error(err.Error())
				return
			}
			eventsWritten += result.Set.Len()
		}
		processed++
		if processed >= toProcess {
			break
		}
	}

	duration := time.Since(start)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Events written: %d", eventsWritten)
		logger.Info(message, "main")
		message = fmt.Sprintf("Total time: %d ms", duration.Milliseconds())
		logger.Info(message, "main")
	}
}
