package recon

import (
	"encoding/json"
	"fmt"
	"os"
)

type Configuration struct {
	MaxEvents  int    `json:"max_events"`
	Verbosity  int    `json:"verbosity"`
	FileIn     string `json:"file_in"`
	FileOut    string `json:"file_out"`
	RunNumber  int    `json:"run_number"`
	Sensor     string `json:"sensor"`
	NoDB       bool   `json:"no_db"`
	Host       string `json:"host"`
	User       string `json:"user"`
	Passwd     string `json:"pass"`
	DBName     string `json:"dbname"`
	NumWorkers int    `json:"num_workers"`
	WriteData  bool   `json:"write_data"`
	Parallel   bool   `json:"parallel"`

	// Geometry provider settings, used when no external provider is wired in.
	SpinRateDegPerSec float64    `json:"spin_rate_deg_per_sec"`
	SpinPhaseAtEpoch  float64    `json:"spin_phase_at_epoch"`
	MountAzimuthDeg   float64    `json:"mount_azimuth_deg"`
	MountTiltDeg      float64    `json:"mount_tilt_deg"`
	CoverageStart     float64    `json:"coverage_start"`
	CoverageEnd       float64    `json:"coverage_end"`
	SpacecraftVel     [3]float64 `json:"spacecraft_velocity"`
}

func LoadConfiguration(filename string) (Configuration, error) {
	var config Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.RunNumber = 0
	config.Sensor = "45"
	config.NoDB = false
	config.Host = "calib.ena-imaging.org"
	config.User = "reconreader"
	config.Passwd = "readonly"
	config.DBName = "ENARECON"
	config.NumWorkers = 1
	config.WriteData = true
	config.Parallel = false
	config.SpinRateDegPerSec = 24.0
	config.CoverageEnd = 1e12

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func PrintConfiguration(config Configuration, log Logger) {
	log.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	log.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	log.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	log.Info(fmt.Sprintf("Sensor: %s", config.Sensor), "config")
	log.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	log.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	log.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	log.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	log.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	log.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	log.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	log.Info(fmt.Sprintf("Parallel: %t", config.Parallel), "config")
}
