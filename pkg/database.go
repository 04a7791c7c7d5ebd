package recon

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

type imageParamRow struct {
	Mnemonic string  `db:"Mnemonic"`
	Value    float64 `db:"Value"`
}

type ssdElementRow struct {
	Element int `db:"Element"`
	SSDElementCal
}

// LoadCalibration reads the run-windowed constant set from the calibration
// database: scalar image params plus the eight SSD element rows. Any unknown
// mnemonic or missing element aborts the run; no partial calibration is
// returned.
func LoadCalibration(db *sqlx.DB, runNumber int, verbosity int) (*Calibration, error) {
	cal := &Calibration{}

	query := "SELECT Mnemonic, Value FROM ImageParams WHERE MinRun <= %d and MaxRun >= %d"
	query = fmt.Sprintf(query, runNumber, runNumber)
	if verbosity > 0 {
		logger.Info("Reading image params from database", "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
	rows, err := db.Queryx(query)
	if err != nil {
		return nil, &ErrCalibrationLookup{Mnemonic: "ImageParams", Run: runNumber, Err: err}
	}
	nParams := 0
	for rows.Next() {
		result := imageParamRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, &ErrCalibrationLookup{Mnemonic: "ImageParams", Run: runNumber,
				Err: fmt.Errorf("error scanning DB row: %w", err)}
		}
		if err := cal.setParam(result.Mnemonic, result.Value); err != nil {
			return nil, &ErrCalibrationLookup{Mnemonic: result.Mnemonic, Run: runNumber, Err: err}
		}
		nParams++
	}
	if nParams == 0 {
		return nil, &ErrCalibrationLookup{Mnemonic: "ImageParams", Run: runNumber,
			Err: fmt.Errorf("no rows cover run")}
	}

	query = "SELECT Element, YBack, TofOffsetLeft, TofOffsetRight, EnergyGain, EnergyOffset " +
		"FROM SsdElements WHERE MinRun <= %d and MaxRun >= %d ORDER BY Element"
	query = fmt.Sprintf(query, runNumber, runNumber)
	if verbosity > 0 {
		logger.Info("Reading SSD element calibration from database", "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s", query), "database")
	}
	rows, err = db.Queryx(query)
	if err != nil {
		return nil, &ErrCalibrationLookup{Mnemonic: "SsdElements", Run: runNumber, Err: err}
	}
	seen := [NumSSDElements]bool{}
	for rows.Next() {
		result := ssdElementRow{}
		if err := rows.StructScan(&result); err != nil {
			return nil, &ErrCalibrationLookup{Mnemonic: "SsdElements", Run: runNumber,
				Err: fmt.Errorf("error scanning DB row: %w", err)}
		}
		if result.Element < 0 || result.Element >= NumSSDElements {
			return nil, &ErrCalibrationLookup{Mnemonic: "SsdElements", Run: runNumber,
				Err: fmt.Errorf("element %d out of range", result.Element)}
		}
		cal.SSD[result.Element] = result.SSDElementCal
		seen[result.Element] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, &ErrCalibrationLookup{Mnemonic: fmt.Sprintf("SsdElements[%d]", i),
				Run: runNumber, Err: fmt.Errorf("no row covers run")}
		}
	}

	return cal, nil
}
