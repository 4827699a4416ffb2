// Package instanceio reads instances stored as two CSV tables in a folder
// named after the instance: <dir>/<name>/<name>_op.csv holds
// job_id,operation_id,machine_id,processing_time,energy and
// <dir>/<name>/<name>_mach.csv holds
// machine_id,set_up_time,set_up_energy,tear_down_time,tear_down_energy,min_consumption,end_time.
// Both files start with a header line.
package instanceio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/greenshop/core/model"
)

const (
	opColumns   = 5
	machColumns = 7
)

// Load reads the instance folder <dir>/<name>.
func Load(dir, name string) (*model.Instance, error) {
	return LoadDir(filepath.Join(dir, name))
}

// LoadDir reads an instance folder. The instance is named after the folder.
func LoadDir(folder string) (*model.Instance, error) {
	name := filepath.Base(filepath.Clean(folder))
	opFile, err := os.Open(filepath.Join(folder, name+"_op.csv"))
	if err != nil {
		return nil, fmt.Errorf("load instance %s: %w", name, err)
	}
	defer opFile.Close()
	machFile, err := os.Open(filepath.Join(folder, name+"_mach.csv"))
	if err != nil {
		return nil, fmt.Errorf("load instance %s: %w", name, err)
	}
	defer machFile.Close()
	return Read(name, opFile, machFile)
}

// Read parses the operation and machine tables.
func Read(name string, ops, machines io.Reader) (*model.Instance, error) {
	opRecs, err := readTable(ops, opColumns)
	if err != nil {
		return nil, fmt.Errorf("load instance %s: operations: %w", name, err)
	}
	machRecs, err := readTable(machines, machColumns)
	if err != nil {
		return nil, fmt.Errorf("load instance %s: machines: %w", name, err)
	}

	opRows := make([]model.OperationRow, len(opRecs))
	for i, r := range opRecs {
		opRows[i] = model.OperationRow{
			JobID:          r[0],
			OperationID:    r[1],
			MachineID:      r[2],
			ProcessingTime: r[3],
			Energy:         r[4],
		}
	}
	machRows := make([]model.MachineSpec, len(machRecs))
	for i, r := range machRecs {
		machRows[i] = model.MachineSpec{
			ID:             r[0],
			SetupTime:      r[1],
			SetupEnergy:    r[2],
			TeardownTime:   r[3],
			TeardownEnergy: r[4],
			MinConsumption: r[5],
			EndTime:        r[6],
		}
	}
	return model.NewInstance(name, opRows, machRows)
}

// readTable skips the header and parses every other line as integers.
func readTable(r io.Reader, columns int) ([][]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = columns
	cr.TrimLeadingSpace = true
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header")
		}
		return nil, err
	}
	var out [][]int
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		row := make([]int, columns)
		for i, f := range rec {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				line, _ := cr.FieldPos(i)
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		out = append(out, row)
	}
}
