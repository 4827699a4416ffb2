// Package export writes solutions and benchmark records to files and reads
// solutions back.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kilianp07/greenshop/core/model"
	"github.com/kilianp07/greenshop/core/solution"
)

var (
	operationsHeader = []string{"operation_id", "machine_id", "start_time"}
	machinesHeader   = []string{"machine_id", "start_time", "stop_time"}
)

// OperationsFile and MachinesFile name the two tables of a saved solution.
func OperationsFile(dir, instance string) string {
	return filepath.Join(dir, instance+"_operations.csv")
}

func MachinesFile(dir, instance string) string {
	return filepath.Join(dir, instance+"_machines.csv")
}

// WriteOperationsCSV writes one row per assigned operation.
func WriteOperationsCSV(w io.Writer, s *solution.Solution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(operationsHeader); err != nil {
		return err
	}
	for _, op := range s.AllOperations() {
		if !op.Assigned() {
			continue
		}
		rec := []string{
			strconv.Itoa(op.ID()),
			strconv.Itoa(op.AssignedTo()),
			strconv.Itoa(op.StartTime()),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMachinesCSV writes one row per on-interval.
func WriteMachinesCSV(w io.Writer, s *solution.Solution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(machinesHeader); err != nil {
		return err
	}
	for _, m := range s.Machines() {
		starts, stops := m.StartTimes(), m.StopTimes()
		for i := range starts {
			rec := []string{strconv.Itoa(m.ID()), strconv.Itoa(starts[i]), strconv.Itoa(stops[i])}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveSolution writes <dir>/<instance>_operations.csv and
// <dir>/<instance>_machines.csv, creating dir if needed.
func SaveSolution(dir string, s *solution.Solution) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := s.Instance().Name()
	if err := writeFile(OperationsFile(dir, name), func(w io.Writer) error { return WriteOperationsCSV(w, s) }); err != nil {
		return fmt.Errorf("save solution: %w", err)
	}
	if err := writeFile(MachinesFile(dir, name), func(w io.Writer) error { return WriteMachinesCSV(w, s) }); err != nil {
		return fmt.Errorf("save solution: %w", err)
	}
	return nil
}

// ReadSolution rebuilds a solution of inst from the two tables.
func ReadSolution(inst *model.Instance, operations, machines io.Reader) (*solution.Solution, error) {
	opRows, err := readInts(operations, len(operationsHeader))
	if err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}
	machRows, err := readInts(machines, len(machinesHeader))
	if err != nil {
		return nil, fmt.Errorf("read machines: %w", err)
	}
	intervals := make(map[int][]solution.Interval)
	for _, r := range machRows {
		intervals[r[0]] = append(intervals[r[0]], solution.Interval{Start: r[1], Stop: r[2]})
	}
	placements := make([]solution.Placement, len(opRows))
	for i, r := range opRows {
		placements[i] = solution.Placement{OperationID: r[0], MachineID: r[1], Start: r[2]}
	}
	return solution.Restore(inst, intervals, placements)
}

// LoadSolution reads the files written by SaveSolution.
func LoadSolution(dir string, inst *model.Instance) (*solution.Solution, error) {
	ops, err := os.Open(OperationsFile(dir, inst.Name()))
	if err != nil {
		return nil, fmt.Errorf("load solution: %w", err)
	}
	defer ops.Close()
	machines, err := os.Open(MachinesFile(dir, inst.Name()))
	if err != nil {
		return nil, fmt.Errorf("load solution: %w", err)
	}
	defer machines.Close()
	return ReadSolution(inst, ops, machines)
}

func readInts(r io.Reader, columns int) ([][]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = columns
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header")
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
			if row[i], err = strconv.Atoi(f); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
