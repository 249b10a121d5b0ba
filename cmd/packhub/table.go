package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"packhub/internal/trainingpack"
)

// column is one table column. Numeric columns align right.
type column struct {
	title   string
	numeric bool
}

var (
	shotColumns = []column{
		{"#", true}, {"Boost", true}, {"Velocity", true},
		{"Linear", false}, {"Angular", false}, {"Blocker", false},
		{"Freeze", false}, {"Jump", false},
	}
	cacheColumns = []column{
		{"#", true}, {"Name", false}, {"Code", false}, {"Shots", true},
		{"Key", false}, {"Mode", false}, {"Cached", false},
	}
	violationColumns = []column{{"Field", false}, {"Problem", false}}
)

// renderTable draws rows under columns. Short rows are padded with blanks and
// cells past the last column are dropped.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if col.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(columns))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}

func renderShots(shots []trainingpack.Shot) string {
	rows := make([][]string, 0, len(shots))
	for i, shot := range shots {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(shot.BoostAmount),
			strconv.Itoa(shot.StartingVelocity),
			formatVector(shot.ExtendedVelocity),
			formatVector(shot.ExtendedAngularVelocity),
			formatBlocker(shot.GoalBlocker),
			yesNo(shot.FreezeCar),
			yesNo(shot.HasStartingJump),
		})
	}
	return renderTable(shotColumns, rows)
}

func formatVector(v trainingpack.Vector3) string {
	if v.IsZero() {
		return "-"
	}
	return fmt.Sprintf("(%s, %s, %s)", formatAxis(v.X), formatAxis(v.Y), formatAxis(v.Z))
}

func formatAxis(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func formatBlocker(b trainingpack.GoalBlocker) string {
	if b == (trainingpack.GoalBlocker{}) {
		return "-"
	}
	return fmt.Sprintf("(%d, %d) to (%d, %d)", b.FirstX, b.FirstZ, b.SecondX, b.SecondZ)
}
