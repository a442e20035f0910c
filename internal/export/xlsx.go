// Package export writes playback snapshots to analyst-friendly files.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/argusint/argus-cli/internal/model"
)

// WriteXLSX writes the given snapshots to an XLSX workbook with one sheet
// per concern: events, market prices, prediction prices, hotspot levels.
// Snapshots are expected newest first, as the store returns them.
func WriteXLSX(path string, snapshots []model.PlaybackSnapshot) error {
	f := xlsx.NewFile()

	if err := writeEventSheet(f, snapshots); err != nil {
		return err
	}
	if err := writeMarketSheet(f, snapshots); err != nil {
		return err
	}
	if err := writePredictionSheet(f, snapshots); err != nil {
		return err
	}
	if err := writeHotspotSheet(f, snapshots); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func writeEventSheet(f *xlsx.File, snapshots []model.PlaybackSnapshot) error {
	sheet, err := f.AddSheet("Events")
	if err != nil {
		return eris.Wrap(err, "export: add events sheet")
	}
	addRow(sheet, "Snapshot", "Taken At", "Event", "Primary Source", "Sources", "Velocity /h", "Trend", "Sentiment", "Alert")

	for _, snap := range snapshots {
		for _, ev := range snap.Events {
			velocity, trend, sentiment := "", "", ""
			if ev.Velocity != nil {
				velocity = fmt.Sprintf("%.2f", ev.Velocity.SourcesPerHour)
				trend = string(ev.Velocity.Trend)
				sentiment = string(ev.Velocity.Sentiment)
			}
			addRow(sheet,
				snap.ID,
				snap.Timestamp.Format(time.RFC3339),
				ev.PrimaryTitle,
				ev.PrimarySource,
				strconv.Itoa(ev.SourceCount),
				velocity,
				trend,
				sentiment,
				strconv.FormatBool(ev.IsAlert),
			)
		}
	}
	return nil
}

func writeMarketSheet(f *xlsx.File, snapshots []model.PlaybackSnapshot) error {
	sheet, err := f.AddSheet("Markets")
	if err != nil {
		return eris.Wrap(err, "export: add markets sheet")
	}
	addRow(sheet, "Snapshot", "Taken At", "Symbol", "Price")

	for _, snap := range snapshots {
		for _, symbol := range sortedStringKeys(snap.MarketPrices) {
			addRow(sheet,
				snap.ID,
				snap.Timestamp.Format(time.RFC3339),
				symbol,
				fmt.Sprintf("%.4f", snap.MarketPrices[symbol]),
			)
		}
	}
	return nil
}

func writePredictionSheet(f *xlsx.File, snapshots []model.PlaybackSnapshot) error {
	sheet, err := f.AddSheet("Predictions")
	if err != nil {
		return eris.Wrap(err, "export: add predictions sheet")
	}
	addRow(sheet, "Snapshot", "Taken At", "Market", "Yes Price")

	for _, snap := range snapshots {
		for _, p := range snap.Predictions {
			addRow(sheet,
				snap.ID,
				snap.Timestamp.Format(time.RFC3339),
				p.Title,
				fmt.Sprintf("%.1f", p.YesPrice),
			)
		}
	}
	return nil
}

func writeHotspotSheet(f *xlsx.File, snapshots []model.PlaybackSnapshot) error {
	sheet, err := f.AddSheet("Hotspots")
	if err != nil {
		return eris.Wrap(err, "export: add hotspots sheet")
	}
	addRow(sheet, "Snapshot", "Taken At", "Hotspot", "Level")

	for _, snap := range snapshots {
		for _, id := range sortedLevelKeys(snap.HotspotLevels) {
			addRow(sheet,
				snap.ID,
				snap.Timestamp.Format(time.RFC3339),
				id,
				string(snap.HotspotLevels[id]),
			)
		}
	}
	return nil
}
