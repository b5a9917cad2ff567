package output

import (
	"strconv"
	"time"

	"adlauncher/storage"
)

var (
	launchHeaders = []string{"ID", "BatchID", "Row", "AdSetID", "Status", "FBAdID", "FBCreativeID", "Name", "Headline", "Link", "CallToAction", "Carousel", "Paused", "Error", "LaunchedAt"}
	batchHeaders  = []string{"BatchID", "SourceFile", "CreatedAt", "RowsTotal", "RowsValid", "Launched", "Failed"}
)

func LaunchTable(launches []storage.LaunchedAd) Table {
	table := Table{
		Headers: launchHeaders,
		Rows:    make([][]string, 0, len(launches)),
	}
	for _, launch := range launches {
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(launch.ID, 10),
			launch.BatchID,
			strconv.Itoa(launch.RowIndex + 1),
			launch.AdSetID,
			launch.Status,
			launch.FBAdID,
			launch.FBCreativeID,
			launch.CustomName,
			launch.Headline,
			launch.Link,
			launch.CallToAction,
			strconv.FormatBool(launch.IsCarousel),
			strconv.FormatBool(launch.LaunchPaused),
			launch.ErrorMessage,
			launch.LaunchedAt.Format(time.RFC3339),
		})
	}
	return table
}

func BatchTable(batches []storage.Batch) Table {
	table := Table{
		Headers: batchHeaders,
		Rows:    make([][]string, 0, len(batches)),
	}
	for _, batch := range batches {
		table.Rows = append(table.Rows, []string{
			batch.ID,
			batch.SourceFile,
			batch.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(batch.RowsTotal),
			strconv.Itoa(batch.RowsValid),
			strconv.Itoa(batch.Launched),
			strconv.Itoa(batch.Failed),
		})
	}
	return table
}

func WriteLaunches(path, format string, launches []storage.LaunchedAd) error {
	return Write(path, format, LaunchTable(launches))
}

func WriteBatches(path, format string, batches []storage.Batch) error {
	return Write(path, format, BatchTable(batches))
}
