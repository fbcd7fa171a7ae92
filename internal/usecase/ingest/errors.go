package ingest

import "errors"

// ErrNoData indicates that no source produced any material for a channel.
// It is returned only when the union of results across every source in an
// ingestion run is empty; individual source failures alone do not cause it.
var ErrNoData = errors.New("no data available")
