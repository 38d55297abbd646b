// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unnest

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryDataString(t *testing.T) {
	td := TelemetryData{
		DegradedArchives:   1,
		ExpandedArchives:   3,
		ExpandedFiles:      7,
		ExpansionDuration:  2 * time.Second,
		ExpansionErrors:    1,
		ExpansionSize:      4096,
		InputSize:          512,
		InputType:          "lz4",
		LastExpansionError: errors.New("corrupt frame"),
		MaxDepth:           2,
	}

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(td.String()), &got))

	assert.Equal(t, "corrupt frame", got["last_expansion_error"])
	assert.Equal(t, float64(3), got["expanded_archives"])
	assert.Equal(t, float64(7), got["expanded_files"])
	assert.Equal(t, float64(2*time.Second), got["expansion_duration"])
	assert.Equal(t, float64(4096), got["expansion_size"])
	assert.Equal(t, "lz4", got["input_type"])
	assert.Equal(t, float64(2), got["max_depth"])
}

func TestTelemetryDataWithoutError(t *testing.T) {
	b, err := json.Marshal(&TelemetryData{})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "", got["last_expansion_error"])
}

func TestTelemetryRecorder(t *testing.T) {
	var rec telemetryRecorder

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.update(func(td *TelemetryData) { td.ExpandedFiles++ })
		}()
	}
	wg.Wait()

	snap := rec.snapshot()
	assert.Equal(t, int64(50), snap.ExpandedFiles)

	// a snapshot is a copy
	snap.ExpandedFiles = 0
	assert.Equal(t, int64(50), rec.snapshot().ExpandedFiles)
}
