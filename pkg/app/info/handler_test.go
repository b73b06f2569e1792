package info

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/deploymenttheory/go-satatarget/internal/config"
	"github.com/deploymenttheory/go-satatarget/pkg/app"
)

func testConfig() *config.Config {
	return &config.Config{
		Capacity:    "1MB",
		QueueDepth:  8,
		MaxSegments: 16,
		MaxOrder:    5,
		ReserveMB:   0,
		Allocator:   config.AllocatorHeap,
		WriteCache:  true,
		Serial:      "SN-INFO",
		Firmware:    "9.9",
		Model:       "INFO DISK",
	}
}

func quietContext() (*app.Context, *bytes.Buffer) {
	ctx := app.NewContext()
	var out bytes.Buffer
	ctx.Out, ctx.ErrOut = &out, &out
	ctx.Quiet = true
	return ctx, &out
}

func TestHandle(t *testing.T) {
	ctx, _ := quietContext()
	var steps []int
	ctx.SetProgress(func(_ string, pct int) { steps = append(steps, pct) })

	resp, err := Handle(ctx, &Request{Config: testConfig()})
	require.NoError(t, err)

	assert.Equal(t, uint64(2048), resp.Device.Sectors)
	assert.Equal(t, 8, resp.Device.QueueDepth)
	assert.Equal(t, 8, resp.Device.Extents)
	assert.Equal(t, "info", resp.Device.Owner)
	require.NotNil(t, resp.Identify)
	assert.Equal(t, "INFO DISK", resp.Identify.Model)
	assert.Equal(t, uint64(2048), resp.Identify.Sectors48)
	assert.True(t, resp.Identify.ChecksumValid)
	assert.Equal(t, 100, steps[len(steps)-1])
}

func TestHandleValidation(t *testing.T) {
	ctx, _ := quietContext()

	_, err := Handle(ctx, &Request{})
	var appErr *app.CommonError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, app.ErrCodeInvalidInput, appErr.Code)

	cfg := testConfig()
	cfg.QueueDepth = 64
	_, err = Handle(ctx, &Request{Config: cfg})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, app.ErrCodeInvalidInput, appErr.Code)
	assert.Equal(t, 2, app.ExitCode(err))
}

func TestFormatOutput(t *testing.T) {
	ctx, _ := quietContext()
	resp, err := Handle(ctx, &Request{Config: testConfig()})
	require.NoError(t, err)

	var table bytes.Buffer
	require.NoError(t, FormatOutput(&table, resp, app.FormatTable))
	assert.Contains(t, table.String(), "INFO DISK")
	assert.Contains(t, table.String(), "2048 sectors (1.0 MiB)")

	var js bytes.Buffer
	require.NoError(t, FormatOutput(&js, resp, app.FormatJSON))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Contains(t, decoded, "device")

	var ym bytes.Buffer
	require.NoError(t, FormatOutput(&ym, resp, app.FormatYAML))
	decoded = nil
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &decoded))
	assert.Contains(t, decoded, "identify")

	assert.Error(t, FormatOutput(&js, resp, "xml"))
}
