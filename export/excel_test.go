package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cloudinv/aws-dep-mapper/topology"
)

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.xlsx")
	second := sampleTopology()
	second.Name = "us-east-1_api"

	require.NoError(t, WriteWorkbook(path, []topology.Topology{sampleTopology(), second}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"us-east-1_web", "us-east-1_api"}, f.GetSheetList())

	rows, err := f.GetRows("us-east-1_web")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Internet Gateway", rows[1][0])
	assert.Equal(t, "Load Balancer", rows[2][0])
}

func TestWriteWorkbookNoLoadBalancers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deps.xlsx")
	require.NoError(t, WriteWorkbook(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"No Load Balancers"}, f.GetSheetList())
	rows, err := f.GetRows("No Load Balancers")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "No Load Balancers Found", rows[1][1])
}
