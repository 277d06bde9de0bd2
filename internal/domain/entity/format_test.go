package entity

import (
	"go/format"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportIsFormatted(t *testing.T) {
	src, err := os.ReadFile("report.go")
	require.NoError(t, err)

	formatted, err := format.Source(src)
	require.NoError(t, err)
	require.Equal(t, string(formatted), string(src), "report.go is not gofmt-clean")
}
