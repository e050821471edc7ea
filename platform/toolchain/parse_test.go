package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-livescript/platform/diagnostic"
)

func TestParseDiagnostics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   diagnostic.List
	}{
		{
			name:   "msbuild style with code",
			output: `C:\scripts\Foo.script(3,17): error SC0010: Unexpected end of input in binding`,
			want: diagnostic.List{{
				FilePath: `C:\scripts\Foo.script`,
				Line:     3,
				Column:   17,
				Severity: diagnostic.SeverityError,
				Category: "SC0010",
				Message:  "Unexpected end of input in binding",
			}},
		},
		{
			name:   "msbuild style range without code",
			output: "Foo.script(1,1,1,4): warning: unused binding",
			want: diagnostic.List{{
				FilePath: "Foo.script",
				Line:     1,
				Column:   1,
				Severity: diagnostic.SeverityWarning,
				Category: "warning",
				Message:  "unused binding",
			}},
		},
		{
			name:   "gnu style",
			output: "/tmp/livescript-1.star:2:5: error: got end of file, want primary expression",
			want: diagnostic.List{{
				FilePath: "/tmp/livescript-1.star",
				Line:     2,
				Column:   5,
				Severity: diagnostic.SeverityError,
				Category: "error",
				Message:  "got end of file, want primary expression",
			}},
		},
		{
			name:   "go style without severity",
			output: "./main.go:10:2: undefined: x",
			want: diagnostic.List{{
				FilePath: "./main.go",
				Line:     10,
				Column:   2,
				Severity: diagnostic.SeverityError,
				Message:  "undefined: x",
			}},
		},
		{
			name:   "line only",
			output: "lib.star:7: warning: shadowed name",
			want: diagnostic.List{{
				FilePath: "lib.star",
				Line:     7,
				Severity: diagnostic.SeverityWarning,
				Category: "warning",
				Message:  "shadowed name",
			}},
		},
		{
			name:   "noise is skipped",
			output: "scriptc version 1.4.2\n\nbuild finished\n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDiagnostics(tt.output))
		})
	}
}

func TestParseDiagnosticsKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	output := "b.star:9:1: error: second\n" +
		"a.star:1:1: error: first\n" +
		"a.star:1:1: error: first\n"

	diags := ParseDiagnostics(output)
	require.Len(t, diags, 3)
	assert.Equal(t, "b.star", diags[0].FilePath)
	assert.Equal(t, 9, diags[0].Line)
	assert.Equal(t, diags[1], diags[2])
}
