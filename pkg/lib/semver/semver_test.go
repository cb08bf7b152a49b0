package semver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMajorRange(t *testing.T) {
	require.Equal(t, "^20.0.0", MajorRange(20))
}

func TestSatisfies(t *testing.T) {
	type args struct {
		v    string
		expr string
	}
	type expected struct {
		ok  bool
		err bool
	}
	tests := []struct {
		description string
		args        args
		expected    expected
	}{
		{
			description: "CaretMajor/InRange",
			args: args{
				v:    "v20.11.1",
				expr: "^20.0.0",
			},
			expected: expected{
				ok: true,
			},
		},
		{
			description: "CaretMajor/NextMajor",
			args: args{
				v:    "21.0.0",
				expr: "^20.0.0",
			},
			expected: expected{
				ok: false,
			},
		},
		{
			description: "CaretMajor/PreviousMajor",
			args: args{
				v:    "18.19.0",
				expr: "^20.0.0",
			},
			expected: expected{
				ok: false,
			},
		},
		{
			description: "CaretMinorZeroMajor",
			args: args{
				v:    "0.3.9",
				expr: "^0.3.1",
			},
			expected: expected{
				ok: true,
			},
		},
		{
			description: "CaretMinorZeroMajor/NextMinor",
			args: args{
				v:    "0.4.0",
				expr: "^0.3.1",
			},
			expected: expected{
				ok: false,
			},
		},
		{
			description: "CaretPatchOnly",
			args: args{
				v:    "0.0.4",
				expr: "^0.0.3",
			},
			expected: expected{
				ok: false,
			},
		},
		{
			description: "Comparator",
			args: args{
				v:    "1.5.0",
				expr: ">=1.0.0 <2.0.0",
			},
			expected: expected{
				ok: true,
			},
		},
		{
			description: "InvalidVersion",
			args: args{
				v:    "not-a-version",
				expr: "^20.0.0",
			},
			expected: expected{
				err: true,
			},
		},
		{
			description: "InvalidRange",
			args: args{
				v:    "20.0.0",
				expr: "^x",
			},
			expected: expected{
				err: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			ok, err := Satisfies(tt.args.v, tt.args.expr)
			if tt.expected.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected.ok, ok)
		})
	}
}
