package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"freebucket/internal/storage"
)

func TestHumanSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes uint64
		want  string
	}{
		{bytes: 0, want: "0 B"},
		{bytes: 1, want: "1 B"},
		{bytes: 1023, want: "1023 B"},
		{bytes: 1024, want: "1.00 KB"},
		{bytes: 1536, want: "1.50 KB"},
		{bytes: 1048576, want: "1.00 MB"},
		{bytes: 5 * 1024 * 1024 * 1024, want: "5.00 GB"},
		{bytes: 1099511627776, want: "1.00 TB"},
		{bytes: 1125899906842624, want: "1.00 PB"},
	}

	for _, tc := range tests {
		require.Equalf(t, tc.want, storage.HumanSize(tc.bytes), "HumanSize(%d)", tc.bytes)
	}
}
