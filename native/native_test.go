package native

import (
	"os"
	"path/filepath"
	"testing"

	"wxkey/keyerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want string
	}{
		{"nul terminated", []byte("abc\x00garbage"), "abc"},
		{"trailing whitespace", []byte("key \r\n\t\x00"), "key"},
		{"leading whitespace kept", []byte("  key\x00"), "  key"},
		{"no nul", []byte("whole"), "whole"},
		{"empty", []byte{0, 0, 0}, ""},
		{"utf8", []byte("密钥已获取\x00"), "密钥已获取"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeString(tt.buf))
		})
	}
}

func TestVerifyExportsMissingFile(t *testing.T) {
	err := VerifyExports(filepath.Join(t.TempDir(), "wx_key.dll"), []string{"InitializeHook"})
	require.Error(t, err)
	assert.ErrorIs(t, err, keyerr.ErrEnvironment)
}

func TestVerifyExportsNotPE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wx_key.dll")
	require.NoError(t, os.WriteFile(path, []byte("this is not a portable executable"), 0o644))

	err := VerifyExports(path, []string{"InitializeHook"})
	require.Error(t, err)
	assert.Equal(t, keyerr.KindEnvironment, keyerr.KindOf(err))
}
