// Package native loads a native module by path and binds its entry points by name.
package native

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"wxkey/keyerr"

	peparser "github.com/saferwall/pe"
	"github.com/samber/lo"
)

// VerifyExports parses the module at path and checks that it is a DLL exporting every name
// in required. It reads the file only; nothing is loaded into the current process.
func VerifyExports(path string, required []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return keyerr.Environment(fmt.Sprintf("无法读取模块文件 %s", path), err)
	}

	peFile, err := peparser.NewBytes(data, &peparser.Options{})
	if err != nil {
		return keyerr.Environment(fmt.Sprintf("模块文件 %s 不是有效的 PE 文件", path), err)
	}
	defer peFile.Close()

	if err := peFile.Parse(); err != nil {
		return keyerr.Environment(fmt.Sprintf("模块文件 %s 解析失败", path), err)
	}
	if !peFile.IsDLL() {
		return keyerr.Environment(fmt.Sprintf("模块文件 %s 不是 DLL", path), nil)
	}

	exported := lo.Map(peFile.Export.Functions, func(f peparser.ExportFunction, _ int) string {
		return f.Name
	})
	if missing := lo.Without(required, exported...); len(missing) > 0 {
		return keyerr.Environment(
			fmt.Sprintf("模块文件 %s 缺少导出函数: %s", path, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// DecodeString returns the NUL-terminated UTF-8 string at the start of buf with trailing
// whitespace removed. A buffer without NUL is decoded whole.
func DecodeString(buf []byte) string {
	if n := bytes.IndexByte(buf, 0); n >= 0 {
		buf = buf[:n]
	}
	return strings.TrimRightFunc(string(buf), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
	})
}
