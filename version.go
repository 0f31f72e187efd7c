package main

import (
	"fmt"
	"io"

	"github.com/light-cache/light-cache/internal/version"
)

// printVersion 输出注入的版本 + 提交信息。
func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.Full())
}
