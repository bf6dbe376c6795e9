package app

import (
	"fmt"
	"io"
	"strings"
)

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はBFFのHTTPサーバーとして起動する。引数なしの場合の既定。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションの削除ループとして起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はセッションストアのマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの /health を確認して終了する。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// commands は表示順のサブコマンド一覧。
var commands = []struct {
	cmd  Command
	help string
}{
	{CommandServe, "start the HTTP server (default)"},
	{CommandWorker, "run the expired session cleanup loop"},
	{CommandMigrate, "apply session store migrations"},
	{CommandHealthcheck, "probe /health of a running server"},
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 引数が空の場合は CommandServe を返す。2番目以降の引数は無視する。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	name := Command(strings.ToLower(strings.TrimSpace(args[0])))
	for _, c := range commands {
		if c.cmd == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", args[0])
}

// Usage はサブコマンドの一覧を w に書き出す。
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: planit [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.cmd, c.help)
	}
}
