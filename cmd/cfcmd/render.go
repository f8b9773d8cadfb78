package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/sam0x17/containerflare/command"
)

func stdoutIsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printResponse renders a response as a table on terminals and as a single
// JSON line otherwise, so the output stays scriptable.
func printResponse(w io.Writer, resp command.Response) {
	if !stdoutIsTerminal(w) {
		data, err := json.Marshal(resp)
		if err != nil {
			fmt.Fprintf(w, "%+v\n", resp)
			return
		}
		fmt.Fprintf(w, "%s\n", data)
		return
	}

	rows := [][]string{{"ok", fmt.Sprintf("%t", resp.OK)}}
	if resp.Diagnostic != "" {
		rows = append(rows, []string{"diagnostic", resp.Diagnostic})
	}
	payload := "null"
	if len(resp.Payload) > 0 {
		payload = string(resp.Payload)
	}
	rows = append(rows, []string{"payload", payload})
	printKV(w, rows)
}

func printKV(w io.Writer, rows [][]string) {
	if !stdoutIsTerminal(w) {
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
		}
		return
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.Render()
}
